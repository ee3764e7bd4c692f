package message

// Queue is an ordered collection of reliable Messages searchable by
// sequence number (spec.md §3), grounded on debnMessageManager's flat
// append/remove-at-index management, expressed here as a Go slice.
type Queue struct {
	items []*Message
}

// NewQueue constructs an empty Queue.
func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Len() int { return len(q.items) }

func (q *Queue) At(index int) *Message {
	if index < 0 || index >= len(q.items) {
		return nil
	}
	return q.items[index]
}

// Front returns the oldest queued Message, or nil if the queue is empty.
func (q *Queue) Front() *Message {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// Append adds a Message at the back of the queue.
func (q *Queue) Append(m *Message) {
	q.items = append(q.items, m)
}

// IndexOfNumber returns the index of the Message carrying the given
// sequence number, or -1 if none is queued.
func (q *Queue) IndexOfNumber(number uint16) int {
	for i, m := range q.items {
		if m.Number() == number {
			return i
		}
	}
	return -1
}

// FindByNumber returns the Message carrying the given sequence number,
// or nil if none is queued.
func (q *Queue) FindByNumber(number uint16) *Message {
	if i := q.IndexOfNumber(number); i >= 0 {
		return q.items[i]
	}
	return nil
}

// RemoveAt removes and returns the Message at index, or nil if index is
// out of range.
func (q *Queue) RemoveAt(index int) *Message {
	if index < 0 || index >= len(q.items) {
		return nil
	}
	m := q.items[index]
	q.items = append(q.items[:index], q.items[index+1:]...)
	return m
}

// RemoveFront pops and returns the oldest queued Message.
func (q *Queue) RemoveFront() *Message {
	return q.RemoveAt(0)
}

// All returns the queued messages in order. The returned slice must not
// be mutated by the caller.
func (q *Queue) All() []*Message {
	return q.items
}

func (q *Queue) Clear() {
	q.items = nil
}
