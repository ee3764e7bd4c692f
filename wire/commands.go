package wire

// Command is the one-byte command code every datagram begins with
// (spec.md §6.1).
type Command uint8

const (
	CmdConnectionRequest  Command = 0
	CmdConnectionAck      Command = 1
	CmdConnectionClose    Command = 2
	CmdMessage            Command = 3
	CmdReliableMessage    Command = 4
	CmdReliableLinkState  Command = 5
	CmdReliableAck        Command = 6
	CmdLinkUp             Command = 7
	CmdLinkDown           Command = 8
	CmdLinkUpdate         Command = 9
)

// AckResult is the ConnectionAck result byte (spec.md §6.1).
type AckResult uint8

const (
	AckAccepted         AckResult = 0
	AckRejected         AckResult = 1
	AckNoCommonProtocol AckResult = 2
)

// ReliableAckCode is the ReliableAck result byte (spec.md §6.1).
type ReliableAckCode uint8

const (
	ReliableSuccess ReliableAckCode = 0
	ReliableFailed  ReliableAckCode = 1
)

// LinkFlagReadOnly is bit 0 of ReliableLinkState's flags byte (spec.md §6.1).
const LinkFlagReadOnly uint8 = 1 << 0
