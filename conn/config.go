package conn

// Config holds the per-Connection tunables spec.md §4.9 names. It is the
// shape netconf.Configuration resolves down to for the subset Connection
// itself consumes.
type Config struct {
	ConnectResendInterval  float64
	ConnectTimeout         float64
	ReliableResendInterval float64
	ReliableTimeout        float64

	// ReliableMaxRetries bounds reliable retransmit attempts before the
	// Connection is torn down. Zero means retry indefinitely, resolving
	// spec.md §9's open question on reliable-resend retry limits in
	// favor of relying on application-layer keepalive by default.
	ReliableMaxRetries int

	// WindowSize is the reliable send/receive window size (spec.md §3).
	WindowSize int
}

// DefaultConfig returns spec.md §4.9's defaults.
func DefaultConfig() Config {
	return Config{
		ConnectResendInterval:  1,
		ConnectTimeout:         5,
		ReliableResendInterval: 0.5,
		ReliableTimeout:        3,
		ReliableMaxRetries:     0,
		WindowSize:             10,
	}
}
