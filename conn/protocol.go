package conn

import "github.com/hashicorp/go-version"

// ProtocolID is the 16-bit protocol identifier negotiated at connect time
// (spec.md §3, GLOSSARY: "Protocol version"). Only version 1 is defined.
type ProtocolID uint16

// DENetworkProtocol is the sole supported protocol, "DragengineNetworkProtocol
// v1" (spec.md §4.7).
const DENetworkProtocol ProtocolID = 0

// SupportedProtocols is the server's offered protocol list, in preference
// order (spec.md §4.7).
var SupportedProtocols = []ProtocolID{DENetworkProtocol}

// protocolVersion renders a ProtocolID as a semantic version for logging,
// e.g. DENetworkProtocol -> "1.0.0".
func protocolVersion(p ProtocolID) *version.Version {
	v, err := version.NewVersion("1.0.0")
	if err != nil {
		// DENetworkProtocol is the only defined protocol; its version
		// string is a compile-time constant and always parses.
		panic(err)
	}
	if p != DENetworkProtocol {
		v, _ = version.NewVersion("0.0.0")
	}
	return v
}

// IntersectProtocols returns the protocols present in both client and
// SupportedProtocols, preserving SupportedProtocols' order (spec.md §4.7).
func IntersectProtocols(client []ProtocolID) []ProtocolID {
	want := make(map[ProtocolID]bool, len(client))
	for _, p := range client {
		want[p] = true
	}

	var out []ProtocolID
	for _, p := range SupportedProtocols {
		if want[p] {
			out = append(out, p)
		}
	}
	return out
}
