// Package addr implements the Address value type (spec.md §4.1): a tagged
// union of IPv4/IPv6 endpoint plus port, with the exact string-form parse
// rules spec.md requires and the socket conversions Connection/Socket need.
//
// Grounded on the original debnAddress.cpp (byte-order conversions,
// default-loopback construction) and on the teacher's network/protocol
// package for the parse/format/tagged-enum idiom.
package addr

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/nabbar/netlink-sync/nlerr"
)

// Family distinguishes the two address shapes Address can hold.
type Family uint8

const (
	IPv4 Family = iota
	IPv6
)

// DefaultPort is used when no port is given and by Default().
const DefaultPort uint16 = 3413

// Address is a tagged union of an IPv4 (4 octets) or IPv6 (16 octets)
// endpoint and a 16-bit port. The zero value is not a valid Address; use
// Default() for the IPv4-loopback default spec.md §4.1 specifies.
type Address struct {
	family Family
	octets [16]byte
	port   uint16
}

// Default returns the IPv4 loopback address 127.0.0.1:3413.
func Default() Address {
	a := Address{family: IPv4, port: DefaultPort}
	a.octets[0] = 127
	a.octets[3] = 1
	return a
}

// AnyIPv4 returns 0.0.0.0 with the given port, the wildcard bind address.
func AnyIPv4(port uint16) Address {
	return Address{family: IPv4, port: port}
}

// FromIPv4 builds an Address from four octets and a port.
func FromIPv4(a, b, c, d byte, port uint16) Address {
	addr := Address{family: IPv4, port: port}
	addr.octets[0], addr.octets[1], addr.octets[2], addr.octets[3] = a, b, c, d
	return addr
}

// FromIPv6 builds an Address from sixteen octets and a port.
func FromIPv6(octets [16]byte, port uint16) Address {
	return Address{family: IPv6, octets: octets, port: port}
}

// FromUDPAddr converts a net.UDPAddr (as returned by Socket receive calls)
// into an Address, mirroring debnAddress::SetIPv4FromSocket /
// SetIPv6FromSocket.
func FromUDPAddr(u *net.UDPAddr) (Address, error) {
	if u == nil {
		return Address{}, nlerr.New(nlerr.KindInvalidArgument, "nil UDPAddr")
	}
	if v4 := u.IP.To4(); v4 != nil {
		return FromIPv4(v4[0], v4[1], v4[2], v4[3], uint16(u.Port)), nil
	}
	v6 := u.IP.To16()
	if v6 == nil {
		return Address{}, nlerr.New(nlerr.KindInvalidArgument, "address %v is neither IPv4 nor IPv6", u.IP)
	}
	var octets [16]byte
	copy(octets[:], v6)
	return FromIPv6(octets, uint16(u.Port)), nil
}

// UDPAddr converts the Address back into a net.UDPAddr for socket calls
// (the inverse of FromUDPAddr — "fill-socket-address" in spec.md §4.1).
func (a Address) UDPAddr() *net.UDPAddr {
	if a.family == IPv4 {
		return &net.UDPAddr{IP: net.IPv4(a.octets[0], a.octets[1], a.octets[2], a.octets[3]), Port: int(a.port)}
	}
	ip := make(net.IP, 16)
	copy(ip, a.octets[:])
	return &net.UDPAddr{IP: ip, Port: int(a.port)}
}

func (a Address) Family() Family { return a.family }
func (a Address) Port() uint16   { return a.port }

// WithPort returns a copy of a with the port replaced, used by netsrv when
// resolving the wildcard listen address to a concrete host IP on the
// caller's requested port.
func (a Address) WithPort(port uint16) Address {
	a.port = port
	return a
}

// IsUnspecified reports whether a is the all-zero wildcard address
// (0.0.0.0 or ::), the bind-to-any-interface address.
func (a Address) IsUnspecified() bool {
	n := 4
	if a.family == IPv6 {
		n = 16
	}
	for i := 0; i < n; i++ {
		if a.octets[i] != 0 {
			return false
		}
	}
	return true
}

// Equal compares by tag, octets and port, per spec.md §3.
func (a Address) Equal(b Address) bool {
	if a.family != b.family || a.port != b.port {
		return false
	}
	n := 4
	if a.family == IPv6 {
		n = 16
	}
	for i := 0; i < n; i++ {
		if a.octets[i] != b.octets[i] {
			return false
		}
	}
	return true
}

// String formats the address per spec.md §4.1: IPv4 as dotted-decimal
// "a.b.c.d:p"; IPv6 bracketed, lower-case hex groups, a single "::"
// zero-run compaction, groups separated by ":".
func (a Address) String() string {
	if a.family == IPv4 {
		return fmt.Sprintf("%d.%d.%d.%d:%d", a.octets[0], a.octets[1], a.octets[2], a.octets[3], a.port)
	}
	return fmt.Sprintf("[%s]:%d", formatIPv6Groups(a.octets), a.port)
}

func formatIPv6Groups(octets [16]byte) string {
	var groups [8]uint16
	for i := range groups {
		groups[i] = uint16(octets[i*2])<<8 | uint16(octets[i*2+1])
	}

	// Find the longest run of zero groups to compact into "::".
	bestStart, bestLen := -1, 0
	curStart, curLen := -1, 0
	for i, g := range groups {
		if g == 0 {
			if curStart == -1 {
				curStart = i
			}
			curLen++
			if curLen > bestLen {
				bestStart, bestLen = curStart, curLen
			}
		} else {
			curStart, curLen = -1, 0
		}
	}
	// A run of length 1 is not worth compacting.
	if bestLen < 2 {
		bestStart = -1
	}

	var sb strings.Builder
	compacted := false
	i := 0
	for i < 8 {
		if i == bestStart {
			sb.WriteString("::")
			i += bestLen
			compacted = true
			continue
		}
		if i > 0 && !compacted {
			sb.WriteString(":")
		}
		compacted = false
		sb.WriteString(strconv.FormatUint(uint64(groups[i]), 16))
		i++
	}
	return sb.String()
}

// Parse accepts exactly the string shapes spec.md §4.1 enumerates:
// "[v6]:port", bare "v6" (more than one ':'), "v4:port", "hostname:port",
// "v4", "hostname". A hostname resolves to the first IPv4 address the
// resolver returns, or to its first address if none is IPv4; the host's
// configured connectivity is not consulted.
func Parse(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}, nlerr.New(nlerr.KindParseError, "empty address string")
	}

	host, portStr, hasPort := splitHostPort(s)

	port := DefaultPort
	if hasPort {
		p, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return Address{}, nlerr.Wrap(nlerr.KindParseError, err, "invalid port in %q", s)
		}
		port = uint16(p)
	}

	if ip := net.ParseIP(host); ip != nil {
		return addressFromIP(ip, port)
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		return Address{}, nlerr.Wrap(nlerr.KindParseError, err, "dns lookup failed for %q", host)
	}
	if len(ips) == 0 {
		return Address{}, nlerr.New(nlerr.KindParseError, "dns lookup for %q returned no addresses", host)
	}
	// Prefer IPv4 first, matching the Default() family; callers that need
	// the platform's live connectivity preference can pre-resolve and call
	// addressFromIP-equivalent constructors directly.
	for _, ip := range ips {
		if ip.To4() != nil {
			return addressFromIP(ip, port)
		}
	}
	return addressFromIP(ips[0], port)
}

func addressFromIP(ip net.IP, port uint16) (Address, error) {
	if v4 := ip.To4(); v4 != nil {
		return FromIPv4(v4[0], v4[1], v4[2], v4[3], port), nil
	}
	v6 := ip.To16()
	if v6 == nil {
		return Address{}, nlerr.New(nlerr.KindParseError, "unrecognized IP family for %v", ip)
	}
	var octets [16]byte
	copy(octets[:], v6)
	return FromIPv6(octets, port), nil
}

// splitHostPort implements the shape rules from spec.md §4.1 directly
// rather than deferring to net.SplitHostPort, which is looser than the
// spec (e.g. it accepts bare IPv6 without brackets in some forms). Returns
// the host part and, if present, the port string.
func splitHostPort(s string) (host, port string, hasPort bool) {
	if strings.HasPrefix(s, "[") {
		// "[v6]:port"
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return s, "", false
		}
		host = s[1:end]
		rest := s[end+1:]
		if strings.HasPrefix(rest, ":") {
			return host, rest[1:], true
		}
		return host, "", false
	}

	colons := strings.Count(s, ":")
	if colons > 1 {
		// bare v6, no brackets, no port possible (would be ambiguous).
		return s, "", false
	}
	if colons == 1 {
		idx := strings.IndexByte(s, ':')
		return s[:idx], s[idx+1:], true
	}
	return s, "", false
}
