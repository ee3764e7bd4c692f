package addr

import (
	"net"

	"github.com/nabbar/netlink-sync/nlerr"
)

// LocalIPv4Addresses enumerates the host's public (non-loopback,
// non-link-local, up) IPv4 addresses, the "sibling utility" spec.md §4.2
// mentions. netsrv.Server uses it to pick a concrete bind address when
// asked to listen on the wildcard "*" (§4.7).
func LocalIPv4Addresses() ([]Address, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, nlerr.Wrap(nlerr.KindIoFailure, err, "enumerating network interfaces")
	}

	var out []Address
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			v4 := ipNet.IP.To4()
			if v4 == nil || v4.IsLinkLocalUnicast() {
				continue
			}
			out = append(out, FromIPv4(v4[0], v4[1], v4[2], v4[3], DefaultPort))
		}
	}
	return out, nil
}
