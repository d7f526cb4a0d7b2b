package scripts

import (
	"fmt"
	"io"
	"net"

	"github.com/cockroachdb/errors"
)

// Interface is the part of a network interface LocalIP looks at.
type Interface struct {
	Name     string
	Up       bool
	Loopback bool
	Addrs    []net.Addr
}

// SystemInterfaces lists the OS network interfaces.
func SystemInterfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, errors.Wrap(err, "listing network interfaces")
	}
	out := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		out = append(out, Interface{
			Name:     iface.Name,
			Up:       iface.Flags&net.FlagUp != 0,
			Loopback: iface.Flags&net.FlagLoopback != 0,
			Addrs:    addrs,
		})
	}
	return out, nil
}

func ipv4(addr net.Addr) net.IP {
	var ip net.IP
	switch v := addr.(type) {
	case *net.IPNet:
		ip = v.IP
	case *net.IPAddr:
		ip = v.IP
	}
	return ip.To4()
}

// LocalIP prints the first non-loopback IPv4 address of an interface that
// is up. With all, every IPv4 address is printed as "iface\taddr".
func LocalIP(w io.Writer, ifaces []Interface, all bool) error {
	found := false
	for _, iface := range ifaces {
		for _, addr := range iface.Addrs {
			ip := ipv4(addr)
			if ip == nil {
				continue
			}
			if all {
				fmt.Fprintf(w, "%s\t%s\n", iface.Name, ip)
				found = true
				continue
			}
			if iface.Up && !iface.Loopback && !ip.IsLoopback() {
				fmt.Fprintln(w, ip)
				return nil
			}
		}
	}
	if !found {
		return errors.New("no IPv4 address found")
	}
	return nil
}
