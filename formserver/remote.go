package formserver

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

const XForwardedFor = "X-Forwarded-For"

// Proxies lists the networks whose X-Forwarded-For headers are believed.
// The zero value trusts nobody.
type Proxies []*net.IPNet

var LocalProxies = MustParseProxies("127.0.0.1/32 ::1/128")

// ParseProxies parses whitespace- or comma-separated CIDRs. A bare IP address
// stands for a single host.
func ParseProxies(s string) (Proxies, error) {
	items := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' })
	result := make(Proxies, 0, len(items))
	for _, item := range items {
		if !strings.Contains(item, "/") {
			ip := net.ParseIP(item)
			if ip == nil {
				return nil, fmt.Errorf("invalid proxy address %q", item)
			}
			bits := 8 * net.IPv6len
			if ip.To4() != nil {
				ip, bits = ip.To4(), 8*net.IPv4len
			}
			result = append(result, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, cidr, err := net.ParseCIDR(item)
		if err != nil {
			return nil, err
		}
		result = append(result, cidr)
	}
	return result, nil
}

func MustParseProxies(s string) Proxies {
	p, err := ParseProxies(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Proxies) trusts(ip net.IP) bool {
	for _, cidr := range p {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the address of the submitter. Behind a trusted proxy it
// walks X-Forwarded-For from the right, stopping at the first hop that is
// not itself a trusted proxy.
func (p Proxies) ClientIP(r *http.Request) string {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil && h != "" {
		host = h
	}
	ip := net.ParseIP(host)
	if ip == nil || !p.trusts(ip) {
		return host
	}

	hops := strings.Split(strings.Join(r.Header.Values(XForwardedFor), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := net.ParseIP(strings.TrimSpace(hops[i]))
		if hop == nil {
			if strings.TrimSpace(hops[i]) == "" {
				continue
			}
			break
		}
		ip = hop
		if !p.trusts(hop) {
			break
		}
	}
	return ip.String()
}
