package formserver

import (
	"net/http"
	"testing"
)

func TestClientIP(t *testing.T) {
	from127 := MustParseProxies("127.0.0.0/8")
	tests := []struct {
		desc    string
		proxies Proxies
		remote  string
		xff     []string
		want    string
	}{
		{"direct", from127, "127.0.0.1:23456", nil, "127.0.0.1"},
		{"local proxy", from127, "127.0.0.1:23456", []string{"1.2.3.4"}, "1.2.3.4"},
		{"untrusted proxy", from127, "11.22.33.44:23456", []string{"1.2.3.4"}, "11.22.33.44"},
		{"trust nobody", nil, "127.0.0.1:23456", []string{"1.2.3.4"}, "127.0.0.1"},
		{"proxy chain", from127, "127.0.0.1:23456", []string{"1.2.3.4, 127.1.2.3"}, "1.2.3.4"},
		{"chain over headers", from127, "127.0.0.1:23456", []string{"1.2.3.4, 1.2.3.5", "1.2.3.6", "127.1.2.3"}, "1.2.3.6"},
		{"localhost only", LocalProxies, "127.0.0.1:23456", []string{"1.2.3.4, 127.1.2.3"}, "127.1.2.3"},
		{"garbage hop", from127, "127.0.0.1:1", []string{"nonsense, 1.2.3.4"}, "1.2.3.4"},
		{"no port", nil, "10.0.0.1", nil, "10.0.0.1"},
	}
	for _, tt := range tests {
		r := &http.Request{RemoteAddr: tt.remote, Header: http.Header{}}
		for _, v := range tt.xff {
			r.Header.Add(XForwardedFor, v)
		}
		if got := tt.proxies.ClientIP(r); got != tt.want {
			t.Errorf("** %s: ClientIP = %s, wanted %s", tt.desc, got, tt.want)
		} else {
			t.Logf("✓ %s", tt.desc)
		}
	}
}

func TestParseProxies(t *testing.T) {
	p, err := ParseProxies("10.0.0.0/8, 192.168.1.7 ::1")
	if err != nil {
		t.Fatalf("** ParseProxies: %v", err)
	}
	if len(p) != 3 || p[1].String() != "192.168.1.7/32" || p[2].String() != "::1/128" {
		t.Errorf("** ParseProxies = %v", p)
	}
	if _, err := ParseProxies("10.0.0.0/99"); err == nil {
		t.Errorf("** bad CIDR accepted")
	}
	if _, err := ParseProxies("proxy.local"); err == nil {
		t.Errorf("** hostname accepted")
	}
}
