package helpers

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// WriteJSON escribe una respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ProxyPolicy decide cuándo X-Forwarded-For es confiable. Sin Trusted, el
// header se ignora y cuenta solo la dirección del peer.
type ProxyPolicy struct {
	Trusted []netip.Prefix
}

// ParseProxies convierte CIDRs (o IPs sueltas) en prefixes.
func ParseProxies(cidrs []string) (ProxyPolicy, error) {
	var p ProxyPolicy
	for _, c := range cidrs {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if !strings.Contains(c, "/") {
			addr, err := netip.ParseAddr(c)
			if err != nil {
				return ProxyPolicy{}, fmt.Errorf("trusted proxy %q: %w", c, err)
			}
			p.Trusted = append(p.Trusted, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		pfx, err := netip.ParsePrefix(c)
		if err != nil {
			return ProxyPolicy{}, fmt.Errorf("trusted proxy %q: %w", c, err)
		}
		p.Trusted = append(p.Trusted, pfx.Masked())
	}
	return p, nil
}

func (p ProxyPolicy) trusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, pfx := range p.Trusted {
		if pfx.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP devuelve la IP del cliente. X-Forwarded-For solo se lee cuando el
// peer es un proxy confiable, recorriéndolo de derecha a izquierda hasta el
// primer hop no confiable.
func (p ProxyPolicy) ClientIP(r *http.Request) string {
	peer := remoteHost(r)
	if len(p.Trusted) == 0 || !p.trusted(peer) {
		return peer
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !p.trusted(hop) {
			return hop
		}
	}
	return peer
}

// ClientIP es la IP del peer, sin confiar en headers.
func ClientIP(r *http.Request) string {
	return ProxyPolicy{}.ClientIP(r)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
