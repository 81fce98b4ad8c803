package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/localprint/bridge/internal/domain/shared"
	"github.com/localprint/bridge/internal/interfaces/http/dto"
)

// LocalOnlyConfig holds configuration for the local-origin middleware.
type LocalOnlyConfig struct {
	// InterfaceAddrs lists the host's own interface addresses. Defaults to
	// net.InterfaceAddrs; tests inject a fixed list here.
	InterfaceAddrs func() ([]net.Addr, error)
}

// DefaultLocalOnlyConfig returns the default local-origin configuration.
func DefaultLocalOnlyConfig() LocalOnlyConfig {
	return LocalOnlyConfig{
		InterfaceAddrs: net.InterfaceAddrs,
	}
}

// LocalOnly returns a middleware that refuses requests from other machines.
func LocalOnly() gin.HandlerFunc {
	return LocalOnlyWithConfig(DefaultLocalOnlyConfig())
}

// LocalOnlyWithConfig refuses any request whose peer address is neither a
// loopback address nor one of the host's own interface addresses. This is
// the outermost gate: it runs before routing, so even /health and OPTIONS
// are refused for remote peers. A request that cannot be attributed to an
// address is refused too.
func LocalOnlyWithConfig(cfg LocalOnlyConfig) gin.HandlerFunc {
	lookup := cfg.InterfaceAddrs
	if lookup == nil {
		lookup = net.InterfaceAddrs
	}

	return func(c *gin.Context) {
		if !isLocalPeer(c.Request.RemoteAddr, lookup) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(shared.ErrUnauthorized.Message))
			return
		}
		c.Next()
	}
}

// isLocalPeer reports whether remoteAddr belongs to this machine. Interface
// addresses are looked up per request so changes (VPN up, DHCP renew) take
// effect immediately; the bridge sees a handful of requests a minute, not
// thousands.
func isLocalPeer(remoteAddr string, lookup func() ([]net.Addr, error)) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		// Some listeners hand over a bare host with no port.
		host = remoteAddr
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}

	// IsLoopback sees through IPv4-mapped IPv6 (::ffff:127.0.0.1), as does
	// net.IP.Equal below.
	if ip.IsLoopback() {
		return true
	}

	addrs, err := lookup()
	if err != nil {
		return false
	}
	for _, addr := range addrs {
		var own net.IP
		switch v := addr.(type) {
		case *net.IPNet:
			own = v.IP
		case *net.IPAddr:
			own = v.IP
		}
		if own != nil && own.Equal(ip) {
			return true
		}
	}
	return false
}
