package syslog

import (
	"bufio"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"golang.org/x/net/proxy"
)

const (
	keepAlivePeriod = time.Second * 15

	// how long the health check waits for the peer to report EOF
	healthProbeWindow = time.Microsecond * 200
)

// defaultResolver resolves host with net.DefaultResolver, preferring an IPv4
// address. Literal IP addresses are returned without a lookup.
func defaultResolver(ctx context.Context, host string) (netip.Addr, error) {
	if a, err := netip.ParseAddr(host); err == nil {
		return a.Unmap(), nil
	}
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return netip.Addr{}, err
	}
	if len(addrs) == 0 {
		return netip.Addr{}, fmt.Errorf("no addresses found for host %s", host)
	}
	for _, a := range addrs {
		if a.Unmap().Is4() {
			return a.Unmap(), nil
		}
	}
	return addrs[0], nil
}

// newAddressCache caches the resolved address of host for the AddressTTL.
func newAddressCache(host string, opts *SenderOptions) *TTLCache[netip.Addr] {
	resolve := opts.Resolver
	if resolve == nil {
		resolve = defaultResolver
	}
	return NewTTLCache(opts.AddressTTL, func() (netip.Addr, error) {
		ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
		defer cancel()
		a, err := resolve(ctx, host)
		if err != nil {
			return netip.Addr{}, fmt.Errorf("failed to resolve syslog server host %s: %w", host, err)
		}
		return a, nil
	})
}

// dialFunc returns the function used to open raw stream connections: the
// configured Dial, a SOCKS5 proxy dialer, or a plain net.Dialer.
func dialFunc(opts *SenderOptions) (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	if opts.Dial != nil {
		return opts.Dial, nil
	}

	d := &net.Dialer{KeepAlive: keepAlivePeriod}
	if len(opts.ProxyAddr) == 0 {
		return d.DialContext, nil
	}

	var auth *proxy.Auth
	if len(opts.ProxyUser) > 0 {
		auth = &proxy.Auth{User: opts.ProxyUser, Password: opts.ProxyPassword}
	}
	pd, err := proxy.SOCKS5("tcp", opts.ProxyAddr, auth, d)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer for proxy %s: %w", opts.ProxyAddr, err)
	}
	if cd, ok := pd.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return pd.Dial(network, addr)
	}, nil
}

// tlsConfig returns the TLS client configuration for host.
func tlsConfig(host string, opts *SenderOptions) *tls.Config {
	var cfg *tls.Config
	if opts.TLSConfig != nil {
		cfg = opts.TLSConfig.Clone()
	} else {
		cfg = &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify}
	}
	if len(cfg.ServerName) == 0 {
		cfg.ServerName = host
	}
	return cfg
}

// LoadRootCAs reads a PEM bundle for use as TLSConfig.RootCAs.
func LoadRootCAs(pem []byte) (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("no certificates found in PEM data")
	}
	return pool, nil
}

// serverConn is a live stream connection to the syslog server, bound to the
// address it was dialed with.
type serverConn struct {
	net.Conn
	w    *bufio.Writer
	addr netip.Addr
}

// healthy probes the connection without blocking the send path for more than
// healthProbeWindow. The syslog server never writes to us, so a read that
// times out means the connection is open, while EOF or a reset means the peer
// has gone away.
func (c *serverConn) healthy() bool {
	if err := c.SetReadDeadline(time.Now().Add(healthProbeWindow)); err != nil {
		return false
	}
	defer c.SetReadDeadline(time.Time{})

	var b [64]byte
	_, err := c.Read(b[:])
	if err == nil {
		// unsolicited bytes from the server; discard them
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
