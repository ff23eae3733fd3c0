package syslog

import (
	"fmt"
	"net"
	"net/netip"
	"sync/atomic"
)

// UDPSender sends each syslog message as a single datagram, without a
// terminator. Datagrams are fire and forget, so failed sends are not retried.
// A UDPSender is safe for concurrent use.
type UDPSender struct {
	opts *SenderOptions
	host string
	pool *EncoderPool
	addr *TTLCache[netip.Addr]

	conn   *net.UDPConn
	closed atomic.Bool

	stats counters
}

// NewUDPSender creates a UDPSender for the syslog server at host. An empty
// host means "localhost".
func NewUDPSender(host string, opts *SenderOptions) (*UDPSender, error) {
	host, opts, err := resolveSenderOptions(host, opts)
	if err != nil {
		return nil, err
	}

	// unconnected, so each datagram can follow a change of server address
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open UDP socket: %w", err)
	}

	s := &UDPSender{
		opts: opts,
		host: host,
		pool: NewEncoderPool(opts.encoderOptions()),
		addr: newAddressCache(host, opts),
		conn: conn,
	}
	s.debug("starting UDPSender: host: %s: port: %d: format: %s", host, opts.Port, opts.Format)
	return s, nil
}

// Send encodes m and writes it to the server in one datagram.
func (s *UDPSender) Send(m Message) error {
	defer s.stats.track()()

	err := s.send(m)
	if err != nil {
		s.stats.sendErrors.Add(1)
	}
	return err
}

// SendString sends body with the default facility and severity.
func (s *UDPSender) SendString(body string) error {
	return s.Send(defaultMessage(body, s.opts))
}

func (s *UDPSender) send(m Message) error {
	if s.closed.Load() {
		return &Error{Kind: KindClosed, Op: "Send"}
	}

	enc := s.pool.Get()
	defer enc.Free()
	if err := enc.EncodeMessage(prepare(m, s.opts)); err != nil {
		return err
	}

	addr, err := s.addr.Get()
	if err != nil {
		s.stats.tryErrors.Add(1)
		return &Error{Kind: KindConnectFailure, Op: "resolve " + s.host, Retryable: true, Err: err}
	}

	dst := netip.AddrPortFrom(addr, uint16(s.opts.Port))
	if _, err := s.conn.WriteToUDPAddrPort(enc.Bytes(), dst); err != nil {
		s.stats.tryErrors.Add(1)
		if s.closed.Load() {
			return &Error{Kind: KindClosed, Op: "Send"}
		}
		s.debug("failed to write datagram to %s: %v", dst, err)
		return &Error{Kind: KindSendFailure, Op: "write " + dst.String(), Retryable: true, Err: err}
	}
	return nil
}

// Close closes the UDP socket. Any later Send fails with an error of kind
// KindClosed. Close is idempotent.
func (s *UDPSender) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.debug("closing UDPSender")
	return s.conn.Close()
}

// Stats returns a snapshot of the send counters.
func (s *UDPSender) Stats() Stats {
	return s.stats.snapshot()
}

func (s *UDPSender) debug(format string, args ...any) {
	if !s.opts.Verbose {
		return
	}
	InternalLogger().Debug().Str("sender", "udp").Msgf(format, args...)
}
