package syslog

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bitdabbler/backoff"
)

// State is the connection state of a TCPSender.
type State int32

const (
	StateDisconnected State = iota
	StateConnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// TCPSender sends syslog messages over a single TCP or TLS connection that is
// opened lazily, health-checked before every send, and re-established when it
// breaks or when the server host resolves to a new address. Failed sends are
// retried over a fresh connection up to MaxRetryCount times.
//
// Sends are serialized, so a TCPSender is safe for concurrent use.
type TCPSender struct {
	opts *SenderOptions
	host string
	pool *EncoderPool
	addr *TTLCache[netip.Addr]
	dial func(ctx context.Context, network, addr string) (net.Conn, error)

	mu    sync.Mutex
	conn  *serverConn
	state atomic.Int32

	stats counters
}

// NewTCPSender creates a TCPSender for the syslog server at host. An empty
// host means "localhost". Unless opts.EagerDial is set, no connection is made
// until the first Send.
func NewTCPSender(host string, opts *SenderOptions) (*TCPSender, error) {
	return NewTCPSenderContext(context.Background(), host, opts)
}

// NewTCPSenderContext is NewTCPSender with a Context that bounds the eager
// dial, if one is requested.
func NewTCPSenderContext(ctx context.Context, host string, opts *SenderOptions) (*TCPSender, error) {
	host, opts, err := resolveSenderOptions(host, opts)
	if err != nil {
		return nil, err
	}

	dial, err := dialFunc(opts)
	if err != nil {
		return nil, err
	}

	s := &TCPSender{
		opts: opts,
		host: host,
		pool: NewEncoderPool(opts.encoderOptions()),
		addr: newAddressCache(host, opts),
		dial: dial,
	}

	s.debug("starting TCPSender: %s", s)

	if opts.EagerDial {
		if err := s.Connect(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Connect establishes the server connection ahead of the first Send, trying
// up to MaxEagerDialTries times with exponential backoff between attempts. It
// is a no-op when a healthy connection already exists.
func (s *TCPSender) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() == StateClosed {
		return &Error{Kind: KindClosed, Op: "Connect"}
	}

	s.debug("attempting to connect to syslog server")

	b, err := backoff.New(
		backoff.WithInitialDelay(0),
		backoff.WithExponentialLimit(time.Second*20),
	)
	if err != nil {
		return err
	}

	maxAttempts := s.opts.MaxEagerDialTries
	i := 0
	for {
		i++
		err = s.ensureConnection()
		if err == nil {
			s.debug("successfully connected to syslog server")
			return nil
		}

		s.debug("failed to connect to syslog server on attempt %d: %v", i, err)

		if maxAttempts > 0 && i >= maxAttempts {
			break
		}
		if ctx.Err() != nil {
			return fmt.Errorf("failed to connect to syslog server: %w: %w", ctx.Err(), err)
		}

		b.Sleep()
	}

	return fmt.Errorf("failed to connect to syslog server; maxAttempts reached: %d: %w", maxAttempts, err)
}

// Send encodes m and writes it, followed by the Postfix, to the server.
//
// An empty AppName or Hostname is filled from DefaultAppName and
// DefaultHostname. A message with an unknown facility or severity is rejected
// without touching the connection. Connection and write failures are retried
// over a fresh connection; when every attempt fails the error of the last
// attempt is returned.
func (s *TCPSender) Send(m Message) error {
	defer s.stats.track()()

	err := s.send(m)
	if err != nil {
		s.stats.sendErrors.Add(1)
	}
	return err
}

// SendString sends body with the default facility and severity.
func (s *TCPSender) SendString(body string) error {
	return s.Send(defaultMessage(body, s.opts))
}

func (s *TCPSender) send(m Message) error {
	if s.State() == StateClosed {
		return &Error{Kind: KindClosed, Op: "Send"}
	}
	m = prepare(m, s.opts)

	enc := s.pool.Get()
	defer enc.Free()

	// encode once; retries resend the same bytes
	if err := enc.EncodeMessage(m); err != nil {
		return err
	}
	enc.WriteString(s.opts.Postfix)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State() == StateClosed {
		return &Error{Kind: KindClosed, Op: "Send"}
	}

	pause := func() {}
	if s.opts.RetryBackoffLimit > 0 && s.opts.MaxRetryCount > 0 {
		b, err := backoff.New(
			backoff.WithInitialDelay(0),
			backoff.WithExponentialLimit(s.opts.RetryBackoffLimit),
		)
		if err != nil {
			return err
		}
		pause = func() { b.Sleep() }
	}

	var err error
	for i := 0; i <= s.opts.MaxRetryCount; i++ {
		if i > 0 {
			pause()
		}

		err = s.trySend(enc.Bytes())
		if err == nil {
			return nil
		}

		s.stats.tryErrors.Add(1)
		s.debug("failed to send message: attempt %d of %d: %v", i+1, s.opts.MaxRetryCount+1, err)
		s.teardown()

		if !IsRetryable(err) {
			break
		}
	}
	return err
}

// trySend makes one attempt to write frame to a healthy connection bound to
// the current server address.
func (s *TCPSender) trySend(frame []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: KindSendFailure, Op: "Send", Retryable: true, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if err := s.ensureConnection(); err != nil {
		return err
	}

	c := s.conn
	if s.opts.WriteTimeout > 0 {
		if err := c.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout)); err != nil {
			return &Error{Kind: KindSendFailure, Op: "set write deadline", Retryable: true, Err: err}
		}
	}
	if _, err := c.w.Write(frame); err != nil {
		return &Error{Kind: KindSendFailure, Op: "write", Retryable: true, Err: err}
	}
	if err := c.w.Flush(); err != nil {
		return &Error{Kind: KindSendFailure, Op: "flush", Retryable: true, Err: err}
	}
	return nil
}

// ensureConnection leaves s.conn connected to the current server address.
// It must be called with s.mu held.
func (s *TCPSender) ensureConnection() error {
	addr, err := s.addr.Get()
	if err != nil {
		return &Error{Kind: KindConnectFailure, Op: "resolve " + s.host, Retryable: true, Err: err}
	}

	if s.conn != nil && s.conn.addr != addr {
		s.debug("syslog server %s moved from %s to %s; reconnecting", s.host, s.conn.addr, addr)
		s.teardown()
	}

	if s.conn != nil && !s.conn.healthy() {
		s.debug("broken connection detected; tearing down connection")
		s.teardown()
	}

	if s.conn == nil {
		c, err := s.connect(addr)
		if err != nil {
			return err
		}
		s.conn = c
		s.state.Store(int32(StateConnected))
	}
	return nil
}

func (s *TCPSender) connect(addr netip.Addr) (*serverConn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.DialTimeout)
	defer cancel()

	target := netip.AddrPortFrom(addr, uint16(s.opts.Port)).String()
	s.debug("dialing syslog server %s at %s over %s", s.host, target, s.opts.Network)

	raw, err := s.dial(ctx, "tcp", target)
	if err != nil {
		return nil, &Error{Kind: KindConnectFailure, Op: "dial " + target, Retryable: true, Err: err}
	}
	if tc, ok := raw.(*net.TCPConn); ok {
		tc.SetKeepAlive(true)
	}

	var nc net.Conn = raw
	if s.opts.Network == "tls" {
		tc := tls.Client(raw, tlsConfig(s.host, s.opts))
		if err := tc.HandshakeContext(ctx); err != nil {
			raw.Close()
			return nil, &Error{Kind: KindConnectFailure, Op: "tls handshake " + target, Retryable: true, Err: err}
		}
		nc = tc
	}

	return &serverConn{
		Conn: nc,
		w:    bufio.NewWriter(nc),
		addr: addr,
	}, nil
}

// teardown closes the current connection, if any, logging rather than
// returning any close error. It must be called with s.mu held.
func (s *TCPSender) teardown() {
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(); err != nil {
		s.reportError("error closing broken connection: %v", err)
	}
	s.conn = nil
	s.state.CompareAndSwap(int32(StateConnected), int32(StateDisconnected))
}

// Close closes the server connection. Any later Send fails with an error of
// kind KindClosed. Close is idempotent.
func (s *TCPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if State(s.state.Swap(int32(StateClosed))) == StateClosed {
		return nil
	}
	s.debug("closing TCPSender")

	if s.conn == nil {
		return nil
	}
	err := errors.Join(s.conn.w.Flush(), s.conn.Close())
	s.conn = nil
	return err
}

// State returns the current connection state.
func (s *TCPSender) State() State {
	return State(s.state.Load())
}

// Stats returns a snapshot of the send counters.
func (s *TCPSender) Stats() Stats {
	return s.stats.snapshot()
}

func (s *TCPSender) String() string {
	return fmt.Sprintf("TCPSender{host: %s, port: %d, network: %s, format: %s, state: %s}",
		s.host, s.opts.Port, s.opts.Network, s.opts.Format, s.State())
}

// internal logging helpers:
func (s *TCPSender) debug(format string, args ...any) {
	if !s.opts.Verbose {
		return
	}
	InternalLogger().Debug().Str("sender", "tcp").Msgf(format, args...)
}

func (s *TCPSender) reportError(format string, args ...any) {
	InternalLogger().Error().Str("sender", "tcp").Msgf(format, args...)
}
