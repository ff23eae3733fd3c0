package syslog

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	// keep test output readable; individual tests swap in their own loggers
	SetInternalLogger(zerolog.Nop())
}

const testHost = "127.0.0.1"

// testServer is an in-process syslog collector that reads newline terminated
// frames from every connection and pushes them, without the terminator, into
// messageCh.
type testServer struct {
	listener  net.Listener
	messageCh chan string
	port      int

	mu    sync.Mutex
	conns []net.Conn
	nConn int

	shutdownCh chan struct{}
}

func newTestServer() (*testServer, error) {
	l, err := net.Listen("tcp", testHost+":0")
	if err != nil {
		return nil, err
	}
	s := &testServer{
		listener:   l,
		messageCh:  make(chan string, 128),
		port:       l.Addr().(*net.TCPAddr).Port,
		shutdownCh: make(chan struct{}),
	}

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				select {
				case <-s.shutdownCh:
					return
				default:
					continue
				}
			}
			s.mu.Lock()
			s.conns = append(s.conns, conn)
			s.nConn++
			s.mu.Unlock()
			go s.handle(conn)
		}
	}()
	return s, nil
}

func (s *testServer) handle(conn net.Conn) {
	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			break
		}
		s.messageCh <- strings.TrimSuffix(line, "\r\n")
	}
	conn.Close()
}

// dropConnections closes every accepted connection from the server side.
func (s *testServer) dropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		c.Close()
	}
	s.conns = nil
}

// connections returns how many connections have been accepted.
func (s *testServer) connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nConn
}

func (s *testServer) Shutdown() {
	close(s.shutdownCh)
	s.listener.Close()
	s.dropConnections()
}

// next waits up to a second for the next received frame.
func (s *testServer) next() (string, bool) {
	timeout, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	select {
	case <-timeout.Done():
		return "", false
	case m := <-s.messageCh:
		return m, true
	}
}

// testSink records messages rather than send them to a server. It implements
// the Handler's Sink interface.
type testSink struct {
	mu   sync.Mutex
	msgs []Message
}

func (s *testSink) Send(m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, m.Clone())
	return nil
}

func (s *testSink) last() Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msgs[len(s.msgs)-1]
}

func (s *testSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

// testTime is 2013-12-05T10:30:05Z.
var testTime = time.Date(2013, time.December, 5, 10, 30, 5, 0, time.UTC)

func testMessage() Message {
	return NewMessage("a syslog message").
		WithTimestamp(testTime).
		WithHostname("myserver.example.com").
		WithAppName("my_app")
}
