package syslog

import (
	"errors"
	"net"
	"testing"
	"time"
)

func TestUDPSender_OneDatagramPerMessage(t *testing.T) {
	pc, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP(testHost)})
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer pc.Close()

	s, err := NewUDPSender(testHost, &SenderOptions{
		Network:  "udp",
		Port:     pc.LocalAddr().(*net.UDPAddr).Port,
		Format:   RFC5424,
		Encoding: &EncoderOptions{Location: time.UTC},
	})
	if err != nil {
		t.Fatalf("failed to create UDPSender: %v", err)
	}
	defer s.Close()

	bodies := []string{"first", "second"}
	for _, b := range bodies {
		if err := s.Send(testMessage().WithMsg(b)); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	buf := make([]byte, 2048)
	for _, b := range bodies {
		pc.SetReadDeadline(time.Now().Add(time.Second))
		n, _, err := pc.ReadFromUDP(buf)
		if err != nil {
			t.Fatalf("failed to read datagram: %v", err)
		}
		expect := "<14>1 2013-12-05T10:30:05.000Z myserver.example.com my_app - - - " + b
		if got := string(buf[:n]); got != expect {
			t.Fatalf("\nexpected: %q\nreceived: %q", expect, got)
		}
	}

	if st := s.Stats(); st.SendCount != 2 || st.SendErrorCount != 0 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestUDPSender_Closed(t *testing.T) {
	s, err := NewUDPSender(testHost, &SenderOptions{Network: "udp"})
	if err != nil {
		t.Fatalf("failed to create UDPSender: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if err := s.SendString("x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if st := s.Stats(); st.SendCount != 1 || st.SendErrorCount != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestNewSender_SelectsTransport(t *testing.T) {
	s, err := NewSender(testHost, &SenderOptions{Network: "udp"})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, ok := s.(*UDPSender); !ok {
		t.Fatalf("expected *UDPSender, got %T", s)
	}

	s2, err := NewSender(testHost, &SenderOptions{Network: "tls"})
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if _, ok := s2.(*TCPSender); !ok {
		t.Fatalf("expected *TCPSender, got %T", s2)
	}

	s3, err := NewSender(testHost, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s3.Close()
	if _, ok := s3.(*TCPSender); !ok {
		t.Fatalf("expected *TCPSender by default, got %T", s3)
	}
}
