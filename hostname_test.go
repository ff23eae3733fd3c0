package syslog

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLocalHostnameCache_FailureIsNotCached(t *testing.T) {
	orig := osHostname
	defer func() { osHostname = orig }()

	lookups := 0
	name, err := "", errors.New("no name")
	osHostname = func() (string, error) {
		lookups++
		return name, err
	}

	c := NewLocalHostnameCache(time.Minute)
	if _, gotErr := c.Get(); !errors.Is(gotErr, ErrCacheRefreshFailure) {
		t.Fatalf("expected a cache refresh failure, got %v", gotErr)
	}

	// the failure renders as the nil value
	enc := NewEncoder(&EncoderOptions{Format: RFC5424, Hostname: c})
	if err := enc.EncodeMessage(NewMessage("x").WithTimestamp(testTime)); err != nil {
		t.Fatal(err)
	}
	if got := enc.String(); !strings.HasPrefix(got, "<14>1 2013-12-05T10:30:05.000Z - ") {
		t.Fatalf("expected nil hostname, got %q", got)
	}

	name, err = "myserver", nil
	h, gotErr := c.Get()
	if gotErr != nil || h != "myserver" {
		t.Fatalf("expected the next lookup to succeed, got %q, %v", h, gotErr)
	}
	if lookups != 3 {
		t.Fatalf("expected 3 lookups, got %d", lookups)
	}

	if _, gotErr := c.Get(); gotErr != nil || lookups != 3 {
		t.Fatalf("expected a cached hit, got %v after %d lookups", gotErr, lookups)
	}
}

func TestLocalHostnameCache_EmptyName(t *testing.T) {
	orig := osHostname
	defer func() { osHostname = orig }()
	osHostname = func() (string, error) { return "", nil }

	if _, err := NewLocalHostnameCache(time.Minute).Get(); err == nil {
		t.Fatal("expected an error for an empty hostname")
	}
}
