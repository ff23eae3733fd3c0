package syslog

import (
	"errors"
	"os"
	"time"
)

const defaultHostnameTTL = time.Second * 10

// localHostname backs the HOSTNAME header of messages that do not set one.
// It is a convenience default; EncoderOptions.Hostname overrides it.
var localHostname = NewLocalHostnameCache(defaultHostnameTTL)

var osHostname = os.Hostname

// NewLocalHostnameCache returns a TTLCache around os.Hostname. A failed
// lookup is not cached; the encoder renders the nil value "-" for it and the
// next message tries again.
func NewLocalHostnameCache(ttl time.Duration) *TTLCache[string] {
	return NewTTLCache(ttl, func() (string, error) {
		h, err := osHostname()
		if err != nil {
			return "", err
		}
		if len(h) == 0 {
			return "", errors.New("empty hostname")
		}
		return h, nil
	})
}
