/*
Package syslog provides a syslog client stack in Go, including:

  - `syslog.Message` - an immutable-by-value syslog message with validated
    structured data
  - `syslog.Encoder` - renders messages as RFC 3164, RFC 5424 or RFC 5425
    (octet-counted) frames into pooled buffers
  - `syslog.TCPSender` - delivers messages over one TCP or TLS connection
    that is health-checked, re-established on failure and on server address
    changes, and retried a bounded number of times
  - `syslog.UDPSender` - delivers one message per datagram
  - `syslog.Handler` - adapts log/slog records to syslog messages
  - `syslog.TTLCache` - a lazily refreshed value shared across goroutines,
    used for the server address and the local hostname

Examples of efficiency optimizations:

  - shared encoders/buffers, pooled per format
  - a message is encoded once per Send, no matter how many attempts are made
  - DNS lookups and hostname lookups are cached, and cache hits are lock-free
*/
package syslog
