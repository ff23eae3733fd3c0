// Command syslogsend reads messages from its arguments or stdin and sends
// them to a syslog server.
//
//	echo "disk full" | syslogsend --host logs.example.com --format rfc5424
//	syslogsend --input json < records.jsonl
//
// Every flag can also be set with a SYSLOGSEND_ environment variable (for
// example SYSLOGSEND_HOST) or in the file named by --config.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bitdabbler/syslog"
)

const envPrefix = "SYSLOGSEND"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "syslogsend [message...]",
		Short: "syslogsend sends messages to a syslog server",
		Long: `syslogsend sends messages to a syslog server over TCP, TLS or UDP, in
RFC 3164, RFC 5424 or RFC 5425 format. The arguments, joined by spaces, are
sent as one message. Without arguments, records are read from stdin as text
lines, a JSON stream or a msgpack stream.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(v)
			if err != nil {
				return err
			}
			initLogger(cfg, cmd.ErrOrStderr())
			return run(cmd.Context(), cfg, args, cmd.InOrStdin())
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("host", "localhost", "syslog server host")
	flags.Int("port", 514, "syslog server port")
	flags.String("network", "tcp", "transport: tcp, tls or udp")
	flags.String("format", "rfc3164", "message format: rfc3164, rfc5424 or rfc5425")
	flags.String("input", "text", "stdin record format: text, json or msgpack")
	flags.String("facility", "user", "default facility")
	flags.String("severity", "informational", "default severity")
	flags.String("hostname", "", "default HOSTNAME header (default: local hostname)")
	flags.String("app-name", "", "default APP-NAME header")
	flags.String("proc-id", "", "default PROCID header")
	flags.String("msg-id", "", "default MSGID header")
	flags.Duration("dial-timeout", 500*time.Millisecond, "connect timeout, including DNS and the TLS handshake")
	flags.Duration("write-timeout", 10*time.Second, "per message write timeout")
	flags.Int("max-retry", 2, "retries of a failed send; negative disables retries")
	flags.Duration("retry-backoff", 0, "limit of the exponential pause between retries")
	flags.Duration("address-ttl", 30*time.Second, "how long the resolved server address is cached")
	flags.Bool("space-pad-day", false, "space pad the RFC 3164 day of month instead of zero padding it")
	flags.Bool("utc", false, "render RFC 3164 timestamps in UTC")
	flags.Bool("insecure", false, "skip TLS certificate verification")
	flags.String("ca-file", "", "PEM file with the CA certificates trusted for TLS")
	flags.String("proxy", "", "SOCKS5 proxy host:port")
	flags.String("proxy-user", "", "SOCKS5 proxy user")
	flags.String("proxy-password", "", "SOCKS5 proxy password")
	flags.String("log-level", "info", "log level of syslogsend itself")
	flags.Bool("log-pretty", true, "human readable logs instead of JSON")
	flags.Bool("verbose", false, "debug logs from the syslog sender")

	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

func loadConfig(v *viper.Viper) error {
	file := v.GetString("config")
	if len(file) == 0 {
		return nil
	}
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", file, err)
	}
	return nil
}

type config struct {
	Host     string
	Input    string
	Defaults defaults
	Sender   *syslog.SenderOptions

	LogLevel  string
	LogPretty bool
}

func configFrom(v *viper.Viper) (*config, error) {
	format, err := syslog.ParseFormat(v.GetString("format"))
	if err != nil {
		return nil, err
	}
	facility, err := syslog.ParseFacility(v.GetString("facility"))
	if err != nil {
		return nil, err
	}
	severity, err := syslog.ParseSeverity(v.GetString("severity"))
	if err != nil {
		return nil, err
	}

	enc := syslog.DefaultEncoderOptions()
	enc.SpacePadDay = v.GetBool("space-pad-day")
	if v.GetBool("utc") {
		enc.Location = time.UTC
	}

	opts := &syslog.SenderOptions{
		Network:            v.GetString("network"),
		Port:               v.GetInt("port"),
		Format:             format,
		Encoding:           enc,
		DialTimeout:        v.GetDuration("dial-timeout"),
		WriteTimeout:       v.GetDuration("write-timeout"),
		MaxRetryCount:      v.GetInt("max-retry"),
		RetryBackoffLimit:  v.GetDuration("retry-backoff"),
		AddressTTL:         v.GetDuration("address-ttl"),
		InsecureSkipVerify: v.GetBool("insecure"),
		ProxyAddr:          v.GetString("proxy"),
		ProxyUser:          v.GetString("proxy-user"),
		ProxyPassword:      v.GetString("proxy-password"),
		DefaultFacility:    &facility,
		DefaultSeverity:    &severity,
		Verbose:            v.GetBool("verbose"),
	}

	if ca := v.GetString("ca-file"); len(ca) > 0 {
		pem, err := os.ReadFile(ca)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		roots, err := syslog.LoadRootCAs(pem)
		if err != nil {
			return nil, fmt.Errorf("failed to load CA file %s: %w", ca, err)
		}
		opts.TLSConfig = tlsConfigWithRoots(roots, opts.InsecureSkipVerify)
	}

	return &config{
		Host:  v.GetString("host"),
		Input: v.GetString("input"),
		Defaults: defaults{
			Facility: facility,
			Severity: severity,
			Hostname: v.GetString("hostname"),
			AppName:  v.GetString("app-name"),
			ProcID:   v.GetString("proc-id"),
			MsgID:    v.GetString("msg-id"),
		},
		Sender:    opts,
		LogLevel:  v.GetString("log-level"),
		LogPretty: v.GetBool("log-pretty"),
	}, nil
}

func run(ctx context.Context, cfg *config, args []string, stdin io.Reader) error {
	sender, err := syslog.NewSender(cfg.Host, cfg.Sender)
	if err != nil {
		return err
	}
	defer func() {
		if err := sender.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close sender")
		}
		log.Info().Object("stats", sender.Stats()).Msg("done")
	}()

	var r reader
	if len(args) > 0 {
		r = &textReader{s: newLineScanner(strings.Join(args, " ")), d: cfg.Defaults}
	} else {
		r, err = newReader(cfg.Input, stdin, cfg.Defaults)
		if err != nil {
			return err
		}
	}

	sent, failed := send(ctx, sender, r)
	log.Debug().Int("sent", sent).Int("failed", failed).Msg("input drained")
	if failed > 0 {
		return fmt.Errorf("%d of %d messages failed", failed, sent+failed)
	}
	return ctx.Err()
}

// send drains r into sender until the input ends or ctx is done. Records that
// fail to decode or send are logged and counted.
func send(ctx context.Context, sender syslog.Sender, r reader) (sent, failed int) {
	for ctx.Err() == nil {
		m, err := r.Next()
		if errors.Is(err, io.EOF) {
			return sent, failed
		}
		if errors.Is(err, errBrokenStream) {
			failed++
			log.Error().Err(err).Msg("stopping at unreadable input")
			return sent, failed
		}
		if err != nil {
			failed++
			log.Error().Err(err).Msg("skipping input record")
			continue
		}
		if err := sender.Send(m); err != nil {
			failed++
			log.Error().Err(err).Bool("retryable", syslog.IsRetryable(err)).Msg("failed to send message")
			continue
		}
		sent++
	}
	return sent, failed
}

// initLogger sets up the global zerolog logger and routes the library's
// internal logs through it.
func initLogger(cfg *config, w io.Writer) {
	level := zerolog.InfoLevel
	if l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.LogLevel))); err == nil {
		level = l
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogPretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}

	log.Logger = zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", "syslogsend").
		Logger()

	syslog.SetInternalLogger(log.Logger.With().Str("component", "syslog").Logger())
}

func tlsConfigWithRoots(roots *x509.CertPool, insecure bool) *tls.Config {
	return &tls.Config{RootCAs: roots, InsecureSkipVerify: insecure}
}
