package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"
)

// ErrSMTPDisabled is returned by an SMTP mailer whose configuration has delivery off.
var ErrSMTPDisabled = errors.New("smtp: delivery disabled")

// Message is one outbound email. When both Body and HTML are set the message is sent
// as multipart/alternative.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
	HTML    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSettings configure NewSMTPMailer.
type SMTPSettings struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
	Timeout  time.Duration
}

// envelope is a validated sender and recipient list.
type envelope struct {
	from       *mail.Address
	recipients []string
}

type smtpClient interface {
	Mail(string) error
	Rcpt(string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
	StartTLS(*tls.Config) error
	Auth(smtp.Auth) error
	Extension(string) (bool, string)
}

type smtpSession func(ctx context.Context, cfg SMTPSettings) (smtpClient, error)

type smtpMailer struct {
	cfg  SMTPSettings
	open smtpSession
	now  func() time.Time
}

// NewSMTPMailer checks cfg and returns a Mailer that opens one SMTP session per message.
func NewSMTPMailer(cfg SMTPSettings) (Mailer, error) {
	if cfg.Enabled {
		if strings.TrimSpace(cfg.Host) == "" {
			return nil, errors.New("smtp: host is required when enabled")
		}
		if cfg.Port <= 0 {
			return nil, errors.New("smtp: port is required when enabled")
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &smtpMailer{cfg: cfg, open: openSession, now: time.Now}, nil
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if !m.cfg.Enabled {
		return ErrSMTPDisabled
	}

	env, err := newEnvelope(msg, m.cfg.From)
	if err != nil {
		return err
	}
	payload, err := buildMessage(env, msg, m.now())
	if err != nil {
		return err
	}

	client, err := m.open(ctx, m.cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Mail(env.from.Address); err != nil {
		return fmt.Errorf("smtp: mail from: %w", err)
	}
	for _, rcpt := range env.recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp: rcpt to %s: %w", rcpt, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp: data: %w", err)
	}
	if _, err := wc.Write(payload); err != nil {
		_ = wc.Close()
		return fmt.Errorf("smtp: write message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp: finish message: %w", err)
	}
	return client.Quit()
}

func newEnvelope(msg Message, fallbackFrom string) (envelope, error) {
	recipients := uniqueAddresses(msg.To)
	if len(recipients) == 0 {
		return envelope{}, errors.New("smtp: at least one recipient is required")
	}
	for _, rcpt := range recipients {
		if _, err := mail.ParseAddress(rcpt); err != nil {
			return envelope{}, fmt.Errorf("smtp: invalid recipient address %q: %w", rcpt, err)
		}
	}

	from := strings.TrimSpace(msg.From)
	if from == "" {
		from = strings.TrimSpace(fallbackFrom)
	}
	if from == "" {
		return envelope{}, errors.New("smtp: sender address is required")
	}
	sender, err := mail.ParseAddress(from)
	if err != nil {
		return envelope{}, fmt.Errorf("smtp: invalid from address: %w", err)
	}
	return envelope{from: sender, recipients: recipients}, nil
}

// openSession dials the server, upgrades to TLS when offered and authenticates.
func openSession(ctx context.Context, cfg SMTPSettings) (smtpClient, error) {
	address := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	tlsConfig := &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}

	var (
		conn net.Conn
		err  error
	)
	if cfg.UseTLS {
		dialer := &tls.Dialer{NetDialer: &net.Dialer{Timeout: cfg.Timeout}, Config: tlsConfig}
		conn, err = dialer.DialContext(ctx, "tcp", address)
	} else {
		dialer := &net.Dialer{Timeout: cfg.Timeout}
		conn, err = dialer.DialContext(ctx, "tcp", address)
	}
	if err != nil {
		return nil, fmt.Errorf("smtp: dial %s: %w", address, err)
	}
	_ = conn.SetDeadline(time.Now().Add(cfg.Timeout))

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smtp: handshake: %w", err)
	}

	if !cfg.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(tlsConfig); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("smtp: start tls: %w", err)
			}
		}
	}

	if strings.TrimSpace(cfg.Username) != "" {
		auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
		if err := client.Auth(auth); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("smtp: auth: %w", err)
		}
	}
	return client, nil
}

// buildMessage renders headers and body. HTML alone is sent as text/html, Body alone
// as text/plain, both as multipart/alternative with the plain part first.
func buildMessage(env envelope, msg Message, at time.Time) ([]byte, error) {
	var buf bytes.Buffer

	header := textproto.MIMEHeader{}
	header.Set("From", env.from.String())
	header.Set("To", strings.Join(env.recipients, ", "))
	header.Set("Subject", mime.QEncoding.Encode("utf-8", stripLineBreaks(msg.Subject)))
	header.Set("Date", at.Format(time.RFC1123Z))
	header.Set("MIME-Version", "1.0")

	text := strings.TrimSpace(msg.Body) != ""
	html := strings.TrimSpace(msg.HTML) != ""

	if text && html {
		parts := multipart.NewWriter(&buf)
		header.Set("Content-Type", mime.FormatMediaType("multipart/alternative", map[string]string{"boundary": parts.Boundary()}))
		writeHeader(&buf, header)

		if err := writePart(parts, "text/plain", msg.Body); err != nil {
			return nil, err
		}
		if err := writePart(parts, "text/html", msg.HTML); err != nil {
			return nil, err
		}
		if err := parts.Close(); err != nil {
			return nil, fmt.Errorf("smtp: close multipart: %w", err)
		}
		return buf.Bytes(), nil
	}

	contentType, body := "text/plain", msg.Body
	if html {
		contentType, body = "text/html", msg.HTML
	}
	header.Set("Content-Type", contentType+"; charset=UTF-8")
	header.Set("Content-Transfer-Encoding", "quoted-printable")
	writeHeader(&buf, header)
	if err := writeQuoted(&buf, body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePart(parts *multipart.Writer, contentType, body string) error {
	part, err := parts.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType + "; charset=UTF-8"},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return fmt.Errorf("smtp: create %s part: %w", contentType, err)
	}
	return writeQuoted(part, body)
}

func writeQuoted(w io.Writer, body string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := io.WriteString(qp, body); err != nil {
		return fmt.Errorf("smtp: encode body: %w", err)
	}
	return qp.Close()
}

// writeHeader emits headers in a stable order so messages are reproducible in tests.
func writeHeader(buf *bytes.Buffer, header textproto.MIMEHeader) {
	for _, key := range []string{"From", "To", "Subject", "Date", "MIME-Version", "Content-Type", "Content-Transfer-Encoding"} {
		if value := header.Get(key); value != "" {
			fmt.Fprintf(buf, "%s: %s\r\n", key, value)
		}
	}
	buf.WriteString("\r\n")
}

func stripLineBreaks(value string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
}

func uniqueAddresses(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if _, dup := seen[strings.ToLower(addr)]; dup {
			continue
		}
		seen[strings.ToLower(addr)] = struct{}{}
		result = append(result, addr)
	}
	return result
}
