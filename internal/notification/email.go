package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// implicitTLSPort is the SMTPS port. Every other port uses STARTTLS when offered.
const implicitTLSPort = 465

// EmailConfig holds SMTP settings.
type EmailConfig struct {
	Host     string   `yaml:"host" json:"host" envconfig:"HOST" validate:"required,hostname" jsonschema:"title=SMTP Host,default=smtp.gmail.com"`
	Port     int      `yaml:"port" json:"port" envconfig:"PORT" validate:"required,min=1,max=65535" jsonschema:"title=SMTP Port,default=587"`
	Username string   `yaml:"username" json:"username,omitempty" envconfig:"USERNAME" jsonschema:"title=Username,description=Defaults to the sender address"`
	Password string   `yaml:"password" json:"password,omitempty" envconfig:"PASSWORD" jsonschema:"title=Password"`
	From     string   `yaml:"from" json:"from" envconfig:"FROM" validate:"required,email" jsonschema:"title=Sender"`
	To       []string `yaml:"to" json:"to" envconfig:"TO" validate:"required,min=1,dive,email" jsonschema:"title=Recipients"`
}

type mailSender func(config EmailConfig, msg []byte) error

// EmailNotifier sends events as plain-text mail.
type EmailNotifier struct {
	config EmailConfig
	send   mailSender
	now    func() time.Time
}

func NewEmailNotifier(config EmailConfig) (*EmailNotifier, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid email configuration", err)
	}

	if config.Username == "" && config.Password != "" {
		config.Username = config.From
	}

	return &EmailNotifier{
		config: config,
		send:   sendSMTP,
		now:    time.Now,
	}, nil
}

func (n *EmailNotifier) Notify(_ context.Context, event Event) error {
	msg := buildMessage(n.config.From, n.config.To, event.Subject(), event.Body(), n.now())

	if err := n.send(n.config, msg); err != nil {
		return errors.Wrapf(errors.ErrCodeNotificationFailed, err, "email: send to %s", strings.Join(n.config.To, ", "))
	}

	return nil
}

func buildMessage(from string, to []string, subject, body string, date time.Time) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", date.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))

	return buf.Bytes()
}

func sendSMTP(config EmailConfig, msg []byte) error {
	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))

	var auth smtp.Auth
	if config.Username != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	if config.Port != implicitTLSPort {
		// SendMail upgrades with STARTTLS when the server offers it.
		return smtp.SendMail(addr, auth, config.From, config.To, msg)
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: config.Host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, config.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(config.From); err != nil {
		return err
	}

	for _, rcpt := range config.To {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err := w.Write(msg); err != nil {
		return err
	}

	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}
