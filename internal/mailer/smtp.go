package mailer

import (
	"errors"
	"io"
	"net/textproto"

	"github.com/enotify/enotify/internal/config"
	"github.com/enotify/enotify/internal/logging"
	"gopkg.in/gomail.v2"
)

// AuthResult is the closed outcome set of an SMTP session. Login failure is
// an expected outcome callers branch on, not an exception to unwind.
type AuthResult int

const (
	AuthSuccess AuthResult = iota
	AuthLoginError
	AuthOtherError
)

func (r AuthResult) String() string {
	switch r {
	case AuthSuccess:
		return "success"
	case AuthLoginError:
		return "login error"
	case AuthOtherError:
		return "other error"
	default:
		return "unknown"
	}
}

// Transport authenticates against an SMTP server and optionally transmits a
// message. With testOnly set the session is closed right after a successful
// login, without sending anything.
type Transport interface {
	AuthAndSend(msg *OutgoingMessage, password string, testOnly bool) AuthResult
}

// SMTPTransport drives a TLS-secured SMTP session with the configured server
// using system trust roots. The dial performs the greeting, the STARTTLS
// upgrade, the repeated greeting over the secured channel and the login.
type SMTPTransport struct {
	server string
	port   int
	sender string
	log    *logging.Logger
}

// NewSMTPTransport creates a transport for the configured server.
func NewSMTPTransport(cfg config.Config, log *logging.Logger) *SMTPTransport {
	return &SMTPTransport{
		server: cfg.Server,
		port:   cfg.Port,
		sender: cfg.Sender,
		log:    log,
	}
}

// AuthAndSend implements Transport.
func (t *SMTPTransport) AuthAndSend(msg *OutgoingMessage, password string, testOnly bool) AuthResult {
	dialer := gomail.NewDialer(t.server, t.port, t.sender, password)
	// Port 465 is implicit TLS; everything else negotiates STARTTLS.
	dialer.SSL = t.port == 465

	t.log.Debug("Dialing SMTP server", map[string]interface{}{
		"server": t.server,
		"port":   t.port,
	})
	sender, err := dialer.Dial()
	if err != nil {
		return t.classify(err)
	}
	defer sender.Close()

	if testOnly {
		t.log.Debug("Test login succeeded, closing the session without sending")
		return AuthSuccess
	}

	t.log.Info("Sending the mail", map[string]interface{}{
		"subject":   msg.Subject,
		"receivers": len(msg.To),
	})
	if err := gomail.Send(sender, toGomail(msg)); err != nil {
		t.log.Error("An unexpected error occurred while sending the mail", map[string]interface{}{
			"error": err.Error(),
		})
		return AuthOtherError
	}
	return AuthSuccess
}

// classify maps a session error onto the AuthResult set. SMTP replies in the
// authentication-failure family mean the credentials were rejected and a new
// password may succeed; everything else is a session-level fault.
func (t *SMTPTransport) classify(err error) AuthResult {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 530, 534, 535:
			t.log.Error("Error during the login process, most probably the username/password combination was wrong", map[string]interface{}{
				"code": protoErr.Code,
			})
			return AuthLoginError
		}
	}
	t.log.Error("An unexpected error occurred during the SMTP session", map[string]interface{}{
		"error": err.Error(),
	})
	return AuthOtherError
}

// toGomail converts an assembled message into the wire representation.
func toGomail(msg *OutgoingMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	for _, part := range msg.Parts {
		data := part.Data
		m.Attach(part.Filename,
			gomail.SetHeader(map[string][]string{
				"Content-Type": {part.Major + "/" + part.Minor},
			}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		)
	}
	return m
}
