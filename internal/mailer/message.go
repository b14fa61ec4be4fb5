package mailer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/enotify/enotify/internal/config"
	"github.com/enotify/enotify/internal/logging"
)

// ErrAttachmentUnreadable marks an attachment that passed the existence
// check but could not be read. Once a named file was promised, the build
// cannot be silently satisfied without it.
var ErrAttachmentUnreadable = errors.New("attachment unreadable")

// readFile is swapped out in tests to simulate a file turning unreadable
// between the existence check and the read.
var readFile = os.ReadFile

// Part is one MIME attachment of an outgoing message.
type Part struct {
	Filename string
	Major    string
	Minor    string
	Data     []byte
}

// OutgoingMessage is a fully assembled, sendable e-mail.
type OutgoingMessage struct {
	From    string
	To      []string
	Subject string
	Body    string
	Parts   []Part
}

// Builder assembles outgoing messages from an explicit configuration value.
type Builder struct {
	cfg config.Config
	log *logging.Logger
}

// NewBuilder creates a message builder.
func NewBuilder(cfg config.Config, log *logging.Logger) *Builder {
	return &Builder{cfg: cfg, log: log}
}

// Build assembles a message. Recipients resolve in order: the explicit list,
// then the destlist file (one address per line), then the configured default
// receiver. The caller guarantees at most one of to/destListFile is set.
func (b *Builder) Build(subject, body string, to []string, destListFile string, attachPatterns []string) (*OutgoingMessage, error) {
	recipients, err := b.resolveRecipients(to, destListFile)
	if err != nil {
		return nil, err
	}

	msg := &OutgoingMessage{
		From:    b.cfg.Sender,
		To:      recipients,
		Subject: subject,
		Body:    body,
	}

	// No attachment patterns means no MIME parts at all; return as-is.
	if len(attachPatterns) == 0 {
		return msg, nil
	}

	for _, attachment := range CollectAttachments(attachPatterns, b.log) {
		data, err := readFile(attachment.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrAttachmentUnreadable, attachment.Path, err)
		}
		msg.Parts = append(msg.Parts, Part{
			Filename: filepath.Base(attachment.Path),
			Major:    attachment.Major,
			Minor:    attachment.Minor,
			Data:     data,
		})
		b.log.Debug("Attached file to the mail", map[string]interface{}{
			"path": attachment.Path,
			"type": attachment.Major + "/" + attachment.Minor,
		})
	}

	return msg, nil
}

func (b *Builder) resolveRecipients(to []string, destListFile string) ([]string, error) {
	if len(to) > 0 {
		return to, nil
	}

	if destListFile != "" {
		data, err := os.ReadFile(destListFile)
		if err != nil {
			return nil, fmt.Errorf("reading receiver list %s: %w", destListFile, err)
		}
		var recipients []string
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				recipients = append(recipients, line)
			}
		}
		if len(recipients) == 0 {
			return nil, fmt.Errorf("receiver list %s contains no addresses", destListFile)
		}
		return recipients, nil
	}

	if b.cfg.Receiver == "" {
		return nil, errors.New("no receiver given and no default receiver configured")
	}
	b.log.Info("No receiver was fed to the command, defaulting to the configured receiver", map[string]interface{}{
		"receiver": b.cfg.Receiver,
	})
	return []string{b.cfg.Receiver}, nil
}
