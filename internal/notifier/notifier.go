// Package notifier ties validation, authentication, detachment and the
// watch loop together into a single notification lifecycle.
package notifier

import (
	"errors"
	"fmt"

	"github.com/enotify/enotify/internal/config"
	"github.com/enotify/enotify/internal/credentials"
	"github.com/enotify/enotify/internal/logging"
	"github.com/enotify/enotify/internal/mailer"
	"github.com/enotify/enotify/internal/procwatch"
)

var (
	// ErrAuthExhausted reports that every allowed login attempt was
	// rejected.
	ErrAuthExhausted = errors.New("authentication failed too many times")

	// ErrAuthFatal reports a session failure that retrying a password
	// cannot fix (network, protocol, configuration).
	ErrAuthFatal = errors.New("smtp session failed")
)

// maxAuthAttempts bounds the password retry loop.
const maxAuthAttempts = 3

// WatchRequest describes one watch invocation. To and DestListFile are
// mutually exclusive; the CLI enforces that before the request is built.
type WatchRequest struct {
	PID            int32
	AttachPatterns []string
	To             []string
	DestListFile   string
}

// Orchestrator owns the watch lifecycle. The foreground half (Prepare)
// validates and proves credentials; the background half (RunWatch) drives
// the watcher and sends a notification per ended process.
type Orchestrator struct {
	// Watcher is exported so the poll interval can be tuned.
	Watcher *procwatch.Watcher

	cfg       config.Config
	transport mailer.Transport
	creds     credentials.Source
	log       *logging.Logger
}

// New creates an orchestrator over an explicit configuration value.
func New(cfg config.Config, transport mailer.Transport, creds credentials.Source, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		Watcher:   procwatch.New(log),
		cfg:       cfg,
		transport: transport,
		creds:     creds,
		log:       log,
	}
}

// Prepare runs the foreground half: confirm the target process is alive,
// then prove the credentials with test-only logins. A rejected login is
// retried with a freshly resolved password, up to the attempt bound; any
// other session failure aborts immediately. Returns the proven password for
// the detached watch task.
func (o *Orchestrator) Prepare(req WatchRequest) (string, error) {
	if !procwatch.Exists(req.PID) {
		return "", fmt.Errorf("%w: pid %d", procwatch.ErrProcessNotFound, req.PID)
	}

	for attempt := 1; attempt <= maxAuthAttempts; attempt++ {
		password, err := o.creds.Password()
		if err != nil {
			return "", fmt.Errorf("resolving password: %w", err)
		}

		switch o.transport.AuthAndSend(nil, password, true) {
		case mailer.AuthSuccess:
			return password, nil
		case mailer.AuthLoginError:
			o.log.Warn("The username/password combination was rejected", map[string]interface{}{
				"attempt": attempt,
				"of":      maxAuthAttempts,
			})
		case mailer.AuthOtherError:
			return "", ErrAuthFatal
		}
	}

	o.log.Warn("The username/password combination was failed too many times")
	return "", ErrAuthExhausted
}

// RunWatch runs the background half to completion: it pulls termination
// batches from the watcher and sends one notification per ended process.
// Once detached there is no caller to report to, so failures are logged with
// the pid and stage and the loop keeps going; the first error is returned
// when the watch-set empties.
func (o *Orchestrator) RunWatch(req WatchRequest, password string) error {
	batches, err := o.Watcher.Watch(req.PID)
	if err != nil {
		o.log.Error("Could not start watching the process", map[string]interface{}{
			"pid":   req.PID,
			"error": err.Error(),
		})
		return err
	}

	builder := mailer.NewBuilder(o.cfg, o.log)

	var firstErr error
	for batch := range batches {
		for _, snap := range batch {
			if err := o.notify(builder, req, snap, password); err != nil {
				o.log.Error("Failed to send the termination notification", map[string]interface{}{
					"pid":   snap.PID,
					"stage": "notifying",
					"error": err.Error(),
				})
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	return firstErr
}

// notify builds and sends the notification for one ended process.
func (o *Orchestrator) notify(builder *mailer.Builder, req WatchRequest, snap procwatch.Snapshot, password string) error {
	subject := fmt.Sprintf("The process with pid : %d has ended", snap.PID)
	body := fmt.Sprintf(
		"Process name : %s\nCreation time : %s\nCommand line used to invoke it : '%s'\n",
		snap.Name,
		snap.CreateTime.Format("Mon, 02 Jan 2006 15:04:05"),
		snap.Cmdline,
	)

	msg, err := builder.Build(subject, body, req.To, req.DestListFile, req.AttachPatterns)
	if err != nil {
		return fmt.Errorf("building notification for pid %d: %w", snap.PID, err)
	}

	if result := o.transport.AuthAndSend(msg, password, false); result != mailer.AuthSuccess {
		return fmt.Errorf("sending notification for pid %d: %s", snap.PID, result)
	}
	o.log.Info("Termination notification sent", map[string]interface{}{
		"pid": snap.PID,
	})
	return nil
}
