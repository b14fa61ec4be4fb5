// Package credentials resolves the SMTP password, preferring the
// environment over an interactive prompt.
package credentials

import (
	"fmt"
	"os"

	"github.com/enotify/enotify/internal/logging"
	"golang.org/x/term"
)

// EnvVar supplies the SMTP password non-interactively when set.
const EnvVar = "E_NOTIFY_PASS"

// Source resolves the SMTP password. Every call re-resolves: a retry after a
// rejected login must be able to prompt for a different password.
type Source interface {
	Password() (string, error)
}

// EnvPromptSource checks EnvVar first and falls back to a non-echoing
// terminal prompt.
type EnvPromptSource struct {
	log *logging.Logger
}

// NewEnvPromptSource creates the default password source.
func NewEnvPromptSource(log *logging.Logger) *EnvPromptSource {
	return &EnvPromptSource{log: log}
}

// Password implements Source.
func (s *EnvPromptSource) Password() (string, error) {
	if password := os.Getenv(EnvVar); password != "" {
		s.log.Debug("Using the password from the environment", map[string]interface{}{
			"variable": EnvVar,
		})
		return password, nil
	}

	fmt.Fprint(os.Stderr, "Your password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password from terminal: %w", err)
	}
	return string(raw), nil
}
