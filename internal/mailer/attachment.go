package mailer

import (
	"os"
	"path/filepath"

	"github.com/enotify/enotify/internal/logging"
)

// Attachment is a file selected for attaching, paired with its resolved MIME
// type. The bytes are read later, at build time, so expanding a wide pattern
// does not hold many files open.
type Attachment struct {
	Path  string
	Major string
	Minor string
}

// CollectAttachments expands shell-style wildcard patterns into concrete
// attachments. Matches that do not exist or are not regular files are
// skipped with a warning; a partial match set never aborts the notification.
func CollectAttachments(patterns []string, log *logging.Logger) []Attachment {
	var attachments []Attachment

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			log.Warn("Invalid attachment pattern, skipping it", map[string]interface{}{
				"pattern": pattern,
				"error":   err.Error(),
			})
			continue
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || !info.Mode().IsRegular() {
				log.Warn("Attachment doesn't exist or isn't a file, skipping it", map[string]interface{}{
					"path": match,
				})
				continue
			}

			major, minor := ResolveMIME(match)
			if major == "application" && minor == "octet-stream" {
				log.Info("The MIME type for the attachment could not be guessed, defaulting to application/octet-stream", map[string]interface{}{
					"path": match,
				})
			}
			attachments = append(attachments, Attachment{Path: match, Major: major, Minor: minor})
		}
	}

	return attachments
}
