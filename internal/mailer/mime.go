package mailer

import (
	"mime"
	"path/filepath"
	"strings"
)

// Extensions that mark the content as already encoded or compressed. A
// compressed file gets the generic bag-of-bits type even when the inner
// extension would resolve, matching mimetypes-style encoding detection.
var compressedExts = map[string]bool{
	".br":  true,
	".bz2": true,
	".gz":  true,
	".xz":  true,
	".z":   true,
	".zst": true,
}

// ResolveMIME infers the MIME major/minor type for a file path from its
// extension. It never fails: an unknown or compressed extension falls back
// to ("application", "octet-stream").
func ResolveMIME(path string) (major, minor string) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" || compressedExts[ext] {
		return "application", "octet-stream"
	}

	ctype := mime.TypeByExtension(ext)
	if ctype == "" {
		return "application", "octet-stream"
	}
	mediaType, _, err := mime.ParseMediaType(ctype)
	if err != nil {
		return "application", "octet-stream"
	}
	parts := strings.SplitN(mediaType, "/", 2)
	if len(parts) != 2 {
		return "application", "octet-stream"
	}
	return parts[0], parts[1]
}
