package videos

import (
	"path/filepath"
	"strings"
)

var allowedExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".webm": {},
}

var allowedMimeTypes = map[string]struct{}{
	"video/mp4":                {},
	"video/quicktime":          {},
	"video/webm":               {},
	"application/octet-stream": {},
}

// IsAllowedVideoFile checks the upload against the extension and MIME
// allowlists.
func IsAllowedVideoFile(filename, mimeType string) bool {
	extension := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[extension]; !ok {
		return false
	}
	_, ok := allowedMimeTypes[mimeType]
	return ok
}

// IsAllowedDuration accepts durations in (0, maxDurationSec]; the upper
// bound is inclusive.
func IsAllowedDuration(durationSec, maxDurationSec float64) bool {
	return durationSec > 0 && durationSec <= maxDurationSec
}
