package mailbox

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	previewLimit = 120
	noSubject    = "(No subject)"
)

// Subject returns the subject, or a placeholder when it is empty.
func Subject(s string) string {
	if strings.TrimSpace(s) == "" {
		return noSubject
	}
	return s
}

// Preview collapses whitespace in body and cuts it to the list preview
// length.
func Preview(body string) string {
	collapsed := strings.Join(strings.Fields(body), " ")
	runes := []rune(collapsed)
	if len(runes) <= previewLimit {
		return collapsed
	}
	return string(runes[:previewLimit-3]) + "…"
}

// FormatTimestamp renders a message time for lists and headers. The zero
// time renders as an empty string.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("Jan 2 15:04")
}

// FormatSize renders a byte count with binary units.
func FormatSize(n int64) string {
	if n < 0 {
		return ""
	}
	return humanize.IBytes(uint64(n))
}
