package pdf

import (
	"regexp"
	"strings"
)

// DefaultFilename is used when no title is supplied.
const DefaultFilename = "Dashboard_Report.pdf"

var (
	unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)
	pdfSuffix           = regexp.MustCompile(`(?i)\.pdf$`)
)

// Filename derives the document filename from title. A nil or blank title selects DefaultFilename.
func Filename(title *string) string {
	if title == nil {
		return DefaultFilename
	}

	base := strings.TrimSpace(*title)
	base = pdfSuffix.ReplaceAllString(base, "")
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_.")
	if base == "" {
		return DefaultFilename
	}
	return base + ".pdf"
}
