package pdf

import (
	"fmt"
	"strings"
)

// BlockSelector matches the card-like elements which must not be split across pages.
const BlockSelector = ".chart-container, .summary-card, .table-section, .pdf-block"

// SegmentAttribute tags the regions used by the named-segment strategy.
const SegmentAttribute = "data-pdf-segment"

// PrintStyles returns the print styles scoped to the container with the given id.
func PrintStyles(containerID string) string {
	scoped := make([]string, 0, 4)
	for _, selector := range strings.Split(BlockSelector, ",") {
		scoped = append(scoped, fmt.Sprintf("#%s %s", containerID, strings.TrimSpace(selector)))
	}
	blocks := strings.Join(scoped, ", ")

	return fmt.Sprintf(`
#%[1]s { background: #ffffff; }
%[2]s {
    break-inside: avoid;
    page-break-inside: avoid;
    box-shadow: none !important;
    border: none !important;
}
#%[1]s .container { box-shadow: none !important; max-width: none; }
#%[1]s canvas { max-width: 100%%; }
`, containerID, blocks)
}
