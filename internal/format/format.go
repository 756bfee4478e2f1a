// Package format renders backend values for display.
package format

import (
	"fmt"
	"time"

	"docsearch/internal/domain"
)

// Unknown is shown for missing timestamps.
const Unknown = "unknown"

// Size renders a byte count as B, KB or MB with one decimal.
func Size(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}

// Date renders ts in the local zone, or Unknown.
func Date(ts domain.Timestamp) string {
	if !ts.Valid() {
		return Unknown
	}
	return ts.In(time.Local).Format("2006-01-02 15:04:05")
}
