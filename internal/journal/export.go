package journal

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/khanglvm/retroos-brain/internal/storage"
)

// Export is the document written by WriteExport.
type Export struct {
	ExportedAt time.Time              `json:"exportedAt"`
	Count      int                    `json:"count"`
	Actions    []storage.ActionRecord `json:"actions"`
}

// WriteExport writes the matching history as indented JSON and returns
// the number of actions written.
func WriteExport(w io.Writer, log storage.ActionLog, filter storage.HistoryFilter, now time.Time) (int, error) {
	records, err := log.History(filter)
	if err != nil {
		return 0, fmt.Errorf("failed to read history: %w", err)
	}
	if records == nil {
		records = []storage.ActionRecord{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Export{ExportedAt: now.UTC(), Count: len(records), Actions: records}); err != nil {
		return 0, fmt.Errorf("failed to write export: %w", err)
	}
	return len(records), nil
}
