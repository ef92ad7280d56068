package crm

import (
	"context"
	"strings"
	"time"
)

// Row is one data row of a spreadsheet tab. Index is the 1-based sheet row
// number, so the first data row under the header has Index 2.
type Row struct {
	Index  int
	Values []string
	Fields map[string]string
}

// Value returns the trimmed cell at column i, or "" past the end of the row.
func (r Row) Value(i int) string {
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return strings.TrimSpace(r.Values[i])
}

func (r Row) Empty() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

type Sheet interface {
	Rows(ctx context.Context) ([]Row, error)
	Append(ctx context.Context, values []string) error
	DeleteRow(ctx context.Context, sheetRow int) error
}

type Folders interface {
	// CreateFolder returns a browser link to the new folder.
	CreateFolder(ctx context.Context, name string) (string, error)
	DeleteFolder(ctx context.Context, id string) error
}

type Calendar interface {
	// CreateReminder schedules an all-day event and returns its link.
	CreateReminder(ctx context.Context, summary string, day time.Time) (string, error)
	// CancelReminders deletes every event whose summary equals summary.
	CancelReminders(ctx context.Context, summary string) (int, error)
}
