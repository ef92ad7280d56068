package google

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/api/sheets/v4"

	"autocrm/internal/crm"
)

// SheetTab is one worksheet of a spreadsheet. The first row holds the
// column names.
type SheetTab struct {
	svc           *sheets.Service
	spreadsheetID string
	title         string

	mu      sync.Mutex
	sheetID *int64
}

func NewSheetTab(svc *sheets.Service, spreadsheetID, title string) *SheetTab {
	return &SheetTab{svc: svc, spreadsheetID: spreadsheetID, title: title}
}

func (t *SheetTab) Title() string { return t.title }

func (t *SheetTab) Rows(ctx context.Context) ([]crm.Row, error) {
	vr, err := t.svc.Spreadsheets.Values.Get(t.spreadsheetID, t.title).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t.title, err)
	}
	if len(vr.Values) == 0 {
		return nil, nil
	}
	header := cells(vr.Values[0])
	rows := make([]crm.Row, 0, len(vr.Values)-1)
	for i, raw := range vr.Values[1:] {
		vals := cells(raw)
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if h == "" {
				continue
			}
			if j < len(vals) {
				fields[h] = vals[j]
			} else {
				fields[h] = ""
			}
		}
		rows = append(rows, crm.Row{Index: crm.SheetRow(i + 1), Values: vals, Fields: fields})
	}
	return rows, nil
}

func (t *SheetTab) Append(ctx context.Context, values []string) error {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	_, err := t.svc.Spreadsheets.Values.Append(t.spreadsheetID, t.title+"!A1", &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", t.title, err)
	}
	return nil
}

func (t *SheetTab) DeleteRow(ctx context.Context, sheetRow int) error {
	if sheetRow < 2 {
		return fmt.Errorf("refusing to delete header row %d", sheetRow)
	}
	sid, err := t.resolveSheetID(ctx)
	if err != nil {
		return err
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{Requests: []*sheets.Request{{
		DeleteDimension: &sheets.DeleteDimensionRequest{Range: &sheets.DimensionRange{
			SheetId:         sid,
			Dimension:       "ROWS",
			StartIndex:      int64(sheetRow - 1),
			EndIndex:        int64(sheetRow),
			ForceSendFields: []string{"SheetId"},
		}},
	}}}
	if _, err := t.svc.Spreadsheets.BatchUpdate(t.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d of %s: %w", sheetRow, t.title, err)
	}
	return nil
}

func (t *SheetTab) resolveSheetID(ctx context.Context) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sheetID != nil {
		return *t.sheetID, nil
	}
	ss, err := t.svc.Spreadsheets.Get(t.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == t.title {
			id := s.Properties.SheetId
			t.sheetID = &id
			return id, nil
		}
	}
	return 0, fmt.Errorf("tab %q not found", t.title)
}

func cells(raw []interface{}) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}
