// Package crmtest provides in-memory store fakes for tests.
package crmtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"autocrm/internal/crm"
)

type Sheet struct {
	mu      sync.Mutex
	Header  []string
	Data    [][]string
	Err     error
	ReadErr error
	Appends int
	Deletes []int
}

func NewSheet(schema crm.Schema, rows ...[]string) *Sheet {
	return &Sheet{Header: schema.Columns, Data: rows}
}

func (s *Sheet) Rows(ctx context.Context) ([]crm.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	out := make([]crm.Row, 0, len(s.Data))
	for i, vals := range s.Data {
		fields := make(map[string]string, len(s.Header))
		for j, h := range s.Header {
			if j < len(vals) {
				fields[h] = vals[j]
			}
		}
		out = append(out, crm.Row{Index: crm.SheetRow(i + 1), Values: append([]string(nil), vals...), Fields: fields})
	}
	return out, nil
}

func (s *Sheet) Append(ctx context.Context, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Appends++
	s.Data = append(s.Data, append([]string(nil), values...))
	return nil
}

func (s *Sheet) DeleteRow(ctx context.Context, sheetRow int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	i := sheetRow - 2
	if i < 0 || i >= len(s.Data) {
		return fmt.Errorf("row %d out of range", sheetRow)
	}
	s.Deletes = append(s.Deletes, sheetRow)
	s.Data = append(s.Data[:i], s.Data[i+1:]...)
	return nil
}

func (s *Sheet) Last() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Data) == 0 {
		return nil
	}
	return s.Data[len(s.Data)-1]
}

type Folders struct {
	Err     error
	Created []string
	Deleted []string
}

func (f *Folders) CreateFolder(ctx context.Context, name string) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	f.Created = append(f.Created, name)
	return fmt.Sprintf("https://drive.google.com/drive/folders/f%d", len(f.Created)), nil
}

func (f *Folders) DeleteFolder(ctx context.Context, id string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Deleted = append(f.Deleted, id)
	return nil
}

type Event struct {
	Summary string
	Day     time.Time
}

type Calendar struct {
	Err    error
	Events []Event
}

func (c *Calendar) CreateReminder(ctx context.Context, summary string, day time.Time) (string, error) {
	if c.Err != nil {
		return "", c.Err
	}
	c.Events = append(c.Events, Event{Summary: summary, Day: day})
	return "https://calendar.google.com/event?eid=" + fmt.Sprint(len(c.Events)), nil
}

func (c *Calendar) CancelReminders(ctx context.Context, summary string) (int, error) {
	if c.Err != nil {
		return 0, c.Err
	}
	kept := c.Events[:0]
	n := 0
	for _, e := range c.Events {
		if e.Summary == summary {
			n++
			continue
		}
		kept = append(kept, e)
	}
	c.Events = kept
	return n, nil
}
