package google

import (
	"context"
	"fmt"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type WorkspaceConfig struct {
	SpreadsheetID string
	StockTab      string
	LeadsTab      string
	DriveParentID string
	CalendarID    string
	TimeZone      string
}

// Workspace bundles the store adapters used by the dispatcher.
type Workspace struct {
	Stock    *SheetTab
	Leads    *SheetTab
	Folders  *DriveFolders
	Calendar *CalendarReminders
}

// NewWorkspace builds every service from the same client options, e.g.
// option.WithHTTPClient for a service account.
func NewWorkspace(ctx context.Context, cfg WorkspaceConfig, opts ...option.ClientOption) (*Workspace, error) {
	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init sheets: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init drive: %w", err)
	}
	calSvc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init calendar: %w", err)
	}
	return &Workspace{
		Stock:    NewSheetTab(sheetsSvc, cfg.SpreadsheetID, cfg.StockTab),
		Leads:    NewSheetTab(sheetsSvc, cfg.SpreadsheetID, cfg.LeadsTab),
		Folders:  NewDriveFolders(driveSvc, cfg.DriveParentID),
		Calendar: NewCalendarReminders(calSvc, cfg.CalendarID, cfg.TimeZone),
	}, nil
}
