// Package google adapts Sheets, Drive and Calendar to the crm store ports.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/sheets/v4"
)

var Scopes = []string{
	sheets.SpreadsheetsScope,
	drive.DriveScope,
	calendar.CalendarScope,
}

// NormalizeCredentials turns literal "\n" sequences in the service account's
// private_key into real newlines. Secrets pasted into hosting dashboards
// usually arrive that way.
func NormalizeCredentials(raw []byte) ([]byte, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse service account json: %w", err)
	}
	pk, ok := m["private_key"].(string)
	if !ok || pk == "" {
		return nil, fmt.Errorf("service account json has no private_key")
	}
	m["private_key"] = strings.ReplaceAll(pk, `\n`, "\n")
	return json.Marshal(m)
}

// HTTPClient returns an authorised client for the service account.
func HTTPClient(ctx context.Context, raw []byte) (*http.Client, error) {
	creds, err := NormalizeCredentials(raw)
	if err != nil {
		return nil, err
	}
	conf, err := google.JWTConfigFromJSON(creds, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("build jwt config: %w", err)
	}
	return conf.Client(ctx), nil
}
