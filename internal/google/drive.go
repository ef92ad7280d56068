package google

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
)

const folderMimeType = "application/vnd.google-apps.folder"

// DriveFolders creates one asset folder per vehicle under a parent folder.
type DriveFolders struct {
	svc      *drive.Service
	parentID string
}

func NewDriveFolders(svc *drive.Service, parentID string) *DriveFolders {
	return &DriveFolders{svc: svc, parentID: parentID}
}

func (d *DriveFolders) CreateFolder(ctx context.Context, name string) (string, error) {
	f := &drive.File{Name: name, MimeType: folderMimeType}
	if d.parentID != "" {
		f.Parents = []string{d.parentID}
	}
	created, err := d.svc.Files.Create(f).Fields("id", "webViewLink").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	if created.WebViewLink != "" {
		return created.WebViewLink, nil
	}
	return "https://drive.google.com/drive/folders/" + created.Id, nil
}

func (d *DriveFolders) DeleteFolder(ctx context.Context, id string) error {
	if err := d.svc.Files.Delete(id).SupportsAllDrives(true).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete folder %s: %w", id, err)
	}
	return nil
}
