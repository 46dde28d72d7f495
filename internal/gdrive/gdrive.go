// Package gdrive uploads compiled resume PDFs to Google Drive and returns a
// shareable link for the application record.
package gdrive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Uploader pushes an artifact somewhere shareable and returns its link.
type Uploader interface {
	Upload(ctx context.Context, localPath, name string) (string, error)
}

// DriveUploader implements Uploader against Google Drive.
type DriveUploader struct {
	service  *drive.Service
	folderID string
}

// NewDriveUploader builds a Drive client from a service-account credentials
// file. folderID may be empty to upload into the account root.
func NewDriveUploader(ctx context.Context, credentialsPath, folderID string) (*DriveUploader, error) {
	credentials, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentials, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	service, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveUploader{service: service, folderID: folderID}, nil
}

// Upload pushes the file at localPath to Drive under the given name, makes
// it link-readable, and returns the view link.
func (u *DriveUploader) Upload(ctx context.Context, localPath, name string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	if name == "" {
		name = filepath.Base(localPath)
	}
	meta := &drive.File{Name: name, MimeType: "application/pdf"}
	if u.folderID != "" {
		meta.Parents = []string{u.folderID}
	}

	created, err := u.service.Files.Create(meta).Media(f).
		Fields("id, webViewLink").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("drive upload failed: %w", err)
	}

	_, err = u.service.Permissions.Create(created.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to share artifact: %w", err)
	}

	if created.WebViewLink != "" {
		return created.WebViewLink, nil
	}
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", created.Id), nil
}
