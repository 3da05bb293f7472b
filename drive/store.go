// Package drive reads documents out of a shared Google Drive folder.
// It lists PDF, document and presentation files, downloads PDFs as raw
// bytes and exports Workspace files as plain text.
package drive

import (
	"context"
	"fmt"
	"io"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Google Workspace MIME types handled by the store.
const (
	MimeTypePDF    = "application/pdf"
	MimeTypeFolder = "application/vnd.google-apps.folder"

	// ExportMimeText is the format Workspace files are exported as.
	ExportMimeText = "text/plain"
)

// MaxContentSize caps downloads and exports at 20MB.
const MaxContentSize = 20 * 1024 * 1024

// listFields limits the metadata returned per page to what indexing needs.
const listFields = "nextPageToken, files(id, name, mimeType)"

// FileInfo describes one listable file in the shared folder.
type FileInfo struct {
	ID       string
	Name     string
	MIMEType string
}

// Store lists and fetches files from a single shared Drive folder.
type Store struct {
	svc      *drive.Service
	folderID string
}

// NewStore builds a read-only Drive client from service account
// credentials, scoped to the given shared folder.
func NewStore(ctx context.Context, credentialsJSON []byte, folderID string) (*Store, error) {
	if folderID == "" {
		return nil, fmt.Errorf("folder id is required")
	}
	svc, err := drive.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(drive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &Store{svc: svc, folderID: folderID}, nil
}

// NewStoreWithService wraps an existing Drive service. Useful for tests
// and callers that manage their own authentication.
func NewStoreWithService(svc *drive.Service, folderID string) *Store {
	return &Store{svc: svc, folderID: folderID}
}

// Query returns the Drive search expression selecting indexable files
// in a folder: PDFs, documents and presentations.
func Query(folderID string) string {
	return fmt.Sprintf(
		"'%s' in parents and (mimeType='application/pdf' or mimeType contains 'document' or mimeType contains 'presentation')",
		folderID,
	)
}

// List returns one page of indexable files in the folder. An empty
// nextPageToken means the listing is complete.
func (s *Store) List(ctx context.Context, pageToken string) ([]FileInfo, string, error) {
	call := s.svc.Files.List().
		Context(ctx).
		Q(Query(s.folderID)).
		Fields(listFields)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list folder %s: %w", s.folderID, err)
	}

	files := make([]FileInfo, 0, len(resp.Files))
	for _, f := range resp.Files {
		if f.MimeType == MimeTypeFolder {
			continue
		}
		files = append(files, FileInfo{
			ID:       f.Id,
			Name:     f.Name,
			MIMEType: f.MimeType,
		})
	}
	return files, resp.NextPageToken, nil
}

// FetchBytes downloads a file's raw content. Used for PDFs, which need
// binary-safe extraction.
func (s *Store) FetchBytes(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := s.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxContentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	return data, nil
}

// ExportText exports a Workspace file (document, presentation) as plain
// text.
func (s *Store) ExportText(ctx context.Context, fileID string) (string, error) {
	resp, err := s.svc.Files.Export(fileID, ExportMimeText).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("failed to export file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxContentSize))
	if err != nil {
		return "", fmt.Errorf("failed to read export of %s: %w", fileID, err)
	}
	return string(data), nil
}
