package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Google Drive implementation of DriveStore. Credentials follow the same
// resolution as the GCS helpers: explicit JSON via env, otherwise ADC.

type driveStore struct {
	service *drive.Service
}

func NewDriveStore(ctx context.Context) (DriveStore, error) {
	var opts []option.ClientOption
	if credJSON := os.Getenv("DRIVE_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}
	opts = append(opts, option.WithScopes(drive.DriveReadonlyScope))

	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &driveStore{service: service}, nil
}

const folderMimeType = "application/vnd.google-apps.folder"

func (s *driveStore) FindChildFolder(ctx context.Context, parentId, name string) (string, error) {
	query := fmt.Sprintf("'%s' in parents AND mimeType = '%s' AND name = '%s' AND trashed = false",
		parentId, folderMimeType, strings.ReplaceAll(name, "'", "\\'"))
	list, err := s.service.Files.List().
		Q(query).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", errors.New("folder not found: " + name)
	}
	return list.Files[0].Id, nil
}

func (s *driveStore) ListFiles(ctx context.Context, folderId string) ([]DriveFile, error) {
	var files []DriveFile
	pageToken := ""
	for {
		call := s.service.Files.List().
			Q(fmt.Sprintf("'%s' in parents AND mimeType != '%s' AND trashed = false", folderId, folderMimeType)).
			Fields("nextPageToken, files(id, name, mimeType)").
			PageSize(100).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, err
		}
		for _, f := range list.Files {
			files = append(files, DriveFile{
				Id:       f.Id,
				Name:     f.Name,
				MimeType: f.MimeType,
				Path:     folderId + "/" + f.Name,
			})
		}
		pageToken = list.NextPageToken
		if pageToken == "" {
			return files, nil
		}
	}
}

func (s *driveStore) DownloadFile(ctx context.Context, fileId string) ([]byte, error) {
	resp, err := s.service.Files.Get(fileId).Context(ctx).Download()
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
