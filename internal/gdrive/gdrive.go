// Package gdrive lists the files of a shared Google Drive folder using a
// service account.
package gdrive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/dukerupert/clubsite/internal/model"
	"github.com/dukerupert/clubsite/internal/syncerr"
)

const (
	serviceName    = "google drive"
	pageSize       = 1000
	requestTimeout = 30 * time.Second
	fileFields     = "nextPageToken, files(id, name, mimeType, size, modifiedTime, webViewLink, webContentLink, description)"
)

// Config holds Drive access settings. ServiceAccountKey is the raw JSON key.
type Config struct {
	FolderID          string
	ServiceAccountKey string

	// Test-only transport overrides. When HTTPClient is set no credentials
	// are used.
	Endpoint   string
	HTTPClient *http.Client
}

type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg}
}

func (c *Client) Configured() bool {
	return c.cfg.FolderID != "" && c.cfg.ServiceAccountKey != ""
}

// ListFolder returns the non-trashed files directly inside the folder,
// most recently modified first.
func (c *Client) ListFolder(ctx context.Context) ([]model.DriveFile, error) {
	if !c.Configured() {
		return nil, syncerr.NewConfigError(serviceName, "missing required settings: folder ID or service account key", nil)
	}

	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(c.cfg.FolderID))
	var files []model.DriveFile
	err = svc.Files.List().
		Q(query).
		Fields(fileFields).
		OrderBy("modifiedTime desc").
		PageSize(pageSize).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				if f == nil || f.Id == "" {
					continue
				}
				files = append(files, mapFile(f))
			}
			return nil
		})
	if err != nil {
		return nil, c.mapError(err)
	}

	if files == nil {
		files = []model.DriveFile{}
	}
	return files, nil
}

func (c *Client) service(ctx context.Context) (*drive.Service, error) {
	var opts []option.ClientOption
	if c.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.cfg.Endpoint))
	}

	if c.cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(c.cfg.HTTPClient))
	} else {
		ts, err := TokenSource(ctx, []byte(c.cfg.ServiceAccountKey))
		if err != nil {
			return nil, err
		}
		hc := oauth2.NewClient(ctx, ts)
		hc.Timeout = requestTimeout
		opts = append(opts, option.WithHTTPClient(hc))
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, syncerr.NewConfigError(serviceName, "create service", err)
	}
	return svc, nil
}

// TokenSource parses a service account key and returns a read-only Drive
// token source.
func TokenSource(ctx context.Context, key []byte) (oauth2.TokenSource, error) {
	conf, err := google.JWTConfigFromJSON(key, drive.DriveReadonlyScope)
	if err != nil {
		return nil, syncerr.NewConfigError(serviceName, "invalid service account credentials format", err)
	}
	return conf.TokenSource(ctx), nil
}

func (c *Client) mapError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) || strings.Contains(err.Error(), "invalid_grant") {
		return syncerr.NewUpstreamError(serviceName, http.StatusUnauthorized,
			fmt.Errorf("service account authentication failed: %w", err))
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusNotFound {
			return syncerr.NewNotFoundError("drive folder", c.cfg.FolderID)
		}
		return syncerr.NewUpstreamError(serviceName, gerr.Code, err)
	}
	return syncerr.NewUpstreamError(serviceName, 0, err)
}

func mapFile(f *drive.File) model.DriveFile {
	return model.DriveFile{
		ID:             f.Id,
		Name:           f.Name,
		MimeType:       f.MimeType,
		Size:           f.Size,
		ModifiedTime:   f.ModifiedTime,
		Description:    f.Description,
		WebViewLink:    f.WebViewLink,
		WebContentLink: f.WebContentLink,
	}
}

// escapeQuery escapes a value for use inside a single-quoted Drive query.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
