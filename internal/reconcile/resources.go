package reconcile

import (
	"sort"
	"strings"
	"time"

	"github.com/dukerupert/clubsite/internal/classify"
	"github.com/dukerupert/clubsite/internal/model"
)

// ResourceStats summarizes a Drive reconciliation pass.
type ResourceStats struct {
	DriveResources  int `json:"driveResources"`
	ManualResources int `json:"manualResources"`
	TotalResources  int `json:"totalResources"`
}

// Resources replaces every Drive-sourced resource in previous with the
// resources derived from the current folder listing. Manual resources are
// kept unchanged. The result is ordered by upload time, newest first, with
// unparseable times last.
func Resources(previous []model.Resource, files []model.DriveFile, now time.Time) ([]model.Resource, ResourceStats) {
	var manual []model.Resource
	for _, r := range previous {
		if !r.FromDrive() {
			manual = append(manual, r)
		}
	}

	seen := make(map[string]bool, len(files))
	derived := make([]model.Resource, 0, len(files))
	for _, f := range files {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		derived = append(derived, FromDriveFile(f, now))
	}

	merged := make([]model.Resource, 0, len(manual)+len(derived))
	merged = append(merged, manual...)
	merged = append(merged, derived...)

	sort.SliceStable(merged, func(i, j int) bool {
		return later(merged[i].UploadedAt, merged[j].UploadedAt)
	})

	return merged, ResourceStats{
		DriveResources:  len(derived),
		ManualResources: len(manual),
		TotalResources:  len(merged),
	}
}

// FromDriveFile builds the catalog entry for a listed Drive file. now stands
// in for a missing modification time.
func FromDriveFile(f model.DriveFile, now time.Time) model.Resource {
	name := f.Name
	if name == "" {
		name = "Untitled"
	}
	title := classify.Title(name)
	category := classify.Category(f.MimeType, name)

	uploadedAt := f.ModifiedTime
	if uploadedAt == "" {
		uploadedAt = now.UTC().Format(time.RFC3339Nano)
	}

	downloadURL := f.WebContentLink
	if downloadURL == "" {
		downloadURL = f.WebViewLink
	}

	return model.Resource{
		ID:          model.DriveIDPrefix + f.ID,
		Title:       title,
		Description: classify.Description(strings.TrimSpace(f.Description), title, category),
		Category:    category,
		Tags:        classify.Tags(name),
		FileType:    classify.FileType(name),
		FileSize:    classify.FormatSize(f.Size),
		DownloadURL: downloadURL,
		Author:      "Google Drive",
		UploadedAt:  uploadedAt,
		Source:      model.SourceGoogleDrive,
	}
}
