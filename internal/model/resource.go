package model

type ResourceCategory string

const (
	CategoryPresentation ResourceCategory = "presentation"
	CategoryDocument     ResourceCategory = "document"
	CategoryVideo        ResourceCategory = "video"
	CategoryTemplate     ResourceCategory = "template"
	CategoryDataset      ResourceCategory = "dataset"
	CategoryCode         ResourceCategory = "code"
	CategoryOther        ResourceCategory = "other"
)

type ResourceSource string

const (
	SourceManual      ResourceSource = "manual"
	SourceGoogleDrive ResourceSource = "google-drive"
)

// DriveIDPrefix namespaces resource IDs that originate from the watched folder.
const DriveIDPrefix = "gdrive-"

type Resource struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Category     ResourceCategory `json:"category"`
	Tags         []string         `json:"tags"`
	FileType     string           `json:"fileType"`
	FileSize     string           `json:"fileSize,omitempty"`
	DownloadURL  string           `json:"downloadUrl,omitempty"`
	EmbedURL     string           `json:"embedUrl,omitempty"`
	GitHubPath   string           `json:"githubPath,omitempty"`
	Thumbnail    string           `json:"thumbnail,omitempty"`
	Author       string           `json:"author,omitempty"`
	Course       string           `json:"course,omitempty"`
	UploadedAt   string           `json:"uploadedAt"`
	LastModified string           `json:"lastModified,omitempty"`
	Downloads    *int             `json:"downloads,omitempty"`
	Views        *int             `json:"views,omitempty"`
	Source       ResourceSource   `json:"source,omitempty"`
}

// FromDrive reports whether the resource was generated from the watched
// Drive folder. Resources without a source are manual.
func (r Resource) FromDrive() bool {
	return r.Source == SourceGoogleDrive
}

// ResourcesCatalog is the persisted shape of the resources file.
type ResourcesCatalog struct {
	LastUpdated string     `json:"lastUpdated,omitempty"`
	Resources   []Resource `json:"resources"`
}

// DriveFile is a file descriptor as listed from the watched Drive folder.
type DriveFile struct {
	ID             string
	Name           string
	MimeType       string
	Size           int64
	ModifiedTime   string
	Description    string
	WebViewLink    string
	WebContentLink string
}
