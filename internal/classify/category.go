// Package classify derives catalog metadata for files listed from the
// watched Drive folder. Every function is a pure function of the file name
// and MIME type.
package classify

import (
	"strings"

	"github.com/dukerupert/clubsite/internal/model"
)

type nameRule struct {
	suffixes []string
	keywords []string
	category model.ResourceCategory
}

// Checked in order against the lower-cased file name; first match wins.
var nameRules = []nameRule{
	{suffixes: []string{".pptx", ".ppt"}, keywords: []string{"slides"}, category: model.CategoryPresentation},
	{suffixes: []string{".pdf", ".docx", ".doc"}, category: model.CategoryDocument},
	{suffixes: []string{".mp4", ".mov", ".avi"}, category: model.CategoryVideo},
	{suffixes: []string{".zip"}, keywords: []string{"template"}, category: model.CategoryTemplate},
	{suffixes: []string{".csv", ".json"}, keywords: []string{"dataset"}, category: model.CategoryDataset},
	{suffixes: []string{".py", ".ipynb", ".js"}, category: model.CategoryCode},
}

type mimeRule struct {
	fragment string
	category model.ResourceCategory
}

// Consulted only when no name rule matched.
var mimeRules = []mimeRule{
	{"presentation", model.CategoryPresentation},
	{"spreadsheet", model.CategoryDataset},
	{"document", model.CategoryDocument},
	{"video", model.CategoryVideo},
	{"zip", model.CategoryTemplate},
	{"compressed", model.CategoryTemplate},
}

// Category returns the resource category for a file. Name suffix and keyword
// rules are checked before MIME type rules. Falls back to "other".
func Category(mimeType, fileName string) model.ResourceCategory {
	name := strings.ToLower(fileName)

	for _, rule := range nameRules {
		if rule.matches(name) {
			return rule.category
		}
	}

	for _, rule := range mimeRules {
		if strings.Contains(mimeType, rule.fragment) {
			return rule.category
		}
	}

	return model.CategoryOther
}

func (r nameRule) matches(name string) bool {
	for _, s := range r.suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	for _, k := range r.keywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// Description returns the catalog description for a file. The file's own
// description wins when present.
func Description(fileDescription, title string, category model.ResourceCategory) string {
	if fileDescription != "" {
		return fileDescription
	}
	switch category {
	case model.CategoryPresentation:
		return "Presentation slides on " + title
	case model.CategoryDocument:
		return "Document covering " + title
	case model.CategoryVideo:
		return "Video tutorial on " + title
	case model.CategoryTemplate:
		return title + " template for projects and assignments"
	case model.CategoryDataset:
		return "Dataset for " + title + " analysis and experiments"
	case model.CategoryCode:
		return "Code implementation for " + title
	default:
		return "Resource file: " + title
	}
}
