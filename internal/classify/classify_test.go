package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dukerupert/clubsite/internal/model"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		want     model.ResourceCategory
	}{
		{"COSC290_Intro_to_ML_2024.pptx", "", model.CategoryPresentation},
		{"Week3_Slides.key", "", model.CategoryPresentation},
		{"notes.pdf", "application/pdf", model.CategoryDocument},
		{"demo.MP4", "", model.CategoryVideo},
		{"project_template.docx", "", model.CategoryDocument},
		{"starter.zip", "", model.CategoryTemplate},
		{"iris.csv", "text/csv", model.CategoryDataset},
		{"my_dataset.txt", "text/plain", model.CategoryDataset},
		{"train.py", "text/x-python", model.CategoryCode},
		{"Budget", "application/vnd.google-apps.spreadsheet", model.CategoryDataset},
		{"Deck", "application/vnd.google-apps.presentation", model.CategoryPresentation},
		{"Meeting Notes", "application/vnd.google-apps.document", model.CategoryDocument},
		{"clip", "video/quicktime", model.CategoryVideo},
		{"bundle", "application/x-compressed", model.CategoryTemplate},
		{"image.png", "image/png", model.CategoryOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Category(tt.mimeType, tt.name), "Category(%q, %q)", tt.mimeType, tt.name)
	}
}

func TestSuffixRulesBeatMimeRules(t *testing.T) {
	got := Category("application/vnd.google-apps.spreadsheet", "summary.pdf")
	assert.Equal(t, model.CategoryDocument, got)
}

func TestTags(t *testing.T) {
	tests := []struct {
		name string
		want []string
	}{
		{"COSC290_Intro_to_ML_2024.pptx", []string{"ml", "intro", "COSC290", "2024"}},
		{"Deep_Learning_Workshop_Slides.pdf", []string{"workshop", "presentation"}},
		{"deeplearning-notebook.ipynb", []string{"deep learning", "jupyter"}},
		{"Course Template", []string{"template"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Tags(tt.name), "Tags(%q)", tt.name)
	}
}

func TestTagsCappedAtTen(t *testing.T) {
	tags := Tags("machine learning python tensorflow pytorch numpy pandas tutorial workshop lecture assignment 2024.txt")
	assert.Len(t, tags, maxTags)
	assert.Equal(t, "machine learning", tags[0])
}

func TestClassificationIsDeterministic(t *testing.T) {
	names := []string{
		"COSC290_Intro_to_ML_2024.pptx",
		"NLP Workshop - Transformers.pdf",
		"data_cleaning_template.zip",
		"random file",
	}
	for _, n := range names {
		assert.Equal(t, Tags(n), Tags(n))
		assert.Equal(t, Category("", n), Category("", n))
		assert.Equal(t, Title(n), Title(n))
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"COSC290_Intro_to_ML_2024.pptx", "Cosc290 Intro To Ml 2024"},
		{"my-file__name.v2.pdf", "My File Name.v2"},
		{"README", "Readme"},
		{"  spaced   out  .txt", "Spaced Out"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Title(tt.input), "Title(%q)", tt.input)
	}
}

func TestFileType(t *testing.T) {
	assert.Equal(t, "pdf", FileType("report.PDF"))
	assert.Equal(t, "gz", FileType("archive.tar.gz"))
	assert.Equal(t, "file", FileType("Makefile"))
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Bytes"},
		{512, "512 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{2466251, "2.35 MB"},
		{3 * 1024 * 1024 * 1024, "3 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.bytes), "FormatSize(%d)", tt.bytes)
	}
}

func TestDescription(t *testing.T) {
	assert.Equal(t, "Presentation slides on Intro", Description("", "Intro", model.CategoryPresentation))
	assert.Equal(t, "Starter template for projects and assignments", Description("", "Starter", model.CategoryTemplate))
	assert.Equal(t, "Resource file: Logo", Description("", "Logo", model.CategoryOther))
	assert.Equal(t, "Uploaded by the board", Description("Uploaded by the board", "Logo", model.CategoryOther))
}
