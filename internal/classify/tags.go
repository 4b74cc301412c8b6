package classify

import (
	"regexp"
	"strings"
)

const maxTags = 10

// Vocabulary matched against the lower-cased file name. A keyword also
// matches with its first space removed ("machinelearning").
var keywords = []string{
	"machine learning", "ml", "ai", "artificial intelligence",
	"deep learning", "neural network", "python", "tensorflow",
	"pytorch", "sklearn", "scikit-learn", "numpy", "pandas",
	"data science", "statistics", "algorithm", "model",
	"tutorial", "workshop", "lecture", "assignment", "project",
	"beginner", "intermediate", "advanced", "introduction", "intro",
	"nlp", "computer vision", "cv", "reinforcement learning",
	"classification", "regression", "clustering", "prediction",
}

type markerRule struct {
	fragments []string
	tag       string
}

var markers = []markerRule{
	{[]string{"slides", "presentation"}, "presentation"},
	{[]string{"notebook", ".ipynb"}, "jupyter"},
	{[]string{"dataset", "data"}, "dataset"},
	{[]string{"template"}, "template"},
}

var (
	courseCodePattern = regexp.MustCompile(`(?i)[a-z]{2,4}\s?\d{3}`)
	yearPattern       = regexp.MustCompile(`20\d{2}`)
)

// Tags extracts up to ten tags from a file name: vocabulary keywords, the
// first course code (upper-cased), the first year and content markers.
// Order follows discovery; duplicates are dropped.
func Tags(fileName string) []string {
	name := strings.ToLower(fileName)
	set := newTagSet()

	for _, kw := range keywords {
		if strings.Contains(name, strings.Replace(kw, " ", "", 1)) || strings.Contains(name, kw) {
			set.add(kw)
		}
	}

	if code := courseCodePattern.FindString(name); code != "" {
		set.add(strings.ToUpper(code))
	}
	if year := yearPattern.FindString(name); year != "" {
		set.add(year)
	}

	for _, m := range markers {
		for _, f := range m.fragments {
			if strings.Contains(name, f) {
				set.add(m.tag)
				break
			}
		}
	}

	tags := set.list()
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return tags
}

type tagSet struct {
	seen  map[string]bool
	order []string
}

func newTagSet() *tagSet {
	return &tagSet{seen: make(map[string]bool)}
}

func (s *tagSet) add(tag string) {
	if s.seen[tag] {
		return
	}
	s.seen[tag] = true
	s.order = append(s.order, tag)
}

func (s *tagSet) list() []string {
	if s.order == nil {
		return []string{}
	}
	return s.order
}
