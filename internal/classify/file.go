package classify

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	extensionPattern  = regexp.MustCompile(`\.[^/.]+$`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Title turns a file name into a display title: the extension is dropped,
// underscores and hyphens become spaces and every word is capitalized with
// the rest of the word lower-cased.
func Title(fileName string) string {
	name := extensionPattern.ReplaceAllString(fileName, "")
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	name = strings.TrimSpace(whitespacePattern.ReplaceAllString(name, " "))

	upper := cases.Upper(language.Und)
	lower := cases.Lower(language.Und)

	words := strings.Split(name, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		_, size := utf8.DecodeRuneInString(w)
		words[i] = upper.String(w[:size]) + lower.String(w[size:])
	}
	return strings.Join(words, " ")
}

// FileType returns the lower-cased extension, or "file" when there is none.
func FileType(fileName string) string {
	parts := strings.Split(fileName, ".")
	if len(parts) > 1 {
		return strings.ToLower(parts[len(parts)-1])
	}
	return "file"
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders a byte count with 1024-based units and at most two
// decimals, e.g. "2.35 MB".
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	v := math.Round(float64(bytes)/math.Pow(1024, float64(i))*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}
