// Package files holds the pure, client-side view logic over the
// last-fetched file listing. Filtering never touches the network; the
// registry is refetched in full after every mutation instead.
package files

import (
	"fmt"
	"sort"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/minjae-ko/docchat/internal/core/models"
)

// Filter is a conjunctive predicate over the file listing. Zero values
// mean "no constraint".
type Filter struct {
	DocType string
	Date    string // 6-digit YYMMDD bucket
}

// Active reports whether any constraint is set.
func (f Filter) Active() bool {
	return f.DocType != "" || f.Date != ""
}

// Matches applies every set constraint; a file is shown iff it matches all
// of them.
func (f Filter) Matches(file models.FileRecord) bool {
	if f.DocType != "" && file.DocType != f.DocType {
		return false
	}
	if f.Date != "" && file.Date != f.Date {
		return false
	}
	return true
}

// Apply returns the files passing the filter, preserving list order.
func (f Filter) Apply(files []models.FileRecord) []models.FileRecord {
	if !f.Active() {
		return files
	}
	out := make([]models.FileRecord, 0, len(files))
	for _, file := range files {
		if f.Matches(file) {
			out = append(out, file)
		}
	}
	return out
}

// DocTypes returns the distinct document types in the listing, sorted
// ascending. Files without a type are skipped.
func DocTypes(files []models.FileRecord) []string {
	seen := make(map[string]bool)
	var types []string
	for _, f := range files {
		if f.DocType != "" && !seen[f.DocType] {
			seen[f.DocType] = true
			types = append(types, f.DocType)
		}
	}
	sort.Strings(types)
	return types
}

// Dates returns the distinct date buckets in the listing, newest first.
func Dates(files []models.FileRecord) []string {
	seen := make(map[string]bool)
	var dates []string
	for _, f := range files {
		if f.Date != "" && !seen[f.Date] {
			seen[f.Date] = true
			dates = append(dates, f.Date)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// FormatDate renders a YYMMDD bucket for display, e.g. "250830" ->
// "2025-08-30". Unparseable buckets are returned as-is.
func FormatDate(bucket string) string {
	t, err := time.Parse("060102", bucket)
	if err != nil {
		return bucket
	}
	return t.Format("2006-01-02")
}

// ParseDateBucket turns user input into a YYMMDD bucket. It accepts the
// bucket itself, common date formats, and natural language ("yesterday",
// "last monday") via when.
func ParseDateBucket(input string, now time.Time) (string, error) {
	if _, err := time.Parse("060102", input); err == nil {
		return input, nil
	}

	formats := []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, input); err == nil {
			return t.Format("060102"), nil
		}
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	if result, err := w.Parse(input, now); err == nil && result != nil {
		return result.Time.Format("060102"), nil
	}

	return "", fmt.Errorf("unrecognized date: %q", input)
}
