package service

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/phoaar/cacv-bulletin-automation/utils"
)

// OutputRetention is how long generated files are kept.
const OutputRetention = 30 * 24 * time.Hour

var nonAlnumRe = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Slugify derives a YYYYMMDD file name component from a service date. Dates
// that cannot be parsed fall back to their first 16 alphanumeric characters.
func Slugify(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return "undated"
	}
	if y, m, d, ok := utils.MatchISODate(date); ok {
		return fmt.Sprintf("%04d%02d%02d", y, m, d)
	}
	if t, ok := utils.ParseDate(date); ok {
		return t.Format("20060102")
	}
	slug := nonAlnumRe.ReplaceAllString(date, "")
	if len(slug) > 16 {
		slug = slug[:16]
	}
	if slug == "" {
		return "undated"
	}
	return slug
}

// OutputFiles names everything one run writes.
type OutputFiles struct {
	Web         string
	PrintHTML   string
	PrintPDF    string
	BookletHTML string
	BookletPDF  string
}

func outputFiles(dir, slug string) OutputFiles {
	return OutputFiles{
		Web:         filepath.Join(dir, "bulletin-"+slug+".html"),
		PrintHTML:   filepath.Join(dir, "bulletin-print-"+slug+".html"),
		PrintPDF:    filepath.Join(dir, "bulletin-print-"+slug+".pdf"),
		BookletHTML: filepath.Join(dir, "bulletin-booklet-"+slug+".html"),
		BookletPDF:  filepath.Join(dir, "bulletin-booklet-"+slug+".pdf"),
	}
}

// CleanOutputs deletes .html and .pdf files in dir last modified before
// now minus OutputRetention. A missing dir is not an error.
func CleanOutputs(dir string, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read output dir: %w", err)
	}

	cutoff := now.Add(-OutputRetention)
	var removed []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".html" && ext != ".pdf" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
				return removed, fmt.Errorf("remove %s: %w", e.Name(), err)
			}
			removed = append(removed, e.Name())
		}
	}
	return removed, nil
}
