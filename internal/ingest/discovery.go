package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	apperrors "pipeledger/internal/errors"
	"pipeledger/pkg/contracts/domain"
)

// Supported file formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// publishLayout is the timestamp part of a bulletin file name.
const publishLayout = "20060102T150405"

var fileNamePattern = regexp.MustCompile(`(?i)^(.+)_(\d{8}T\d{6})\.(csv|xlsx)$`)

// File is a bulletin file found in the inbox.
type File struct {
	Path      string
	Name      string
	Source    string
	Published time.Time
	Format    string
	Size      int64
}

// ID is the bulletin identifier: the file name, so a CSV and an XLSX
// published in the same second stay distinct.
func (f File) ID() string { return f.Name }

// Watermark is the watermark a successful merge of f leaves behind.
func (f File) Watermark() domain.Watermark {
	return domain.Watermark{Source: f.Source, Published: f.Published, BulletinID: f.ID()}
}

// ParseFileName reads source, publish time and format from a bulletin file name.
func ParseFileName(path string) (File, error) {
	name := filepath.Base(path)
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return File{}, apperrors.NewValidationError(
			fmt.Sprintf("file name %q does not match <source>_<YYYYMMDDTHHMMSS>.csv|xlsx", name), nil)
	}
	published, err := time.ParseInLocation(publishLayout, strings.ToUpper(m[2]), time.UTC)
	if err != nil {
		return File{}, apperrors.NewValidationError("invalid publish time in "+name, err)
	}
	return File{
		Path:      path,
		Name:      name,
		Source:    strings.ToLower(m[1]),
		Published: published,
		Format:    strings.ToLower(m[3]),
	}, nil
}

// FileName builds the canonical file name of a bulletin.
func FileName(source string, published time.Time, format string) string {
	return fmt.Sprintf("%s_%s.%s", strings.ToLower(source), published.UTC().Format(publishLayout), format)
}

// WatermarkReader returns the newest merged bulletin of a source.
type WatermarkReader interface {
	Watermark(ctx context.Context, source string) (domain.Watermark, bool, error)
}

// Discovery lists pending bulletin files.
type Discovery struct {
	inbox string
	marks WatermarkReader
}

// NewDiscovery creates a Discovery over the inbox directory.
func NewDiscovery(inbox string, marks WatermarkReader) *Discovery {
	return &Discovery{inbox: inbox, marks: marks}
}

// Pending returns the bulletin files ordered after their source's watermark
// by (publish time, ID), oldest first. Files with unrecognized names are ignored.
func (d *Discovery) Pending(ctx context.Context) ([]File, error) {
	entries, err := os.ReadDir(d.inbox)
	if err != nil {
		return nil, apperrors.NewIOError("read inbox "+d.inbox, err)
	}

	marks := make(map[string]*domain.Watermark)
	var files []File
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		f, err := ParseFileName(filepath.Join(d.inbox, entry.Name()))
		if err != nil {
			continue
		}

		wm, seen := marks[f.Source]
		if !seen {
			w, found, err := d.marks.Watermark(ctx, f.Source)
			if err != nil {
				return nil, err
			}
			if found {
				wm = &w
			}
			marks[f.Source] = wm
		}
		if wm != nil && !f.Watermark().After(*wm) {
			continue
		}

		if info, err := entry.Info(); err == nil {
			f.Size = info.Size()
		}
		files = append(files, f)
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].Published.Equal(files[j].Published) {
			return files[i].Published.Before(files[j].Published)
		}
		return files[i].ID() < files[j].ID()
	})
	return files, nil
}
