// Package download fetches codelist XML documents listed in a
// semicolon-separated source CSV and records the outcome in a JSON
// manifest.
package download

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// SourceColumns is the expected header of the source CSV.
var SourceColumns = []string{"agency_id", "codelistID", "Name", "URL"}

// Source is one row of the source CSV: a codelist to download.
type Source struct {
	AgencyID   string
	CodelistID string
	Name       string
	URL        string
}

// ReadSources parses the semicolon-separated source CSV. The header row
// is required and validated against SourceColumns.
func ReadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = len(SourceColumns)

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read source csv header: %w", err)
	}
	for i, col := range SourceColumns {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected source csv header: got %q, want %q", header[i], col)
		}
	}

	var sources []Source
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read source csv: %w", err)
		}
		sources = append(sources, Source{
			AgencyID:   record[0],
			CodelistID: record[1],
			Name:       record[2],
			URL:        record[3],
		})
	}
	return sources, nil
}

// Downloader fetches codelist documents over HTTP.
type Downloader struct {
	// Dir receives the downloaded XML files.
	Dir string

	// Client is the HTTP client; its Timeout bounds each request.
	Client *http.Client
}

// NewDownloader builds a downloader writing to dir with the given
// per-request timeout.
func NewDownloader(dir string, timeout time.Duration) *Downloader {
	return &Downloader{
		Dir:    dir,
		Client: &http.Client{Timeout: timeout},
	}
}

// Run downloads every source, saving successful responses as
// "N-<codelistID>.xml" where N counts successes starting at 1. Failures
// are logged, recorded in the manifest and skipped; the batch
// continues. Returns the written file paths.
func (d *Downloader) Run(ctx context.Context, sources []Source, manifest *Manifest) ([]string, error) {
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	var files []string
	count := 0
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return files, err
		}

		data, err := d.fetch(ctx, src.URL)
		if err != nil {
			slog.Error("Download failed", "codelist", src.CodelistID, "url", src.URL, "error", err)
			manifest.SetError(src.CodelistID, src.URL, err.Error())
			continue
		}

		count++
		name := fmt.Sprintf("%d-%s.xml", count, src.CodelistID)
		path := filepath.Join(d.Dir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return files, fmt.Errorf("failed to save %s: %w", name, err)
		}

		manifest.SetState(src.CodelistID, CodelistState{
			URL:       src.URL,
			File:      name,
			FetchedAt: time.Now(),
			Size:      int64(len(data)),
		})
		files = append(files, path)
		slog.Info("Downloaded codelist", "codelist", src.CodelistID, "file", name, "bytes", len(data))
	}

	manifest.UpdateLastFetch()
	slog.Info("Download stage finished", "requested", len(sources), "downloaded", count, "failed", len(sources)-count)
	return files, nil
}

func (d *Downloader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
