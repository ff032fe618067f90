package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSourceCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write source csv: %v", err)
	}
	return path
}

func TestReadSources(t *testing.T) {
	path := writeSourceCSV(t, `agency_id;codelistID;Name;URL
SDMX;SDMX:CL_FREQ(2.1);Frequency;https://registry.sdmx.org/sdmx/v2/structure/codelist/SDMX/CL_FREQ/2.1
ESTAT;ESTAT:CL_AREA(1.8);Geopolitical entity;https://registry.sdmx.org/sdmx/v2/structure/codelist/ESTAT/CL_AREA/1.8
`)

	sources, err := ReadSources(path)
	if err != nil {
		t.Fatalf("ReadSources failed: %v", err)
	}

	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(sources))
	}
	want := Source{
		AgencyID:   "SDMX",
		CodelistID: "SDMX:CL_FREQ(2.1)",
		Name:       "Frequency",
		URL:        "https://registry.sdmx.org/sdmx/v2/structure/codelist/SDMX/CL_FREQ/2.1",
	}
	if sources[0] != want {
		t.Errorf("Source = %+v, want %+v", sources[0], want)
	}
}

func TestReadSources_BadHeader(t *testing.T) {
	path := writeSourceCSV(t, `agency;id;name;url
SDMX;SDMX:CL_FREQ(2.1);Frequency;http://x
`)

	if _, err := ReadSources(path); err == nil {
		t.Fatal("Expected error for unexpected header")
	}
}

func TestReadSources_WrongFieldCount(t *testing.T) {
	path := writeSourceCSV(t, `agency_id;codelistID;Name;URL
SDMX;SDMX:CL_FREQ(2.1);Frequency
`)

	if _, err := ReadSources(path); err == nil {
		t.Fatal("Expected error for short record")
	}
}

func TestReadSources_MissingFile(t *testing.T) {
	if _, err := ReadSources(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestDownloader_Run(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/xml" {
			t.Errorf("Expected Accept application/xml, got %q", r.Header.Get("Accept"))
		}
		switch r.URL.Path {
		case "/freq":
			_, _ = w.Write([]byte("<freq/>"))
		case "/area":
			_, _ = w.Write([]byte("<area/>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	sources := []Source{
		{AgencyID: "SDMX", CodelistID: "SDMX:CL_FREQ(2.1)", URL: server.URL + "/freq"},
		{AgencyID: "ESTAT", CodelistID: "ESTAT:CL_GONE(1.0)", URL: server.URL + "/missing"},
		{AgencyID: "ESTAT", CodelistID: "ESTAT:CL_AREA(1.8)", URL: server.URL + "/area"},
	}

	dir := filepath.Join(t.TempDir(), "xml")
	d := NewDownloader(dir, 5*time.Second)
	manifest := NewManifest()

	files, err := d.Run(context.Background(), sources, manifest)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// the failed download does not consume a sequence number
	want := []string{
		filepath.Join(dir, "1-SDMX:CL_FREQ(2.1).xml"),
		filepath.Join(dir, "2-ESTAT:CL_AREA(1.8).xml"),
	}
	if len(files) != len(want) {
		t.Fatalf("Expected %d files, got %v", len(want), files)
	}
	for i, path := range want {
		if files[i] != path {
			t.Errorf("File %d = %q, want %q", i, files[i], path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Errorf("Downloaded file missing: %v", err)
			continue
		}
		if len(data) == 0 {
			t.Errorf("Downloaded file %s is empty", path)
		}
	}

	state := manifest.Codelists["SDMX:CL_FREQ(2.1)"]
	if state.File != "1-SDMX:CL_FREQ(2.1).xml" || state.Size != int64(len("<freq/>")) {
		t.Errorf("Unexpected manifest state %+v", state)
	}
	failed := manifest.Failed()
	if _, ok := failed["ESTAT:CL_GONE(1.0)"]; !ok || len(failed) != 1 {
		t.Errorf("Expected the 404 recorded as failed, got %v", failed)
	}
	if manifest.LastFetch.IsZero() {
		t.Error("Expected last fetch timestamp set")
	}
}

func TestDownloader_Run_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDownloader(t.TempDir(), time.Second)
	_, err := d.Run(ctx, []Source{{CodelistID: "x", URL: "http://example.invalid"}}, NewManifest())
	if err == nil {
		t.Fatal("Expected context error")
	}
}

func TestDownloader_Run_NoSources(t *testing.T) {
	d := NewDownloader(t.TempDir(), time.Second)
	manifest := NewManifest()

	files, err := d.Run(context.Background(), nil, manifest)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("Expected no files, got %v", files)
	}
}
