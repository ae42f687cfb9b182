package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestPage_CapturesContentType(t *testing.T) {
	// WHAT: Page returns body, status, and the content type header.
	// WHY: Loaders branch on content type for delegation.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>hi</body></html>"))
	}))
	defer srv.Close()

	f := New(Config{})
	res, err := f.Page(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if res.StatusCode != 200 || !strings.Contains(res.ContentType, "text/html") {
		t.Fatalf("res = %+v", res)
	}
	if !strings.Contains(string(res.Body), "hi") {
		t.Fatalf("body = %q", res.Body)
	}
}

func TestPage_ErrorStatus(t *testing.T) {
	// WHAT: 4xx/5xx responses surface as errors.
	// WHY: Loaders must fall back rather than parse error pages.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := New(Config{}).Page(context.Background(), srv.URL); err == nil {
		t.Fatal("expected status error")
	}
}

func TestPage_SizeCap(t *testing.T) {
	// WHAT: Bodies are truncated at MaxBytes.
	// WHY: A hostile server must not exhaust memory.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 1<<20))
	}))
	defer srv.Close()

	f := New(Config{MaxBytes: 1024})
	res, err := f.Page(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Body) != 1024 {
		t.Fatalf("body = %d bytes", len(res.Body))
	}
}

func TestDownload_SpoolsToTemp(t *testing.T) {
	// WHAT: Download writes the body to a temp file with the given ext.
	// WHY: Format loaders operate on paths, not bodies.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	path, res, err := New(Config{}).Download(context.Background(), srv.URL, ".pdf")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(path)
	if !strings.HasSuffix(path, ".pdf") {
		t.Fatalf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.4 fake" || len(res.Body) != len(data) {
		t.Fatalf("data = %q", data)
	}
}
