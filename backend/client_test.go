package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func drainSource(t *testing.T, src interface {
	Next(ctx context.Context) (string, error)
}) string {
	t.Helper()
	var sb strings.Builder
	for {
		frag, err := src.Next(context.Background())
		sb.WriteString(frag)
		if err == io.EOF {
			return sb.String()
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
	}
}

func TestStreamPlainChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		var payload ChatPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		if payload.UserMessage != "hi" || payload.APIKey != "sk-test" {
			t.Errorf("payload = %+v", payload)
		}
		io.WriteString(w, "Hello")
		io.WriteString(w, " there")
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	req, err := Build("hi", "", "", "", Credentials{APIKey: "sk-test"})
	if err != nil {
		t.Fatal(err)
	}

	src, err := client.Stream(context.Background(), req)
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if got := drainSource(t, src); got != "Hello there" {
		t.Errorf("streamed = %q, want %q", got, "Hello there")
	}
}

func TestStreamDocumentChatFraming(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat-pdf" {
			t.Errorf("path = %q, want /api/chat-pdf", r.URL.Path)
		}
		io.WriteString(w, "data: The report\n\n")
		io.WriteString(w, "data: __TOOL_USAGE__search__TOOL_USAGE__\n\n")
		io.WriteString(w, "data:  says 42\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	req, err := Build("q", "doc-1", "", "", Credentials{APIKey: "sk", TavilyAPIKey: "tv"})
	if err != nil {
		t.Fatal(err)
	}

	src, err := client.Stream(context.Background(), req)
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	// Framing is stripped; marker text passes through for the parser.
	want := []string{"The report", "__TOOL_USAGE__search__TOOL_USAGE__", " says 42"}
	for i, w := range want {
		frag, err := src.Next(context.Background())
		if err != nil {
			t.Fatalf("Next() #%d error = %v", i, err)
		}
		if frag != w {
			t.Errorf("fragment #%d = %q, want %q", i, frag, w)
		}
	}
	if _, err := src.Next(context.Background()); err != io.EOF {
		t.Errorf("after [DONE]: err = %v, want io.EOF", err)
	}
}

func TestStreamErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail": "PDF not found"}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	req, err := Build("q", "doc-gone", "", "", Credentials{APIKey: "sk", TavilyAPIKey: "tv"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.Stream(context.Background(), req)
	if err == nil || !strings.Contains(err.Error(), "PDF not found") {
		t.Errorf("Stream() error = %v, want backend detail included", err)
	}
}

func TestStreamContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "partial")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	req, err := Build("hi", "", "", "", Credentials{APIKey: "sk"})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	src, err := client.Stream(ctx, req)
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if frag, err := src.Next(ctx); err != nil || frag != "partial" {
		t.Fatalf("Next() = %q, %v", frag, err)
	}

	cancel()
	if _, err := src.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next() after cancel error = %v, want context.Canceled", err)
	}
}

func TestListDocuments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/pdfs" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `[{"pdf_id": "a", "filename": "report.pdf", "chunks_count": 12}]`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatal(err)
	}

	records, err := client.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	want := DocumentRecord{PDFID: "a", Filename: "report.pdf", ChunksCount: 12}
	if records[0] != want {
		t.Errorf("record = %+v, want %+v", records[0], want)
	}
}

func TestDeleteDocument(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		gotPath = r.URL.Path
		io.WriteString(w, `{"message": "deleted"}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.DeleteDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	if gotPath != "/api/pdfs/doc-1" {
		t.Errorf("path = %q, want /api/pdfs/doc-1", gotPath)
	}
}

func TestUpload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0600); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart: %v", err)
		}
		if got := r.FormValue("api_key"); got != "sk-test" {
			t.Errorf("api_key = %q", got)
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("file part: %v", err)
		}
		defer f.Close()
		if header.Filename != "notes.pdf" {
			t.Errorf("filename = %q", header.Filename)
		}
		contents, _ := io.ReadAll(f)
		if string(contents) != "%PDF-1.4 fake" {
			t.Errorf("file contents = %q", contents)
		}
		io.WriteString(w, `{"pdf_id": "new-id", "filename": "notes.pdf", "status": "success", "message": "13 chunks created"}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	result, err := client.Upload(context.Background(), path, "sk-test")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if result.PDFID != "new-id" || result.Filename != "notes.pdf" {
		t.Errorf("result = %+v", result)
	}
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("path = %q", r.URL.Path)
		}
		io.WriteString(w, `{"status": "ok"}`)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
}

func TestNewClientNormalizesURL(t *testing.T) {
	client, err := NewClient("http://example.com:8000/")
	if err != nil {
		t.Fatal(err)
	}
	if got := client.BaseURL(); got != "http://example.com:8000" {
		t.Errorf("BaseURL() = %q", got)
	}
}
