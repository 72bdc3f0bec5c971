package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/extract"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pathstore"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/pipeline/mocks"
)

const readme = "# Getting Started\n\nSome text.\n\n## Install\n\nMore text.\n"

var hashA = strings.Repeat("a", 64)

func testConfig() config.Config {
	return config.Config{
		WorkerCount:      1,
		MaxQueueSize:     10,
		MaxUploadBytes:   1 << 20,
		JobTTL:           time.Hour,
		LegacyWhitespace: true,
	}
}

func newTestServer(t *testing.T, cfg config.Config, store pipeline.Store) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := extract.NewEngine(extract.Config{}, nil, nil, extract.NewLatencyStats(time.Hour), log)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	orch := pipeline.NewOrchestrator(cfg, engine, store, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, log, cfg)
}

type part struct {
	field, filename, content string
}

func multipartRequest(t *testing.T, path string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename != "" {
			fw, err := mw.CreateFormFile(p.field, p.filename)
			if err != nil {
				t.Fatal(err)
			}
			fw.Write([]byte(p.content))
			continue
		}
		if err := mw.WriteField(p.field, p.content); err != nil {
			t.Fatal(err)
		}
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) outline.Result {
	t.Helper()
	var res outline.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return res
}

func TestHealth(t *testing.T) {
	cfg := testConfig()
	cfg.OutlineAPIKey = "secret"
	s := newTestServer(t, cfg, nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	cfg := testConfig()
	cfg.OutlineAPIKey = "secret"
	s := newTestServer(t, cfg, nil)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/stats/extract", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats/extract", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	if rec := serve(s, req); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/stats/extract", nil)
	req.Header.Set("Authorization", "Bearer secret")
	if rec := serve(s, req); rec.Code != http.StatusOK {
		t.Errorf("valid token: expected 200, got %d", rec.Code)
	}
}

func TestAuthDisabledWithoutKey(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	if rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/stats/extract", nil)); rec.Code != http.StatusOK {
		t.Errorf("expected 200 without configured key, got %d", rec.Code)
	}
}

func TestOutline_LegacySpacing(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec := serve(s, multipartRequest(t, "/api/outline", part{"file", "readme.md", readme}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	res := decodeResult(t, rec)
	if !strings.HasSuffix(res.Title, "  ") {
		t.Errorf("expected title with two trailing spaces, got %q", res.Title)
	}
	if len(res.Outline) != 2 || res.Outline[0].Text != "Getting Started " || res.Outline[1].Text != "Install " {
		t.Errorf("unexpected outline %+v", res.Outline)
	}
	if !strings.Contains(rec.Body.String(), `"level":"H1"`) {
		t.Errorf("expected textual levels in %s", rec.Body.String())
	}
}

func TestOutline_PlainSpacing(t *testing.T) {
	cfg := testConfig()
	cfg.LegacyWhitespace = false
	s := newTestServer(t, cfg, nil)

	res := decodeResult(t, serve(s, multipartRequest(t, "/api/outline", part{"file", "readme.md", readme})))
	if len(res.Outline) != 2 || res.Outline[0].Text != "Getting Started" {
		t.Errorf("unexpected outline %+v", res.Outline)
	}
}

func TestOutline_RequiredSectionsOverride(t *testing.T) {
	cfg := testConfig()
	cfg.LegacyWhitespace = false
	s := newTestServer(t, cfg, nil)
	doc := "field notes\nsee the revision history below\nplain words only here\n"

	res := decodeResult(t, serve(s, multipartRequest(t, "/api/outline", part{"file", "notes.txt", doc})))
	found := false
	for _, h := range res.Outline {
		if h.Text == "Revision History" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected injected Revision History, got %+v", res.Outline)
	}

	res = decodeResult(t, serve(s, multipartRequest(t, "/api/outline",
		part{"file", "notes.txt", doc},
		part{"required_sections", "", ""},
	)))
	for _, h := range res.Outline {
		if h.Text == "Revision History" {
			t.Fatalf("empty label list should disable injection, got %+v", res.Outline)
		}
	}

	res = decodeResult(t, serve(s, multipartRequest(t, "/api/outline",
		part{"file", "notes.txt", doc},
		part{"rules", "", "required_sections: [Plain Words]\n"},
	)))
	found = false
	for _, h := range res.Outline {
		if h.Text == "Revision History" {
			t.Errorf("rules labels should replace the defaults, got %+v", res.Outline)
		}
		if h.Text == "Plain Words" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected injected Plain Words, got %+v", res.Outline)
	}
}

func TestOutline_MalformedRulesDisableInjection(t *testing.T) {
	cfg := testConfig()
	cfg.LegacyWhitespace = false
	s := newTestServer(t, cfg, nil)
	doc := "field notes\nsee the revision history below\n"

	rec := serve(s, multipartRequest(t, "/api/outline",
		part{"file", "notes.txt", doc},
		part{"rules", "", "required_sections: [Revision"},
	))
	if rec.Code != http.StatusOK {
		t.Fatalf("malformed rules must not fail the document, got %d", rec.Code)
	}
	for _, h := range decodeResult(t, rec).Outline {
		if h.Text == "Revision History" {
			t.Fatalf("malformed rules should disable injection, got %s", rec.Body.String())
		}
	}
}

func TestParseLabels(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"Revision History, Acknowledgements"}, []string{"Revision History", "Acknowledgements"}},
		{[]string{`["Glossary", " "]`}, []string{"Glossary"}},
		{[]string{`["Glossary"`}, []string{}},
		{[]string{""}, []string{}},
	}
	for _, tt := range tests {
		got := parseLabels(tt.in)
		if got == nil || len(got) != len(tt.want) {
			t.Errorf("parseLabels(%q) = %#v, want %q", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseLabels(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestOutline_BadRequests(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	tests := []struct {
		name  string
		parts []part
		code  int
	}{
		{"no file", []part{{"title", "", "x"}}, http.StatusBadRequest},
		{"unsupported", []part{{"file", "data.csv", "a,b"}}, http.StatusBadRequest},
		{"bad strategy", []part{{"file", "a.md", readme}, {"strategies", "", "toc,guess"}}, http.StatusBadRequest},
		{"bad echo flag", []part{{"file", "a.md", readme}, {"drop_title_echoes", "", "maybe"}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, multipartRequest(t, "/api/outline", tt.parts...))
			if rec.Code != tt.code {
				t.Errorf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestOutline_TooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxUploadBytes = 16
	s := newTestServer(t, cfg, nil)

	rec := serve(s, multipartRequest(t, "/api/outline", part{"file", "readme.md", readme}))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func pollJob(t *testing.T, s *Server, id string) pipeline.JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for {
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/jobs/"+id, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status poll: %d", rec.Code)
		}
		var snap pipeline.JobSnapshot
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatal(err)
		}
		if snap.Status.Done() {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s stuck in %q", id, snap.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestJobs_SubmitAndPoll(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec := serve(s, multipartRequest(t, "/api/jobs", part{"file", "readme.md", readme}))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var accepted map[string]any
	json.Unmarshal(rec.Body.Bytes(), &accepted)
	id, _ := accepted["job_id"].(string)
	if id == "" {
		t.Fatalf("missing job_id in %v", accepted)
	}
	if accepted["content_hash"] != pipeline.ContentHashHex([]byte(readme)) {
		t.Errorf("unexpected content hash %v", accepted["content_hash"])
	}

	snap := pollJob(t, s, id)
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("expected completed, got %q (%v)", snap.Status, snap.Errors)
	}
	if snap.Result == nil || len(snap.Result.Outline) != 2 || snap.Result.Outline[0].Text != "Getting Started " {
		t.Errorf("unexpected result %+v", snap.Result)
	}
}

func TestJobs_UnknownJob(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	if rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestJobs_BatchIsolatesBadFiles(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	rec := serve(s, multipartRequest(t, "/api/jobs/batch",
		part{"files", "readme.md", readme},
		part{"files", "sheet.csv", "a,b"},
	))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var body struct {
		Jobs []map[string]any `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Jobs) != 2 {
		t.Fatalf("expected 2 entries, got %v", body.Jobs)
	}
	if body.Jobs[0]["job_id"] == nil || body.Jobs[0]["error"] != nil {
		t.Errorf("first file should be queued: %v", body.Jobs[0])
	}
	if body.Jobs[1]["error"] == nil {
		t.Errorf("second file should be rejected: %v", body.Jobs[1])
	}
	pollJob(t, s, body.Jobs[0]["job_id"].(string))
}

func TestDocuments_NoStore(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	if rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/documents/"+hashA, nil)); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET: expected 503, got %d", rec.Code)
	}
	if rec := serve(s, httptest.NewRequest(http.MethodDelete, "/api/documents/"+hashA, nil)); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("DELETE: expected 503, got %d", rec.Code)
	}
}

func TestDocuments_WithStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	s := newTestServer(t, testConfig(), store)

	store.EXPECT().GetOutline(gomock.Any(), hashA).Return(&pathstore.Entry{
		ContentHash: hashA,
		Filename:    "guide.pdf",
		Result: outline.Result{
			Title:   "Guide",
			Outline: outline.Outline{{Level: outline.H2, Text: "Scope", Page: 1}},
		},
	}, nil)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/documents/"+hashA, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Filename string         `json:"filename"`
		Result   outline.Result `json:"result"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Filename != "guide.pdf" || body.Result.Title != "Guide  " || body.Result.Outline[0].Text != "Scope " {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	hashB := strings.Repeat("b", 64)
	store.EXPECT().GetOutline(gomock.Any(), hashB).Return(nil, nil)
	if rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/documents/"+hashB, nil)); rec.Code != http.StatusNotFound {
		t.Errorf("missing: expected 404, got %d", rec.Code)
	}

	if rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/documents/xyz", nil)); rec.Code != http.StatusBadRequest {
		t.Errorf("bad hash: expected 400, got %d", rec.Code)
	}

	store.EXPECT().DeleteOutline(gomock.Any(), hashA).Return(nil)
	if rec := serve(s, httptest.NewRequest(http.MethodDelete, "/api/documents/"+hashA, nil)); rec.Code != http.StatusOK {
		t.Errorf("DELETE: expected 200, got %d", rec.Code)
	}
}

func TestExtractStats(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)
	serve(s, multipartRequest(t, "/api/outline", part{"file", "readme.md", readme}))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/stats/extract", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Stats extract.StatsSnapshot `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Stats.Count != 1 {
		t.Errorf("expected one recorded extraction, got %+v", body.Stats)
	}
}
