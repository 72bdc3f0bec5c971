package embed

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHashing_Deterministic(t *testing.T) {
	h := NewHashing(0)
	if h.Dimension() != DefaultDimension {
		t.Fatalf("expected default dimension %d, got %d", DefaultDimension, h.Dimension())
	}
	a, _ := h.EmbedBatch(context.Background(), []string{"Revision History"})
	b, _ := h.EmbedBatch(context.Background(), []string{"Revision History"})
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("vectors differ at %d", i)
		}
	}
}

func TestHashing_CaseAndSpacingInsensitive(t *testing.T) {
	h := NewHashing(64)
	vecs, err := h.EmbedBatch(context.Background(), []string{"Table  of Contents", "table of contents"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sim := Cosine(vecs[0], vecs[1]); math.Abs(sim-1) > 1e-6 {
		t.Errorf("expected identical vectors, cosine %v", sim)
	}
}

func TestHashing_DistinctTexts(t *testing.T) {
	h := NewHashing(DefaultDimension)
	vecs, _ := h.EmbedBatch(context.Background(), []string{"Introduction", "Methods"})
	if sim := Cosine(vecs[0], vecs[1]); sim >= 0.5 {
		t.Errorf("expected dissimilar vectors, cosine %v", sim)
	}
}

func TestHashing_UnitLength(t *testing.T) {
	vecs, _ := NewHashing(128).EmbedBatch(context.Background(), []string{"Overview", ""})
	var sum float64
	for _, v := range vecs[0] {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Errorf("expected unit vector, squared norm %v", sum)
	}
	for _, v := range vecs[1] {
		if v != 0 {
			t.Fatal("expected zero vector for empty text")
		}
	}
}

func TestHashing_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewHashing(8).EmbedBatch(ctx, []string{"x"}); err == nil {
		t.Error("expected context error")
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	if _, ok := New(Config{}).(*Hashing); !ok {
		t.Error("expected hashing embedder without base URL")
	}
	if _, ok := New(Config{BaseURL: "http://localhost:1"}).(*Client); !ok {
		t.Error("expected client with base URL")
	}
}

func embeddingServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret", Model: "mini", BatchSize: 2})
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c
}

func writeEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req embedRequest
	json.NewDecoder(r.Body).Decode(&req)
	type item struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	}
	var resp struct {
		Data  []item `json:"data"`
		Model string `json:"model"`
	}
	resp.Model = req.Model
	// reversed order, the client must reassemble by index
	for i := len(req.Input) - 1; i >= 0; i-- {
		resp.Data = append(resp.Data, item{Embedding: []float32{float32(len(req.Input[i])), 1, 0}, Index: i})
	}
	json.NewEncoder(w).Encode(resp)
}

func TestClient_EmbedBatch(t *testing.T) {
	var calls atomic.Int32
	c := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		writeEmbeddings(w, r)
	})

	vecs, err := c.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 batched calls, got %d", calls.Load())
	}
	for i, want := range []float32{1, 2, 3} {
		if vecs[i][0] != want {
			t.Errorf("vector %d out of order: %v", i, vecs[i])
		}
	}
	if c.Dimension() != 3 {
		t.Errorf("expected auto-detected dimension 3, got %d", c.Dimension())
	}
	if c.Model() != "mini" {
		t.Errorf("unexpected model %q", c.Model())
	}
}

func TestClient_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	c := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		writeEmbeddings(w, r)
	})
	if _, err := c.EmbedBatch(context.Background(), []string{"a"}); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})
	_, err := c.EmbedBatch(context.Background(), []string{"a"})
	if !IsRetryable(err) {
		t.Errorf("expected wrapped retryable error, got %v", err)
	}
	if calls.Load() != MaxRetries {
		t.Errorf("expected %d calls, got %d", MaxRetries, calls.Load())
	}
}

func TestClient_PermanentError(t *testing.T) {
	var calls atomic.Int32
	c := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad model", http.StatusBadRequest)
	})
	_, err := c.EmbedBatch(context.Background(), []string{"a"})
	if err == nil || IsRetryable(err) {
		t.Errorf("expected permanent error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single call, got %d", calls.Load())
	}
}

func TestClient_MissingEmbedding(t *testing.T) {
	c := embeddingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"embedding":[1],"index":0}]}`))
	})
	if _, err := c.EmbedBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Error("expected error for missing slot")
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(errors.New("plain")) {
		t.Error("plain error should not be retryable")
	}
	if !IsRetryable(&RetryableError{StatusCode: 502}) {
		t.Error("RetryableError should be retryable")
	}
}

func TestBackoff(t *testing.T) {
	for attempt, base := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		got := Backoff(attempt)
		if got < base || got >= base+base/2 {
			t.Errorf("Backoff(%d) = %v, want in [%v, %v)", attempt, got, base, base+base/2)
		}
	}
	if got := Backoff(10); got < 30*time.Second || got >= 45*time.Second {
		t.Errorf("Backoff(10) = %v, want capped near 30s", got)
	}
}

func TestService_Lazy(t *testing.T) {
	s := NewService(Config{Dimension: 16})
	if s.emb != nil {
		t.Fatal("expected embedder to be built lazily")
	}
	if s.Dimension() != 16 || s.Model() != hashingModel {
		t.Errorf("unexpected service backend: %d %q", s.Dimension(), s.Model())
	}
	vecs, err := s.EmbedBatch(context.Background(), []string{"x"})
	if err != nil || len(vecs) != 1 || len(vecs[0]) != 16 {
		t.Errorf("unexpected result %v %v", vecs, err)
	}
}
