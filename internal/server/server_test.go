package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jackzampolin/pagemark/internal/binding"
	"github.com/jackzampolin/pagemark/internal/convert"
	"github.com/jackzampolin/pagemark/internal/home"
	"github.com/jackzampolin/pagemark/internal/pagesource"
	"github.com/jackzampolin/pagemark/internal/server/endpoints"
)

// TestServer_SessionLifecycle drives a full conversion over HTTP: session
// state, events, finalize, asset download, delete.
func TestServer_SessionLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New: %v", err)
	}

	port := "18090" // Non-standard port for testing
	srv, err := New(Config{Host: "127.0.0.1", Port: port, Home: h})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	serverCtx, serverCancel := context.WithCancel(ctx)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(serverCtx)
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%s", port)
	if err := waitForServer(ctx, baseURL, 10*time.Second); err != nil {
		serverCancel()
		t.Fatalf("server did not start: %v", err)
	}

	// Sessions over the HTTP create path need a real PDF; register a
	// mock-backed conversion directly instead.
	conversion, err := convert.New(ctx, convert.Request{
		PDFPath:   "paper.pdf",
		Source:    pagesource.NewMockSource("A Title\nFigure 1 shows everything."),
		OutputDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("convert.New: %v", err)
	}
	srv.Conversions().Add(conversion)
	sessionURL := baseURL + "/api/sessions/" + conversion.ID()

	t.Run("health_endpoint", func(t *testing.T) {
		var resp endpoints.HealthResponse
		getJSON(t, baseURL+"/health", &resp)
		if resp.Status != "ok" {
			t.Errorf("health.Status = %q, want %q", resp.Status, "ok")
		}
	})

	t.Run("get_session", func(t *testing.T) {
		var resp endpoints.SessionResponse
		getJSON(t, sessionURL, &resp)
		if resp.ID != conversion.ID() {
			t.Errorf("session ID = %q, want %q", resp.ID, conversion.ID())
		}
		if len(resp.Snapshot.References) != 1 {
			t.Errorf("expected 1 reference, got %d", len(resp.Snapshot.References))
		}
	})

	t.Run("list_sessions", func(t *testing.T) {
		var resp endpoints.ListSessionsResponse
		getJSON(t, baseURL+"/api/sessions", &resp)
		if resp.Total != 1 {
			t.Errorf("expected 1 session, got %d", resp.Total)
		}
	})

	t.Run("page_geometry", func(t *testing.T) {
		var resp endpoints.PageResponse
		getJSON(t, sessionURL+"/pages/0", &resp)
		if resp.Transform.Scale != 2.0 {
			t.Errorf("expected default preview zoom 2.0, got %f", resp.Transform.Scale)
		}

		out, err := http.Get(baseURL + resp.ImagePath)
		if err != nil {
			t.Fatalf("page image: %v", err)
		}
		defer out.Body.Close()
		if out.StatusCode != http.StatusOK {
			t.Errorf("page image status = %d", out.StatusCode)
		}
		if ct := out.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("page image content type = %q", ct)
		}
	})

	t.Run("page_out_of_range", func(t *testing.T) {
		resp, err := http.Get(sessionURL + "/pages/9")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
		}
	})

	t.Run("bind_via_events", func(t *testing.T) {
		events := []binding.Event{
			{Type: binding.EventNavigate, Transform: &binding.Transform{Scale: 2}},
			{Type: binding.EventSelect, AssetName: "figure1"},
			{Type: binding.EventPointerDown, Point: binding.Point{X: 20, Y: 20}},
			{Type: binding.EventPointerRelease, Point: binding.Point{X: 220, Y: 220}},
		}
		var last endpoints.EventResponse
		for _, ev := range events {
			postJSON(t, sessionURL+"/events", ev, &last)
			if last.Rejected != "" {
				t.Fatalf("event %s rejected: %s", ev.Type, last.Rejected)
			}
		}
		if last.Snapshot.State != binding.StateBound {
			t.Errorf("expected bound state, got %s", last.Snapshot.State)
		}
	})

	t.Run("rejected_event_keeps_session", func(t *testing.T) {
		var resp endpoints.EventResponse
		postJSON(t, sessionURL+"/events",
			binding.Event{Type: binding.EventSelect, AssetName: "figure99"}, &resp)
		if resp.Rejected == "" {
			t.Error("expected rejection for unknown reference")
		}
		if resp.Snapshot.SessionID == "" {
			t.Error("snapshot should still be emitted")
		}
	})

	t.Run("finalize_and_download_asset", func(t *testing.T) {
		resp, err := http.Post(sessionURL+"/finalize", "application/json", nil)
		if err != nil {
			t.Fatalf("finalize: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("finalize status = %d", resp.StatusCode)
		}

		var result convert.Result
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			t.Fatalf("decode result: %v", err)
		}
		if len(result.Assets) != 1 {
			t.Fatalf("expected 1 asset, got %d", len(result.Assets))
		}

		img, err := http.Get(sessionURL + "/assets/figure1")
		if err != nil {
			t.Fatalf("asset download: %v", err)
		}
		defer img.Body.Close()
		if img.StatusCode != http.StatusOK {
			t.Errorf("asset status = %d", img.StatusCode)
		}
		if ct := img.Header.Get("Content-Type"); ct != "image/png" {
			t.Errorf("asset content type = %q", ct)
		}
	})

	t.Run("delete_session", func(t *testing.T) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodDelete, sessionURL, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("delete status = %d", resp.StatusCode)
		}

		gone, err := http.Get(sessionURL)
		if err != nil {
			t.Fatalf("get after delete: %v", err)
		}
		defer gone.Body.Close()
		if gone.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404 after delete, got %d", gone.StatusCode)
		}
	})

	serverCancel()
	select {
	case err := <-serverErr:
		if err != nil {
			t.Errorf("server error on shutdown: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Error("server did not shut down in time")
	}

	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}

func TestServer_RequiresHome(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error when home directory is missing")
	}
}

// waitForServer polls the health endpoint until it responds or the timeout
// elapses.
func waitForServer(ctx context.Context, baseURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return fmt.Errorf("server at %s not ready after %s", baseURL, timeout)
}

func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func postJSON(t *testing.T, url string, body, out any) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST %s status = %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}
