package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"obra/internal/records"
)

// rewrite sends every request to the test server instead of the public API.
type rewrite struct {
	target *url.URL
}

func (r rewrite) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = r.target.Scheme
	out.URL.Host = r.target.Host
	out.Host = r.target.Host
	return http.DefaultTransport.RoundTrip(out)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	u, _ := url.Parse(srv.URL)
	return New("secret", WithHTTPClient(&http.Client{Transport: rewrite{target: u}}))
}

func pageJSON(id, title string) string {
	return fmt.Sprintf(`{"object":"page","id":%q,"properties":{"Name":{"id":"title","type":"title","title":[{"type":"text","text":{"content":%q},"plain_text":%q}]}}}`, id, title, title)
}

func TestQueryFollowsCursors(t *testing.T) {
	var mu sync.Mutex
	var cursors []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/databases/db1/query") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		cursor, _ := body["start_cursor"].(string)
		mu.Lock()
		cursors = append(cursors, cursor)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if cursor == "" {
			fmt.Fprintf(w, `{"object":"list","results":[%s,%s],"has_more":true,"next_cursor":"c2"}`,
				pageJSON("p1", "Alpha"), pageJSON("p2", "Beta"))
			return
		}
		fmt.Fprintf(w, `{"object":"list","results":[%s],"has_more":false,"next_cursor":null}`,
			pageJSON("p3", "Gamma"))
	})

	pages, err := client.Query(context.Background(), "db1", records.Query{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}
	if got := records.Title(pages[2]); got != "Gamma" {
		t.Errorf("third title = %q, want Gamma", got)
	}
	if len(cursors) != 2 || cursors[0] != "" || cursors[1] != "c2" {
		t.Errorf("cursors = %v, want [\"\" c2]", cursors)
	}
}

func TestQueryEmptyDatabaseID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected, got %s", r.URL.Path)
	})
	pages, err := client.Query(context.Background(), "", records.Query{})
	if err != nil || len(pages) != 0 {
		t.Fatalf("got %v, %v; want empty result", pages, err)
	}
}

func TestQueryUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"object":"error","status":400,"code":"validation_error","message":"bad"}`)
	})
	if _, err := client.Query(context.Background(), "db1", records.Query{}); err == nil {
		t.Fatal("expected error")
	}
}
