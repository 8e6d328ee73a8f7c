package fieldbook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token", 5*time.Second, 0)
}

func TestFetchAllPaginates(t *testing.T) {
	// 3 pages: two full, one short
	total := 2*defaultPageSize + 5
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("missing bearer token, got %q", got)
		}
		limit, _ := parseQueryInt(r, "limit")
		offset, _ := parseQueryInt(r, "offset")

		var records []map[string]any
		for i := offset; i < offset+limit && i < total; i++ {
			records = append(records, map[string]any{"record_id": fmt.Sprintf("r%d", i)})
		}
		json.NewEncoder(w).Encode(map[string]any{"records": records})
	})

	records, err := client.FetchAll(context.Background(), "activity-app")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(records) != total {
		t.Errorf("expected %d records, got %d", total, len(records))
	}
	if records[0]["record_id"] != "r0" {
		t.Errorf("unexpected first record: %v", records[0])
	}
}

func TestFetchAllCustomPageSize(t *testing.T) {
	total := 7
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		limit, _ := parseQueryInt(r, "limit")
		if limit != 3 {
			t.Errorf("expected configured limit 3, got %d", limit)
		}
		offset, _ := parseQueryInt(r, "offset")
		var records []map[string]any
		for i := offset; i < offset+limit && i < total; i++ {
			records = append(records, map[string]any{"record_id": fmt.Sprintf("r%d", i)})
		}
		json.NewEncoder(w).Encode(map[string]any{"records": records})
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "test-token", 5*time.Second, 3)
	records, err := client.FetchAll(context.Background(), "activity-app")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(records) != total {
		t.Errorf("expected %d records, got %d", total, len(records))
	}
	// Pages of 3, 3, 1; the short page stops the loop
	if requests != 3 {
		t.Errorf("expected 3 page requests, got %d", requests)
	}
}

func TestFetchAllServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	if _, err := client.FetchAll(context.Background(), "activity-app"); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestFetchAllRequiresAppID(t *testing.T) {
	client := NewClient("http://unused", "t", time.Second, 0)
	if _, err := client.FetchAll(context.Background(), ""); err == nil {
		t.Fatal("expected error on empty app id")
	}
}

func TestFilterRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/apps/enrollment-app/records/search" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload struct {
			Filters map[string]string `json:"filters"`
			Limit   int               `json:"limit"`
			Offset  int               `json:"offset"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("bad search payload: %v", err)
		}
		if payload.Filters["status"] != "Active" {
			t.Errorf("expected status filter, got %v", payload.Filters)
		}
		json.NewEncoder(w).Encode(map[string]any{"records": []map[string]any{
			{"record_id": "e1", "status": "Active"},
			{"record_id": "e3", "status": "Active"},
		}})
	})

	count, err := client.CountActiveEnrollments(context.Background(), "enrollment-app")
	if err != nil {
		t.Fatalf("CountActiveEnrollments failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 active enrollments, got %d", count)
	}
}

func parseQueryInt(r *http.Request, key string) (int, error) {
	var v int
	_, err := fmt.Sscanf(r.URL.Query().Get(key), "%d", &v)
	return v, err
}
