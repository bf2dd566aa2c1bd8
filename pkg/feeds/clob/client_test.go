package clob

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetMidpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/midpoint" {
			t.Errorf("Expected path /midpoint, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("token_id") != "tok-1" {
			t.Errorf("Expected token_id=tok-1, got %s", r.URL.Query().Get("token_id"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"mid": "0.55"})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	mid, err := client.GetMidpoint(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("GetMidpoint failed: %v", err)
	}
	if mid != 0.55 {
		t.Errorf("Midpoint = %v, want 0.55", mid)
	}
}

func TestSnapshotFallsBackToBuyPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/midpoint":
			// One-sided book: no midpoint.
			json.NewEncoder(w).Encode(map[string]string{"mid": "0"})
		case "/price":
			if r.URL.Query().Get("side") != "buy" {
				t.Errorf("Expected side=buy, got %s", r.URL.Query().Get("side"))
			}
			json.NewEncoder(w).Encode(map[string]string{"price": "0.97"})
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	price, err := client.Snapshot(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if price != 0.97 {
		t.Errorf("Snapshot = %v, want buy-price fallback 0.97", price)
	}
}

func TestSnapshotPrefersMidpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/price" {
			t.Error("Snapshot should not hit /price when the midpoint is usable")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"mid": "0.42"})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	price, err := client.Snapshot(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if price != 0.42 {
		t.Errorf("Snapshot = %v, want 0.42", price)
	}
}

func TestGetPriceHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/prices-history" {
			t.Errorf("Expected path /prices-history, got %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("market") != "tok-1" {
			t.Errorf("Expected market=tok-1, got %s", query.Get("market"))
		}
		if query.Get("fidelity") != "5" {
			t.Errorf("Expected fidelity=5, got %s", query.Get("fidelity"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string][]HistoryPoint{
			"history": {
				{Timestamp: 1700000000, Price: 0.4},
				{Timestamp: 1700000300, Price: 0.45},
			},
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	points, err := client.GetPriceHistory(context.Background(), "tok-1", 0, 0, 5)
	if err != nil {
		t.Fatalf("GetPriceHistory failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}
	if points[1].Price != 0.45 {
		t.Errorf("Wrong price: got %v", points[1].Price)
	}
}

func TestGetMidpointError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	if _, err := client.GetMidpoint(context.Background(), "tok-1"); err == nil {
		t.Error("Expected error on 404 response")
	}
}
