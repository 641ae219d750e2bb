//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8082")

type product struct {
	ID          int     `json:"id"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Quantity    int     `json:"quantity"`
}

func TestSystem_E2E_ProductLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	name := fmt.Sprintf("e2e_%d_%d", time.Now().Unix(), rand.IntN(100000))
	api := baseURL + "/api/products"

	var created product
	doJSON(t, http.MethodPost, api, map[string]any{
		"productName": name,
		"price":       125000,
		"image":       "",
		"quantity":    3,
	}, &created, http.StatusCreated)
	if created.ID == 0 {
		t.Fatalf("id missing: %#v", created)
	}
	itemURL := fmt.Sprintf("%s?id=%d", api, created.ID)

	doJSON(t, http.MethodPost, api, map[string]any{"productName": name}, nil, http.StatusBadRequest)

	var all []product
	doJSON(t, http.MethodGet, api, nil, &all, http.StatusOK)
	if !contains(all, created.ID) {
		t.Fatalf("created product %d not listed", created.ID)
	}

	var updated product
	doJSON(t, http.MethodPut, itemURL, map[string]any{"quantity": 7}, &updated, http.StatusOK)
	if updated.Quantity != 7 || updated.ProductName != name {
		t.Fatalf("unexpected update result: %#v", updated)
	}

	if os.Getenv("E2E_RESTART_CATALOG") == "1" {
		restartService(t, ctx, "catalog")
		waitReady(t, ctx, baseURL+"/readyz")

		var got product
		doJSON(t, http.MethodGet, itemURL, nil, &got, http.StatusOK)
		if got != updated {
			t.Fatalf("product changed across restart: got %#v want %#v", got, updated)
		}
	}

	doJSON(t, http.MethodDelete, itemURL, nil, nil, http.StatusOK)
	doJSON(t, http.MethodGet, itemURL, nil, nil, http.StatusNotFound)
}

func contains(ps []product, id int) bool {
	for _, p := range ps {
		if p.ID == id {
			return true
		}
	}
	return false
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == http.StatusOK {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
