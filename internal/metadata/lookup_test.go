package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookvoice/internal/services"
)

func TestCoverImageWalksLadderAndDownloads(t *testing.T) {
	var searchCalls int
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/image.jpg", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected browser user agent on image download")
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		searchCalls++
		if r.URL.Query().Get("searchType") != "image" {
			t.Errorf("searchType = %q", r.URL.Query().Get("searchType"))
		}
		// First size returns nothing; second returns a working link.
		if searchCalls == 1 {
			json.NewEncoder(w).Encode(map[string]any{})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{{"link": server.URL + "/image.jpg"}},
		})
	})

	client, err := NewSearchClient("key", "engine", server.URL+"/search", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	image, err := client.CoverImage(context.Background(), "Some Book")
	if err != nil {
		t.Fatalf("cover image: %v", err)
	}
	if string(image.Data) != "jpeg-bytes" {
		t.Fatalf("image data = %q", image.Data)
	}
	if image.MIME != "image/jpeg" {
		t.Fatalf("mime = %q", image.MIME)
	}
	if searchCalls != 2 {
		t.Fatalf("expected ladder to advance once, got %d calls", searchCalls)
	}
}

func TestCoverImageQuotaErrorAbortsLadder(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client, err := NewSearchClient("key", "engine", server.URL, time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.CoverImage(context.Background(), "Some Book")
	if !errors.Is(err, services.ErrMetadata) {
		t.Fatalf("expected metadata error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("quota error should stop immediately, got %d calls", calls)
	}
}

func TestCoverImageExhaustedLadderIsMetadataError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer server.Close()

	client, err := NewSearchClient("key", "engine", server.URL, time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.CoverImage(context.Background(), "Obscure Book")
	if !errors.Is(err, services.ErrMetadata) {
		t.Fatalf("expected metadata error, got %v", err)
	}
	if services.IsFatal(err) {
		t.Fatal("metadata errors must never be fatal")
	}
}

func TestNewSearchClientValidates(t *testing.T) {
	if _, err := NewSearchClient("", "engine", "http://x", time.Second); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := NewSearchClient("key", "", "http://x", time.Second); err == nil {
		t.Fatal("expected error for missing engine id")
	}
}
