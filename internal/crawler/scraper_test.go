package crawler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestScraper_Scrape_ReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("Expected a User-Agent header")
		}

		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	scraper := NewScraper(5 * time.Second)

	body, err := scraper.Scrape(srv.URL)
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}

	if body != "<html>ok</html>" {
		t.Errorf("Unexpected body: %q", body)
	}
}

func TestScraper_Scrape_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	scraper := NewScraper(5 * time.Second)

	_, err := scraper.Scrape(srv.URL)
	if !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Errorf("Expected ErrUnexpectedStatusCode, got %v", err)
	}
}

func TestScraper_Scrape_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	scraper := NewScraper(time.Second)

	if _, err := scraper.Scrape(url); err == nil {
		t.Error("Expected an error for a closed server")
	}
}
