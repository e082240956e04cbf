package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TableAdmin-lab/productloaderV2/internal/config"
)

func newVisionBackedService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(config.Config{
		VisionAPIBaseURL:  srv.URL,
		VisionAPIKey:      "test-key",
		VisionModel:       "test-model",
		VisionTimeoutMs:   5000,
		VisionRateLimRPS:  100,
		VisionMaxAttempts: 1,
	})
}

func assertPlaceholder(t *testing.T, result Result) {
	t.Helper()
	if len(result.Items) != 1 {
		t.Fatalf("items: %+v", result.Items)
	}
	item := result.Items[0]
	if item.ID != 1 || item.Name != "Sample Steak (AI failed)" {
		t.Fatalf("placeholder identity: %+v", item)
	}
	if item.Price != 250 || item.Category != "Main Course" {
		t.Fatalf("placeholder fields: %+v", item)
	}
}

func TestExtractFallsBackOnVisionFailure(t *testing.T) {
	svc := newVisionBackedService(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	result := svc.Extract(context.Background(), "menu.jpg", "image/jpeg", []byte("not really an image"))

	assertPlaceholder(t, result)
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "AI analysis failed") {
		t.Fatalf("warnings: %v", result.Warnings)
	}
}

func TestExtractFallsBackOnMalformedModelOutput(t *testing.T) {
	svc := newVisionBackedService(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"[{\"name\": }]"}]}}]}`)
	})

	result := svc.Extract(context.Background(), "menu.jpg", "image/jpeg", []byte("img"))

	assertPlaceholder(t, result)
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "parse extracted items") {
		t.Fatalf("warnings: %v", result.Warnings)
	}
}

func TestExtractEmptyPageIsNotAFailure(t *testing.T) {
	svc := newVisionBackedService(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"Sorry, I cannot see a menu here."}]}}]}`)
	})

	result := svc.Extract(context.Background(), "menu.jpg", "image/jpeg", []byte("img"))

	if len(result.Items) != 0 {
		t.Fatalf("items: %+v", result.Items)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("warnings: %v", result.Warnings)
	}
}

func TestExtractUnreadablePDFFallsBack(t *testing.T) {
	svc := newVisionBackedService(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("the model must not be called for an unreadable pdf")
	})

	result := svc.Extract(context.Background(), "menu.pdf", "application/pdf", []byte("%PDF-1.4 truncated"))

	assertPlaceholder(t, result)
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "AI analysis failed") {
		t.Fatalf("warnings: %v", result.Warnings)
	}
}
