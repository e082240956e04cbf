package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/TableAdmin-lab/productloaderV2/internal"
	"github.com/TableAdmin-lab/productloaderV2/internal/config"
	"github.com/TableAdmin-lab/productloaderV2/internal/menu"
	"github.com/TableAdmin-lab/productloaderV2/internal/vision"
)

// Service turns an uploaded menu file into canonical menu items. Images go
// to the vision model directly, PDFs page by page via their text layer, and
// HTML tables are parsed locally without the model.
type Service struct {
	vision *vision.Client
}

type Result struct {
	Items    []internal.CanonicalMenuItem
	Warnings []string
}

func NewService(cfg config.Config) *Service {
	return &Service{vision: vision.NewClient(cfg)}
}

// Extract never fails outright: when extraction breaks it returns a single
// placeholder item plus a warning so the caller still has something to show.
func (s *Service) Extract(ctx context.Context, filename, mimeType string, content []byte) Result {
	items, warnings, err := s.extract(ctx, filename, mimeType, content)
	if err != nil {
		price, _ := json.Marshal(250.0)
		fallback := internal.RawMenuItem{Name: "Sample Steak (AI failed)", Category: "Main Course", Price: price}
		return Result{
			Items:    menu.Normalize([]internal.RawMenuItem{fallback}),
			Warnings: append(warnings, fmt.Sprintf("AI analysis failed: %v. Using sample data.", err)),
		}
	}
	return Result{Items: menu.Normalize(items), Warnings: warnings}
}

// ExtractParsed normalizes items that were parsed locally, without the
// model.
func (s *Service) ExtractParsed(items []internal.RawMenuItem) Result {
	return Result{Items: menu.Normalize(items)}
}

func (s *Service) extract(ctx context.Context, filename, mimeType string, content []byte) ([]internal.RawMenuItem, []string, error) {
	switch detectKind(filename, mimeType) {
	case kindPDF:
		pages, err := SplitPDFPages(content)
		if err != nil {
			return nil, nil, fmt.Errorf("read pdf: %w", err)
		}
		if len(pages) == 0 {
			return nil, nil, fmt.Errorf("pdf has no extractable text")
		}

		all := []internal.RawMenuItem{}
		warnings := []string{}
		for i, page := range pages {
			pageItems, err := s.vision.ExtractPageText(ctx, page)
			if err != nil {
				return nil, nil, fmt.Errorf("page %d of %d: %w", i+1, len(pages), err)
			}
			if len(pageItems) == 0 {
				warnings = append(warnings, fmt.Sprintf("no items found on page %d", i+1))
			}
			all = append(all, pageItems...)
		}
		return all, warnings, nil

	case kindHTML:
		items, err := ParseHTMLMenu(string(content))
		if err != nil {
			return nil, nil, fmt.Errorf("parse html: %w", err)
		}
		return items, nil, nil

	default:
		items, err := s.vision.ExtractPage(ctx, content, imageMimeType(filename, mimeType))
		if err != nil {
			return nil, nil, err
		}
		return items, nil, nil
	}
}

type fileKind int

const (
	kindImage fileKind = iota
	kindPDF
	kindHTML
)

// imageMimeType fills in the MIME type from the file extension when the
// caller did not supply one, as the CLI cannot.
func imageMimeType(filename, mimeType string) string {
	if strings.TrimSpace(mimeType) != "" {
		return mimeType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

func detectKind(filename, mimeType string) fileKind {
	mime := strings.ToLower(strings.TrimSpace(mimeType))
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case mime == "application/pdf" || ext == ".pdf":
		return kindPDF
	case strings.Contains(mime, "html") || ext == ".html" || ext == ".htm":
		return kindHTML
	default:
		return kindImage
	}
}
