package ingest

import (
	"bytes"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// SplitPDFPages pulls the text layer out of a PDF, one string per page.
// Pages whose text layer is missing or unreadable are skipped rather than
// failing the whole document.
func SplitPDFPages(content []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
