package vision

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/TableAdmin-lab/productloaderV2/internal"
)

var (
	commentRe       = regexp.MustCompile(`(?s)/\*.*?\*/|//[^\n]*`)
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
)

// ExtractItemsJSON recovers the item array from a model response. The model
// is told to emit bare JSON but in practice wraps it in markdown fences,
// annotates it with comments and leaves trailing commas, so all of that is
// stripped before parsing. A response with no array at all means an empty
// page, not a failure; an array that will not parse is a failure.
func ExtractItemsJSON(text string) ([]internal.RawMenuItem, error) {
	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = commentRe.ReplaceAllString(clean, "")

	first := strings.Index(clean, "[")
	last := strings.LastIndex(clean, "]")
	if first == -1 || last == -1 || last < first {
		return nil, nil
	}

	payload := trailingCommaRe.ReplaceAllString(clean[first:last+1], "$1")

	var items []internal.RawMenuItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("parse extracted items: %w", err)
	}
	return items, nil
}
