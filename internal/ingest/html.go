package ingest

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/TableAdmin-lab/productloaderV2/internal"
	"github.com/TableAdmin-lab/productloaderV2/internal/util"
)

var digitRe = regexp.MustCompile(`\d`)

// ParseHTMLMenu reads menu items out of HTML tables, typically the body of
// a forwarded price list email. Rows need a name and a price-looking cell;
// everything else is treated as furniture. No AI involved.
func ParseHTMLMenu(html string) ([]internal.RawMenuItem, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	out := []internal.RawMenuItem{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}

		headers := []string{}
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, strings.ToLower(strings.TrimSpace(cell.Text())))
		})

		nameIdx := findHeaderIndex(headers, []string{"name", "item", "product", "dish"})
		priceIdx := findHeaderIndex(headers, []string{"price", "cost", "amount"})
		categoryIdx := findHeaderIndex(headers, []string{"category", "section", "course"})

		start := 0
		if nameIdx >= 0 || priceIdx >= 0 {
			start = 1
		}

		category := ""
		rows.Slice(start, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, util.NormalizeSpaces(cell.Text()))
			})
			if len(cells) == 0 {
				return
			}

			// A single-cell row inside a menu table is a section heading.
			if len(cells) == 1 {
				if cells[0] != "" && !digitRe.MatchString(cells[0]) {
					category = cells[0]
				}
				return
			}

			name := pickCell(cells, nameIdx, 0)
			priceCell := pickCell(cells, priceIdx, -1)
			if priceCell == "" {
				for _, c := range cells[1:] {
					if digitRe.MatchString(c) {
						priceCell = c
						break
					}
				}
			}
			if strings.TrimSpace(name) == "" || priceCell == "" {
				return
			}

			price := util.ParseAmount(priceCell)
			rowCategory := pickCell(cells, categoryIdx, -1)
			if rowCategory == "" {
				rowCategory = category
			}

			raw, _ := json.Marshal(price)
			out = append(out, internal.RawMenuItem{
				Name:     name,
				Category: rowCategory,
				Price:    raw,
			})
		})
	})

	return out, nil
}

func findHeaderIndex(headers []string, probes []string) int {
	for i, h := range headers {
		for _, probe := range probes {
			if strings.Contains(h, probe) {
				return i
			}
		}
	}
	return -1
}

func pickCell(cells []string, idx int, fallback int) string {
	if idx >= 0 && idx < len(cells) {
		return strings.TrimSpace(cells[idx])
	}
	if fallback >= 0 && fallback < len(cells) {
		return strings.TrimSpace(cells[fallback])
	}
	return ""
}
