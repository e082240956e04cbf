package listener

import (
	"path/filepath"
	"strings"
)

var menuKeywords = []string{"menu", "price list", "pricelist", "wine list", "specials"}

// menuScoreThreshold is what an email must reach to be treated as a menu
// submission. A keyword hit alone is enough; attachments alone are not.
const menuScoreThreshold = 0.45

// ScoreMenuEmail estimates how likely an email is to carry a menu, from its
// subject, body text and attachment names.
func ScoreMenuEmail(subject, bodyText string, attachmentNames []string) float64 {
	score := 0.0

	lowerSubject := strings.ToLower(subject)
	for _, kw := range menuKeywords {
		if strings.Contains(lowerSubject, kw) {
			score += 0.5
			break
		}
	}

	lowerBody := strings.ToLower(bodyText)
	for _, kw := range menuKeywords {
		if strings.Contains(lowerBody, kw) {
			score += 0.25
			break
		}
	}

	for _, name := range attachmentNames {
		if isMenuAttachment(name) {
			score += 0.25
			break
		}
	}

	if score > 1 {
		score = 1
	}
	return score
}

// IsMenuEmail applies the threshold.
func IsMenuEmail(subject, bodyText string, attachmentNames []string) bool {
	return ScoreMenuEmail(subject, bodyText, attachmentNames) >= menuScoreThreshold
}

func isMenuAttachment(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".png", ".jpg", ".jpeg", ".webp", ".gif":
		return true
	default:
		return false
	}
}
