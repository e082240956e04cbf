package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/TableAdmin-lab/productloaderV2/internal"
	"github.com/TableAdmin-lab/productloaderV2/internal/config"
)

// extractionPrompt instructs the model page by page. The rules encode the
// mistakes the model makes without them: grouping "X or Y" lines into one
// item, emitting absolute variant prices instead of upcharges, and skipping
// section-wide rules like a gluten-free base surcharge.
const extractionPrompt = `
You are a world-class menu data extraction AI. Your task is to extract all item data as accurately as possible from the menu image. Each menu item listed should be treated as a unique product.

**MASTER INSTRUCTIONS:**

1.  **ITEM SPLITTING (IMPORTANT):**
    * If a single line item lists multiple product names joined by commas or words like "OR" that share a single price (e.g., "Coke, Fanta or Sprite @ R20"), you **MUST** create a separate, individual product entry for each one.
    * For "Grapetizer or Appletizer R20", you must output two separate JSON objects: one for "Grapetizer" at price 20, and one for "Appletizer" at price 20.
    * Do **NOT** create a single item with the name "Grapetizer or Appletizer". This same logic applies to modifier options.

2.  **ITEM IDENTIFICATION:**
    * Each distinct item on the menu is its own product. Do **NOT** group items like "Regina Pizza" and "Hawaiian Pizza" into a single "Pizza" item.
    * **"name"**: Extract the full, unique product name as it appears on the menu (e.g., "Pepperoni Deluxe").

3.  **ITEM PRICE (` + "`price`" + ` field):**
    * This field **MUST** contain the price of the **smallest or most basic option** for each unique item. For a pizza with Small/Large prices, this would be the Small price.

4.  **VARIANT PRICES (` + "`variantPricing`" + ` field):**
    * This array must contain an entry for **EVERY SINGLE OPTION** available for an item (e.g., different sizes).
    * For **EVERY** option, provide the **ADDITIONAL COST (UPCHARGE)** relative to that specific item's base ` + "`price`" + `.
    * The base option itself (e.g., "Small") has an upcharge of 0.
    * Example: If a "Pepperoni Deluxe" Small is R46.00 and Large is R95.90, its base ` + "`price`" + ` is 46.00. The ` + "`variantPricing`" + ` would include ` + "`[{ \"Size\": \"Small\", \"price\": 0 }, { \"Size\": \"Large\", \"price\": 49.90 }]`" + `.

5.  **SECTIONAL RULES (IMPORTANT):**
    * Look for rules or options that apply to a whole category, like "Gluten-Free pizza base ADD R25".
    * When you find such a rule, you **MUST** create a ` + "`variantGroup`" + ` for **EVERY SINGLE ITEM** in that section.
    * This group **MUST** include the special options (e.g., "Gluten-free") AND the implied default option (e.g., "Normal Base" or "Standard").
    * The default option **MUST** have an upcharge of 0.
    * Example: For a pizza section with a "Gluten-free base ADD R44" rule, every pizza in that section should get a ` + "`variantGroup`" + ` like: ` + "`{\"groupName\": \"Base\", \"options\": [{\"type\": \"Standard\"}, {\"type\": \"Gluten-free\"}]}`" + ` and corresponding ` + "`variantPricing`" + ` like ` + "`[{\"Base\": \"Standard\", \"price\": 0}, {\"Base\": \"Gluten-free\", \"price\": 44}]`" + `.

6.  **JSON STRUCTURE:**
    - **"name"**: The full product name.
    - **"category"**: The menu category.
    - **"price"**: The base price of the item (lowest price).
    - **"variantGroups"**: A list of variant groups like Size or Base.
    - **"variantPricing"**: A list of price **UPCHARGES** for all individual options.
    - **"modifierGroups"**: For optional add-ons.

7.  **FINAL CHECK:**
    * Ensure the final output is ONLY a valid JSON array. Do not wrap it in markdown backticks.
    * Prices must be numbers (e.g., ` + "`42.90`" + `), not strings.
`

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

type generateRequest struct {
	Contents []requestContent `json:"contents"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.VisionTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.VisionRateLimRPS),
	}
}

// ExtractPage sends one menu page image to the model and returns the raw
// item list it saw on that page. An empty page yields an empty slice.
func (c *Client) ExtractPage(ctx context.Context, image []byte, mimeType string) ([]internal.RawMenuItem, error) {
	part := requestPart{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}}
	text, err := c.generate(ctx, part)
	if err != nil {
		return nil, err
	}
	return ExtractItemsJSON(text)
}

// ExtractPageText runs the same extraction over a page that is already
// plain text, such as a text layer pulled out of a PDF.
func (c *Client) ExtractPageText(ctx context.Context, pageText string) ([]internal.RawMenuItem, error) {
	text, err := c.generate(ctx, requestPart{Text: "MENU PAGE TEXT:\n\n" + pageText})
	if err != nil {
		return nil, err
	}
	return ExtractItemsJSON(text)
}

func (c *Client) generate(ctx context.Context, page requestPart) (string, error) {
	if strings.TrimSpace(c.cfg.VisionAPIKey) == "" {
		return "", errors.New("missing GEMINI_API_KEY")
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.VisionAPIBaseURL, "/"), c.cfg.VisionModel, c.cfg.VisionAPIKey)

	payload := generateRequest{Contents: []requestContent{{Parts: []requestPart{
		{Text: extractionPrompt},
		page,
	}}}}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	maxAttempts := c.cfg.VisionMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		c.limiter.WaitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < maxAttempts {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("vision status %d", resp.StatusCode)
				continue
			}
			return "", fmt.Errorf("vision api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		var apiResp generateResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return "", err
		}
		if apiResp.Error != nil {
			return "", fmt.Errorf("vision api unsuccessful: %s", apiResp.Error.Message)
		}
		if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
			return "", errors.New("vision api returned no candidates")
		}
		return apiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	if lastErr == nil {
		lastErr = errors.New("vision request failed")
	}
	return "", lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
