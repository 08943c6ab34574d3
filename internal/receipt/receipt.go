// Package receipt turns a photographed receipt into bill line items using an
// external document OCR service.
package receipt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/calculator"
)

// ErrUnsupportedMedia is returned for uploads that are not images.
var ErrUnsupportedMedia = errors.New("receipt must be an image")

// ErrNotConfigured is returned when no OCR endpoint is set.
var ErrNotConfigured = errors.New("receipt scanning is not configured")

// maxResponseSize bounds how much of an OCR response is read.
const maxResponseSize = 4 << 20

// Config holds the OCR endpoint and credentials.
type Config struct {
	APIURL   string
	ClientID string
	APIKey   string
	Timeout  time.Duration
}

// Client posts receipt images to the OCR endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a new OCR client. A zero timeout defaults to 30 seconds.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Receipt is what the OCR service recognised on a receipt.
type Receipt struct {
	Items []calculator.ItemInput
	Total decimal.Decimal
	Tax   decimal.Decimal
	Tip   decimal.Decimal
}

type scanRequest struct {
	FileData string `json:"file_data"`
}

type lineItem struct {
	Description string           `json:"description"`
	Text        string           `json:"text"`
	Total       *decimal.Decimal `json:"total"`
	Price       *decimal.Decimal `json:"price"`
}

type scanResponse struct {
	LineItems []lineItem       `json:"line_items"`
	Total     *decimal.Decimal `json:"total"`
	Tax       *decimal.Decimal `json:"tax"`
	Tip       *decimal.Decimal `json:"tip"`
}

// Scan uploads image and maps the recognised line items. Line items without a
// description are named "Item N" by position.
func (c *Client) Scan(ctx context.Context, image []byte) (*Receipt, error) {
	if c == nil || c.cfg.APIURL == "" {
		return nil, ErrNotConfigured
	}
	mtype := mimetype.Detect(image)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedMedia, mtype.String())
	}

	body, err := json.Marshal(scanRequest{FileData: base64.StdEncoding.EncodeToString(image)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode receipt request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.ClientID != "" {
		req.Header.Set("Client-Id", c.cfg.ClientID)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "apikey "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send receipt request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("OCR service returned status %d: %s", resp.StatusCode, truncate(respBody, 256))
	}

	var parsed scanResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode receipt response: %w", err)
	}

	out := &Receipt{
		Total: valueOrZero(parsed.Total),
		Tax:   valueOrZero(parsed.Tax),
		Tip:   valueOrZero(parsed.Tip),
		Items: make([]calculator.ItemInput, 0, len(parsed.LineItems)),
	}
	for i, li := range parsed.LineItems {
		desc := strings.TrimSpace(li.Description)
		if desc == "" {
			desc = strings.TrimSpace(li.Text)
		}
		if desc == "" {
			desc = fmt.Sprintf("Item %d", i+1)
		}
		amount := li.Total
		if amount == nil {
			amount = li.Price
		}
		out.Items = append(out.Items, calculator.ItemInput{Description: desc, Amount: valueOrZero(amount)})
	}

	slog.Debug("Receipt scanned", "media_type", mtype.String(), "items", len(out.Items), "total", out.Total.StringFixed(2))
	return out, nil
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return calculator.Bounded(*d)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
