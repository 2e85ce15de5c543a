package vinted

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Item is one catalog listing, projected down to the fields a notification
// needs. Missing fields in the response decode to zero values.
type Item struct {
	ID         int64
	URL        string
	Title      string
	BrandTitle string
	PhotoURL   string
	Price      string // amount and currency code concatenated, e.g. "19.99EUR"
}

type catalogResponse struct {
	Items []catalogItem `json:"items"`
}

type catalogItem struct {
	ID         int64  `json:"id"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	BrandTitle string `json:"brand_title"`
	Photo      *struct {
		URL string `json:"url"`
	} `json:"photo"`
	TotalItemPrice *struct {
		Amount       string `json:"amount"`
		CurrencyCode string `json:"currency_code"`
	} `json:"total_item_price"`
}

// FetchCatalog calls the catalog items API with the session cookie and
// returns the listings on the first page. Any HTTP or decode failure is an
// error; the caller treats the link as having produced nothing this cycle.
func (c *Client) FetchCatalog(ctx context.Context, apiURL, cookie string) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("vinted: new catalog request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Cookie", cookie)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vinted: catalog http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vinted: catalog http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("vinted: read catalog body: %w", err)
	}

	var decoded catalogResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("vinted: catalog decode: %w", err)
	}

	items := make([]Item, 0, len(decoded.Items))
	for _, ci := range decoded.Items {
		item := Item{
			ID:         ci.ID,
			URL:        ci.URL,
			Title:      ci.Title,
			BrandTitle: ci.BrandTitle,
		}
		if ci.Photo != nil {
			item.PhotoURL = ci.Photo.URL
		}
		if ci.TotalItemPrice != nil {
			item.Price = ci.TotalItemPrice.Amount + ci.TotalItemPrice.CurrencyCode
		}
		items = append(items, item)
	}
	return items, nil
}
