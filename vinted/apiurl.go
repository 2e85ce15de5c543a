// Package vinted talks to the Vinted marketplace: it translates catalog
// search URLs into API calls, acquires anonymous sessions, and fetches
// catalog items.
package vinted

import (
	"fmt"
	"net/url"
	"strings"
)

// arrayParams maps the catalog page's repeated query keys to the API's
// comma-joined equivalents.
var arrayParams = map[string]string{
	"brand_ids[]":    "brand_ids",
	"catalog[]":      "catalog_ids",
	"size_ids[]":     "size_ids",
	"color_ids[]":    "color_ids",
	"material_ids[]": "material_ids",
	"status_ids[]":   "status_ids",
}

// scalarParams are passed through unchanged when present.
var scalarParams = []string{
	"search_text",
	"price_from",
	"price_to",
	"currency",
	"order",
	"page",
}

// ConvertSearchURL rewrites a catalog search URL (the address a user copies
// from their browser) into the corresponding catalog items API URL on the
// same host. Repeated array parameters are comma-joined, unrecognized
// parameters are dropped, page defaults to 1 and per_page is fixed at 10.
//
// The output is deterministic for a given input, and converting an already
// converted URL yields the same URL again.
func ConvertSearchURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse search url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("search url %q: missing scheme or host", raw)
	}

	in := u.Query()
	out := url.Values{}

	for from, to := range arrayParams {
		if vals := in[from]; len(vals) > 0 {
			out.Set(to, strings.Join(vals, ","))
		}
		// Already-converted URLs carry the API-side name directly.
		if v := in.Get(to); v != "" {
			out.Set(to, v)
		}
	}
	for _, k := range scalarParams {
		if v := in.Get(k); v != "" {
			out.Set(k, v)
		}
	}
	if out.Get("page") == "" {
		out.Set("page", "1")
	}
	out.Set("per_page", "10")

	api := url.URL{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     "/api/v2/catalog/items",
		RawQuery: out.Encode(),
	}
	return api.String(), nil
}
