package vinted_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hazyhaar/fripe/vinted"
)

const catalogPayload = `{
	"items": [
		{
			"id": 501,
			"url": "https://www.vinted.pl/items/501",
			"title": "Wool coat",
			"brand_title": "Zara",
			"photo": {"url": "https://img.example/501.jpg"},
			"total_item_price": {"amount": "19.99", "currency_code": "EUR"}
		},
		{
			"id": 502,
			"title": "No-photo listing"
		}
	],
	"pagination": {"current_page": 1}
}`

func TestFetchCatalog(t *testing.T) {
	// WHAT: A catalog response decodes into items; price is the amount and
	// currency concatenated, and missing nested objects degrade to zero
	// values rather than failing the fetch.
	// WHY: Real listings frequently lack photos or price blocks; one sparse
	// item must not cost the user the rest of the page.
	var gotCookie, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(catalogPayload))
	}))
	defer srv.Close()

	c := vinted.NewClient(nil, vinted.Config{UserAgent: "fripe-test"})
	items, err := c.FetchCatalog(context.Background(), srv.URL, "access_token_web=abc")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if gotCookie != "access_token_web=abc" {
		t.Errorf("cookie header = %q", gotCookie)
	}
	if gotUA != "fripe-test" {
		t.Errorf("user-agent = %q", gotUA)
	}

	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	first := items[0]
	if first.ID != 501 || first.Title != "Wool coat" || first.BrandTitle != "Zara" {
		t.Errorf("unexpected first item: %+v", first)
	}
	if first.Price != "19.99EUR" {
		t.Errorf("price = %q, want 19.99EUR", first.Price)
	}
	if first.PhotoURL != "https://img.example/501.jpg" {
		t.Errorf("photo url = %q", first.PhotoURL)
	}

	sparse := items[1]
	if sparse.PhotoURL != "" || sparse.Price != "" {
		t.Errorf("sparse item should have zero photo/price, got %+v", sparse)
	}
}

func TestFetchCatalog_HTTPError(t *testing.T) {
	// WHAT: A non-200 response is an error, not an empty result.
	// WHY: The orchestrator distinguishes "no new items" from "fetch broke"
	// in the fetch log.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := vinted.NewClient(nil, vinted.Config{})
	if _, err := c.FetchCatalog(context.Background(), srv.URL, ""); err == nil {
		t.Error("expected error for http 401")
	}
}

func TestFetchCatalog_MalformedBody(t *testing.T) {
	// WHAT: Undecodable JSON is an error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>captcha wall</html>"))
	}))
	defer srv.Close()

	c := vinted.NewClient(nil, vinted.Config{})
	if _, err := c.FetchCatalog(context.Background(), srv.URL, ""); err == nil {
		t.Error("expected decode error")
	}
}

func TestFetchCatalog_EmptyItems(t *testing.T) {
	// WHAT: An empty items array yields an empty, non-nil slice and no error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	c := vinted.NewClient(nil, vinted.Config{})
	items, err := c.FetchCatalog(context.Background(), srv.URL, "")
	if err != nil {
		t.Fatal(err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("items = %v, want empty slice", items)
	}
}
