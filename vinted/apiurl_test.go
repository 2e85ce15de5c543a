package vinted_test

import (
	"strings"
	"testing"

	"github.com/hazyhaar/fripe/vinted"
)

func TestConvertSearchURL_FullCatalogURL(t *testing.T) {
	// WHAT: A browser catalog URL with arrays and scalars maps onto the API
	// endpoint with renamed, comma-joined parameters.
	// WHY: This translation is the only bridge between what users paste and
	// what the marketplace API accepts.
	raw := "https://www.vinted.pl/catalog?search_text=nike%20hoodie" +
		"&brand_ids[]=53&brand_ids[]=88&catalog[]=2050&order=newest_first" +
		"&price_to=50&currency=PLN"

	got, err := vinted.ConvertSearchURL(raw)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	if !strings.HasPrefix(got, "https://www.vinted.pl/api/v2/catalog/items?") {
		t.Errorf("unexpected endpoint: %s", got)
	}
	for _, want := range []string{
		"search_text=nike+hoodie",
		"brand_ids=53%2C88",
		"catalog_ids=2050",
		"order=newest_first",
		"price_to=50",
		"currency=PLN",
		"page=1",
		"per_page=10",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %s", want, got)
		}
	}
}

func TestConvertSearchURL_Deterministic(t *testing.T) {
	// WHAT: The same input always yields the same output string.
	// WHY: The API URL participates in logs and fetch records; a shuffling
	// query string would make them impossible to correlate.
	raw := "https://www.vinted.fr/catalog?color_ids[]=1&size_ids[]=4&search_text=veste"
	first, err := vinted.ConvertSearchURL(raw)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		got, err := vinted.ConvertSearchURL(raw)
		if err != nil {
			t.Fatal(err)
		}
		if got != first {
			t.Fatalf("run %d differs:\n%s\n%s", i, first, got)
		}
	}
}

func TestConvertSearchURL_Idempotent(t *testing.T) {
	// WHAT: Converting an already-converted URL returns it unchanged.
	// WHY: Links may be stored pre- or post-translation; double conversion
	// must be harmless.
	raw := "https://www.vinted.de/catalog?brand_ids[]=12&search_text=jacke&page=2"
	once, err := vinted.ConvertSearchURL(raw)
	if err != nil {
		t.Fatal(err)
	}
	twice, err := vinted.ConvertSearchURL(once)
	if err != nil {
		t.Fatal(err)
	}
	if once != twice {
		t.Errorf("not idempotent:\n%s\n%s", once, twice)
	}
}

func TestConvertSearchURL_DropsUnknownParams(t *testing.T) {
	// WHAT: Parameters outside the known set do not survive translation.
	// WHY: Browser URLs carry tracking and session junk the API rejects.
	raw := "https://www.vinted.pl/catalog?search_text=bag&search_id=999&time=170000&utm_source=x"
	got, err := vinted.ConvertSearchURL(raw)
	if err != nil {
		t.Fatal(err)
	}
	for _, banned := range []string{"search_id", "time=", "utm_source"} {
		if strings.Contains(got, banned) {
			t.Errorf("unknown param leaked: %q in %s", banned, got)
		}
	}
}

func TestConvertSearchURL_Defaults(t *testing.T) {
	// WHAT: A bare catalog URL still produces page=1 and per_page=10.
	raw := "https://www.vinted.pl/catalog"
	got, err := vinted.ConvertSearchURL(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://www.vinted.pl/api/v2/catalog/items?page=1&per_page=10" {
		t.Errorf("got %s", got)
	}
}

func TestConvertSearchURL_Invalid(t *testing.T) {
	// WHAT: A URL without scheme or host is rejected.
	if _, err := vinted.ConvertSearchURL("not a url at all\x7f://"); err == nil {
		t.Error("expected error for unparseable input")
	}
	if _, err := vinted.ConvertSearchURL("/catalog?search_text=x"); err == nil {
		t.Error("expected error for host-less input")
	}
}
