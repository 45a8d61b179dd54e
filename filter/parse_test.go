package filter

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nestwatch/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.FilterCriteria
	}{
		{
			name: "empty encoding is fully permissive",
			raw:  "",
			want: models.FilterCriteria{MaxPrice: models.NoMaxPrice},
		},
		{
			name: "all recognized keys",
			raw:  "type=rent&q=Ikoyi&minPrice=500000&maxPrice=2000000&beds=2%2B&baths=1&homeTypes=Apartment,Flat&features=furnished,gated&minSqft=800&maxSqft=1500&keywords=balcony",
			want: models.FilterCriteria{
				Kind:      models.KindRent,
				Query:     "Ikoyi",
				MinPrice:  500_000,
				MaxPrice:  2_000_000,
				MinBeds:   2,
				MinBaths:  1,
				HomeTypes: []string{"Apartment", "Flat"},
				Features:  []models.FeatureTag{models.FeatureFurnished, models.FeatureGated},
				MinSqFt:   800,
				MaxSqFt:   1500,
				Keywords:  "balcony",
			},
		},
		{
			name: "unrecognized keys are ignored",
			raw:  "type=buy&page=3&sort=price&utm_source=mail",
			want: models.FilterCriteria{Kind: models.KindBuy, MaxPrice: models.NoMaxPrice},
		},
		{
			name: "malformed numbers fall back to unset",
			raw:  "minPrice=abc&maxPrice=12,5&beds=lots&minSqft=-40",
			want: models.FilterCriteria{MaxPrice: models.NoMaxPrice},
		},
		{
			name: "unknown listing kind is ignored",
			raw:  "type=lease",
			want: models.FilterCriteria{MaxPrice: models.NoMaxPrice},
		},
		{
			name: "any beds means no minimum",
			raw:  "beds=any&baths=Any",
			want: models.FilterCriteria{MaxPrice: models.NoMaxPrice},
		},
		{
			name: "plus suffix stripped",
			raw:  "beds=4%2B&baths=3%2B",
			want: models.FilterCriteria{MaxPrice: models.NoMaxPrice, MinBeds: 4, MinBaths: 3},
		},
		{
			name: "unknown feature tags dropped, known kept in vocabulary order",
			raw:  "features=gated,pool,FURNISHED",
			want: models.FilterCriteria{
				MaxPrice: models.NoMaxPrice,
				Features: []models.FeatureTag{models.FeatureFurnished, models.FeatureGated},
			},
		},
		{
			name: "home type list trims blanks",
			raw:  "homeTypes=Duplex,+,Bungalow,",
			want: models.FilterCriteria{
				MaxPrice:  models.NoMaxPrice,
				HomeTypes: []string{"Duplex", "Bungalow"},
			},
		},
		{
			name: "undecodable pair drops only itself",
			raw:  "type=buy&q=%zz&minPrice=1000",
			want: models.FilterCriteria{
				Kind:     models.KindBuy,
				MinPrice: 1000,
				MaxPrice: models.NoMaxPrice,
			},
		},
		{
			name: "explicit zero ceiling is treated as unbounded",
			raw:  "maxPrice=0",
			want: models.FilterCriteria{MaxPrice: models.NoMaxPrice},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuery(tt.raw)
			if diff := cmp.Diff(&tt.want, got); diff != "" {
				t.Fatalf("criteria mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseQueryLeadingQuestionMark(t *testing.T) {
	got := ParseQuery("?type=buy&minPrice=1000")
	want := &models.FilterCriteria{Kind: models.KindBuy, MinPrice: 1000, MaxPrice: models.NoMaxPrice}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("criteria mismatch (-want +got):\n%s", diff)
	}
}

// Re-parsing the canonical encoding must reproduce the same criteria,
// so a saved search keeps meaning the same thing forever.
func TestEncodeRoundTrip(t *testing.T) {
	raws := []string{
		"",
		"type=buy&minPrice=40000000&maxPrice=60000000&beds=3%2B&homeTypes=Duplex,Bungalow",
		"type=rent&q=Lekki&features=gated,borehole&keywords=sea+view",
		"beds=any&maxSqft=5000&junk=1",
		"q=Victoria+Island&minPrice=oops",
	}
	for _, raw := range raws {
		first := ParseQuery(raw)
		second := ParseQuery(Encode(first))
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("round trip of %q not stable (-first +second):\n%s", raw, diff)
		}
	}
}

func TestEncodeOmitsUnsetFields(t *testing.T) {
	got := Encode(&models.FilterCriteria{MaxPrice: models.NoMaxPrice})
	if got != "" {
		t.Fatalf("expected empty encoding for permissive criteria, got %q", got)
	}

	params, err := url.ParseQuery(Encode(&models.FilterCriteria{Kind: models.KindBuy, MinBeds: 3}))
	if err != nil {
		t.Fatalf("encoding not parseable: %v", err)
	}
	if len(params) != 2 || params.Get("type") != "buy" || params.Get("beds") != "3" {
		t.Fatalf("unexpected encoding contents: %v", params)
	}
}
