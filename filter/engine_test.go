package filter

import (
	"testing"

	"nestwatch/models"
)

func lekkiDuplex() *models.Property {
	return &models.Property{
		Kind:        models.ListingSale,
		Address:     "12 Admiralty Way, Lekki Phase 1",
		City:        "Lagos",
		State:       "Lagos",
		Price:       45_000_000,
		Beds:        3,
		Baths:       2,
		HomeType:    "Duplex",
		SqFt:        2400,
		Furnished:   true,
		PowerSupply: "24/7 Generator backup",
		WaterSupply: "Borehole",
		Security:    []string{"Gated Estate", "CCTV"},
		Description: "Spacious duplex with a private garden in Lekki Phase 1",
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		property func(*models.Property)
		criteria models.FilterCriteria
		want     bool
	}{
		{
			name:     "empty criteria matches everything",
			criteria: models.FilterCriteria{},
			want:     true,
		},
		{
			name: "full criteria all clauses pass",
			criteria: models.FilterCriteria{
				Kind:      models.KindBuy,
				MinPrice:  40_000_000,
				MaxPrice:  60_000_000,
				MinBeds:   3,
				HomeTypes: []string{"Duplex", "Bungalow"},
			},
			want: true,
		},
		{
			name:     "buy rejects rental",
			property: func(p *models.Property) { p.Kind = models.ListingRent },
			criteria: models.FilterCriteria{Kind: models.KindBuy},
			want:     false,
		},
		{
			name:     "rent rejects sale",
			criteria: models.FilterCriteria{Kind: models.KindRent},
			want:     false,
		},
		{
			name:     "query matches address substring case-insensitively",
			criteria: models.FilterCriteria{Query: "lekki"},
			want:     true,
		},
		{
			name:     "query matches state",
			criteria: models.FilterCriteria{Query: "Lagos"},
			want:     true,
		},
		{
			name:     "query with no substring anywhere rejects",
			criteria: models.FilterCriteria{Query: "Abuja"},
			want:     false,
		},
		{
			name:     "price below minimum rejects",
			criteria: models.FilterCriteria{MinPrice: 50_000_000},
			want:     false,
		},
		{
			name:     "price above ceiling rejects",
			criteria: models.FilterCriteria{MaxPrice: 40_000_000},
			want:     false,
		},
		{
			name:     "price equal to bounds passes",
			criteria: models.FilterCriteria{MinPrice: 45_000_000, MaxPrice: 45_000_000},
			want:     true,
		},
		{
			name:     "unbounded ceiling passes any price",
			property: func(p *models.Property) { p.Price = 900_000_000_000 },
			criteria: models.FilterCriteria{MaxPrice: models.NoMaxPrice},
			want:     true,
		},
		{
			name:     "beds below minimum rejects",
			criteria: models.FilterCriteria{MinBeds: 4},
			want:     false,
		},
		{
			name:     "baths at minimum passes",
			criteria: models.FilterCriteria{MinBaths: 2},
			want:     true,
		},
		{
			name:     "home type not in set rejects",
			criteria: models.FilterCriteria{HomeTypes: []string{"Bungalow", "Apartment"}},
			want:     false,
		},
		{
			name:     "home type match is exact not substring",
			property: func(p *models.Property) { p.HomeType = "Semi-Detached Duplex" },
			criteria: models.FilterCriteria{HomeTypes: []string{"Duplex"}},
			want:     false,
		},
		{
			name:     "furnished tag against furnished property",
			criteria: models.FilterCriteria{Features: []models.FeatureTag{models.FeatureFurnished}},
			want:     true,
		},
		{
			name:     "generator tag probes power supply text",
			criteria: models.FilterCriteria{Features: []models.FeatureTag{models.FeatureGenerator}},
			want:     true,
		},
		{
			name:     "borehole tag fails on municipal water",
			property: func(p *models.Property) { p.WaterSupply = "Municipal" },
			criteria: models.FilterCriteria{Features: []models.FeatureTag{models.FeatureBorehole}},
			want:     false,
		},
		{
			name:     "gated tag requires the exact security tag",
			property: func(p *models.Property) { p.Security = []string{"Gated"} },
			criteria: models.FilterCriteria{Features: []models.FeatureTag{models.FeatureGated}},
			want:     false,
		},
		{
			name:     "single failing tag rejects despite other tags matching",
			property: func(p *models.Property) { p.WaterSupply = "Municipal" },
			criteria: models.FilterCriteria{Features: []models.FeatureTag{
				models.FeatureFurnished, models.FeatureGenerator, models.FeatureBorehole,
			}},
			want: false,
		},
		{
			name:     "sqft below minimum rejects",
			criteria: models.FilterCriteria{MinSqFt: 3000},
			want:     false,
		},
		{
			name:     "sqft above maximum rejects",
			criteria: models.FilterCriteria{MaxSqFt: 2000},
			want:     false,
		},
		{
			name:     "zero sqft bounds pass",
			criteria: models.FilterCriteria{MinSqFt: 0, MaxSqFt: 0},
			want:     true,
		},
		{
			name:     "keyword matches description",
			criteria: models.FilterCriteria{Keywords: "private garden"},
			want:     true,
		},
		{
			name:     "keyword matches address",
			criteria: models.FilterCriteria{Keywords: "admiralty"},
			want:     true,
		},
		{
			name:     "keyword matches neither description nor address",
			criteria: models.FilterCriteria{Keywords: "swimming pool"},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := lekkiDuplex()
			if tt.property != nil {
				tt.property(p)
			}
			if got := Matches(p, &tt.criteria); got != tt.want {
				t.Fatalf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Matching a parsed saved-search encoding must agree with matching the
// criteria built by hand; the sweep and the live search share this path.
func TestMatchesParsedEncoding(t *testing.T) {
	p := lekkiDuplex()

	c := ParseQuery("type=buy&minPrice=40000000&maxPrice=60000000&beds=3%2B&homeTypes=Duplex,Bungalow")
	if !Matches(p, c) {
		t.Fatal("expected Lekki duplex to match saved search")
	}

	c = ParseQuery("type=buy&minPrice=40000000&maxPrice=60000000&beds=3%2B&homeTypes=Duplex,Bungalow&features=borehole")
	p.WaterSupply = "Municipal"
	if Matches(p, c) {
		t.Fatal("expected borehole requirement to reject municipal water supply")
	}
}

func TestMatchesDeterministic(t *testing.T) {
	p := lekkiDuplex()
	c := ParseQuery("type=buy&q=Lekki&beds=3&features=furnished,generator")

	first := Matches(p, c)
	for i := 0; i < 100; i++ {
		if Matches(p, c) != first {
			t.Fatal("repeated evaluation changed result")
		}
	}
}

// Widening any single bound must never turn a match into a non-match.
func TestMatchesMonotonicity(t *testing.T) {
	p := lekkiDuplex()
	base := models.FilterCriteria{
		Kind:      models.KindBuy,
		Query:     "Lagos",
		MinPrice:  40_000_000,
		MaxPrice:  60_000_000,
		MinBeds:   3,
		MinBaths:  2,
		HomeTypes: []string{"Duplex"},
		Features:  []models.FeatureTag{models.FeatureFurnished, models.FeatureGenerator},
		MinSqFt:   2000,
		MaxSqFt:   3000,
	}
	if !Matches(p, &base) {
		t.Fatal("base criteria must match fixture")
	}

	widenings := map[string]func(*models.FilterCriteria){
		"lower min price":      func(c *models.FilterCriteria) { c.MinPrice = 0 },
		"raise max price":      func(c *models.FilterCriteria) { c.MaxPrice = models.NoMaxPrice },
		"lower min beds":       func(c *models.FilterCriteria) { c.MinBeds = 0 },
		"lower min baths":      func(c *models.FilterCriteria) { c.MinBaths = 0 },
		"lower min sqft":       func(c *models.FilterCriteria) { c.MinSqFt = 0 },
		"raise max sqft":       func(c *models.FilterCriteria) { c.MaxSqFt = 0 },
		"drop home type set":   func(c *models.FilterCriteria) { c.HomeTypes = nil },
		"drop a requested tag": func(c *models.FilterCriteria) { c.Features = c.Features[:1] },
	}
	for name, widen := range widenings {
		widened := base
		widen(&widened)
		if !Matches(p, &widened) {
			t.Errorf("%s turned a match into a non-match", name)
		}
	}
}
