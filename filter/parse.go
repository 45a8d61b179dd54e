package filter

import (
	"net/url"
	"strconv"
	"strings"

	"nestwatch/models"
)

// Recognized search parameter keys. Anything else in the encoding is
// ignored.
const (
	keyType      = "type"
	keyQuery     = "q"
	keyMinPrice  = "minPrice"
	keyMaxPrice  = "maxPrice"
	keyBeds      = "beds"
	keyBaths     = "baths"
	keyHomeTypes = "homeTypes"
	keyFeatures  = "features"
	keyMinSqFt   = "minSqft"
	keyMaxSqFt   = "maxSqft"
	keyKeywords  = "keywords"
)

var featureVocabulary = []models.FeatureTag{
	models.FeatureFurnished,
	models.FeatureGenerator,
	models.FeatureBorehole,
	models.FeatureGated,
}

// Parse derives criteria from a flat parameter map. Parsing is
// deterministic and permissive: malformed or negative numeric values
// are treated as unset so a bad field never rejects the whole search.
func Parse(params url.Values) *models.FilterCriteria {
	c := &models.FilterCriteria{MaxPrice: models.NoMaxPrice}

	switch params.Get(keyType) {
	case models.KindBuy:
		c.Kind = models.KindBuy
	case models.KindRent:
		c.Kind = models.KindRent
	}

	c.Query = strings.TrimSpace(params.Get(keyQuery))
	c.Keywords = strings.TrimSpace(params.Get(keyKeywords))

	c.MinPrice = parseAmount(params.Get(keyMinPrice))
	if max := parseAmount(params.Get(keyMaxPrice)); max > 0 {
		c.MaxPrice = max
	}

	c.MinBeds = parseMinCount(params.Get(keyBeds))
	c.MinBaths = parseMinCount(params.Get(keyBaths))

	c.HomeTypes = splitList(params.Get(keyHomeTypes))
	c.Features = parseFeatures(params.Get(keyFeatures))

	c.MinSqFt = int(parseAmount(params.Get(keyMinSqFt)))
	c.MaxSqFt = int(parseAmount(params.Get(keyMaxSqFt)))

	return c
}

// ParseQuery parses a raw query-string encoding, the form saved
// searches keep verbatim in SearchParams. A malformed pair drops only
// itself; url.ParseQuery keeps the pairs it could decode and those
// still apply.
func ParseQuery(raw string) *models.FilterCriteria {
	params, _ := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return Parse(params)
}

// Encode serializes criteria back to the canonical flat encoding.
// Unset fields are omitted; Parse(Encode(Parse(raw))) always equals
// Parse(raw).
func Encode(c *models.FilterCriteria) string {
	params := url.Values{}

	if c.Kind != "" {
		params.Set(keyType, c.Kind)
	}
	if c.Query != "" {
		params.Set(keyQuery, c.Query)
	}
	if c.MinPrice > 0 {
		params.Set(keyMinPrice, strconv.FormatInt(c.MinPrice, 10))
	}
	if c.MaxPrice > 0 && c.MaxPrice != models.NoMaxPrice {
		params.Set(keyMaxPrice, strconv.FormatInt(c.MaxPrice, 10))
	}
	if c.MinBeds > 0 {
		params.Set(keyBeds, strconv.Itoa(c.MinBeds))
	}
	if c.MinBaths > 0 {
		params.Set(keyBaths, strconv.Itoa(c.MinBaths))
	}
	if len(c.HomeTypes) > 0 {
		params.Set(keyHomeTypes, strings.Join(c.HomeTypes, ","))
	}
	if len(c.Features) > 0 {
		tags := make([]string, len(c.Features))
		for i, tag := range c.Features {
			tags[i] = string(tag)
		}
		params.Set(keyFeatures, strings.Join(tags, ","))
	}
	if c.MinSqFt > 0 {
		params.Set(keyMinSqFt, strconv.Itoa(c.MinSqFt))
	}
	if c.MaxSqFt > 0 {
		params.Set(keyMaxSqFt, strconv.Itoa(c.MaxSqFt))
	}
	if c.Keywords != "" {
		params.Set(keyKeywords, c.Keywords)
	}

	return params.Encode()
}

// parseAmount parses a non-negative decimal integer, returning 0 for
// anything malformed.
func parseAmount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseMinCount parses a beds/baths minimum: "any" and empty mean no
// minimum, and a trailing "+" (as in "3+") is stripped first.
func parseMinCount(s string) int {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "any") {
		return 0
	}
	s = strings.TrimSuffix(s, "+")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseFeatures keeps only tags from the fixed vocabulary, in
// vocabulary order so the canonical encoding is stable.
func parseFeatures(s string) []models.FeatureTag {
	requested := splitList(strings.ToLower(s))
	if len(requested) == 0 {
		return nil
	}
	var out []models.FeatureTag
	for _, tag := range featureVocabulary {
		if containsString(requested, string(tag)) {
			out = append(out, tag)
		}
	}
	return out
}
