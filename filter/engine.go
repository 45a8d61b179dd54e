// Package filter implements the property matching engine shared by the
// live search path and the alert sweep. Both must agree exactly on
// which properties match a set of criteria.
package filter

import (
	"strings"

	"nestwatch/models"
)

// GatedSecurityTag is the security feature a "gated" criteria probes for.
const GatedSecurityTag = "Gated Estate"

// Matches reports whether a property satisfies the given criteria.
// Evaluation is a conjunction of independent clauses; a clause whose
// criteria field is unset always passes. Pure and safe for concurrent
// use.
func Matches(p *models.Property, c *models.FilterCriteria) bool {
	switch c.Kind {
	case models.KindBuy:
		if p.Kind != models.ListingSale {
			return false
		}
	case models.KindRent:
		if p.Kind != models.ListingRent {
			return false
		}
	}

	if q := strings.TrimSpace(c.Query); q != "" {
		if !containsFold(p.Address, q) && !containsFold(p.City, q) && !containsFold(p.State, q) {
			return false
		}
	}

	if p.Price < c.MinPrice {
		return false
	}
	// A ceiling of 0 means unset; prices are never negative.
	if c.MaxPrice > 0 && p.Price > c.MaxPrice {
		return false
	}

	if c.MinBeds > 0 && p.Beds < c.MinBeds {
		return false
	}
	if c.MinBaths > 0 && p.Baths < c.MinBaths {
		return false
	}

	if len(c.HomeTypes) > 0 && !containsString(c.HomeTypes, p.HomeType) {
		return false
	}

	for _, tag := range c.Features {
		if !hasFeature(p, tag) {
			return false
		}
	}

	if c.MinSqFt > 0 && p.SqFt < c.MinSqFt {
		return false
	}
	if c.MaxSqFt > 0 && p.SqFt > c.MaxSqFt {
		return false
	}

	if kw := strings.TrimSpace(c.Keywords); kw != "" {
		if !containsFold(p.Description, kw) && !containsFold(p.Address, kw) {
			return false
		}
	}

	return true
}

// hasFeature probes a single requested amenity against the property.
// Tags outside the known vocabulary pass; the parser never emits them.
func hasFeature(p *models.Property, tag models.FeatureTag) bool {
	switch tag {
	case models.FeatureFurnished:
		return p.Furnished
	case models.FeatureGenerator:
		return containsFold(p.PowerSupply, "generator")
	case models.FeatureBorehole:
		return containsFold(p.WaterSupply, "borehole")
	case models.FeatureGated:
		return containsString(p.Security, GatedSecurityTag)
	}
	return true
}

func containsFold(text, substr string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(substr))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
