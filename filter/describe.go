package filter

import (
	"strconv"
	"strings"

	"nestwatch/models"
)

// Describe builds the human-readable auto-summary stored alongside a
// saved search, e.g.
// "Duplex or Bungalow for sale in Lekki, ₦40,000,000–₦60,000,000, 3+ beds".
func Describe(c *models.FilterCriteria) string {
	var parts []string

	subject := "Properties"
	if len(c.HomeTypes) > 0 {
		subject = strings.Join(c.HomeTypes, " or ")
	}
	switch c.Kind {
	case models.KindBuy:
		subject += " for sale"
	case models.KindRent:
		subject += " for rent"
	}
	if c.Query != "" {
		subject += " in " + c.Query
	}
	parts = append(parts, subject)

	if pr := priceRange(c.MinPrice, c.MaxPrice); pr != "" {
		parts = append(parts, pr)
	}
	if c.MinBeds > 0 {
		parts = append(parts, strconv.Itoa(c.MinBeds)+"+ beds")
	}
	if c.MinBaths > 0 {
		parts = append(parts, strconv.Itoa(c.MinBaths)+"+ baths")
	}
	if sr := sqftRange(c.MinSqFt, c.MaxSqFt); sr != "" {
		parts = append(parts, sr)
	}
	for _, tag := range c.Features {
		parts = append(parts, string(tag))
	}
	if c.Keywords != "" {
		parts = append(parts, `matching "`+c.Keywords+`"`)
	}

	return strings.Join(parts, ", ")
}

func priceRange(min, max int64) string {
	bounded := max > 0 && max != models.NoMaxPrice
	switch {
	case min > 0 && bounded:
		return "₦" + formatAmount(min) + "–₦" + formatAmount(max)
	case min > 0:
		return "from ₦" + formatAmount(min)
	case bounded:
		return "up to ₦" + formatAmount(max)
	}
	return ""
}

func sqftRange(min, max int) string {
	switch {
	case min > 0 && max > 0:
		return formatAmount(int64(min)) + "–" + formatAmount(int64(max)) + " sqft"
	case min > 0:
		return "from " + formatAmount(int64(min)) + " sqft"
	case max > 0:
		return "up to " + formatAmount(int64(max)) + " sqft"
	}
	return ""
}

// formatAmount renders an integer with thousands separators.
func formatAmount(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
