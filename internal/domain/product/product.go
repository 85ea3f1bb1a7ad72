package product

import "strings"

// Product is an immutable catalog entry. Products are created out-of-band
// (seeded or managed by the catalog backend) and never mutated here.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int    `json:"price"` // smallest currency unit
	Description string `json:"description"`
	Image       string `json:"image"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// Filter narrows a catalog listing by category and free-text query. The
// storefront search box filters the cached listing in memory, so matching is
// a simple case-insensitive substring check over name and description.
func Filter(products []Product, category, query string) []Product {
	if category == "" && query == "" {
		return products
	}
	q := strings.ToLower(query)
	var out []Product
	for _, p := range products {
		if category != "" && p.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}
