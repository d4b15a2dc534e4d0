package listings

import (
	"sort"
	"strings"

	"agritrade/internal/models"
)

// Filter sentinels: a category or location equal to these (or empty)
// disables the corresponding predicate.
const (
	AllCategories = "All Categories"
	AllLocations  = "All Locations"
)

// Product sort orders. Unrecognized values fall back to SortProductLatest.
const (
	SortProductLatest    = "Sort by: Latest"
	SortProductPriceAsc  = "Price: Low to High"
	SortProductPriceDesc = "Price: High to Low"
	SortProductDistance  = "Distance: Nearest"
)

// Investment sort orders. Unrecognized values fall back to SortInvestmentReturns.
const (
	SortInvestmentReturns     = "Returns"
	SortInvestmentShortToLong = "Duration: Short to Long"
	SortInvestmentLongToShort = "Duration: Long to Short"
	SortInvestmentMinAsc      = "Investment: Low to High"
)

// ProductFilter is the declarative filter/sort spec for product listings.
// Nil price bounds are skipped.
type ProductFilter struct {
	Category   string
	Location   string
	SearchTerm string
	SortBy     string
	MinPrice   *float64
	MaxPrice   *float64
}

// InvestmentFilter is the declarative filter/sort spec for investment
// listings. Return bounds apply to ExpectedReturn.
type InvestmentFilter struct {
	CropType   string
	Location   string
	SearchTerm string
	SortBy     string
	MinReturn  *float64
	MaxReturn  *float64
}

// Page is a bounded window of a filtered, sorted sequence plus paging metadata
type Page[T any] struct {
	Items        []T `json:"items"`
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// FilterProducts returns the products satisfying every supplied predicate.
// The search term matches name or description, case-insensitively.
func FilterProducts(products []models.Product, f ProductFilter) []models.Product {
	term := strings.ToLower(f.SearchTerm)
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && f.Category != AllCategories && p.Category != f.Category {
			continue
		}
		if f.Location != "" && f.Location != AllLocations && p.Location != f.Location {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortProducts returns a sorted copy; the input slice is left untouched
func SortProducts(products []models.Product, sortBy string) []models.Product {
	sorted := make([]models.Product, len(products))
	copy(sorted, products)

	switch sortBy {
	case SortProductPriceAsc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price < sorted[j].Price
		})
	case SortProductPriceDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price > sorted[j].Price
		})
	case SortProductDistance:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Distance < sorted[j].Distance
		})
	default: // latest first
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
	}
	return sorted
}

// FilterInvestments returns the investments satisfying every supplied
// predicate. The search term matches title, description or crop type.
func FilterInvestments(investments []models.Investment, f InvestmentFilter) []models.Investment {
	term := strings.ToLower(f.SearchTerm)
	out := make([]models.Investment, 0, len(investments))
	for _, inv := range investments {
		if f.CropType != "" && f.CropType != AllCategories && inv.CropType != f.CropType {
			continue
		}
		if f.Location != "" && f.Location != AllLocations && inv.Location != f.Location {
			continue
		}
		if f.MinReturn != nil && inv.ExpectedReturn < *f.MinReturn {
			continue
		}
		if f.MaxReturn != nil && inv.ExpectedReturn > *f.MaxReturn {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(inv.Title), term) &&
			!strings.Contains(strings.ToLower(inv.Description), term) &&
			!strings.Contains(strings.ToLower(inv.CropType), term) {
			continue
		}
		out = append(out, inv)
	}
	return out
}

// SortInvestments returns a sorted copy; the input slice is left untouched
func SortInvestments(investments []models.Investment, sortBy string) []models.Investment {
	sorted := make([]models.Investment, len(investments))
	copy(sorted, investments)

	switch sortBy {
	case SortInvestmentShortToLong:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].InvestmentPeriod < sorted[j].InvestmentPeriod
		})
	case SortInvestmentLongToShort:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].InvestmentPeriod > sorted[j].InvestmentPeriod
		})
	case SortInvestmentMinAsc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].MinInvestment < sorted[j].MinInvestment
		})
	default: // highest returns first
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].ExpectedReturn > sorted[j].ExpectedReturn
		})
	}
	return sorted
}

// Paginate slices out the 1-based page of the given size. A page past the
// end yields an empty (never nil) item list, not an error.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	totalPages := (total + perPage - 1) / perPage

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	window := items[start:end]
	if window == nil {
		window = []T{}
	}

	return Page[T]{
		Items:        window,
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: perPage,
	}
}
