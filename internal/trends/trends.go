package trends

import (
	"fmt"
	"sort"

	"agritrade/internal/models"
)

// Demand tiers derived from price change percentage
const (
	DemandHigh   = "High Demand"
	DemandMedium = "Medium Demand"
	DemandLow    = "Low Demand"
)

// Crop categories
const (
	CategoryVegetable = "Vegetable"
	CategoryFruit     = "Fruit"
	CategoryGrain     = "Grain"
	CategoryCashCrop  = "Cash Crop"
	CategoryOther     = "Other"
)

const topCropCount = 5

// cropCategories is the fixed crop name -> category table. Unlisted crops
// fall back to "Other".
var cropCategories = map[string]string{
	"Tomato":      CategoryVegetable,
	"Onion":       CategoryVegetable,
	"Potato":      CategoryVegetable,
	"Green Chili": CategoryVegetable,
	"Brinjal":     CategoryVegetable,
	"Carrot":      CategoryVegetable,
	"Apple":       CategoryFruit,
	"Banana":      CategoryFruit,
	"Orange":      CategoryFruit,
	"Mango":       CategoryFruit,
	"Rice":        CategoryGrain,
	"Wheat":       CategoryGrain,
	"Millet":      CategoryGrain,
	"Cotton":      CategoryCashCrop,
	"Sugarcane":   CategoryCashCrop,
	"Coffee":      CategoryCashCrop,
}

// Aggregate turns an unordered set of price observations into the three
// ranked crop views. Grouping is by exact crop name, no normalization.
// Observations sharing the same (year, month) keep their input order.
// Returns ErrInvalidPriceData when a crop's oldest price is not positive,
// since the percentage math is undefined there.
func Aggregate(observations []models.PriceObservation) (*models.TrendReport, error) {
	groups := make(map[string][]models.PriceObservation)
	for _, o := range observations {
		groups[o.CropName] = append(groups[o.CropName], o)
	}

	crops := make([]models.CropTrend, 0, len(groups))
	for name, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Year != group[j].Year {
				return group[i].Year < group[j].Year
			}
			return group[i].Month < group[j].Month
		})

		oldest := group[0].Price
		newest := group[len(group)-1].Price
		if oldest <= 0 {
			return nil, fmt.Errorf("crop %q: oldest price %.2f: %w", name, oldest, models.ErrInvalidPriceData)
		}

		change := newest - oldest
		pct := change / oldest * 100
		crops = append(crops, models.CropTrend{
			CropName:              name,
			CurrentPrice:          newest,
			PredictedPrice:        newest * (1 + pct/100),
			PriceChange:           change,
			PriceChangePercentage: pct,
			Category:              Category(name),
			Demand:                Demand(pct),
		})
	}

	// Map iteration order is random; sort the full list by crop name so
	// the report is deterministic.
	sort.Slice(crops, func(i, j int) bool {
		return crops[i].CropName < crops[j].CropName
	})

	profitable := make([]models.CropTrend, len(crops))
	copy(profitable, crops)
	sort.SliceStable(profitable, func(i, j int) bool {
		return profitable[i].PriceChangePercentage > profitable[j].PriceChangePercentage
	})

	demandable := make([]models.CropTrend, len(crops))
	copy(demandable, crops)
	sort.SliceStable(demandable, func(i, j int) bool {
		ri, rj := demandRank(demandable[i].Demand), demandRank(demandable[j].Demand)
		if ri != rj {
			return ri < rj
		}
		return demandable[i].PriceChangePercentage > demandable[j].PriceChangePercentage
	})

	return &models.TrendReport{
		ProfitableCrops: truncate(profitable, topCropCount),
		DemandableCrops: truncate(demandable, topCropCount),
		AllCrops:        crops,
	}, nil
}

// Category returns the fixed category for a crop name, "Other" if unlisted
func Category(cropName string) string {
	if c, ok := cropCategories[cropName]; ok {
		return c
	}
	return CategoryOther
}

// Demand classifies a price change percentage into a demand tier.
// Thresholds are exclusive lower bounds: exactly 15 is Medium, exactly 5 is Low.
func Demand(priceChangePercentage float64) string {
	switch {
	case priceChangePercentage > 15:
		return DemandHigh
	case priceChangePercentage > 5:
		return DemandMedium
	default:
		return DemandLow
	}
}

// Latest returns the most recent recorded price per crop, keyed by exact
// crop name. Used to enrich crop suggestions with current prices.
func Latest(observations []models.PriceObservation) map[string]float64 {
	type stamp struct {
		year, month int
	}
	seen := make(map[string]stamp)
	latest := make(map[string]float64)
	for _, o := range observations {
		s, ok := seen[o.CropName]
		if !ok || o.Year > s.year || (o.Year == s.year && o.Month >= s.month) {
			seen[o.CropName] = stamp{o.Year, o.Month}
			latest[o.CropName] = o.Price
		}
	}
	return latest
}

func demandRank(demand string) int {
	switch demand {
	case DemandHigh:
		return 0
	case DemandMedium:
		return 1
	default:
		return 2
	}
}

func truncate(crops []models.CropTrend, n int) []models.CropTrend {
	if len(crops) > n {
		return crops[:n]
	}
	return crops
}
