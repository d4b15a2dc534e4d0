// Package seed populates a store with the reference data set: crop price
// history, district soil/weather records, and sample marketplace and
// investment listings.
package seed

import (
	"context"
	"fmt"
	"time"

	"agritrade/internal/models"
	"agritrade/internal/store"
)

type cropSeries struct {
	name           string
	basePrice      float64
	yearlyIncrease float64
}

// Price history is generated per crop from a base price and yearly
// increase, with a small month offset so every series has a spread of
// observations per year.
var cropSeriesSet = []cropSeries{
	{"Tomato", 50, 5},
	{"Onion", 40, 4},
	{"Rice", 35, 2},
	{"Potato", 20, 3},
	{"Cotton", 5000, 250},
	{"Green Chili", 70, 6},
	{"Brinjal", 30, 3},
}

var regionalDataSet = []models.RegionalData{
	{
		District: "Chennai", AvgWindSpeed: 5.2, AvgTemp: 28.6, WeatherPatterns: "Coastal",
		MajorSoilType1: "Alluvial", Soil1Ph: 6.8, Soil1Nitrogen: 80, Soil1Phosphorus: 45, Soil1Potassium: 110,
		MajorSoilType2: "Clay", Soil2Ph: 7.2, Soil2Nitrogen: 65, Soil2Phosphorus: 50, Soil2Potassium: 95,
	},
	{
		District: "Coimbatore", AvgWindSpeed: 3.8, AvgTemp: 26.1, WeatherPatterns: "Semi-arid",
		MajorSoilType1: "Red", Soil1Ph: 6.5, Soil1Nitrogen: 90, Soil1Phosphorus: 55, Soil1Potassium: 120,
		MajorSoilType2: "Black", Soil2Ph: 7.0, Soil2Nitrogen: 75, Soil2Phosphorus: 60, Soil2Potassium: 115,
	},
	{
		District: "Madurai", AvgWindSpeed: 4.1, AvgTemp: 29.4, WeatherPatterns: "Hot and dry",
		MajorSoilType1: "Black", Soil1Ph: 7.2, Soil1Nitrogen: 65, Soil1Phosphorus: 40, Soil1Potassium: 85,
		MajorSoilType2: "Red", Soil2Ph: 6.4, Soil2Nitrogen: 85, Soil2Phosphorus: 50, Soil2Potassium: 100,
	},
	{
		District: "Salem", AvgWindSpeed: 3.5, AvgTemp: 27.2, WeatherPatterns: "Subtropical",
		MajorSoilType1: "Red", Soil1Ph: 6.3, Soil1Nitrogen: 95, Soil1Phosphorus: 60, Soil1Potassium: 125,
		MajorSoilType2: "Loamy", Soil2Ph: 6.7, Soil2Nitrogen: 85, Soil2Phosphorus: 65, Soil2Potassium: 115,
	},
	{
		District: "Tirunelveli", AvgWindSpeed: 4.8, AvgTemp: 30.1, WeatherPatterns: "Hot and humid",
		MajorSoilType1: "Alluvial", Soil1Ph: 6.9, Soil1Nitrogen: 75, Soil1Phosphorus: 50, Soil1Potassium: 105,
		MajorSoilType2: "Sandy", Soil2Ph: 6.0, Soil2Nitrogen: 60, Soil2Phosphorus: 45, Soil2Potassium: 80,
	},
}

var productSet = []models.Product{
	{
		UserID: 1, Name: "Fresh Tomatoes", Description: "Farm-fresh tomatoes harvested this week.",
		Category: "Vegetable", Price: 25, Unit: "kg", Quantity: 100, Location: "Coimbatore", Distance: 4,
		CreatedAt: time.Date(2023, 6, 10, 9, 0, 0, 0, time.UTC), IsAvailable: true,
	},
	{
		UserID: 2, Name: "Premium Rice", Description: "Aged ponni rice, machine cleaned.",
		Category: "Grain", Price: 45, Unit: "kg", Quantity: 500, Location: "Madurai", Distance: 12,
		CreatedAt: time.Date(2023, 6, 8, 14, 30, 0, 0, time.UTC), IsAvailable: true,
	},
	{
		UserID: 1, Name: "Red Onions", Description: "Medium-sized red onions, suitable for storage.",
		Category: "Vegetable", Price: 30, Unit: "kg", Quantity: 250, Location: "Salem", Distance: 8,
		CreatedAt: time.Date(2023, 6, 5, 11, 15, 0, 0, time.UTC), IsAvailable: true,
	},
	{
		UserID: 3, Name: "Organic Potatoes", Description: "Pesticide-free potatoes from hill farms.",
		Category: "Vegetable", Price: 20, Unit: "kg", Quantity: 150, Location: "Coimbatore", Distance: 6,
		CreatedAt: time.Date(2023, 6, 1, 16, 45, 0, 0, time.UTC), IsAvailable: true,
	},
}

var investmentSet = []models.Investment{
	{
		UserID: 1, Title: "Tomato Farm Expansion",
		Description: "Seeking investment to expand our successful tomato farm with advanced irrigation systems.",
		CropType:    "Tomato", InvestmentPeriod: 6, MinInvestment: 10000,
		TotalShares: 100, AvailableShares: 85, ExpectedReturn: 18, FarmExperience: 8,
		Location:  "Coimbatore",
		CreatedAt: time.Date(2023, 4, 1, 10, 30, 0, 0, time.UTC), IsActive: true,
	},
	{
		UserID: 2, Title: "Organic Rice Collective",
		Description: "Pooled paddy cultivation across three irrigated fields, certified organic.",
		CropType:    "Rice", InvestmentPeriod: 12, MinInvestment: 25000,
		TotalShares: 200, AvailableShares: 140, ExpectedReturn: 14, FarmExperience: 15,
		Location:  "Thanjavur",
		CreatedAt: time.Date(2023, 4, 12, 9, 0, 0, 0, time.UTC), IsActive: true,
	},
	{
		UserID: 3, Title: "Chili Greenhouse Venture",
		Description: "Protected cultivation of green chili with drip fertigation.",
		CropType:    "Green Chili", InvestmentPeriod: 4, MinInvestment: 5000,
		TotalShares: 60, AvailableShares: 60, ExpectedReturn: 22, FarmExperience: 5,
		Location:  "Madurai",
		CreatedAt: time.Date(2023, 5, 3, 13, 20, 0, 0, time.UTC), IsActive: true,
	},
}

// Apply inserts the full reference data set into the given store
func Apply(ctx context.Context, s store.Store) error {
	for _, obs := range PriceObservations() {
		o := obs
		if _, err := s.CreatePriceObservation(ctx, &o); err != nil {
			return fmt.Errorf("failed to seed price data: %w", err)
		}
	}
	for _, data := range regionalDataSet {
		d := data
		if _, err := s.CreateRegionalData(ctx, &d); err != nil {
			return fmt.Errorf("failed to seed regional data: %w", err)
		}
	}
	for _, product := range productSet {
		p := product
		if _, err := s.CreateProduct(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed products: %w", err)
		}
	}
	for _, investment := range investmentSet {
		inv := investment
		if _, err := s.CreateInvestment(ctx, &inv); err != nil {
			return fmt.Errorf("failed to seed investments: %w", err)
		}
	}
	return nil
}

// PriceObservations generates the deterministic price history for every
// seeded crop: two observations per year from 2021 through 2023.
func PriceObservations() []models.PriceObservation {
	var observations []models.PriceObservation
	for _, series := range cropSeriesSet {
		for year := 2021; year <= 2023; year++ {
			for _, month := range []int{1, 6} {
				price := series.basePrice +
					float64(year-2021)*series.yearlyIncrease +
					float64(month-1)*series.basePrice*0.005
				observations = append(observations, models.PriceObservation{
					CropName: series.name,
					Month:    month,
					Year:     year,
					Rainfall: 10 + float64((month+3)%12)*15,
					WPI:      100 + float64(year-2021)*5 + float64(month)*0.2,
					Price:    price,
				})
			}
		}
	}
	return observations
}
