package models

import "time"

// User represents a registered user
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Role         string    `json:"role"` // "farmer" or "investor"
	CreatedAt    time.Time `json:"createdAt"`
}

// PriceObservation is a single historical price record for a crop.
// Observations are immutable once created; (crop_name, month, year)
// is unique in the persistence layer.
type PriceObservation struct {
	ID       int     `json:"id"`
	CropName string  `json:"cropName"`
	Month    int     `json:"month"` // 1-12
	Year     int     `json:"year"`
	Rainfall float64 `json:"rainfall"`
	WPI      float64 `json:"wpi"` // wholesale price index
	Price    float64 `json:"price"`
}

// CropTrend is the derived ranking record for one crop. It is computed
// fresh from the full observation set on every request and never persisted.
type CropTrend struct {
	CropName              string  `json:"cropName"`
	CurrentPrice          float64 `json:"currentPrice"`
	PredictedPrice        float64 `json:"predictedPrice"`
	PriceChange           float64 `json:"priceChange"`
	PriceChangePercentage float64 `json:"priceChangePercentage"`
	Category              string  `json:"category"` // Vegetable, Fruit, Grain, Cash Crop, Other
	Demand                string  `json:"demand"`   // High Demand, Medium Demand, Low Demand
}

// TrendReport holds the three ranked views served by the price prediction endpoint
type TrendReport struct {
	ProfitableCrops []CropTrend `json:"profitableCrops"`
	DemandableCrops []CropTrend `json:"demandableCrops"`
	AllCrops        []CropTrend `json:"allCrops"`
}

// Product is a marketplace listing
type Product struct {
	ID          int       `json:"id"`
	UserID      int       `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Unit        string    `json:"unit"` // e.g. "kg"
	Quantity    float64   `json:"quantity"`
	Location    string    `json:"location"`
	Distance    float64   `json:"distance"` // km from the buyer, 0 when unknown
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	IsAvailable bool      `json:"isAvailable"`
}

// Investment is a farm investment listing
type Investment struct {
	ID               int       `json:"id"`
	UserID           int       `json:"userId"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	CropType         string    `json:"cropType"`
	InvestmentPeriod int       `json:"investmentPeriod"` // months
	MinInvestment    float64   `json:"minInvestment"`
	TotalShares      int       `json:"totalShares"`
	AvailableShares  int       `json:"availableShares"` // always <= TotalShares
	ExpectedReturn   float64   `json:"expectedReturn"`  // percentage
	FarmExperience   int       `json:"farmExperience"`  // years
	Location         string    `json:"location"`
	ImageURL         string    `json:"imageUrl"`
	CreatedAt        time.Time `json:"createdAt"`
	IsActive         bool      `json:"isActive"`
}

// UserInvestment records a share purchase against an Investment
type UserInvestment struct {
	ID           int       `json:"id"`
	UserID       int       `json:"userId"`
	InvestmentID int       `json:"investmentId"`
	Amount       float64   `json:"amount"`
	Shares       int       `json:"shares"`
	PurchaseDate time.Time `json:"purchaseDate"`
	Status       string    `json:"status"` // "active", "completed", "cancelled"
}

// RegionalData holds soil and weather parameters for one district
type RegionalData struct {
	ID              int     `json:"id"`
	District        string  `json:"district"`
	AvgWindSpeed    float64 `json:"avgWindSpeed"`
	AvgTemp         float64 `json:"avgTemp"`
	WeatherPatterns string  `json:"weatherPatterns"`
	MajorSoilType1  string  `json:"majorSoilType1"`
	Soil1Ph         float64 `json:"soil1Ph"`
	Soil1Nitrogen   float64 `json:"soil1Nitrogen"`
	Soil1Phosphorus float64 `json:"soil1Phosphorus"`
	Soil1Potassium  float64 `json:"soil1Potassium"`
	MajorSoilType2  string  `json:"majorSoilType2"`
	Soil2Ph         float64 `json:"soil2Ph"`
	Soil2Nitrogen   float64 `json:"soil2Nitrogen"`
	Soil2Phosphorus float64 `json:"soil2Phosphorus"`
	Soil2Potassium  float64 `json:"soil2Potassium"`
}

// SuggestionRequest is the payload sent to the external suitability scorer.
// Farm parameters come from the caller, the rest from the district's RegionalData.
type SuggestionRequest struct {
	District        string  `json:"district"`
	SoilType        string  `json:"soilType"`
	PhLevel         float64 `json:"phLevel"`
	Nitrogen        float64 `json:"nitrogen"`
	Phosphorus      float64 `json:"phosphorus"`
	Potassium       float64 `json:"potassium"`
	AvgWindSpeed    float64 `json:"avgWindSpeed"`
	AvgTemp         float64 `json:"avgTemp"`
	WeatherPatterns string  `json:"weatherPatterns"`
}

// SuggestedCrop is one entry of the scorer's response, exactly as the
// external service returns it
type SuggestedCrop struct {
	Name          string  `json:"name"`
	Suitability   string  `json:"suitability"`
	HarvestDays   int     `json:"harvestDays"`
	ExpectedYield string  `json:"expectedYield"`
	ProfitMargin  float64 `json:"profitMargin"`
}

// CropSuggestion is a SuggestedCrop enriched with price data. Constructed
// once by the enrichment stage and immutable thereafter.
type CropSuggestion struct {
	SuggestedCrop
	CurrentPrice   float64 `json:"currentPrice"`
	PredictedPrice float64 `json:"predictedPrice"`
}
