package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"agritrade/internal/models"
	"agritrade/internal/store"
	"agritrade/internal/users"
)

// stubScorer satisfies suggest.Scorer without a network hop
type stubScorer struct {
	crops []models.SuggestedCrop
	err   error
}

func (s *stubScorer) Suggest(ctx context.Context, req models.SuggestionRequest) ([]models.SuggestedCrop, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.crops, nil
}

func newTestRouter(t *testing.T, scorer *stubScorer) (*chi.Mux, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()

	observations := []models.PriceObservation{
		{CropName: "Tomato", Month: 1, Year: 2021, Price: 65},
		{CropName: "Tomato", Month: 6, Year: 2023, Price: 85},
		{CropName: "Onion", Month: 1, Year: 2021, Price: 40},
		{CropName: "Onion", Month: 6, Year: 2023, Price: 42},
	}
	for i := range observations {
		if _, err := mem.CreatePriceObservation(ctx, &observations[i]); err != nil {
			t.Fatalf("failed to seed price data: %v", err)
		}
	}

	if _, err := mem.CreateRegionalData(ctx, &models.RegionalData{
		District: "Coimbatore", AvgWindSpeed: 3.8, AvgTemp: 26.1, WeatherPatterns: "Semi-arid",
		MajorSoilType1: "Red", Soil1Ph: 6.5, Soil1Nitrogen: 90, Soil1Phosphorus: 55, Soil1Potassium: 120,
	}); err != nil {
		t.Fatalf("failed to seed regional data: %v", err)
	}

	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	seedProducts := []models.Product{
		{UserID: 1, Name: "Fresh Tomatoes", Description: "Farm-fresh", Category: "Vegetable", Price: 25, Location: "Coimbatore", CreatedAt: base.Add(48 * time.Hour), IsAvailable: true},
		{UserID: 2, Name: "Premium Rice", Description: "Aged ponni", Category: "Grain", Price: 45, Location: "Madurai", CreatedAt: base.Add(24 * time.Hour), IsAvailable: true},
		{UserID: 1, Name: "Old Stock Onions", Description: "Sold out", Category: "Vegetable", Price: 30, Location: "Salem", CreatedAt: base, IsAvailable: false},
	}
	for i := range seedProducts {
		if _, err := mem.CreateProduct(ctx, &seedProducts[i]); err != nil {
			t.Fatalf("failed to seed products: %v", err)
		}
	}

	if _, err := mem.CreateInvestment(ctx, &models.Investment{
		UserID: 1, Title: "Tomato Farm Expansion", CropType: "Tomato",
		InvestmentPeriod: 6, MinInvestment: 10000, TotalShares: 100, AvailableShares: 65,
		ExpectedReturn: 18, Location: "Coimbatore", IsActive: true,
	}); err != nil {
		t.Fatalf("failed to seed investments: %v", err)
	}

	handler := NewHandler(mem, scorer, users.NewService(mem), 6)

	r := chi.NewRouter()
	r.Get("/api/price-prediction", handler.GetPricePrediction)
	r.Get("/api/products", handler.GetProducts)
	r.Post("/api/products", handler.CreateProduct)
	r.Get("/api/products/{id}", handler.GetProduct)
	r.Put("/api/products/{id}", handler.UpdateProduct)
	r.Delete("/api/products/{id}", handler.DeleteProduct)
	r.Get("/api/investments", handler.GetInvestments)
	r.Post("/api/investments", handler.CreateInvestment)
	r.Get("/api/investments/{id}", handler.GetInvestment)
	r.Get("/api/user-investments/{userId}", handler.GetUserInvestments)
	r.Post("/api/user-investments", handler.CreateUserInvestment)
	r.Get("/api/districts", handler.GetDistricts)
	r.Get("/api/regional-data/{district}", handler.GetRegionalData)
	r.Post("/api/crop-suggestion", handler.SubmitCropSuggestion)
	r.Post("/api/users", handler.RegisterUser)
	return r, mem
}

func doRequest(router *chi.Mux, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetPricePrediction(t *testing.T) {
	router, _ := newTestRouter(t, &stubScorer{})

	rec := doRequest(router, http.MethodGet, "/api/price-prediction", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var report models.TrendReport
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Len(t, report.AllCrops, 2)
	assert.Len(t, report.ProfitableCrops, 2)

	// Tomato (+30.77%) outranks Onion (+5%)
	assert.Equal(t, "Tomato", report.ProfitableCrops[0].CropName)
	assert.Equal(t, "High Demand", report.ProfitableCrops[0].Demand)
	assert.InDelta(t, 30.77, report.ProfitableCrops[0].PriceChangePercentage, 0.01)
	assert.Equal(t, "Low Demand", report.ProfitableCrops[1].Demand)
}

func TestGetPricePrediction_InvalidData(t *testing.T) {
	router, mem := newTestRouter(t, &stubScorer{})

	// A zero oldest price must surface as an opaque 500, not NaN/Inf
	_, err := mem.CreatePriceObservation(context.Background(), &models.PriceObservation{
		CropName: "Brinjal", Month: 1, Year: 2019, Price: 0,
	})
	assert.NoError(t, err)

	rec := doRequest(router, http.MethodGet, "/api/price-prediction", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Brinjal")
}

func TestGetProducts_FilterAndAvailability(t *testing.T) {
	router, _ := newTestRouter(t, &stubScorer{})

	rec := doRequest(router, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var products []models.Product
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	// The unavailable product is never listed
	assert.Len(t, products, 2)

	rec = doRequest(router, http.MethodGet, "/api/products?category=Grain", nil)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	assert.Len(t, products, 1)
	assert.Equal(t, "Premium Rice", products[0].Name)

	rec = doRequest(router, http.MethodGet, "/api/products?minPrice=30", nil)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	assert.Len(t, products, 1)
	assert.Equal(t, "Premium Rice", products[0].Name)

	rec = doRequest(router, http.MethodGet, "/api/products?minPrice=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProducts_Paged(t *testing.T) {
	router, _ := newTestRouter(t, &stubScorer{})

	rec := doRequest(router, http.MethodGet, "/api/products?page=1&pageSize=1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Items        []models.Product `json:"items"`
		CurrentPage  int              `json:"currentPage"`
		TotalPages   int              `json:"totalPages"`
		TotalItems   int              `json:"totalItems"`
		ItemsPerPage int              `json:"itemsPerPage"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.TotalItems)

	// Latest first by default
	assert.Equal(t, "Fresh Tomatoes", page.Items[0].Name)

	// A page past the end is empty, not an error
	rec = doRequest(router, http.MethodGet, "/api/products?page=9&pageSize=1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Items, 0)
}

func TestProductLifecycle(t *testing.T) {
	router, _ := newTestRouter(t, &stubScorer{})

	rec := doRequest(router, http.MethodPost, "/api/products", map[string]interface{}{
		"userId":   1,
		"name":     "Organic Potatoes",
		"category": "Vegetable",
		"price":    20,
		"unit":     "kg",
		"quantity": 150,
		"location": "Coimbatore",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created models.Product
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.IsAvailable)
	assert.NotZero(t, created.ID)

	rec = doRequest(router, http.MethodPut, "/api/products/4", map[string]interface{}{
		"price":       22.5,
		"isAvailable": false,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var updated models.Product
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, 22.5, updated.Price)
	assert.False(t, updated.IsAvailable)

	rec = doRequest(router, http.MethodDelete, "/api/products/4", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/products/4", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProduct_Validation(t *testing.T) {
	router, _ := newTestRouter(t, &stubScorer{})

	rec := doRequest(router, http.MethodPost, "/api/products", map[string]interface{}{
		"userId": 1,
		"name":   "",
		"price":  -5,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "name")
	assert.Contains(t, resp.Fields, "price")
}

func TestGetInvestments_ActiveOnly(t *testing.T) {
	router, mem := newTestRouter(t, &stubScorer{})

	_, err := mem.CreateInvestment(context.Background(), &models.Investment{
		UserID: 2, Title: "Closed Venture", CropType: "Rice",
		TotalShares: 10, AvailableShares: 10, MinInvestment: 1000, Location: "Salem", IsActive: false,
	})
	assert.NoError(t, err)

	rec := doRequest(router, http.MethodGet, "/api/investments", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var investments []models.Investment
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &investments))
	assert.Len(t, investments, 1)
	assert.Equal(t, "Tomato Farm Expansion", investments[0].Title)
}

func TestCreateUserInvestment(t *testing.T) {
	router, _ := newTestRouter(t, &stubScorer{})

	rec := doRequest(router, http.MethodPost, "/api/user-investments", map[string]interface{}{
		"userId":       2,
		"investmentId": 1,
		"shares":       20,
		"amount":       20000,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var purchase models.UserInvestment
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &purchase))
	assert.Equal(t, 20, purchase.Shares)
	assert.Equal(t, "active", purchase.Status)

	// availableShares went 65 -> 45
	rec = doRequest(router, http.MethodGet, "/api/investments/1", nil)
	var investment models.Investment
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &investment))
	assert.Equal(t, 45, investment.AvailableShares)

	// The purchase shows up under the user, embedding its investment
	rec = doRequest(router, http.MethodGet, "/api/user-investments/2", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var withInvestments []struct {
		models.UserInvestment
		Investment *models.Investment `json:"investment"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &withInvestments))
	assert.Len(t, withInvestments, 1)
	assert.NotNil(t, withInvestments[0].Investment)
	assert.Equal(t, "Tomato Farm Expansion", withInvestments[0].Investment.Title)
}

func TestCreateUserInvestment_Errors(t *testing.T) {
	router, _ := newTestRouter(t, &stubScorer{})

	rec := doRequest(router, http.MethodPost, "/api/user-investments", map[string]interface{}{
		"userId":       2,
		"investmentId": 999,
		"shares":       1,
		"amount":       100,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(router, http.MethodPost, "/api/user-investments", map[string]interface{}{
		"userId":       2,
		"investmentId": 1,
		"shares":       100, // only 65 available
		"amount":       100000,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not enough shares")

	// Failed purchase leaves the counter untouched
	rec = doRequest(router, http.MethodGet, "/api/investments/1", nil)
	var investment models.Investment
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &investment))
	assert.Equal(t, 65, investment.AvailableShares)

	rec = doRequest(router, http.MethodPost, "/api/user-investments", map[string]interface{}{
		"userId":       2,
		"investmentId": 1,
		"shares":       0,
		"amount":       100,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDistrictsAndRegionalData(t *testing.T) {
	router, _ := newTestRouter(t, &stubScorer{})

	rec := doRequest(router, http.MethodGet, "/api/districts", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var districts []string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &districts))
	assert.Equal(t, []string{"Coimbatore"}, districts)

	rec = doRequest(router, http.MethodGet, "/api/regional-data/Coimbatore", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var regional models.RegionalData
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regional))
	assert.Equal(t, "Semi-arid", regional.WeatherPatterns)

	rec = doRequest(router, http.MethodGet, "/api/regional-data/Atlantis", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitCropSuggestion(t *testing.T) {
	scorer := &stubScorer{crops: []models.SuggestedCrop{
		{Name: "Tomato", Suitability: "Highly Suitable", HarvestDays: 90, ExpectedYield: "25-30 ton/hectare", ProfitMargin: 30},
	}}
	router, _ := newTestRouter(t, scorer)

	rec := doRequest(router, http.MethodPost, "/api/crop-suggestion", map[string]interface{}{
		"district":   "Coimbatore",
		"soilType":   "Red",
		"phLevel":    6.5,
		"nitrogen":   90,
		"phosphorus": 55,
		"potassium":  120,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		District       string                  `json:"district"`
		SuggestedCrops []models.CropSuggestion `json:"suggestedCrops"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Coimbatore", resp.District)
	assert.Len(t, resp.SuggestedCrops, 1)
	// Latest Tomato price is 85; predicted projects the 30% margin
	assert.Equal(t, 85.0, resp.SuggestedCrops[0].CurrentPrice)
	assert.InDelta(t, 110.5, resp.SuggestedCrops[0].PredictedPrice, 0.001)
}

func TestSubmitCropSuggestion_Validation(t *testing.T) {
	router, _ := newTestRouter(t, &stubScorer{})

	rec := doRequest(router, http.MethodPost, "/api/crop-suggestion", map[string]interface{}{
		"district": "",
		"soilType": "Red",
		"phLevel":  15.2,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "district")
	assert.Contains(t, resp.Fields, "phLevel")
}

func TestSubmitCropSuggestion_UnknownDistrict(t *testing.T) {
	router, _ := newTestRouter(t, &stubScorer{})

	rec := doRequest(router, http.MethodPost, "/api/crop-suggestion", map[string]interface{}{
		"district": "Atlantis",
		"soilType": "Red",
		"phLevel":  6.5,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitCropSuggestion_ScorerFailure(t *testing.T) {
	router, _ := newTestRouter(t, &stubScorer{err: models.ErrExternalService})

	rec := doRequest(router, http.MethodPost, "/api/crop-suggestion", map[string]interface{}{
		"district": "Coimbatore",
		"soilType": "Red",
		"phLevel":  6.5,
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRegisterUser(t *testing.T) {
	router, mem := newTestRouter(t, &stubScorer{})

	rec := doRequest(router, http.MethodPost, "/api/users", map[string]interface{}{
		"username": "farmer1",
		"password": "secret123",
		"fullName": "Farmer One",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "farmer1", user.Username)
	assert.Equal(t, "farmer", user.Role)
	assert.NotContains(t, rec.Body.String(), "secret123")

	stored, err := mem.UserByUsername(context.Background(), "farmer1")
	assert.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)

	// Empty password is rejected
	rec = doRequest(router, http.MethodPost, "/api/users", map[string]interface{}{
		"username": "farmer2",
		"password": "",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
