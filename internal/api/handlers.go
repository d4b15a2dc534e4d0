package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"agritrade/internal/listings"
	"agritrade/internal/models"
	"agritrade/internal/store"
	"agritrade/internal/suggest"
	"agritrade/internal/trends"
	"agritrade/internal/users"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	Store        store.Store
	Scorer       suggest.Scorer
	Users        *users.Service
	ItemsPerPage int
}

// NewHandler creates a new handler
func NewHandler(s store.Store, scorer suggest.Scorer, userService *users.Service, itemsPerPage int) *Handler {
	return &Handler{Store: s, Scorer: scorer, Users: userService, ItemsPerPage: itemsPerPage}
}

// Health reports service liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// GetPricePrediction computes and returns the three ranked crop trend views
func (h *Handler) GetPricePrediction(w http.ResponseWriter, r *http.Request) {
	observations, err := h.Store.PriceObservations(r.Context())
	if err != nil {
		http.Error(w, `{"error": "Failed to load price data"}`, http.StatusInternalServerError)
		return
	}

	report, err := trends.Aggregate(observations)
	if err != nil {
		// Integrity failure, not user-correctable: log with context,
		// return an opaque error.
		log.Printf("price data integrity error: %v", err)
		http.Error(w, `{"error": "Failed to compute price trends"}`, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(report)
}

// GetProducts returns available products, filtered and sorted per the
// query parameters. When "page" is supplied the result is a paged
// envelope, otherwise the bare filtered list.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	filter := listings.ProductFilter{
		Category:   r.URL.Query().Get("category"),
		Location:   r.URL.Query().Get("location"),
		SearchTerm: r.URL.Query().Get("search"),
		SortBy:     r.URL.Query().Get("sortBy"),
	}

	var err error
	if filter.MinPrice, err = parseOptionalFloat(r, "minPrice"); err != nil {
		http.Error(w, `{"error": "Invalid minPrice"}`, http.StatusBadRequest)
		return
	}
	if filter.MaxPrice, err = parseOptionalFloat(r, "maxPrice"); err != nil {
		http.Error(w, `{"error": "Invalid maxPrice"}`, http.StatusBadRequest)
		return
	}

	products, err := h.Store.Products(r.Context())
	if err != nil {
		http.Error(w, `{"error": "Failed to retrieve products"}`, http.StatusInternalServerError)
		return
	}

	available := products[:0:0]
	for _, p := range products {
		if p.IsAvailable {
			available = append(available, p)
		}
	}

	sorted := listings.SortProducts(listings.FilterProducts(available, filter), filter.SortBy)

	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		page, err := strconv.Atoi(pageParam)
		if err != nil || page < 1 {
			http.Error(w, `{"error": "Invalid page"}`, http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(listings.Paginate(sorted, page, h.pageSize(r)))
		return
	}

	if sorted == nil {
		sorted = []models.Product{}
	}
	json.NewEncoder(w).Encode(sorted)
}

// CreateProduct inserts a new marketplace listing
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if fields := validateProduct(&product); len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}
	product.IsAvailable = true

	created, err := h.Store.CreateProduct(r.Context(), &product)
	if err != nil {
		http.Error(w, `{"error": "Failed to create product"}`, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetProduct retrieves one product by id
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error": "Invalid product ID"}`, http.StatusBadRequest)
		return
	}

	product, err := h.Store.ProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, `{"error": "Product not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error": "Failed to retrieve product"}`, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(product)
}

// UpdateProduct mutates a product's updatable fields
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error": "Invalid product ID"}`, http.StatusBadRequest)
		return
	}

	var req struct {
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Quantity    *float64 `json:"quantity"`
		ImageURL    *string  `json:"imageUrl"`
		IsAvailable *bool    `json:"isAvailable"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	product, err := h.Store.ProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, `{"error": "Product not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error": "Failed to retrieve product"}`, http.StatusInternalServerError)
		return
	}

	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			http.Error(w, `{"error": "Price must be positive"}`, http.StatusBadRequest)
			return
		}
		product.Price = *req.Price
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			http.Error(w, `{"error": "Quantity must not be negative"}`, http.StatusBadRequest)
			return
		}
		product.Quantity = *req.Quantity
	}
	if req.ImageURL != nil {
		product.ImageURL = *req.ImageURL
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	updated, err := h.Store.UpdateProduct(r.Context(), product)
	if err != nil {
		http.Error(w, `{"error": "Failed to update product"}`, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(updated)
}

// DeleteProduct removes a product listing
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error": "Invalid product ID"}`, http.StatusBadRequest)
		return
	}

	if err := h.Store.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, `{"error": "Product not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error": "Failed to delete product"}`, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"message": "Product deleted"})
}

// GetInvestments returns active investments, filtered and sorted per the
// query parameters, with the same optional paging as products
func (h *Handler) GetInvestments(w http.ResponseWriter, r *http.Request) {
	filter := listings.InvestmentFilter{
		CropType:   r.URL.Query().Get("cropType"),
		Location:   r.URL.Query().Get("location"),
		SearchTerm: r.URL.Query().Get("search"),
		SortBy:     r.URL.Query().Get("sortBy"),
	}

	var err error
	if filter.MinReturn, err = parseOptionalFloat(r, "minReturn"); err != nil {
		http.Error(w, `{"error": "Invalid minReturn"}`, http.StatusBadRequest)
		return
	}
	if filter.MaxReturn, err = parseOptionalFloat(r, "maxReturn"); err != nil {
		http.Error(w, `{"error": "Invalid maxReturn"}`, http.StatusBadRequest)
		return
	}

	investments, err := h.Store.Investments(r.Context(), true)
	if err != nil {
		http.Error(w, `{"error": "Failed to retrieve investments"}`, http.StatusInternalServerError)
		return
	}

	sorted := listings.SortInvestments(listings.FilterInvestments(investments, filter), filter.SortBy)

	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		page, err := strconv.Atoi(pageParam)
		if err != nil || page < 1 {
			http.Error(w, `{"error": "Invalid page"}`, http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(listings.Paginate(sorted, page, h.pageSize(r)))
		return
	}

	if sorted == nil {
		sorted = []models.Investment{}
	}
	json.NewEncoder(w).Encode(sorted)
}

// CreateInvestment inserts a new investment listing
func (h *Handler) CreateInvestment(w http.ResponseWriter, r *http.Request) {
	var investment models.Investment
	if err := json.NewDecoder(r.Body).Decode(&investment); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	if fields := validateInvestment(&investment); len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}
	if investment.AvailableShares == 0 {
		investment.AvailableShares = investment.TotalShares
	}
	investment.IsActive = true

	created, err := h.Store.CreateInvestment(r.Context(), &investment)
	if err != nil {
		http.Error(w, `{"error": "Failed to create investment"}`, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetInvestment retrieves one investment by id
func (h *Handler) GetInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error": "Invalid investment ID"}`, http.StatusBadRequest)
		return
	}

	investment, err := h.Store.InvestmentByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, `{"error": "Investment not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error": "Failed to retrieve investment"}`, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(investment)
}

// GetUserInvestments returns a user's purchases, each embedding its investment
func (h *Handler) GetUserInvestments(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userId"))
	if err != nil {
		http.Error(w, `{"error": "Invalid user ID"}`, http.StatusBadRequest)
		return
	}

	purchases, err := h.Store.UserInvestments(r.Context(), userID)
	if err != nil {
		http.Error(w, `{"error": "Failed to retrieve user investments"}`, http.StatusInternalServerError)
		return
	}

	type purchaseWithInvestment struct {
		models.UserInvestment
		Investment *models.Investment `json:"investment"`
	}

	out := make([]purchaseWithInvestment, 0, len(purchases))
	for _, p := range purchases {
		investment, err := h.Store.InvestmentByID(r.Context(), p.InvestmentID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			http.Error(w, `{"error": "Failed to retrieve user investments"}`, http.StatusInternalServerError)
			return
		}
		out = append(out, purchaseWithInvestment{UserInvestment: p, Investment: investment})
	}

	json.NewEncoder(w).Encode(out)
}

// CreateUserInvestment purchases shares of an investment
func (h *Handler) CreateUserInvestment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID       int     `json:"userId"`
		InvestmentID int     `json:"investmentId"`
		Shares       int     `json:"shares"`
		Amount       float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	fields := map[string]string{}
	if req.UserID <= 0 {
		fields["userId"] = "must be positive"
	}
	if req.InvestmentID <= 0 {
		fields["investmentId"] = "must be positive"
	}
	if req.Shares <= 0 {
		fields["shares"] = "must be positive"
	}
	if req.Amount <= 0 {
		fields["amount"] = "must be positive"
	}
	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	purchase, err := h.Store.PurchaseShares(r.Context(), req.UserID, req.InvestmentID, req.Shares, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			http.Error(w, `{"error": "Investment not found"}`, http.StatusNotFound)
		case errors.Is(err, models.ErrInsufficientShares):
			http.Error(w, `{"error": "Not enough shares available"}`, http.StatusBadRequest)
		default:
			http.Error(w, `{"error": "Failed to record investment"}`, http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(purchase)
}

// GetDistricts lists the districts with regional data on record
func (h *Handler) GetDistricts(w http.ResponseWriter, r *http.Request) {
	regional, err := h.Store.RegionalData(r.Context())
	if err != nil {
		http.Error(w, `{"error": "Failed to retrieve districts"}`, http.StatusInternalServerError)
		return
	}

	districts := make([]string, 0, len(regional))
	for _, d := range regional {
		districts = append(districts, d.District)
	}
	json.NewEncoder(w).Encode(districts)
}

// GetRegionalData retrieves one district's soil and weather record
func (h *Handler) GetRegionalData(w http.ResponseWriter, r *http.Request) {
	district := chi.URLParam(r, "district")

	data, err := h.Store.RegionalDataByDistrict(r.Context(), district)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, `{"error": "District data not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error": "Failed to retrieve regional data"}`, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(data)
}

// SubmitCropSuggestion merges the caller's farm parameters with the
// district's regional data, asks the external scorer for suitable crops,
// and enriches the result with current and projected prices
func (h *Handler) SubmitCropSuggestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		District   string  `json:"district"`
		SoilType   string  `json:"soilType"`
		PhLevel    float64 `json:"phLevel"`
		Nitrogen   float64 `json:"nitrogen"`
		Phosphorus float64 `json:"phosphorus"`
		Potassium  float64 `json:"potassium"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	fields := map[string]string{}
	if req.District == "" {
		fields["district"] = "is required"
	}
	if req.SoilType == "" {
		fields["soilType"] = "is required"
	}
	if req.PhLevel < 0 || req.PhLevel > 14 {
		fields["phLevel"] = "must be between 0 and 14"
	}
	if req.Nitrogen < 0 {
		fields["nitrogen"] = "must not be negative"
	}
	if req.Phosphorus < 0 {
		fields["phosphorus"] = "must not be negative"
	}
	if req.Potassium < 0 {
		fields["potassium"] = "must not be negative"
	}
	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	regional, err := h.Store.RegionalDataByDistrict(r.Context(), req.District)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, `{"error": "District data not found"}`, http.StatusNotFound)
			return
		}
		http.Error(w, `{"error": "Failed to retrieve regional data"}`, http.StatusInternalServerError)
		return
	}

	crops, err := h.Scorer.Suggest(r.Context(), models.SuggestionRequest{
		District:        req.District,
		SoilType:        req.SoilType,
		PhLevel:         req.PhLevel,
		Nitrogen:        req.Nitrogen,
		Phosphorus:      req.Phosphorus,
		Potassium:       req.Potassium,
		AvgWindSpeed:    regional.AvgWindSpeed,
		AvgTemp:         regional.AvgTemp,
		WeatherPatterns: regional.WeatherPatterns,
	})
	if err != nil {
		log.Printf("crop suggestion scorer failed: %v", err)
		http.Error(w, `{"error": "Crop suggestion service unavailable"}`, http.StatusBadGateway)
		return
	}

	observations, err := h.Store.PriceObservations(r.Context())
	if err != nil {
		http.Error(w, `{"error": "Failed to load price data"}`, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"district":       req.District,
		"soilType":       req.SoilType,
		"phLevel":        req.PhLevel,
		"suggestedCrops": suggest.Enrich(crops, trends.Latest(observations)),
	})
}

// RegisterUser creates a new user account
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		FullName string `json:"fullName"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	user, err := h.Users.Register(r.Context(), req.Username, req.Password, req.FullName, req.Role)
	if err != nil {
		http.Error(w, `{"error": "Failed to register user"}`, http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

func (h *Handler) pageSize(r *http.Request) int {
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return h.ItemsPerPage
}

func parseOptionalFloat(r *http.Request, key string) (*float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func validateProduct(p *models.Product) map[string]string {
	fields := map[string]string{}
	if p.UserID <= 0 {
		fields["userId"] = "must be positive"
	}
	if p.Name == "" {
		fields["name"] = "is required"
	}
	if p.Category == "" {
		fields["category"] = "is required"
	}
	if p.Location == "" {
		fields["location"] = "is required"
	}
	if p.Price <= 0 {
		fields["price"] = "must be positive"
	}
	if p.Quantity < 0 {
		fields["quantity"] = "must not be negative"
	}
	return fields
}

func validateInvestment(inv *models.Investment) map[string]string {
	fields := map[string]string{}
	if inv.UserID <= 0 {
		fields["userId"] = "must be positive"
	}
	if inv.Title == "" {
		fields["title"] = "is required"
	}
	if inv.CropType == "" {
		fields["cropType"] = "is required"
	}
	if inv.Location == "" {
		fields["location"] = "is required"
	}
	if inv.TotalShares <= 0 {
		fields["totalShares"] = "must be positive"
	}
	if inv.AvailableShares < 0 || inv.AvailableShares > inv.TotalShares {
		fields["availableShares"] = "must be between 0 and totalShares"
	}
	if inv.ExpectedReturn < 0 {
		fields["expectedReturn"] = "must not be negative"
	}
	if inv.MinInvestment <= 0 {
		fields["minInvestment"] = "must be positive"
	}
	return fields
}

func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  "Validation failed",
		"fields": fields,
	})
}
