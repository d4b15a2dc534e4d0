package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"agritrade/internal/models"
)

// Memory is an in-process Store used for development mode and tests.
// A single mutex guards all maps; in particular it makes the
// check-then-decrement of PurchaseShares a critical section.
type Memory struct {
	mu sync.RWMutex

	priceData       map[int]models.PriceObservation
	regionalData    map[int]models.RegionalData
	products        map[int]models.Product
	investments     map[int]models.Investment
	userInvestments map[int]models.UserInvestment
	users           map[int]models.User

	priceDataID      int
	regionalDataID   int
	productID        int
	investmentID     int
	userInvestmentID int
	userID           int
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		priceData:       make(map[int]models.PriceObservation),
		regionalData:    make(map[int]models.RegionalData),
		products:        make(map[int]models.Product),
		investments:     make(map[int]models.Investment),
		userInvestments: make(map[int]models.UserInvestment),
		users:           make(map[int]models.User),
	}
}

func (s *Memory) PriceObservations(ctx context.Context) ([]models.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	observations := make([]models.PriceObservation, 0, len(s.priceData))
	for id := 1; id <= s.priceDataID; id++ {
		if o, ok := s.priceData[id]; ok {
			observations = append(observations, o)
		}
	}
	return observations, nil
}

func (s *Memory) PriceObservationsByCrop(ctx context.Context, cropName string) ([]models.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var observations []models.PriceObservation
	for id := 1; id <= s.priceDataID; id++ {
		if o, ok := s.priceData[id]; ok && o.CropName == cropName {
			observations = append(observations, o)
		}
	}
	return observations, nil
}

func (s *Memory) CreatePriceObservation(ctx context.Context, obs *models.PriceObservation) (*models.PriceObservation, error) {
	if obs.Month < 1 || obs.Month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12")
	}
	if obs.Price < 0 {
		return nil, fmt.Errorf("price must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.priceDataID++
	created := *obs
	created.ID = s.priceDataID
	s.priceData[created.ID] = created
	return &created, nil
}

func (s *Memory) RegionalData(ctx context.Context) ([]models.RegionalData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.RegionalData, 0, len(s.regionalData))
	for id := 1; id <= s.regionalDataID; id++ {
		if d, ok := s.regionalData[id]; ok {
			all = append(all, d)
		}
	}
	return all, nil
}

func (s *Memory) RegionalDataByDistrict(ctx context.Context, district string) (*models.RegionalData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.regionalData {
		if d.District == district {
			found := d
			return &found, nil
		}
	}
	return nil, fmt.Errorf("district %q: %w", district, models.ErrNotFound)
}

func (s *Memory) CreateRegionalData(ctx context.Context, data *models.RegionalData) (*models.RegionalData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.regionalDataID++
	created := *data
	created.ID = s.regionalDataID
	s.regionalData[created.ID] = created
	return &created, nil
}

func (s *Memory) Products(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]models.Product, 0, len(s.products))
	for id := 1; id <= s.productID; id++ {
		if p, ok := s.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (s *Memory) ProductByID(ctx context.Context, id int) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	return &p, nil
}

func (s *Memory) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.Price <= 0 {
		return nil, fmt.Errorf("price must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.productID++
	created := *product
	created.ID = s.productID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}
	s.products[created.ID] = created
	return &created, nil
}

func (s *Memory) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; !ok {
		return nil, fmt.Errorf("product %d: %w", product.ID, models.ErrNotFound)
	}
	s.products[product.ID] = *product
	updated := *product
	return &updated, nil
}

func (s *Memory) DeleteProduct(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	delete(s.products, id)
	return nil
}

func (s *Memory) Investments(ctx context.Context, activeOnly bool) ([]models.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	investments := make([]models.Investment, 0, len(s.investments))
	for id := 1; id <= s.investmentID; id++ {
		if inv, ok := s.investments[id]; ok {
			if activeOnly && !inv.IsActive {
				continue
			}
			investments = append(investments, inv)
		}
	}
	return investments, nil
}

func (s *Memory) InvestmentByID(ctx context.Context, id int) (*models.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.investments[id]
	if !ok {
		return nil, fmt.Errorf("investment %d: %w", id, models.ErrNotFound)
	}
	return &inv, nil
}

func (s *Memory) CreateInvestment(ctx context.Context, investment *models.Investment) (*models.Investment, error) {
	if investment.TotalShares <= 0 {
		return nil, fmt.Errorf("total shares must be positive")
	}
	if investment.AvailableShares > investment.TotalShares {
		return nil, fmt.Errorf("available shares cannot exceed total shares")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.investmentID++
	created := *investment
	created.ID = s.investmentID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}
	s.investments[created.ID] = created
	return &created, nil
}

func (s *Memory) UserInvestments(ctx context.Context, userID int) ([]models.UserInvestment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var purchases []models.UserInvestment
	for id := 1; id <= s.userInvestmentID; id++ {
		if ui, ok := s.userInvestments[id]; ok && ui.UserID == userID {
			purchases = append(purchases, ui)
		}
	}
	return purchases, nil
}

func (s *Memory) PurchaseShares(ctx context.Context, userID, investmentID, shares int, amount float64) (*models.UserInvestment, error) {
	if shares <= 0 {
		return nil, fmt.Errorf("shares must be positive")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.investments[investmentID]
	if !ok {
		return nil, fmt.Errorf("investment %d: %w", investmentID, models.ErrNotFound)
	}
	if inv.AvailableShares < shares {
		return nil, fmt.Errorf("requested %d of %d available: %w", shares, inv.AvailableShares, models.ErrInsufficientShares)
	}

	inv.AvailableShares -= shares
	s.investments[investmentID] = inv

	s.userInvestmentID++
	purchase := models.UserInvestment{
		ID:           s.userInvestmentID,
		UserID:       userID,
		InvestmentID: investmentID,
		Amount:       amount,
		Shares:       shares,
		PurchaseDate: time.Now(),
		Status:       "active",
	}
	s.userInvestments[purchase.ID] = purchase
	return &purchase, nil
}

func (s *Memory) CreateUser(ctx context.Context, username, passwordHash, fullName, role string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return nil, fmt.Errorf("username %q already taken", username)
		}
	}

	s.userID++
	user := models.User{
		ID:           s.userID,
		Username:     username,
		PasswordHash: passwordHash,
		FullName:     fullName,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	return &user, nil
}

func (s *Memory) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
}
