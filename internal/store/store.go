package store

import (
	"context"

	"agritrade/internal/models"
)

// Store is the persistence boundary. Handlers receive an implementation
// rather than reaching for process-wide state, so the share-purchase
// critical section can be tested in isolation.
type Store interface {
	// Price observations are append-only reference data
	PriceObservations(ctx context.Context) ([]models.PriceObservation, error)
	PriceObservationsByCrop(ctx context.Context, cropName string) ([]models.PriceObservation, error)
	CreatePriceObservation(ctx context.Context, obs *models.PriceObservation) (*models.PriceObservation, error)

	RegionalData(ctx context.Context) ([]models.RegionalData, error)
	RegionalDataByDistrict(ctx context.Context, district string) (*models.RegionalData, error)
	CreateRegionalData(ctx context.Context, data *models.RegionalData) (*models.RegionalData, error)

	Products(ctx context.Context) ([]models.Product, error)
	ProductByID(ctx context.Context, id int) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int) error

	Investments(ctx context.Context, activeOnly bool) ([]models.Investment, error)
	InvestmentByID(ctx context.Context, id int) (*models.Investment, error)
	CreateInvestment(ctx context.Context, investment *models.Investment) (*models.Investment, error)

	UserInvestments(ctx context.Context, userID int) ([]models.UserInvestment, error)
	// PurchaseShares checks availability and decrements it as one atomic
	// step, then records the purchase. Fails with ErrNotFound for an
	// unknown investment and ErrInsufficientShares when the request
	// exceeds availability, leaving the counter untouched.
	PurchaseShares(ctx context.Context, userID, investmentID, shares int, amount float64) (*models.UserInvestment, error)

	CreateUser(ctx context.Context, username, passwordHash, fullName, role string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
}
