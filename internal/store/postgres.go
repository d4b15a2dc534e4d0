package store

import (
	"context"
	"errors"
	"fmt"

	"agritrade/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements Store over a PostgreSQL connection pool
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres initializes a new database connection pool
func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return &Postgres{Pool: pool}, nil
}

// Close closes the connection pool
func (s *Postgres) Close() {
	s.Pool.Close()
}

func (s *Postgres) PriceObservations(ctx context.Context) ([]models.PriceObservation, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT id, crop_name, month, year, rainfall, wpi, price FROM price_data")
	if err != nil {
		return nil, fmt.Errorf("failed to get price data: %w", err)
	}
	defer rows.Close()
	return scanPriceObservations(rows)
}

func (s *Postgres) PriceObservationsByCrop(ctx context.Context, cropName string) ([]models.PriceObservation, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT id, crop_name, month, year, rainfall, wpi, price FROM price_data WHERE crop_name = $1",
		cropName)
	if err != nil {
		return nil, fmt.Errorf("failed to get price data for crop: %w", err)
	}
	defer rows.Close()
	return scanPriceObservations(rows)
}

func (s *Postgres) CreatePriceObservation(ctx context.Context, obs *models.PriceObservation) (*models.PriceObservation, error) {
	if obs.Month < 1 || obs.Month > 12 {
		return nil, fmt.Errorf("month must be between 1 and 12")
	}
	if obs.Price < 0 {
		return nil, fmt.Errorf("price must not be negative")
	}

	created := &models.PriceObservation{}
	err := s.Pool.QueryRow(ctx,
		"INSERT INTO price_data (crop_name, month, year, rainfall, wpi, price) VALUES ($1, $2, $3, $4, $5, $6) "+
			"RETURNING id, crop_name, month, year, rainfall, wpi, price",
		obs.CropName, obs.Month, obs.Year, obs.Rainfall, obs.WPI, obs.Price).Scan(
		&created.ID, &created.CropName, &created.Month, &created.Year, &created.Rainfall, &created.WPI, &created.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to create price observation: %w", err)
	}
	return created, nil
}

func (s *Postgres) RegionalData(ctx context.Context) ([]models.RegionalData, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT id, district, avg_wind_speed, avg_temp, weather_patterns, "+
			"major_soil_type1, soil1_ph, soil1_nitrogen, soil1_phosphorus, soil1_potassium, "+
			"major_soil_type2, soil2_ph, soil2_nitrogen, soil2_phosphorus, soil2_potassium "+
			"FROM regional_data ORDER BY district")
	if err != nil {
		return nil, fmt.Errorf("failed to get regional data: %w", err)
	}
	defer rows.Close()

	var all []models.RegionalData
	for rows.Next() {
		var d models.RegionalData
		if err := scanRegionalData(rows, &d); err != nil {
			return nil, fmt.Errorf("failed to scan regional data: %w", err)
		}
		all = append(all, d)
	}
	return all, rows.Err()
}

func (s *Postgres) RegionalDataByDistrict(ctx context.Context, district string) (*models.RegionalData, error) {
	row := s.Pool.QueryRow(ctx,
		"SELECT id, district, avg_wind_speed, avg_temp, weather_patterns, "+
			"major_soil_type1, soil1_ph, soil1_nitrogen, soil1_phosphorus, soil1_potassium, "+
			"major_soil_type2, soil2_ph, soil2_nitrogen, soil2_phosphorus, soil2_potassium "+
			"FROM regional_data WHERE district = $1",
		district)

	var d models.RegionalData
	if err := scanRegionalData(row, &d); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("district %q: %w", district, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get regional data: %w", err)
	}
	return &d, nil
}

func (s *Postgres) CreateRegionalData(ctx context.Context, data *models.RegionalData) (*models.RegionalData, error) {
	created := *data
	err := s.Pool.QueryRow(ctx,
		"INSERT INTO regional_data (district, avg_wind_speed, avg_temp, weather_patterns, "+
			"major_soil_type1, soil1_ph, soil1_nitrogen, soil1_phosphorus, soil1_potassium, "+
			"major_soil_type2, soil2_ph, soil2_nitrogen, soil2_phosphorus, soil2_potassium) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id",
		data.District, data.AvgWindSpeed, data.AvgTemp, data.WeatherPatterns,
		data.MajorSoilType1, data.Soil1Ph, data.Soil1Nitrogen, data.Soil1Phosphorus, data.Soil1Potassium,
		data.MajorSoilType2, data.Soil2Ph, data.Soil2Nitrogen, data.Soil2Phosphorus, data.Soil2Potassium).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create regional data: %w", err)
	}
	return &created, nil
}

func (s *Postgres) Products(ctx context.Context) ([]models.Product, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT id, user_id, name, description, category, price, unit, quantity, location, distance, image_url, created_at, is_available "+
			"FROM products ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Postgres) ProductByID(ctx context.Context, id int) (*models.Product, error) {
	row := s.Pool.QueryRow(ctx,
		"SELECT id, user_id, name, description, category, price, unit, quantity, location, distance, image_url, created_at, is_available "+
			"FROM products WHERE id = $1", id)

	var p models.Product
	if err := scanProduct(row, &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (s *Postgres) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.Price <= 0 {
		return nil, fmt.Errorf("price must be positive")
	}

	created := &models.Product{}
	err := s.Pool.QueryRow(ctx,
		"INSERT INTO products (user_id, name, description, category, price, unit, quantity, location, distance, image_url, is_available) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) "+
			"RETURNING id, user_id, name, description, category, price, unit, quantity, location, distance, image_url, created_at, is_available",
		product.UserID, product.Name, product.Description, product.Category, product.Price,
		product.Unit, product.Quantity, product.Location, product.Distance, product.ImageURL, product.IsAvailable).Scan(
		&created.ID, &created.UserID, &created.Name, &created.Description, &created.Category, &created.Price,
		&created.Unit, &created.Quantity, &created.Location, &created.Distance, &created.ImageURL, &created.CreatedAt, &created.IsAvailable)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

func (s *Postgres) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	tag, err := s.Pool.Exec(ctx,
		"UPDATE products SET name = $1, description = $2, category = $3, price = $4, unit = $5, "+
			"quantity = $6, location = $7, distance = $8, image_url = $9, is_available = $10 WHERE id = $11",
		product.Name, product.Description, product.Category, product.Price, product.Unit,
		product.Quantity, product.Location, product.Distance, product.ImageURL, product.IsAvailable, product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("product %d: %w", product.ID, models.ErrNotFound)
	}
	return product, nil
}

func (s *Postgres) DeleteProduct(ctx context.Context, id int) error {
	tag, err := s.Pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	return nil
}

func (s *Postgres) Investments(ctx context.Context, activeOnly bool) ([]models.Investment, error) {
	query := "SELECT id, user_id, title, description, crop_type, investment_period, min_investment, " +
		"total_shares, available_shares, expected_return, farm_experience, location, image_url, created_at, is_active " +
		"FROM investments"
	if activeOnly {
		query += " WHERE is_active"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get investments: %w", err)
	}
	defer rows.Close()

	var investments []models.Investment
	for rows.Next() {
		var inv models.Investment
		if err := scanInvestment(rows, &inv); err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, inv)
	}
	return investments, rows.Err()
}

func (s *Postgres) InvestmentByID(ctx context.Context, id int) (*models.Investment, error) {
	row := s.Pool.QueryRow(ctx,
		"SELECT id, user_id, title, description, crop_type, investment_period, min_investment, "+
			"total_shares, available_shares, expected_return, farm_experience, location, image_url, created_at, is_active "+
			"FROM investments WHERE id = $1", id)

	var inv models.Investment
	if err := scanInvestment(row, &inv); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("investment %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}
	return &inv, nil
}

func (s *Postgres) CreateInvestment(ctx context.Context, investment *models.Investment) (*models.Investment, error) {
	if investment.TotalShares <= 0 {
		return nil, fmt.Errorf("total shares must be positive")
	}
	if investment.AvailableShares > investment.TotalShares {
		return nil, fmt.Errorf("available shares cannot exceed total shares")
	}

	created := *investment
	err := s.Pool.QueryRow(ctx,
		"INSERT INTO investments (user_id, title, description, crop_type, investment_period, min_investment, "+
			"total_shares, available_shares, expected_return, farm_experience, location, image_url, is_active) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id, created_at",
		investment.UserID, investment.Title, investment.Description, investment.CropType,
		investment.InvestmentPeriod, investment.MinInvestment, investment.TotalShares, investment.AvailableShares,
		investment.ExpectedReturn, investment.FarmExperience, investment.Location, investment.ImageURL,
		investment.IsActive).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create investment: %w", err)
	}
	return &created, nil
}

func (s *Postgres) UserInvestments(ctx context.Context, userID int) ([]models.UserInvestment, error) {
	rows, err := s.Pool.Query(ctx,
		"SELECT id, user_id, investment_id, amount, shares, purchase_date, status "+
			"FROM user_investments WHERE user_id = $1 ORDER BY purchase_date DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user investments: %w", err)
	}
	defer rows.Close()

	var purchases []models.UserInvestment
	for rows.Next() {
		var ui models.UserInvestment
		if err := rows.Scan(&ui.ID, &ui.UserID, &ui.InvestmentID, &ui.Amount, &ui.Shares, &ui.PurchaseDate, &ui.Status); err != nil {
			return nil, fmt.Errorf("failed to scan user investment: %w", err)
		}
		purchases = append(purchases, ui)
	}
	return purchases, rows.Err()
}

// PurchaseShares serializes concurrent purchases against the same
// investment by locking its row for the duration of the transaction.
func (s *Postgres) PurchaseShares(ctx context.Context, userID, investmentID, shares int, amount float64) (*models.UserInvestment, error) {
	if shares <= 0 {
		return nil, fmt.Errorf("shares must be positive")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var available int
	err = tx.QueryRow(ctx,
		"SELECT available_shares FROM investments WHERE id = $1 FOR UPDATE",
		investmentID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("investment %d: %w", investmentID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}

	if available < shares {
		return nil, fmt.Errorf("requested %d of %d available: %w", shares, available, models.ErrInsufficientShares)
	}

	_, err = tx.Exec(ctx,
		"UPDATE investments SET available_shares = available_shares - $1 WHERE id = $2",
		shares, investmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to decrement shares: %w", err)
	}

	purchase := &models.UserInvestment{}
	err = tx.QueryRow(ctx,
		"INSERT INTO user_investments (user_id, investment_id, amount, shares, status) VALUES ($1, $2, $3, $4, 'active') "+
			"RETURNING id, user_id, investment_id, amount, shares, purchase_date, status",
		userID, investmentID, amount, shares).Scan(
		&purchase.ID, &purchase.UserID, &purchase.InvestmentID, &purchase.Amount,
		&purchase.Shares, &purchase.PurchaseDate, &purchase.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return purchase, nil
}

func (s *Postgres) CreateUser(ctx context.Context, username, passwordHash, fullName, role string) (*models.User, error) {
	user := &models.User{}
	err := s.Pool.QueryRow(ctx,
		"INSERT INTO users (username, password_hash, full_name, role) VALUES ($1, $2, $3, $4) "+
			"RETURNING id, username, password_hash, full_name, role, created_at",
		username, passwordHash, fullName, role).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.FullName, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Postgres) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	err := s.Pool.QueryRow(ctx,
		"SELECT id, username, password_hash, full_name, role, created_at FROM users WHERE username = $1",
		username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.FullName, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", username, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func scanPriceObservations(rows pgx.Rows) ([]models.PriceObservation, error) {
	var observations []models.PriceObservation
	for rows.Next() {
		var o models.PriceObservation
		if err := rows.Scan(&o.ID, &o.CropName, &o.Month, &o.Year, &o.Rainfall, &o.WPI, &o.Price); err != nil {
			return nil, fmt.Errorf("failed to scan price observation: %w", err)
		}
		observations = append(observations, o)
	}
	return observations, rows.Err()
}

func scanRegionalData(row pgx.Row, d *models.RegionalData) error {
	return row.Scan(
		&d.ID, &d.District, &d.AvgWindSpeed, &d.AvgTemp, &d.WeatherPatterns,
		&d.MajorSoilType1, &d.Soil1Ph, &d.Soil1Nitrogen, &d.Soil1Phosphorus, &d.Soil1Potassium,
		&d.MajorSoilType2, &d.Soil2Ph, &d.Soil2Nitrogen, &d.Soil2Phosphorus, &d.Soil2Potassium)
}

func scanProduct(row pgx.Row, p *models.Product) error {
	return row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.Category, &p.Price,
		&p.Unit, &p.Quantity, &p.Location, &p.Distance, &p.ImageURL, &p.CreatedAt, &p.IsAvailable)
}

func scanInvestment(row pgx.Row, inv *models.Investment) error {
	return row.Scan(
		&inv.ID, &inv.UserID, &inv.Title, &inv.Description, &inv.CropType,
		&inv.InvestmentPeriod, &inv.MinInvestment, &inv.TotalShares, &inv.AvailableShares,
		&inv.ExpectedReturn, &inv.FarmExperience, &inv.Location, &inv.ImageURL,
		&inv.CreatedAt, &inv.IsActive)
}
