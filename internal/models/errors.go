package models

import "errors"

var (
	// ErrNotFound reports an unknown product, investment, district or user
	ErrNotFound = errors.New("not found")

	// ErrInsufficientShares reports a share purchase exceeding availability
	ErrInsufficientShares = errors.New("insufficient shares available")

	// ErrInvalidPriceData reports price data that breaks the trend math,
	// e.g. a crop whose oldest recorded price is zero
	ErrInvalidPriceData = errors.New("invalid price data")

	// ErrExternalService reports an unreachable or misbehaving suitability scorer
	ErrExternalService = errors.New("external service failure")
)
