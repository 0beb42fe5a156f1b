package dto

import "tillpos/internal/money"

type ProductResponse struct {
	ID       string      `json:"id"`
	Code     string      `json:"code"`
	Name     string      `json:"name"`
	Price    money.Money `json:"price"`
	UnitType string      `json:"unit_type"`
	Weighted bool        `json:"weighted"`
	Active   bool        `json:"active"`
}

// PriceLookupResponse backs the no-auth price-check endpoint; it is cached in
// Redis keyed by product code.
type PriceLookupResponse struct {
	Code     string      `json:"code"`
	Name     string      `json:"name"`
	Price    money.Money `json:"price"`
	Weighted bool        `json:"weighted"`
}
