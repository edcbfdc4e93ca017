package models

import "github.com/shopspring/decimal"

func init() {
	// Prices and balances are exchanged as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Country struct {
	ID        int    `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	ISO       string `json:"iso" db:"iso"`
	Flag      string `json:"flag" db:"-"`
	Available bool   `json:"available" db:"available"`
}

type Service struct {
	ID          int             `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Icon        string          `json:"icon" db:"-"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Available   bool            `json:"available" db:"available"`
}
