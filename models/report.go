package models

import "github.com/shopspring/decimal"

// RecentLimit is the number of transactions included in Summary.Recent.
const RecentLimit = 5

// Summary aggregates the stored transactions. It is the chat context and the
// body of GET /summary.
type Summary struct {
	Count              int             `json:"count"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	DistinctCategories []string        `json:"distinctCategories"`
	Recent             []Transaction   `json:"recent"`
	ByCategory         []CategoryTotal `json:"byCategory"`
}

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}
