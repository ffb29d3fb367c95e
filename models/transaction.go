package models

import "time"

// Transaction is a single recorded financial event.
type Transaction struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TransactionInput carries the raw field values of a create request, either
// from a JSON body or from the add-transaction form. Coercion happens in the
// service layer.
type TransactionInput struct {
	Date     string
	Name     string
	Amount   string
	Category string
}
