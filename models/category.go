package models

// SuggestedCategories is the list offered by the add-transaction form. The API
// accepts any non-empty category.
var SuggestedCategories = []string{
	"Food & Dining",
	"Shopping",
	"Transportation",
	"Entertainment",
	"Bills & Utilities",
	"Health & Fitness",
	"Travel",
	"Other",
}
