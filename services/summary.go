package services

import (
	"context"

	"financetracker/backend/models"

	"github.com/shopspring/decimal"
)

// Summarize aggregates the current transactions for chat context.
func (s *TransactionService) Summarize(ctx context.Context) (models.Summary, error) {
	transactions, err := s.List(ctx)
	if err != nil {
		return models.Summary{}, err
	}
	return BuildSummary(transactions), nil
}

// BuildSummary aggregates transactions, which must already be ordered date
// descending. Amounts are summed as decimals so totals like 10.50 - 3.25 + 7.00
// come out exact.
func BuildSummary(transactions []models.Transaction) models.Summary {
	summary := models.Summary{
		Count:              len(transactions),
		TotalAmount:        decimal.Zero,
		DistinctCategories: []string{},
		ByCategory:         []models.CategoryTotal{},
	}

	index := make(map[string]int)
	for _, t := range transactions {
		amount := decimal.NewFromFloat(t.Amount)
		summary.TotalAmount = summary.TotalAmount.Add(amount)

		i, ok := index[t.Category]
		if !ok {
			i = len(summary.ByCategory)
			index[t.Category] = i
			summary.DistinctCategories = append(summary.DistinctCategories, t.Category)
			summary.ByCategory = append(summary.ByCategory, models.CategoryTotal{Category: t.Category, Total: decimal.Zero})
		}
		summary.ByCategory[i].Total = summary.ByCategory[i].Total.Add(amount)
	}

	n := min(len(transactions), models.RecentLimit)
	summary.Recent = append([]models.Transaction{}, transactions[:n]...)

	return summary
}
