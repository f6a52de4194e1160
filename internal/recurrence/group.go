package recurrence

import (
	"sort"

	"github.com/theirongolddev/recur/internal/model"
)

// MerchantGroup is the date-ordered set of expenses sharing one merchant key.
type MerchantGroup struct {
	Key          string
	Transactions []model.Transaction
}

// Group partitions expenses by normalized description. Non-expenses and
// blank descriptions are dropped. Each group is sorted by date (stable, so
// same-day charges keep input order) and groups are returned by key.
func Group(txns []model.Transaction) []MerchantGroup {
	byKey := make(map[string][]model.Transaction)
	for _, t := range txns {
		if !t.IsExpense() {
			continue
		}
		key := Normalize(t.Description)
		if key == "" {
			continue
		}
		byKey[key] = append(byKey[key], t)
	}

	groups := make([]MerchantGroup, 0, len(byKey))
	for key, list := range byKey {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Date.Before(list[j].Date)
		})
		groups = append(groups, MerchantGroup{Key: key, Transactions: list})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})

	return groups
}
