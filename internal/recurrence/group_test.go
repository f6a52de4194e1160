package recurrence

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/recur/internal/model"
)

func TestGroup(t *testing.T) {
	txns := []model.Transaction{
		{ID: "3", Date: mustDate(t, "2024-03-01"), Description: "NETFLIX", Amount: -99},
		{ID: "1", Date: mustDate(t, "2024-01-01"), Description: "Kortköp Netflix", Amount: -99},
		{ID: "salary", Date: mustDate(t, "2024-01-25"), Description: "Lön", Amount: 25000},
		{ID: "zero", Date: mustDate(t, "2024-01-26"), Description: "Netflix", Amount: 0},
		{ID: "nan", Date: mustDate(t, "2024-01-27"), Description: "Netflix", Amount: math.NaN()},
		{ID: "blank", Date: mustDate(t, "2024-01-28"), Description: "   ", Amount: -10},
		{ID: "2", Date: mustDate(t, "2024-02-01"), Description: "netflix", Amount: -99},
		{ID: "a", Date: mustDate(t, "2024-02-01"), Description: "Apotek", Amount: -120},
	}

	groups := Group(txns)
	require.Len(t, groups, 2)

	assert.Equal(t, "Apotek", groups[0].Key)
	assert.Equal(t, "Netflix", groups[1].Key)

	var ids []string
	for _, tx := range groups[1].Transactions {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestGroup_SameDayKeepsInputOrder(t *testing.T) {
	d := mustDate(t, "2024-05-05")
	txns := []model.Transaction{
		{ID: "first", Date: d, Description: "Spotify", Amount: -119},
		{ID: "second", Date: d, Description: "Spotify", Amount: -119},
	}

	groups := Group(txns)
	require.Len(t, groups, 1)
	assert.Equal(t, "first", groups[0].Transactions[0].ID)
	assert.Equal(t, "second", groups[0].Transactions[1].ID)
}

func TestGaps(t *testing.T) {
	at := func(date string, hour int) model.Transaction {
		return model.Transaction{Date: mustDate(t, date).Add(time.Duration(hour) * time.Hour)}
	}

	assert.Nil(t, Gaps(nil))
	assert.Nil(t, Gaps([]model.Transaction{at("2024-01-01", 0)}))

	got := Gaps([]model.Transaction{
		at("2024-01-01", 23),
		at("2024-01-02", 1),
		at("2024-02-01", 12),
		at("2024-01-30", 0),
	})
	assert.Equal(t, []int{1, 30, 2}, got)
}
