package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRate(t *testing.T) {
	assert.False(t, Rate(0).Valid())
	assert.True(t, RateOk.Valid())
	assert.True(t, RatePerfect.Valid())
	assert.False(t, Rate(6).Valid())

	assert.Equal(t, "Good", RateGood.Label())
	assert.Equal(t, "", Rate(9).Label())
}

func TestRateChoices(t *testing.T) {
	choices := RateChoices()
	assert.Equal(t, []RateChoice{
		{Value: 1, Label: "Ok"},
		{Value: 2, Label: "Fine"},
		{Value: 3, Label: "Good"},
		{Value: 4, Label: "Amazing"},
		{Value: 5, Label: "Perfect"},
	}, choices)
}

func TestBook_IsOwnedBy(t *testing.T) {
	owner := uint(3)
	book := Book{OwnerID: &owner}
	assert.True(t, book.IsOwnedBy(3))
	assert.False(t, book.IsOwnedBy(4))
	assert.False(t, (&Book{}).IsOwnedBy(0))
}
