package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore/internal/entities"
)

type testInput struct {
	Name  string          `json:"name" validate:"notblank,max=5"`
	Price *entities.Price `json:"price" validate:"required,price"`
	Rate  entities.Rate   `json:"rate" validate:"omitempty,rate"`
}

func pricePtr(p entities.Price) *entities.Price { return &p }

func TestValidator_Validate(t *testing.T) {
	v := New()

	tests := []struct {
		name   string
		input  testInput
		fields map[string]string
	}{
		{
			name:  "valid",
			input: testInput{Name: "abc", Price: pricePtr(entities.NewPrice(25)), Rate: entities.RateGood},
		},
		{
			name:  "zero price is valid",
			input: testInput{Name: "abc", Price: pricePtr(0)},
		},
		{
			name:   "blank name",
			input:  testInput{Name: "   ", Price: pricePtr(1)},
			fields: map[string]string{"name": "this field may not be blank"},
		},
		{
			name:   "long name",
			input:  testInput{Name: "abcdef", Price: pricePtr(1)},
			fields: map[string]string{"name": "ensure this field has no more than 5 characters"},
		},
		{
			name:   "missing price",
			input:  testInput{Name: "abc"},
			fields: map[string]string{"price": "this field is required"},
		},
		{
			name:   "negative price",
			input:  testInput{Name: "abc", Price: pricePtr(-100)},
			fields: map[string]string{"price": "ensure this value is greater than or equal to 0"},
		},
		{
			name:   "price too large",
			input:  testInput{Name: "abc", Price: pricePtr(maxPrice + 1)},
			fields: map[string]string{"price": entities.ErrPriceTooManyDigits.Error()},
		},
		{
			name:   "rate out of range",
			input:  testInput{Name: "abc", Price: pricePtr(1), Rate: 7},
			fields: map[string]string{"rate": "7 is not a valid choice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			var vErr *Error
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.fields, vErr.Fields)
		})
	}
}

func TestError_Error(t *testing.T) {
	err := &Error{Fields: map[string]string{"price": "bad", "name": "worse"}}
	assert.Equal(t, "validation failed: name: worse; price: bad", err.Error())
	assert.Equal(t, "rate: nope", (&FieldError{Field: "rate", Message: "nope"}).Error())
}
