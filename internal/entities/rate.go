package entities

// Rate is a 1..5 score a user gives a book.
type Rate uint8

const (
	RateOk      Rate = 1
	RateFine    Rate = 2
	RateGood    Rate = 3
	RateAmazing Rate = 4
	RatePerfect Rate = 5
)

var rateLabels = map[Rate]string{
	RateOk:      "Ok",
	RateFine:    "Fine",
	RateGood:    "Good",
	RateAmazing: "Amazing",
	RatePerfect: "Perfect",
}

// RateChoice pairs a rate value with its display label.
type RateChoice struct {
	Value Rate   `json:"value"`
	Label string `json:"label"`
}

func (r Rate) Valid() bool {
	return r >= RateOk && r <= RatePerfect
}

// Label returns the display label, or "" for an out-of-range value.
func (r Rate) Label() string {
	return rateLabels[r]
}

// RateChoices lists every valid rate in ascending order.
func RateChoices() []RateChoice {
	choices := make([]RateChoice, 0, len(rateLabels))
	for r := RateOk; r <= RatePerfect; r++ {
		choices = append(choices, RateChoice{Value: r, Label: r.Label()})
	}
	return choices
}
