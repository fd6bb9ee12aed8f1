package serializers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mrlokans/bookstore/internal/database/relations"
	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/validation"
)

type RelationRepresentation struct {
	Book        uint           `json:"book"`
	Like        bool           `json:"like"`
	InBookmarks bool           `json:"in_bookmarks"`
	Rate        *entities.Rate `json:"rate"`
}

func NewRelationRepresentation(rel *entities.UserBookRelation) RelationRepresentation {
	return RelationRepresentation{
		Book:        rel.BookID,
		Like:        rel.Like,
		InBookmarks: rel.InBookmarks,
		Rate:        rel.Rate,
	}
}

func NewRelationRepresentations(rels []entities.UserBookRelation) []RelationRepresentation {
	out := make([]RelationRepresentation, 0, len(rels))
	for i := range rels {
		out = append(out, NewRelationRepresentation(&rels[i]))
	}
	return out
}

// OptionalRate remembers whether the rate key was present in the body, so an
// explicit null can be told apart from an omitted field.
type OptionalRate struct {
	Set   bool
	Value *entities.Rate
}

// UnmarshalJSON accepts null, an integer 1..5 or the same integer as a string.
func (o *OptionalRate) UnmarshalJSON(data []byte) error {
	o.Set = true
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		o.Value = nil
		return nil
	}

	unquoted := raw
	if strings.HasPrefix(raw, `"`) {
		s, err := strconv.Unquote(raw)
		if err != nil {
			return invalidRate(raw)
		}
		unquoted = s
	}

	n, err := strconv.ParseUint(unquoted, 10, 8)
	if err != nil || !entities.Rate(n).Valid() {
		return invalidRate(raw)
	}
	rate := entities.Rate(n)
	o.Value = &rate
	return nil
}

func invalidRate(raw string) error {
	return &validation.FieldError{Field: "rate", Message: fmt.Sprintf("%s is not a valid choice", raw)}
}

// RelationPatch is the body of a relation update.
type RelationPatch struct {
	Like        *bool        `json:"like"`
	InBookmarks *bool        `json:"in_bookmarks"`
	Rate        OptionalRate `json:"rate"`
}

// UnmarshalJSON rejects null for like and in_bookmarks; only rate is nullable.
func (p *RelationPatch) UnmarshalJSON(data []byte) error {
	if err := rejectNulls(data, "like", "in_bookmarks"); err != nil {
		return err
	}
	type plain RelationPatch
	return json.Unmarshal(data, (*plain)(p))
}

// Validate re-checks the decoded rate; decoding already rejects bad input.
func (p *RelationPatch) Validate() error {
	return validation.Validate(&relationValues{Rate: p.Rate.Value})
}

// relationValues holds the decoded fields that carry value constraints.
type relationValues struct {
	Rate *entities.Rate `json:"rate" validate:"omitempty,rate"`
}

// ToStorePatch converts the request body into a repository patch.
func (p *RelationPatch) ToStorePatch() relations.Patch {
	return relations.Patch{
		Like:        p.Like,
		InBookmarks: p.InBookmarks,
		RateSet:     p.Rate.Set,
		Rate:        p.Rate.Value,
	}
}
