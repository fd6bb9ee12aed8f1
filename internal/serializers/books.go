// Package serializers converts between stored entities and the JSON shapes
// the API reads and writes.
package serializers

import (
	"encoding/json"
	"strings"

	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/validation"
)

// BookRepresentation is the public form of a book. The owner is not exposed.
type BookRepresentation struct {
	ID         uint           `json:"id"`
	Name       string         `json:"name"`
	Price      entities.Price `json:"price"`
	AuthorName string         `json:"author_name"`
}

func NewBookRepresentation(book *entities.Book) BookRepresentation {
	return BookRepresentation{
		ID:         book.ID,
		Name:       book.Name,
		Price:      book.Price,
		AuthorName: book.AuthorName,
	}
}

// NewBookRepresentations never returns nil so an empty list encodes as [].
func NewBookRepresentations(books []entities.Book) []BookRepresentation {
	out := make([]BookRepresentation, 0, len(books))
	for i := range books {
		out = append(out, NewBookRepresentation(&books[i]))
	}
	return out
}

// BookInput is the body of create and full-update requests.
type BookInput struct {
	Name       string          `json:"name" validate:"notblank,max=255"`
	Price      *entities.Price `json:"price" validate:"required,price"`
	AuthorName string          `json:"author_name" validate:"notblank,max=255"`
}

// UnmarshalJSON rejects explicit nulls; none of the fields is nullable.
func (in *BookInput) UnmarshalJSON(data []byte) error {
	if err := rejectNulls(data, "name", "price", "author_name"); err != nil {
		return err
	}
	type plain BookInput
	return json.Unmarshal(data, (*plain)(in))
}

// Validate trims the text fields and checks every constraint.
func (in *BookInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	return validation.Validate(in)
}

// NewBook builds an unsaved book owned by ownerID. Call Validate first.
func (in *BookInput) NewBook(ownerID *uint) *entities.Book {
	book := &entities.Book{OwnerID: ownerID}
	in.ApplyTo(book)
	return book
}

// ApplyTo overwrites the book's editable fields. Call Validate first.
func (in *BookInput) ApplyTo(book *entities.Book) {
	book.Name = in.Name
	book.AuthorName = in.AuthorName
	if in.Price != nil {
		book.Price = *in.Price
	}
}

// BookPatch is the body of a partial update. Absent fields keep their value.
type BookPatch struct {
	Name       *string         `json:"name"`
	Price      *entities.Price `json:"price"`
	AuthorName *string         `json:"author_name"`
}

// UnmarshalJSON tells an explicit null, which is rejected, from an absent field.
func (p *BookPatch) UnmarshalJSON(data []byte) error {
	if err := rejectNulls(data, "name", "price", "author_name"); err != nil {
		return err
	}
	type plain BookPatch
	return json.Unmarshal(data, (*plain)(p))
}

// Merge combines the patch with the book's current values into a full
// input so the same validation applies to PUT and PATCH.
func (p *BookPatch) Merge(book *entities.Book) BookInput {
	price := book.Price
	in := BookInput{Name: book.Name, Price: &price, AuthorName: book.AuthorName}
	if p.Name != nil {
		in.Name = *p.Name
	}
	if p.Price != nil {
		in.Price = p.Price
	}
	if p.AuthorName != nil {
		in.AuthorName = *p.AuthorName
	}
	return in
}
