package books

import (
	"strings"
	"unicode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderableColumns maps the public ordering names to columns.
var orderableColumns = map[string]string{
	"id":          "id",
	"name":        "name",
	"price":       "price",
	"author_name": "author_name",
}

// OrderField is one parsed entry of an ordering parameter.
type OrderField struct {
	Column string
	Desc   bool
}

// ParseSearchTerms splits a search string on whitespace and commas.
func ParseSearchTerms(search string) []string {
	return strings.FieldsFunc(search, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// ParseOrdering parses "price,-author_name" style input. Unknown and
// repeated fields are dropped.
func ParseOrdering(ordering string) []OrderField {
	var fields []OrderField
	seen := make(map[string]bool)
	for _, part := range strings.Split(ordering, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		column, ok := orderableColumns[strings.TrimPrefix(part, "-")]
		if !ok || seen[column] {
			continue
		}
		seen[column] = true
		fields = append(fields, OrderField{Column: column, Desc: desc})
	}
	return fields
}

// applySearch requires every term to appear in name or author_name, ignoring
// case. casefold is registered by database.Dialector.
func applySearch(query *gorm.DB, terms []string) *gorm.DB {
	for _, term := range terms {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		query = query.Where(
			`(casefold(name) LIKE ? ESCAPE '\' OR casefold(author_name) LIKE ? ESCAPE '\')`,
			pattern, pattern,
		)
	}
	return query
}

func applyOrdering(query *gorm.DB, fields []OrderField) *gorm.DB {
	hasID := false
	for _, f := range fields {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: f.Column}, Desc: f.Desc})
		if f.Column == "id" {
			hasID = true
		}
	}
	if !hasID {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	return query
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
