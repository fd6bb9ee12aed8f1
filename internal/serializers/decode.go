package serializers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/mrlokans/bookstore/internal/entities"
	"github.com/mrlokans/bookstore/internal/validation"
)

// DecodeError turns an error from JSON binding into a *validation.Error
// naming the offending field where one can be determined.
func DecodeError(err error) *validation.Error {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		return vErr
	}

	var fieldErr *validation.FieldError
	if errors.As(err, &fieldErr) {
		return validation.NewError(fieldErr.Field, fieldErr.Message)
	}

	for _, priceErr := range []error{entities.ErrPriceInvalid, entities.ErrPriceTooManyDecimals, entities.ErrPriceTooManyDigits} {
		if errors.Is(err, priceErr) {
			return validation.NewError("price", priceErr.Error())
		}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return validation.NewError(typeErr.Field, typeMessage(typeErr.Type.String()))
	}

	if errors.Is(err, io.EOF) {
		return validation.NewError("non_field_errors", "request body is empty")
	}
	return validation.NewError("non_field_errors", "request body must be a valid JSON object")
}

func typeMessage(goType string) string {
	switch {
	case goType == "bool" || strings.HasSuffix(goType, "*bool"):
		return "must be a valid boolean"
	case goType == "string" || strings.HasSuffix(goType, "*string"):
		return "not a valid string"
	default:
		return "has an invalid type"
	}
}

const msgNotNull = "this field may not be null"

// rejectNulls fails when any of fields is present in the object with a
// JSON null value. Non-objects are left to the regular decoder.
func rejectNulls(data []byte, fields ...string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var vErr *validation.Error
	for _, field := range fields {
		value, ok := raw[field]
		if !ok || !bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		if vErr == nil {
			vErr = &validation.Error{Fields: make(map[string]string)}
		}
		vErr.Fields[field] = msgNotNull
	}
	if vErr != nil {
		return vErr
	}
	return nil
}
