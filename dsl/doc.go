// Package dsl provides concrete schemas backed by go-playground/validator.
//
// Input is first decoded into the target Go type; mismatches become
// invalid_type issues ("Expected string, received number"). The decoded value
// is then checked against its `validate` tags and every FieldError becomes an
// Issue whose path uses the JSON keys of the struct:
//
//	type Item struct {
//	    Price int `json:"price" validate:"gte=0"`
//	}
//	type Order struct {
//	    ID    string `json:"id" validate:"required"`
//	    Items []Item `json:"items" validate:"min=1,dive"`
//	}
//	_, err := dsl.Struct[Order]().Parse(ctx, in)
//	// issue paths: "/id", "/items/0/price"
//
// Messages come from the validator translations for the language selected
// with i18n.SetLanguage (en or ja).
//
// Single values use Var or one of its shorthands (String, Int, Enum, Literal,
// Null, Slice, Optional). All schemas satisfy utilz.Schema and utilz.Coercer,
// so they work with every helper of the root package.
package dsl
