// Package utilz provides helpers layered on top of a schema-validation engine:
//
// - Result reshaping (SafeParse, SPR, GetErrorMessage, DataOr)
// - Error maps that rename issue messages by code (MakeErrorMap, WithErrorMap)
// - Coercion of loosely typed input into the type a schema expects (Coerce)
// - Partial results for objects (PartialSafeParse) and single-message errors (FlatSafeParse)
// - Decoding of url.Values and multipart forms (URLSearchParams, FormData)
//
// The helpers only depend on the Schema contract. Concrete schemas backed by
// go-playground/validator live under dsl/, JSON-compatible value schemas under
// jsonvalue/, the coercion table under coerce/ and net/http binding under
// middleware/.
//
// Typical usage:
//
//	type User struct {
//	    Name string `json:"name" validate:"required"`
//	    Age  int    `json:"age" validate:"gte=0"`
//	}
//	s := dsl.Struct[User]()
//	res := utilz.SafeParse(ctx, s, map[string]any{"name": "foo", "age": 42})
//	if !res.Success {
//	    fmt.Println(res.Error.Flatten().FieldErrors)
//	}
//
//	q := utilz.URLSearchParams(dsl.Struct[Filter](), utilz.WithCoercion())
//	f, err := q.Parse(ctx, r.URL.Query())
package utilz
