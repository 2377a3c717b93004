// Package coerce converts loosely typed input (strings from query strings and
// form fields, JSON scalars) into the shape a target Go type expects.
//
// Coercers never fail. A value that cannot be converted is returned unchanged
// so that the schema reports it as a regular validation issue.
//
// Dispatch is keyed by the target type:
//
//	string                       -> ToString
//	int*, uint*                  -> ToInteger
//	float*, json.Number          -> ToNumber
//	bool                         -> ToBoolean
//	*big.Int, big.Int            -> ToBigInt
//	time.Time                    -> ToDate
//	[]E                          -> ToArray(For(E))
//	[N]E                         -> ToTuple(For(E) x N)
//	struct                       -> ToObject(field coercers)
//	map[string]V                 -> ToMap(For(V))
//	*E                           -> For(E), nil kept
//	anything else                -> Noop
package coerce
