// Package calcerr defines the error taxonomy shared by the cost calculation
// packages.
//
// Three kinds of failure are distinguished:
//
//   - ValidationError: an input value is out of its allowed domain
//     (negative token counts, router fees outside [0, 0.5], duplicate
//     catalog identifiers).
//   - ModelNotFoundError: a model identifier is not present in the catalog.
//   - ConfigurationError: an environmental assumption (phone charge size,
//     household consumption, grid intensity) is not strictly positive.
//
// All three are returned as pointers and can be matched with errors.As or the
// Is* helpers in this package:
//
//	res, err := eng.Evaluate(cat, "gpt-4o", req, assumptions)
//	if calcerr.IsModelNotFound(err) {
//		// unknown model
//	}
package calcerr
