// Package validation implements the field validators of the card flows and
// the ValidateData entry point that runs them over a CollectableData value.
//
// Every validator is pure: it takes the raw string the user typed and returns
// nil or a single *domain.ValidationError. Empty input is always reported
// with its own message so the UI can tell "missing" from "malformed".
//
// Rules are expressed as go-playground/validator tags. A Validator can be
// built with a PhoneNormalizer to delegate mobile number checks to a real
// numbering plan; without one a 7–15 digit rule applies.
package validation
