// Package handlers defines HTTP-layer error codes and messages used across
// all endpoints.
//
// Codes are lowercase snake_case and travel in the X-Error-Code header so
// clients can branch on them without parsing the human-readable body.
// Messages are the user-facing texts placed under "error"; their spelling is
// part of the public contract and must not change.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeMissingFields = "missing_fields"
	ErrCodeDuplicateName = "duplicate_name"
	ErrCodeNoCafes       = "no_cafes"
)

// Error kinds used as keys of object-shaped errors.
const (
	KindNotFound = "Not Found"
	KindInvalid  = "Invalid"
)

// User-facing messages.
const (
	MsgRouteNotFound    = "route not found"
	MsgMethodNotAllowed = "method not allowed"
	MsgInternal         = "internal server error"

	MsgNoCafeAtLocation = "Sorry, we don't have a cafe at that location."
	MsgNoCafes          = "Sorry, there are no cafes available."
	MsgCafeIDNotFound   = "Sorry a cafe with that id was not found in the database."
	MsgInvalidAPIKey    = "The entered API key is not valid"

	MsgMissingFields   = "Missing required field(s)"
	MsgDuplicateName   = "A cafe with that name already exists."
	MsgMissingNewPrice = "Missing new_price field"
	MsgMissingAPIKey   = "Missing api_key field"

	MsgAdded   = "Succesfully added the new cafe."
	MsgUpdated = "Succesfully updated the price."
	MsgDeleted = "Successfully deleted the cafe."
)
