package tutortime

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("IDENTITY_NOT_FOUND")

// ErrEmailTaken is returned when a registration reuses an existing email
var ErrEmailTaken = errors.New("email already in use", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode("EMAIL_IN_USE")

// ErrMismatchedHashAndPassword is the generic wrong-credentials error; it
// deliberately does not distinguish unknown identity from bad password.
var ErrMismatchedHashAndPassword = errors.New("invalid credentials", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrMalformedDigest is returned when a stored password digest cannot be parsed
var ErrMalformedDigest = errors.New("malformed password digest", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode("MALFORMED_DIGEST")

// ErrNoEmptyString rejects empty required values
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest)

// ErrTooManyLoginAttempts is returned while the login cooldown is active
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOO_MANY_ATTEMPTS")

// ErrTokenExpired is returned when a token's expiry has passed. There is no
// revocation mechanism; tokens stay valid until natural expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed is returned when signature or structure checks fail
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrRoleForbidden is returned by the role gate for authenticated identities
// whose role does not cover the requested action
var ErrRoleForbidden = errors.New("access denied", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode("ROLE_FORBIDDEN")

// ErrNotAdmitted gates student functionality until an admin approves the account
var ErrNotAdmitted = errors.New("account pending admission approval", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode("NOT_ADMITTED")

// ErrSlotNotFound merges "no such slot" and "slot exists but is not in the
// required state" so non owners cannot probe booking state.
var ErrSlotNotFound = errors.New("appointment not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("SLOT_NOT_FOUND")

// ErrSlotTaken is the losing side of a booking race
var ErrSlotTaken = errors.New("appointment already booked", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode("SLOT_ALREADY_BOOKED")

// ErrSlotForbidden is returned when a teacher acts on a slot they do not own
var ErrSlotForbidden = errors.New("appointment belongs to another teacher", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode("SLOT_FORBIDDEN")

// ErrMessageForbidden is returned when a delete comes from neither sender nor recipient
var ErrMessageForbidden = errors.New("not authorized to delete this message", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode("MESSAGE_FORBIDDEN")

// ErrMessageNotFound is returned for absent messages
var ErrMessageNotFound = errors.New("message not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("MESSAGE_NOT_FOUND")

// ErrUnableToFindSession is the error when our reequest has no token
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode JWT claims
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToParseData parse error
var ErrUnableToParseData = errors.New("unable to parse data", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
