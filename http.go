package tutortime

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

const (
	// StatusSuccess is the envelope marker for successful responses
	StatusSuccess = "SUCCESS"
	// StatusFail is the envelope marker for failed responses
	StatusFail = "FAIL"
)

// RespondSuccess writes the standard success envelope.
func RespondSuccess(ctx router.Context, code int, data any) error {
	return ctx.JSON(code, map[string]any{
		"status": StatusSuccess,
		"data":   data,
	})
}

// RespondError maps a domain error to an HTTP status and writes the standard
// failure envelope. Anything that is not a rich error becomes a 500 with a
// generic message so internals never leak.
func RespondError(ctx router.Context, err error) error {
	richErr := asRichError(err)

	return ctx.JSON(httpStatusFor(richErr), map[string]any{
		"status": StatusFail,
		"error": map[string]any{
			"message":   richErr.Message,
			"text_code": richErr.TextCode,
		},
	})
}

// RespondValidationError writes a 400 envelope carrying the field errors
// reported by a payload Validate call.
func RespondValidationError(ctx router.Context, err error) error {
	return ctx.JSON(router.StatusBadRequest, map[string]any{
		"status": StatusFail,
		"error": map[string]any{
			"message":   "Validation failed",
			"text_code": "VALIDATION_ERROR",
			"fields":    err.Error(),
		},
	})
}

func asRichError(err error) *errors.Error {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr
	}
	return errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
		WithCode(errors.CodeInternal)
}

func httpStatusFor(err *errors.Error) int {
	switch err.Category {
	case errors.CategoryAuth:
		return router.StatusUnauthorized
	case errors.CategoryAuthz:
		return router.StatusForbidden
	case errors.CategoryNotFound:
		return router.StatusNotFound
	case errors.CategoryConflict:
		return router.StatusConflict
	case errors.CategoryValidation, errors.CategoryBadInput:
		return router.StatusBadRequest
	default:
		if err.Code >= 400 && err.Code < 600 {
			return err.Code
		}
		return router.StatusInternalServerError
	}
}

// ClaimsFromContext pulls validated token claims out of router locals, where
// the token middleware stored them.
func ClaimsFromContext(ctx router.Context, contextKey string) (AuthClaims, error) {
	raw := ctx.Locals(contextKey)
	if raw == nil {
		return nil, ErrUnableToFindSession
	}

	claims, ok := raw.(AuthClaims)
	if !ok {
		return nil, ErrUnableToDecodeSession
	}

	return claims, nil
}

func actorFromClaims(claims AuthClaims) ActorRef {
	return ActorRef{ID: claims.UserID(), Type: claims.Role()}
}
