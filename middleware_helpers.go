package tutortime

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"

	"github.com/tutortime/tutortime/middleware/tokenware"
)

// tokenValidatorAdapter bridges the root TokenService to the middleware's
// local validator interface.
type tokenValidatorAdapter struct {
	service TokenService
}

func (a tokenValidatorAdapter) Validate(tokenString string) (tokenware.AuthClaims, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Protected returns middleware that authenticates the bearer token and, when
// roles are given, lets the request through only for those roles.
func Protected(cfg Config, service TokenService, roles ...UserRole) router.MiddlewareFunc {
	required := make([]string, 0, len(roles))
	for _, role := range roles {
		required = append(required, string(role))
	}

	return tokenware.New(tokenware.Config{
		TokenValidator: tokenValidatorAdapter{service: service},
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		AuthScheme:     cfg.GetAuthScheme(),
		RequiredRoles:  required,
		ErrorHandler:   tokenErrorHandler,
	})
}

func tokenErrorHandler(ctx router.Context, err error) error {
	if err == tokenware.ErrJWTMissingOrMalformed {
		return RespondError(ctx, ErrUnableToFindSession)
	}

	// rich errors already carry a category the responder can map
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return RespondError(ctx, richErr)
	}

	if isAccessDenied(err) {
		return RespondError(ctx, ErrRoleForbidden)
	}

	return RespondError(ctx, ErrTokenMalformed)
}

func isAccessDenied(err error) bool {
	return err != nil && len(err.Error()) >= 13 && err.Error()[:13] == "access denied"
}
