package tutortime

import (
	"context"
	"reflect"
	"time"
)

// Auther is the default Authenticator implementation. It verifies credentials
// through an IdentityProvider and mints two families of stateless tokens:
// session tokens and short lived password reset tokens, each signed with its
// own secret.
type Auther struct {
	provider          IdentityProvider
	signingKey        []byte
	resetSigningKey   []byte
	tokenExpiration   int
	resetDuration     int
	issuer            string
	audience          []string
	logger            Logger
	tokenService      TokenService
	resetTokenService TokenService
	activitySink      ActivitySink
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	a := &Auther{
		provider:        provider,
		signingKey:      []byte(opts.GetSigningKey()),
		resetSigningKey: []byte(opts.GetResetSigningKey()),
		tokenExpiration: opts.GetTokenExpiration(),
		resetDuration:   opts.GetResetTokenDuration(),
		audience:        opts.GetAudience(),
		issuer:          opts.GetIssuer(),
		logger:          defLogger{},
		activitySink:    noopActivitySink{},
	}

	a.rebuildTokenServices()

	return a
}

func (s *Auther) rebuildTokenServices() {
	s.tokenService = NewTokenService(
		s.signingKey,
		time.Duration(s.tokenExpiration)*time.Hour,
		s.issuer,
		s.audience,
		s.logger,
	)
	s.resetTokenService = NewResetTokenService(
		s.resetSigningKey,
		time.Duration(s.resetDuration)*time.Minute,
		s.issuer,
		s.audience,
		s.logger,
	)
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.rebuildTokenServices()
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// TokenService returns the session TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// ResetTokenService returns the reset TokenService instance used by this Authenticator
func (s *Auther) ResetTokenService() TokenService {
	return s.resetTokenService
}

func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	var err error
	var identity Identity

	if identity, err = s.provider.VerifyIdentity(ctx, identifier, password); err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"identifier": identifier,
			"error":      ErrIdentityNotFound.Error(),
		})
		return "", ErrIdentityNotFound
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromIdentity(identity), identity.ID(), map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, s.actorFromIdentity(identity), identity.ID(), map[string]any{
		"identifier": identifier,
	})

	return token, nil
}

func (s *Auther) IdentityFromSession(ctx context.Context, session Session) (Identity, error) {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, session.GetUserID())

	if err != nil {
		s.logger.Error("IdentityFromSession find identity by identifier: %s", err)
		return nil, err
	}

	return identity, nil
}

func (s Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims", "error", err)
		return nil, err
	}

	return session, nil
}

// IssueResetToken mints a short lived reset token for the identity. The
// token is signed with the reset secret and is rejected by the session
// validator, and vice versa.
func (s *Auther) IssueResetToken(identity Identity) (string, error) {
	if identity == nil || reflect.ValueOf(identity).IsZero() {
		return "", ErrIdentityNotFound
	}

	return s.resetTokenService.Generate(identity)
}

// ValidateResetToken verifies a reset token and returns its claims.
func (s *Auther) ValidateResetToken(raw string) (AuthClaims, error) {
	claims, err := s.resetTokenService.Validate(raw)
	if err != nil {
		s.logger.Error("ValidateResetToken validation failed", "error", err)
		return nil, err
	}
	return claims, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

func (s *Auther) actorFromIdentity(identity Identity) ActorRef {
	if identity == nil {
		return ActorRef{Type: "unknown"}
	}

	return ActorRef{
		ID:   identity.ID(),
		Type: "user",
	}
}
