package auth

import (
	"log/slog"

	"taskroom/domain"
)

// SubjectStore answers whether a token subject still exists. Implemented by
// the user repository; kept as a narrow interface so the resolver can be
// tested without a database.
type SubjectStore interface {
	Exists(userID string) (bool, error)
}

// Resolver turns an opaque bearer credential into a Principal.
//
// It fails open: any validation error (malformed token, expired token,
// unknown subject, storage failure during the lookup) resolves to the
// anonymous principal instead of an error. Gating anonymous principals away
// from protected operations is the middleware's job, not the resolver's.
type Resolver struct {
	tokens *TokenManager
	users  SubjectStore
	log    *slog.Logger
}

func NewResolver(tokens *TokenManager, users SubjectStore, log *slog.Logger) *Resolver {
	return &Resolver{tokens: tokens, users: users, log: log}
}

func (r *Resolver) Resolve(credential string) domain.Principal {
	claims, err := r.tokens.Validate(credential)
	if err != nil {
		r.log.Debug("credential rejected, resolving to anonymous", "error", err)
		return domain.Anonymous()
	}

	ok, err := r.users.Exists(claims.UserID)
	if err != nil {
		// Storage failure, not a bad token. Still downgraded to anonymous,
		// but logged at Warn so the two cases stay distinguishable.
		r.log.Warn("subject lookup failed, resolving to anonymous", "error", err)
		return domain.Anonymous()
	}
	if !ok {
		r.log.Debug("token subject no longer exists", "user_id", claims.UserID)
		return domain.Anonymous()
	}

	return domain.Principal{
		UserID:        claims.UserID,
		DisplayName:   claims.DisplayName,
		Authenticated: true,
	}
}
