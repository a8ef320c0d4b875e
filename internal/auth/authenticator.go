package auth

import (
	"context"

	domainUser "property-marketplace/internal/domain/user"
)

// Authenticator turns a presented bearer token into the user it names.
// Nothing is cached between calls; every request re-authenticates.
type Authenticator struct {
	tokens   *TokenService
	resolver *Resolver
}

func NewAuthenticator(tokens *TokenService, resolver *Resolver) *Authenticator {
	return &Authenticator{
		tokens:   tokens,
		resolver: resolver,
	}
}

func (a *Authenticator) Authenticate(ctx context.Context, token string) (*domainUser.User, error) {
	subject, err := a.tokens.VerifyAndDecode(token)
	if err != nil {
		return nil, err
	}
	return a.resolver.Resolve(ctx, subject)
}
