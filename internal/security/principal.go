// Package security adapts stored users into authenticated principals and
// issues the bearer tokens that carry them between requests.
package security

import (
	"context"
	"slices"
	"strings"

	"github.com/Domenick1991/flightsearch/internal/domain"
)

// AuthorityUser is the only authority granted to accounts.
const AuthorityUser = "user"

// Principal is the authenticated view of a user. Accounts never expire, lock or get disabled.
type Principal struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"`
	Authorities  []string `json:"authorities"`
}

func NewPrincipal(u *domain.User) *Principal {
	return &Principal{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Authorities:  []string{AuthorityUser},
	}
}

func (p *Principal) HasAuthority(authority string) bool {
	return p != nil && slices.Contains(p.Authorities, authority)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
