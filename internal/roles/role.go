// Package roles holds the closed set of user roles and the access gate that
// decides whether an authenticated identity may reach a role-gated resource.
package roles

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

type Role string

const (
	Admin    Role = "admin"
	Manager  Role = "manager"
	Employee Role = "employee"
)

var ErrUnknownRole = errors.New("unknown role")

func All() []Role { return []Role{Admin, Manager, Employee} }

func (r Role) Valid() bool {
	return slices.Contains(All(), r)
}

func (r Role) String() string { return string(r) }

// Parse matches s exactly; "Admin" or " admin" are not roles.
func Parse(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// LoginMessage is the greeting returned by a successful login.
func LoginMessage(r Role) string {
	switch r {
	case Admin:
		return "Admin login successful"
	case Manager:
		return "Manager login successful"
	default:
		return "Login successful"
	}
}

// Identity is the authenticated subject of a request.
type Identity struct {
	UserID  string
	Role    Role
	TokenID string
}

func (i Identity) Authenticated() bool {
	return i.UserID != "" && i.Role.Valid()
}

// Authorize allows only an exact role match. There is no hierarchy: an admin
// cannot open the manager dashboard.
func Authorize(id Identity, required Role) bool {
	return id.Authenticated() && id.Role == required
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || !id.Authenticated() {
		return Identity{}, false
	}
	return id, true
}
