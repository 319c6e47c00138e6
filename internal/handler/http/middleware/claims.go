package middleware

import (
	"context"

	"github.com/cmlabs-hris/hris-payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// ActorID returns the user id of the authenticated caller.
func ActorID(ctx context.Context) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}
	id, _ := claims[jwt.ClaimUserID].(string)
	return id
}

// EmployeeID returns the employee the caller is linked to, if any.
func EmployeeID(ctx context.Context) (string, bool) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", false
	}
	id, ok := claims[jwt.ClaimEmployeeID].(string)
	return id, ok && id != ""
}

func IsAdmin(ctx context.Context) bool {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return false
	}
	admin, _ := claims[jwt.ClaimIsAdmin].(bool)
	return admin
}
