package auth

import (
	apperrors "github.com/spec-kit/bookstore-service/pkg/util"
)

// Enforce turns a decision into the error that terminates a blocked request:
// 401 when nobody is authenticated, 403 when the principal lacks privilege.
// Both render the same ML-0001 "Access Denied" body.
func Enforce(d AccessDecision) error {
	if d.Allowed {
		return nil
	}
	if d.Rule == RuleNoPrincipal {
		return apperrors.NewUnauthenticated()
	}
	return apperrors.NewForbidden()
}
