package auth

import "github.com/spec-kit/bookstore-service/internal/domain"

// DecisionRule names the rule that produced an AccessDecision.
type DecisionRule string

const (
	RuleNoPrincipal   DecisionRule = "no_principal"
	RuleAuthenticated DecisionRule = "authenticated"
	RuleRole          DecisionRule = "role"
	RuleAdmin         DecisionRule = "admin"
	RuleOwnership     DecisionRule = "ownership"
	RuleDenied        DecisionRule = "denied"
)

// AccessDecision is the outcome of a policy evaluation. Decisions are computed
// per request and never cached.
type AccessDecision struct {
	Allowed bool
	Rule    DecisionRule
}

// DecideAuthenticated allows any present principal.
func DecideAuthenticated(p *Principal) AccessDecision {
	if p == nil {
		return AccessDecision{Rule: RuleNoPrincipal}
	}
	return AccessDecision{Allowed: true, Rule: RuleAuthenticated}
}

// DecideRole allows principals holding role.
func DecideRole(p *Principal, role domain.Role) AccessDecision {
	if p == nil {
		return AccessDecision{Rule: RuleNoPrincipal}
	}
	if p.HasRole(role) {
		return AccessDecision{Allowed: true, Rule: RuleRole}
	}
	return AccessDecision{Rule: RuleDenied}
}

// DecideOwnResource allows administrators on any target and everyone else on
// their own id only. The ownership comparison runs only when the admin role is absent.
func DecideOwnResource(p *Principal, targetID int) AccessDecision {
	if p == nil {
		return AccessDecision{Rule: RuleNoPrincipal}
	}
	if p.HasRole(domain.RoleAdmin) {
		return AccessDecision{Allowed: true, Rule: RuleAdmin}
	}
	if p.ID == targetID {
		return AccessDecision{Allowed: true, Rule: RuleOwnership}
	}
	return AccessDecision{Rule: RuleDenied}
}

// RequiresAuthenticated reports whether a principal is present.
func RequiresAuthenticated(p *Principal) bool {
	return DecideAuthenticated(p).Allowed
}

// RequiresRole reports whether the principal holds role.
func RequiresRole(p *Principal, role domain.Role) bool {
	return DecideRole(p, role).Allowed
}

// CanAccessOwnResource reports whether the principal may act on the record identified by targetID.
func CanAccessOwnResource(p *Principal, targetID int) bool {
	return DecideOwnResource(p, targetID).Allowed
}
