// Package entitlement decides who may see what: public tenant pages, the
// owner dashboard and the operator console.
package entitlement

import (
	"net/http"
	"strings"

	"github.com/pavitra93/menulink/shared/models"
	"github.com/pavitra93/menulink/shared/resolve"
)

const (
	SignInPath     = "/signin"
	OnboardingPath = "/onboarding"
)

// Reasons attached to a verdict so callers can present each case distinctly
const (
	ReasonServable           = "servable"
	ReasonLoading            = "loading"
	ReasonNotFound           = "not_found"
	ReasonMembershipInactive = "membership_inactive"
	ReasonUnavailable        = "unavailable"
	ReasonUnauthenticated    = "unauthenticated"
	ReasonNotAdmin           = "not_admin"
	ReasonOnboarding         = "onboarding_required"
)

// PageVerdict says whether a public page may be served and how to answer
// when it may not
type PageVerdict struct {
	Servable   bool   `json:"servable"`
	StatusCode int    `json:"-"`
	Reason     string `json:"reason"`
}

// PublicPage gates a tenant page on the resolver state. Only Ready is
// servable; every other state gets its own reason.
func PublicPage(status resolve.Status) PageVerdict {
	switch status {
	case resolve.StatusReady:
		return PageVerdict{Servable: true, StatusCode: http.StatusOK, Reason: ReasonServable}
	case resolve.StatusNotFound:
		return PageVerdict{StatusCode: http.StatusNotFound, Reason: ReasonNotFound}
	case resolve.StatusInactive:
		return PageVerdict{StatusCode: http.StatusForbidden, Reason: ReasonMembershipInactive}
	case resolve.StatusIdle, resolve.StatusLoading:
		return PageVerdict{StatusCode: http.StatusAccepted, Reason: ReasonLoading}
	default:
		return PageVerdict{StatusCode: http.StatusBadGateway, Reason: ReasonUnavailable}
	}
}

// Decision is the outcome of an access check on a signed-in surface
type Decision struct {
	Allowed  bool
	Reason   string
	Redirect string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func redirect(reason, to string) Decision {
	return Decision{Reason: reason, Redirect: to}
}

// Policy decides whether an identity is an administrator
type Policy interface {
	IsAdmin(identity *models.Identity) bool
}

// EmailPolicy grants admin to exactly one configured address. The
// comparison is exact; an empty address grants nobody.
type EmailPolicy struct {
	Email string
}

func (p EmailPolicy) IsAdmin(identity *models.Identity) bool {
	return p.Email != "" && identity != nil && identity.Email == p.Email
}

// RolePolicy grants admin to identities carrying a role claim
type RolePolicy struct {
	Role string
}

func (p RolePolicy) IsAdmin(identity *models.Identity) bool {
	return p.Role != "" && identity != nil && identity.HasRole(p.Role)
}

// AnyPolicy grants admin when any member policy does
type AnyPolicy []Policy

func (p AnyPolicy) IsAdmin(identity *models.Identity) bool {
	for _, policy := range p {
		if policy != nil && policy.IsAdmin(identity) {
			return true
		}
	}
	return false
}

// NewPolicy builds the admin policy from configuration. Without a role the
// result is the plain email equality check.
func NewPolicy(adminEmail, adminRole string) Policy {
	email := EmailPolicy{Email: strings.TrimSpace(adminEmail)}
	if strings.TrimSpace(adminRole) == "" {
		return email
	}
	return AnyPolicy{email, RolePolicy{Role: strings.TrimSpace(adminRole)}}
}

// Admin gates the operator console
func Admin(identity *models.Identity, policy Policy) Decision {
	if identity == nil {
		return redirect(ReasonUnauthenticated, SignInPath)
	}
	if policy == nil || !policy.IsAdmin(identity) {
		return redirect(ReasonNotAdmin, SignInPath)
	}
	return allow()
}

// OwnerDashboard gates the owner dashboard. Owners without a restaurant are
// sent to onboarding unless they are already there.
func OwnerDashboard(identity *models.Identity, hasRestaurant bool, path string) Decision {
	if identity == nil {
		return redirect(ReasonUnauthenticated, SignInPath)
	}
	if !hasRestaurant && !strings.HasPrefix(path, OnboardingPath) {
		return redirect(ReasonOnboarding, OnboardingPath)
	}
	return allow()
}
