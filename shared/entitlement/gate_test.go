package entitlement

import (
	"net/http"
	"testing"

	"github.com/pavitra93/menulink/shared/models"
	"github.com/pavitra93/menulink/shared/resolve"
	"github.com/stretchr/testify/assert"
)

func TestPublicPage(t *testing.T) {
	tests := []struct {
		status   resolve.Status
		servable bool
		code     int
		reason   string
	}{
		{resolve.StatusReady, true, http.StatusOK, ReasonServable},
		{resolve.StatusNotFound, false, http.StatusNotFound, ReasonNotFound},
		{resolve.StatusInactive, false, http.StatusForbidden, ReasonMembershipInactive},
		{resolve.StatusOther, false, http.StatusBadGateway, ReasonUnavailable},
		{resolve.StatusLoading, false, http.StatusAccepted, ReasonLoading},
		{resolve.StatusIdle, false, http.StatusAccepted, ReasonLoading},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			verdict := PublicPage(tt.status)
			assert.Equal(t, tt.servable, verdict.Servable)
			assert.Equal(t, tt.code, verdict.StatusCode)
			assert.Equal(t, tt.reason, verdict.Reason)
		})
	}
}

func TestAdminEmailPolicy(t *testing.T) {
	policy := NewPolicy("admin@menulink.app", "")

	assert.True(t, Admin(&models.Identity{Email: "admin@menulink.app"}, policy).Allowed)

	denied := Admin(&models.Identity{Email: "Admin@menulink.app"}, policy)
	assert.False(t, denied.Allowed)
	assert.Equal(t, SignInPath, denied.Redirect)
	assert.Equal(t, ReasonNotAdmin, denied.Reason)

	anonymous := Admin(nil, policy)
	assert.False(t, anonymous.Allowed)
	assert.Equal(t, ReasonUnauthenticated, anonymous.Reason)
}

func TestAdminWithoutConfiguredEmail(t *testing.T) {
	policy := NewPolicy("", "")
	assert.False(t, Admin(&models.Identity{Email: ""}, policy).Allowed)
	assert.False(t, Admin(&models.Identity{Email: "owner@example.com"}, nil).Allowed)
}

func TestAdminRolePolicy(t *testing.T) {
	policy := NewPolicy("admin@menulink.app", "operator")

	assert.True(t, Admin(&models.Identity{Email: "ops@menulink.app", Roles: []string{"operator"}}, policy).Allowed)
	assert.True(t, Admin(&models.Identity{Email: "admin@menulink.app"}, policy).Allowed)
	assert.False(t, Admin(&models.Identity{Email: "owner@example.com", Roles: []string{"owner"}}, policy).Allowed)
}

func TestOwnerDashboard(t *testing.T) {
	owner := &models.Identity{ID: "u1", Email: "owner@example.com"}

	assert.True(t, OwnerDashboard(owner, true, "/dashboard").Allowed)

	forced := OwnerDashboard(owner, false, "/dashboard/pdfs")
	assert.False(t, forced.Allowed)
	assert.Equal(t, OnboardingPath, forced.Redirect)

	assert.True(t, OwnerDashboard(owner, false, "/onboarding").Allowed)
	assert.True(t, OwnerDashboard(owner, false, "/onboarding/check-slug/abc").Allowed)

	anonymous := OwnerDashboard(nil, true, "/dashboard")
	assert.False(t, anonymous.Allowed)
	assert.Equal(t, SignInPath, anonymous.Redirect)
}
