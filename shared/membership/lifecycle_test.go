package membership

import (
	"testing"
	"time"

	"github.com/pavitra93/menulink/shared/models"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string {
	return &s
}

func datePtr(t *testing.T, s string) *models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return &d
}

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, time.March, 10, 23, 59, 0, 0, time.UTC)

	tests := []struct {
		name       string
		membership models.Membership
		days       int
		expired    bool
		longTerm   bool
		label      string
		notice     string
	}{
		{
			name:       "expires today",
			membership: models.Membership{Active: true, ExpiryDate: datePtr(t, "2025-03-10")},
			days:       1,
			label:      "trial",
			notice:     "1 day left in your plan",
		},
		{
			name:       "expired yesterday",
			membership: models.Membership{Active: true, ExpiryDate: datePtr(t, "2025-03-09")},
			days:       0,
			expired:    true,
			label:      "trial",
			notice:     "Plan Expired",
		},
		{
			name:       "inactive ignores expiry",
			membership: models.Membership{Active: false, ExpiryDate: datePtr(t, "2030-01-01")},
			days:       0,
			expired:    true,
			label:      "trial",
			notice:     "Plan Expired",
		},
		{
			name:       "active without expiry",
			membership: models.Membership{Active: true},
			days:       0,
			expired:    true,
			label:      "trial",
			notice:     "Plan Expired",
		},
		{
			name:       "plan type kept below threshold",
			membership: models.Membership{Active: true, ExpiryDate: datePtr(t, "2025-03-20"), PlanType: strPtr("monthly")},
			days:       11,
			label:      "monthly",
			notice:     "11 days left in your plan",
		},
		{
			name:       "thirty days is not long-term",
			membership: models.Membership{Active: true, ExpiryDate: datePtr(t, "2025-04-08")},
			days:       30,
			label:      "trial",
			notice:     "30 days left in your plan",
		},
		{
			name:       "thirty one days is long-term",
			membership: models.Membership{Active: true, ExpiryDate: datePtr(t, "2025-04-09"), PlanType: strPtr("monthly")},
			days:       31,
			longTerm:   true,
			label:      "long-term",
		},
		{
			name:       "empty plan type falls back",
			membership: models.Membership{Active: true, ExpiryDate: datePtr(t, "2025-03-12"), PlanType: strPtr("")},
			days:       3,
			label:      "trial",
			notice:     "3 days left in your plan",
		},
		{
			name:       "timestamp expiry keeps date part",
			membership: models.Membership{Active: true, ExpiryDate: datePtr(t, "2025-03-11T00:00:00Z")},
			days:       2,
			label:      "trial",
			notice:     "2 days left in your plan",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := Evaluate(tt.membership, now)
			assert.Equal(t, tt.days, eval.DaysRemaining)
			assert.Equal(t, tt.expired, eval.IsExpired)
			assert.Equal(t, tt.longTerm, eval.IsLongTerm)
			assert.Equal(t, tt.label, eval.EffectivePlanLabel)
			assert.Equal(t, tt.notice, eval.Notice())
			assert.Equal(t, !tt.expired, eval.Entitled())
		})
	}
}

func TestEvaluateUsesCivilDateOfNow(t *testing.T) {
	m := models.Membership{Active: true, ExpiryDate: datePtr(t, "2025-03-10")}

	morning := Evaluate(m, time.Date(2025, time.March, 10, 0, 0, 1, 0, time.UTC))
	night := Evaluate(m, time.Date(2025, time.March, 10, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, morning, night)

	// 2025-03-10 20:00 in UTC-5 is already the 11th in UTC
	ny := time.FixedZone("UTC-5", -5*60*60)
	local := Evaluate(m, time.Date(2025, time.March, 10, 20, 0, 0, 0, ny))
	assert.Equal(t, 1, local.DaysRemaining)
	assert.Equal(t, 0, Evaluate(m, time.Date(2025, time.March, 11, 0, 0, 0, 0, ny)).DaysRemaining)
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	expiry := datePtr(t, "2025-03-10")
	m := models.Membership{Active: true, ExpiryDate: expiry, PlanType: strPtr("monthly")}
	Evaluate(m, time.Now())
	assert.Equal(t, "2025-03-10", m.ExpiryDate.String())
	assert.Equal(t, "monthly", *m.PlanType)
}

func TestUpgradeLink(t *testing.T) {
	link := UpgradeLink("+91 84558 38503", "", "menulink.app")
	assert.Equal(t, "https://wa.me/918455838503?text=Hi%2C+I+want+to+get+the+Lifetime+Access+in+menulink.app.+Please+assist+me.", link)
	assert.Empty(t, UpgradeLink("", "", "menulink.app"))
}
