// Package membership interprets a tenant's subscription record at a point in time.
package membership

import (
	"fmt"
	"time"

	"github.com/pavitra93/menulink/shared/models"
)

const (
	// LongTermThreshold is the number of remaining days above which a plan
	// needs no countdown
	LongTermThreshold = 30

	LongTermLabel = "long-term"
	DefaultLabel  = "trial"
)

// Evaluation is the interpreted state of a membership on one calendar day
type Evaluation struct {
	DaysRemaining      int         `json:"days_remaining"`
	IsExpired          bool        `json:"is_expired"`
	IsLongTerm         bool        `json:"is_long_term"`
	EffectivePlanLabel string      `json:"plan"`
	ExpiryDate         models.Date `json:"expiry_date"`
}

// Evaluate computes the lifecycle of m as of now. Days are counted on civil
// dates: now is reduced to its date in its own location and the expiry date
// counts as the last valid day.
func Evaluate(m models.Membership, now time.Time) Evaluation {
	var eval Evaluation
	if m.ExpiryDate != nil {
		eval.ExpiryDate = *m.ExpiryDate
	}

	if m.Active && !eval.ExpiryDate.IsZero() {
		eval.DaysRemaining = eval.ExpiryDate.DaysSince(models.DateOf(now)) + 1
	}
	eval.IsExpired = !m.Active || eval.DaysRemaining <= 0
	eval.IsLongTerm = eval.DaysRemaining > LongTermThreshold

	switch {
	case eval.IsLongTerm:
		eval.EffectivePlanLabel = LongTermLabel
	case m.PlanType != nil && *m.PlanType != "":
		eval.EffectivePlanLabel = *m.PlanType
	default:
		eval.EffectivePlanLabel = DefaultLabel
	}
	return eval
}

// Notice is the countdown banner for the owner dashboard. Long-term plans
// get none.
func (e Evaluation) Notice() string {
	switch {
	case e.IsLongTerm:
		return ""
	case e.IsExpired:
		return "Plan Expired"
	case e.DaysRemaining == 1:
		return "1 day left in your plan"
	default:
		return fmt.Sprintf("%d days left in your plan", e.DaysRemaining)
	}
}

// Entitled reports whether the tenant's content may be shown
func (e Evaluation) Entitled() bool {
	return !e.IsExpired
}
