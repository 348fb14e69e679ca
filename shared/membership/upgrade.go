package membership

import (
	"fmt"
	"net/url"
	"strings"
)

// UpgradePlan is the plan offered on the membership page
const UpgradePlan = "Lifetime Access"

// UpgradeLink builds the chat deep link an owner follows to request a plan.
// It returns an empty string when no support number is configured.
func UpgradeLink(supportPhone, plan, site string) string {
	phone := digitsOnly(supportPhone)
	if phone == "" {
		return ""
	}
	if plan == "" {
		plan = UpgradePlan
	}
	message := fmt.Sprintf("Hi, I want to get the %s in %s. Please assist me.", plan, site)
	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(message)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
