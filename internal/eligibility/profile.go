package eligibility

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Profile is the validated applicant snapshot rules are evaluated against.
// It is built once per request and passed by value.
type Profile struct {
	Name          string
	CPF           string
	Age           int
	BirthDate     time.Time
	State         string
	MonthlyIncome decimal.Decimal
	Email         string
	Phone         string
}

// InState reports whether the applicant lives in state, ignoring case.
func (p Profile) InState(state string) bool {
	return strings.EqualFold(strings.TrimSpace(p.State), state)
}
