package eligibility

import (
	"time"

	"github.com/shopspring/decimal"
)

var referenceNow = time.Date(2025, time.June, 15, 9, 30, 0, 0, time.UTC)

// applicant builds a profile whose birth date agrees with age at referenceNow.
func applicant(age int, state, income string) Profile {
	return Profile{
		Name:          "Maria Silva",
		CPF:           "123.456.789-09",
		Age:           age,
		BirthDate:     time.Date(referenceNow.Year()-age, time.January, 10, 0, 0, 0, 0, time.UTC),
		State:         state,
		MonthlyIncome: decimal.RequireFromString(income),
		Email:         "maria@example.com",
		Phone:         "+5511999990000",
	}
}

func cards(offers []Offer) []CardType {
	out := make([]CardType, 0, len(offers))
	for _, o := range offers {
		out = append(out, o.Card)
	}
	return out
}
