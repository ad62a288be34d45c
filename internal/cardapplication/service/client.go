package service

import (
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"cartoes/internal/eligibility"
	dErrors "cartoes/pkg/domain-errors"
)

// BirthDateLayout is the accepted data_nascimento format.
const BirthDateLayout = time.DateOnly

// ClientData is the applicant as submitted. Age and MonthlyIncome are
// pointers so an absent value can be told apart from zero.
type ClientData struct {
	Name          string
	CPF           string
	Age           *int
	BirthDate     string
	State         string
	MonthlyIncome *decimal.Decimal
	Email         string
	Phone         string
}

// Profile checks every field and converts the data into an eligibility
// profile. All faults are reported together, keyed by wire field name.
func (c ClientData) Profile() (eligibility.Profile, error) {
	fields := map[string]string{}
	required := func(key, value string) string {
		value = strings.TrimSpace(value)
		if value == "" {
			fields[key] = "must not be blank"
		}
		return value
	}

	p := eligibility.Profile{
		Name:  required("nome", c.Name),
		CPF:   required("cpf", c.CPF),
		State: strings.ToUpper(required("uf", c.State)),
		Email: required("email", c.Email),
		Phone: required("telefone_whatsapp", c.Phone),
	}

	switch {
	case c.Age == nil:
		fields["idade"] = "is required"
	case *c.Age < 0:
		fields["idade"] = "must not be negative"
	default:
		p.Age = *c.Age
	}

	if birth := required("data_nascimento", c.BirthDate); birth != "" {
		t, err := time.Parse(BirthDateLayout, birth)
		if err != nil {
			fields["data_nascimento"] = "must be a date in yyyy-MM-dd format"
		}
		p.BirthDate = t
	}

	if p.State != "" && !isStateCode(p.State) {
		fields["uf"] = "must be a 2-letter state code"
	}

	switch {
	case c.MonthlyIncome == nil:
		fields["renda_mensal"] = "is required"
	case c.MonthlyIncome.IsNegative():
		fields["renda_mensal"] = "must not be negative"
	case !c.MonthlyIncome.Equal(c.MonthlyIncome.Truncate(2)):
		fields["renda_mensal"] = "must have at most 2 decimal places"
	default:
		p.MonthlyIncome = *c.MonthlyIncome
	}

	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			fields["email"] = "must be a valid e-mail address"
		}
	}

	if len(fields) > 0 {
		return eligibility.Profile{}, dErrors.NewValidation("invalid client data", fields)
	}
	return p, nil
}

func isStateCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
