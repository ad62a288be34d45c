package eligibility

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidPolicy is returned by Policy.Validate.
var ErrInvalidPolicy = errors.New("invalid eligibility policy")

// AgeBand is the half-open interval [Min, Max).
type AgeBand struct {
	Min int
	Max int
}

func (b AgeBand) Contains(age int) bool {
	return age >= b.Min && age < b.Max
}

// IncomeRange is the half-open interval [Min, Max).
type IncomeRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

func (r IncomeRange) Contains(v decimal.Decimal) bool {
	return v.GreaterThanOrEqual(r.Min) && v.LessThan(r.Max)
}

// Product carries a card's income threshold and the terms offered with it.
type Product struct {
	MinIncome   decimal.Decimal
	MonthlyFee  decimal.Decimal
	CreditLimit decimal.Decimal
}

// IncomeBands partitions income for the Default rule. The high band is
// unbounded above.
type IncomeBands struct {
	Low     IncomeRange
	Medium  IncomeRange
	HighMin decimal.Decimal
}

// Policy holds every threshold the rules consult. The young client band
// starts at MinimumAge and ends before YoungClientMax.
type Policy struct {
	MinimumAge     int
	YoungClientMax int
	SPYoungAdult   AgeBand
	SPState        string
	NoAnnualFee    Product
	Partner        Product
	Cashback       Product
	IncomeBands    IncomeBands
}

// YoungClient returns the band [MinimumAge, YoungClientMax).
func (p Policy) YoungClient() AgeBand {
	return AgeBand{Min: p.MinimumAge, Max: p.YoungClientMax}
}

// DefaultPolicy returns the reference thresholds. Each product's income
// threshold coincides with the start of the band that introduces it.
func DefaultPolicy() Policy {
	return Policy{
		MinimumAge:     18,
		YoungClientMax: 25,
		SPYoungAdult:   AgeBand{Min: 25, Max: 30},
		SPState:        "SP",
		NoAnnualFee: Product{
			MinIncome:   decimal.RequireFromString("1000.00"),
			MonthlyFee:  decimal.RequireFromString("0.00"),
			CreditLimit: decimal.RequireFromString("1000.00"),
		},
		Partner: Product{
			MinIncome:   decimal.RequireFromString("3000.00"),
			MonthlyFee:  decimal.RequireFromString("20.00"),
			CreditLimit: decimal.RequireFromString("3000.00"),
		},
		Cashback: Product{
			MinIncome:   decimal.RequireFromString("5000.00"),
			MonthlyFee:  decimal.RequireFromString("15.00"),
			CreditLimit: decimal.RequireFromString("5000.00"),
		},
		IncomeBands: IncomeBands{
			Low: IncomeRange{
				Min: decimal.RequireFromString("1000.00"),
				Max: decimal.RequireFromString("3000.00"),
			},
			Medium: IncomeRange{
				Min: decimal.RequireFromString("3000.00"),
				Max: decimal.RequireFromString("5000.00"),
			},
			HighMin: decimal.RequireFromString("5000.00"),
		},
	}
}

// Validate checks internal consistency. Income bands must be contiguous:
// Low.Min < Low.Max == Medium.Min < Medium.Max == HighMin.
func (p Policy) Validate() error {
	var problems []error

	if p.MinimumAge < 0 {
		problems = append(problems, fmt.Errorf("minimum age must not be negative, got %d", p.MinimumAge))
	}
	if young := p.YoungClient(); young.Min >= young.Max {
		problems = append(problems, fmt.Errorf("young client age band [%d,%d) is empty", young.Min, young.Max))
	}
	if p.SPYoungAdult.Min >= p.SPYoungAdult.Max {
		problems = append(problems, fmt.Errorf("sp young adult age band [%d,%d) is empty", p.SPYoungAdult.Min, p.SPYoungAdult.Max))
	}
	if len(strings.TrimSpace(p.SPState)) != 2 {
		problems = append(problems, fmt.Errorf("state code %q must have 2 letters", p.SPState))
	}
	products := []struct {
		card    CardType
		product Product
	}{
		{CardNoAnnualFee, p.NoAnnualFee},
		{CardPartner, p.Partner},
		{CardCashback, p.Cashback},
	}
	for _, entry := range products {
		pr := entry.product
		if pr.MinIncome.IsNegative() || pr.MonthlyFee.IsNegative() || pr.CreditLimit.IsNegative() {
			problems = append(problems, fmt.Errorf("%s product has negative amounts", entry.card))
		}
	}

	b := p.IncomeBands
	if !b.Low.Min.LessThan(b.Low.Max) {
		problems = append(problems, fmt.Errorf("low band [%s,%s) is empty", b.Low.Min, b.Low.Max))
	}
	if !b.Low.Max.Equal(b.Medium.Min) {
		problems = append(problems, fmt.Errorf("gap between low band end %s and medium band start %s", b.Low.Max, b.Medium.Min))
	}
	if !b.Medium.Min.LessThan(b.Medium.Max) {
		problems = append(problems, fmt.Errorf("medium band [%s,%s) is empty", b.Medium.Min, b.Medium.Max))
	}
	if !b.Medium.Max.Equal(b.HighMin) {
		problems = append(problems, fmt.Errorf("gap between medium band end %s and high band start %s", b.Medium.Max, b.HighMin))
	}
	if b.Low.Min.IsNegative() {
		problems = append(problems, errors.New("low band starts below zero"))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidPolicy, errors.Join(problems...))
}
