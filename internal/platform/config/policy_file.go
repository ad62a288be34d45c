package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"cartoes/internal/eligibility"
)

// LoadError describes a policy file that could not be read or applied.
type LoadError struct {
	Op    string
	Path  string
	Field string
	Err   error
}

func (e *LoadError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s %s: field %s: %v", e.Op, e.Path, e.Field, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type yamlPolicy struct {
	MinimumAge   *int             `yaml:"minimum_age"`
	YoungClient  *yamlYoungClient `yaml:"young_client"`
	SPYoungAdult *yamlAgeBand     `yaml:"sp_young_adult"`
	SPState      *string          `yaml:"sp_state"`
	Products     yamlProducts     `yaml:"products"`
	IncomeBands  yamlIncomeBands  `yaml:"income_bands"`
}

// The young client band always starts at minimum_age.
type yamlYoungClient struct {
	Max *int `yaml:"max"`
}

type yamlAgeBand struct {
	Min *int `yaml:"min"`
	Max *int `yaml:"max"`
}

type yamlProducts struct {
	NoAnnualFee *yamlProduct `yaml:"no_annual_fee"`
	Partner     *yamlProduct `yaml:"partner"`
	Cashback    *yamlProduct `yaml:"cashback"`
}

type yamlProduct struct {
	MinIncome   *string `yaml:"min_income"`
	MonthlyFee  *string `yaml:"monthly_fee"`
	CreditLimit *string `yaml:"credit_limit"`
}

type yamlIncomeBands struct {
	Low     *yamlRange `yaml:"low"`
	Medium  *yamlRange `yaml:"medium"`
	HighMin *string    `yaml:"high_min"`
}

type yamlRange struct {
	Min *string `yaml:"min"`
	Max *string `yaml:"max"`
}

// LoadPolicy reads a YAML policy file over eligibility.DefaultPolicy and
// validates the result. An empty path returns the validated defaults.
func LoadPolicy(path string) (eligibility.Policy, error) {
	const op = "config.load_policy"

	policy := eligibility.DefaultPolicy()
	if strings.TrimSpace(path) == "" {
		return policy, policy.Validate()
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return eligibility.Policy{}, &LoadError{Op: op, Path: path, Err: err}
	}

	var dto yamlPolicy
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return eligibility.Policy{}, &LoadError{Op: op, Path: path, Err: err}
	}

	policy, err = applyPolicy(policy, dto)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Op, le.Path = op, path
			return eligibility.Policy{}, le
		}
		return eligibility.Policy{}, &LoadError{Op: op, Path: path, Err: err}
	}
	if err := policy.Validate(); err != nil {
		return eligibility.Policy{}, &LoadError{Op: op, Path: path, Err: err}
	}
	return policy, nil
}

func applyPolicy(p eligibility.Policy, dto yamlPolicy) (eligibility.Policy, error) {
	if dto.MinimumAge != nil {
		p.MinimumAge = *dto.MinimumAge
	}
	if dto.YoungClient != nil && dto.YoungClient.Max != nil {
		p.YoungClientMax = *dto.YoungClient.Max
	}
	applyAgeBand(&p.SPYoungAdult, dto.SPYoungAdult)
	if dto.SPState != nil {
		p.SPState = strings.ToUpper(strings.TrimSpace(*dto.SPState))
	}

	products := []struct {
		name   string
		target *eligibility.Product
		src    *yamlProduct
	}{
		{"products.no_annual_fee", &p.NoAnnualFee, dto.Products.NoAnnualFee},
		{"products.partner", &p.Partner, dto.Products.Partner},
		{"products.cashback", &p.Cashback, dto.Products.Cashback},
	}
	for _, pr := range products {
		if pr.src == nil {
			continue
		}
		if err := setAmount(&pr.target.MinIncome, pr.src.MinIncome, pr.name+".min_income"); err != nil {
			return p, err
		}
		if err := setAmount(&pr.target.MonthlyFee, pr.src.MonthlyFee, pr.name+".monthly_fee"); err != nil {
			return p, err
		}
		if err := setAmount(&pr.target.CreditLimit, pr.src.CreditLimit, pr.name+".credit_limit"); err != nil {
			return p, err
		}
	}

	ranges := []struct {
		name   string
		target *eligibility.IncomeRange
		src    *yamlRange
	}{
		{"income_bands.low", &p.IncomeBands.Low, dto.IncomeBands.Low},
		{"income_bands.medium", &p.IncomeBands.Medium, dto.IncomeBands.Medium},
	}
	for _, r := range ranges {
		if r.src == nil {
			continue
		}
		if err := setAmount(&r.target.Min, r.src.Min, r.name+".min"); err != nil {
			return p, err
		}
		if err := setAmount(&r.target.Max, r.src.Max, r.name+".max"); err != nil {
			return p, err
		}
	}
	if err := setAmount(&p.IncomeBands.HighMin, dto.IncomeBands.HighMin, "income_bands.high_min"); err != nil {
		return p, err
	}
	return p, nil
}

func applyAgeBand(target *eligibility.AgeBand, src *yamlAgeBand) {
	if src == nil {
		return
	}
	if src.Min != nil {
		target.Min = *src.Min
	}
	if src.Max != nil {
		target.Max = *src.Max
	}
}

func setAmount(target *decimal.Decimal, raw *string, field string) error {
	if raw == nil {
		return nil
	}
	v, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return &LoadError{Field: field, Err: err}
	}
	*target = v
	return nil
}
