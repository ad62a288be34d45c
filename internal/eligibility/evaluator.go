package eligibility

import (
	"errors"
	"fmt"
	"time"

	dErrors "cartoes/pkg/domain-errors"
)

var (
	ErrUnderage    = errors.New("applicant is under the minimum age")
	ErrAgeMismatch = errors.New("declared age does not match birth date")
)

// Result is the outcome of an evaluation.
type Result struct {
	Rule   string
	Offers []Offer
}

// Evaluator checks profile invariants and resolves offers through the chain.
type Evaluator struct {
	chain      *Chain
	minimumAge int
}

func NewEvaluator(chain *Chain, minimumAge int) *Evaluator {
	return &Evaluator{chain: chain, minimumAge: minimumAge}
}

// Validate rejects applicants whose birth date puts them under the minimum
// age at now, or whose declared age disagrees with the birth date.
func (e *Evaluator) Validate(p Profile, now time.Time) error {
	computed := AgeAt(p.BirthDate, now)
	if computed < e.minimumAge {
		return dErrors.Wrap(ErrUnderage, dErrors.CodeBusinessRule,
			fmt.Sprintf("applicant must be at least %d years old", e.minimumAge))
	}
	if p.Age != computed {
		return dErrors.Wrap(ErrAgeMismatch, dErrors.CodeBusinessRule,
			fmt.Sprintf("declared age %d does not match birth date (age %d)", p.Age, computed))
	}
	return nil
}

// Evaluate runs the chain against p. Call Validate first.
func (e *Evaluator) Evaluate(p Profile) (Result, error) {
	rule, err := e.chain.Select(p)
	if err != nil {
		return Result{}, err
	}
	return Result{Rule: rule.Name(), Offers: rule.Offers(p)}, nil
}
