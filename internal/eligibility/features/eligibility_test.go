package features

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"cartoes/internal/eligibility"
	dErrors "cartoes/pkg/domain-errors"
)

type eligibilityTestContext struct {
	evaluator *eligibility.Evaluator
	today     time.Time
	profile   eligibility.Profile
	result    eligibility.Result
	err       error
}

func (c *eligibilityTestContext) reset() {
	c.evaluator = nil
	c.today = time.Time{}
	c.profile = eligibility.Profile{}
	c.result = eligibility.Result{}
	c.err = nil
}

func (c *eligibilityTestContext) theReferenceEligibilityPolicy() error {
	policy := eligibility.DefaultPolicy()
	if err := policy.Validate(); err != nil {
		return err
	}
	c.evaluator = eligibility.NewEvaluator(eligibility.NewStandardChain(policy), policy.MinimumAge)
	return nil
}

func (c *eligibilityTestContext) todayIs(day string) error {
	t, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return err
	}
	c.today = t
	return nil
}

func (c *eligibilityTestContext) anApplicantAgedLivingInEarning(age int, state, income string) error {
	birth := time.Date(c.today.Year()-age, time.January, 10, 0, 0, 0, 0, time.UTC)
	return c.anApplicantDeclaringAgeBornOnLivingInEarning(age, birth.Format(time.DateOnly), state, income)
}

func (c *eligibilityTestContext) anApplicantDeclaringAgeBornOnLivingInEarning(age int, born, state, income string) error {
	birth, err := time.Parse(time.DateOnly, born)
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(income)
	if err != nil {
		return err
	}
	c.profile = eligibility.Profile{
		Name:          "Ana Souza",
		CPF:           "529.982.247-25",
		Age:           age,
		BirthDate:     birth,
		State:         state,
		MonthlyIncome: amount,
		Email:         "ana@example.com",
		Phone:         "+5511988887777",
	}
	return nil
}

func (c *eligibilityTestContext) theApplicationIsEvaluated() error {
	if c.err = c.evaluator.Validate(c.profile, c.today); c.err != nil {
		return nil
	}
	c.result, c.err = c.evaluator.Evaluate(c.profile)
	return nil
}

func (c *eligibilityTestContext) theRuleIsSelected(rule string) error {
	if c.err != nil {
		return fmt.Errorf("expected rule %q but evaluation failed: %v", rule, c.err)
	}
	if c.result.Rule != rule {
		return fmt.Errorf("expected rule %q, got %q", rule, c.result.Rule)
	}
	return nil
}

func (c *eligibilityTestContext) theOfferedCardsAre(list string) error {
	if c.err != nil {
		return fmt.Errorf("expected offers but evaluation failed: %v", c.err)
	}
	want := strings.Split(list, ",")
	if len(want) != len(c.result.Offers) {
		return fmt.Errorf("expected %d offers (%s), got %d", len(want), list, len(c.result.Offers))
	}
	for i, card := range want {
		if got := string(c.result.Offers[i].Card); got != strings.TrimSpace(card) {
			return fmt.Errorf("offer %d: expected %q, got %q", i, strings.TrimSpace(card), got)
		}
	}
	return nil
}

func (c *eligibilityTestContext) noCardIsOffered() error {
	if c.err != nil {
		return fmt.Errorf("expected no offers but evaluation failed: %v", c.err)
	}
	if len(c.result.Offers) != 0 {
		return fmt.Errorf("expected no offers, got %d", len(c.result.Offers))
	}
	return nil
}

func (c *eligibilityTestContext) theOfferHasMonthlyFeeAndLimit(card, fee, limit string) error {
	for _, offer := range c.result.Offers {
		if string(offer.Card) != card {
			continue
		}
		if got := offer.MonthlyFee.StringFixed(2); got != fee {
			return fmt.Errorf("%s: expected monthly fee %s, got %s", card, fee, got)
		}
		if got := offer.CreditLimit.StringFixed(2); got != limit {
			return fmt.Errorf("%s: expected limit %s, got %s", card, limit, got)
		}
		return nil
	}
	return fmt.Errorf("no %q offer", card)
}

func (c *eligibilityTestContext) everyOfferIsApproved() error {
	for _, offer := range c.result.Offers {
		if offer.Status != eligibility.StatusApproved {
			return fmt.Errorf("%s offer has status %s", offer.Card, offer.Status)
		}
	}
	return nil
}

func (c *eligibilityTestContext) theApplicationIsRejectedAsABusinessRuleViolation() error {
	if c.err == nil {
		return errors.New("expected evaluation to fail but it succeeded")
	}
	if !dErrors.HasCode(c.err, dErrors.CodeBusinessRule) {
		return fmt.Errorf("expected business rule violation, got %v", c.err)
	}
	return nil
}

func (c *eligibilityTestContext) theErrorMentions(fragment string) error {
	if c.err == nil {
		return errors.New("expected error but evaluation succeeded")
	}
	if !strings.Contains(c.err.Error(), fragment) {
		return fmt.Errorf("expected error to mention %q, got %q", fragment, c.err.Error())
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &eligibilityTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^the reference eligibility policy$`, tc.theReferenceEligibilityPolicy)
	ctx.Step(`^today is "([^"]*)"$`, tc.todayIs)
	ctx.Step(`^an applicant aged (\d+) living in "([^"]*)" earning ([\d.]+)$`, tc.anApplicantAgedLivingInEarning)
	ctx.Step(`^an applicant declaring age (\d+) born on "([^"]*)" living in "([^"]*)" earning ([\d.]+)$`, tc.anApplicantDeclaringAgeBornOnLivingInEarning)

	ctx.Step(`^the application is evaluated$`, tc.theApplicationIsEvaluated)

	ctx.Step(`^the "([^"]*)" rule is selected$`, tc.theRuleIsSelected)
	ctx.Step(`^the offered cards are "([^"]*)"$`, tc.theOfferedCardsAre)
	ctx.Step(`^no card is offered$`, tc.noCardIsOffered)
	ctx.Step(`^the "([^"]*)" offer has monthly fee ([\d.]+) and limit ([\d.]+)$`, tc.theOfferHasMonthlyFeeAndLimit)
	ctx.Step(`^every offer is approved$`, tc.everyOfferIsApproved)
	ctx.Step(`^the application is rejected as a business rule violation$`, tc.theApplicationIsRejectedAsABusinessRuleViolation)
	ctx.Step(`^the error mentions "([^"]*)"$`, tc.theErrorMentions)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"eligibility.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
