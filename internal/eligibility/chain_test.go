package eligibility

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "cartoes/pkg/domain-errors"
)

type stubRule struct {
	name    string
	applies bool
	offers  []Offer
	calls   *int
}

func (s stubRule) Name() string { return s.name }

func (s stubRule) Applies(Profile) bool { return s.applies }

func (s stubRule) Offers(Profile) []Offer {
	if s.calls != nil {
		*s.calls++
	}
	return s.offers
}

func TestChainFirstMatchWins(t *testing.T) {
	var secondCalls int
	first := stubRule{name: "first", applies: true, offers: []Offer{{Card: CardPartner}}}
	second := stubRule{name: "second", applies: true, offers: []Offer{{Card: CardCashback}}, calls: &secondCalls}

	chain := NewChain(
		stubRule{name: "skipped", applies: false},
		first,
		second,
	)

	rule, err := chain.Select(Profile{})
	require.NoError(t, err)
	assert.Equal(t, "first", rule.Name())

	offers, err := chain.SelectOffers(Profile{})
	require.NoError(t, err)
	assert.Equal(t, []CardType{CardPartner}, cards(offers), "offers are not merged")
	assert.Zero(t, secondCalls)
}

func TestChainUnresolvable(t *testing.T) {
	chain := NewChain(stubRule{name: "never", applies: false})

	_, err := chain.SelectOffers(Profile{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnresolvable))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBusinessRule))

	_, err = NewChain().Select(Profile{})
	assert.ErrorIs(t, err, ErrUnresolvable)
}

func TestStandardChainOrder(t *testing.T) {
	chain := NewStandardChain(DefaultPolicy())
	assert.Equal(t, []string{RuleYoungClient, RuleSPYoungAdult, RuleOtherSP, RuleDefault}, chain.RuleNames())
}

func TestStandardChainSelection(t *testing.T) {
	chain := NewStandardChain(DefaultPolicy())

	tests := []struct {
		name  string
		age   int
		state string
		want  string
	}{
		{"young client wins over SP", 20, "SP", RuleYoungClient},
		{"young band upper boundary", 24, "RJ", RuleYoungClient},
		{"25 in SP is young adult", 25, "SP", RuleSPYoungAdult},
		{"29 in SP is young adult", 29, "sp", RuleSPYoungAdult},
		{"30 in SP is other SP", 30, "SP", RuleOtherSP},
		{"25 outside SP falls to default", 25, "RJ", RuleDefault},
		{"older outside SP", 45, "MG", RuleDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := chain.Select(applicant(tt.age, tt.state, "4000"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rule.Name())
		})
	}
}

func TestStandardChainLoweredMinimumAge(t *testing.T) {
	policy := DefaultPolicy()
	policy.MinimumAge = 16
	chain := NewStandardChain(policy)

	for _, age := range []int{16, 17} {
		p := applicant(age, "SP", "6000.00")
		rule, err := chain.Select(p)
		require.NoError(t, err)
		assert.Equal(t, RuleYoungClient, rule.Name(), "age %d", age)

		offers, err := chain.SelectOffers(p)
		require.NoError(t, err)
		assert.Equal(t, []CardType{CardNoAnnualFee}, cards(offers))
	}
}

func TestStandardChainIsIdempotent(t *testing.T) {
	chain := NewStandardChain(DefaultPolicy())
	p := applicant(35, "SP", "8000")

	first, err := chain.SelectOffers(p)
	require.NoError(t, err)
	second, err := chain.SelectOffers(p)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStandardChainScenarios(t *testing.T) {
	chain := NewStandardChain(DefaultPolicy())

	tests := []struct {
		name    string
		profile Profile
		rule    string
		want    []CardType
	}{
		{"young client in SP", applicant(20, "SP", "1500.00"), RuleYoungClient, []CardType{CardNoAnnualFee}},
		{"SP young adult medium income", applicant(27, "SP", "4000.00"), RuleSPYoungAdult, []CardType{CardNoAnnualFee, CardPartner}},
		{"other SP high income", applicant(40, "SP", "6000.00"), RuleOtherSP, []CardType{CardNoAnnualFee, CardCashback}},
		{"default high income", applicant(40, "RJ", "6000.00"), RuleDefault, []CardType{CardNoAnnualFee, CardPartner, CardCashback}},
		{"default below low band", applicant(40, "MG", "500.00"), RuleDefault, []CardType{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := chain.Select(tt.profile)
			require.NoError(t, err)
			assert.Equal(t, tt.rule, rule.Name())

			offers, err := chain.SelectOffers(tt.profile)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cards(offers))
		})
	}
}

func TestYoungClientScenarioTerms(t *testing.T) {
	offers, err := NewStandardChain(DefaultPolicy()).SelectOffers(applicant(20, "SP", "1500.00"))
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "0.00", offers[0].MonthlyFee.StringFixed(2))
	assert.Equal(t, "1000.00", offers[0].CreditLimit.StringFixed(2))
	assert.Equal(t, StatusApproved, offers[0].Status)
}
