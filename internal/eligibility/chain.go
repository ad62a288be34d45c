package eligibility

import (
	"errors"

	dErrors "cartoes/pkg/domain-errors"
)

// ErrUnresolvable means no rule in the chain applied to the profile.
var ErrUnresolvable = errors.New("no eligibility rule applies")

// Chain selects the first applicable rule. Order is configuration.
type Chain struct {
	rules []Rule
}

// NewChain builds a chain from rules in priority order.
func NewChain(rules ...Rule) *Chain {
	return &Chain{rules: append([]Rule(nil), rules...)}
}

// NewStandardChain wires the production order: young client, SP young adult,
// other SP, default.
func NewStandardChain(policy Policy) *Chain {
	def := NewDefaultRule(policy)
	return NewChain(
		NewYoungClientRule(policy),
		NewSPYoungAdultRule(policy, def),
		NewOtherSPRule(policy),
		def,
	)
}

// Select returns the first rule that applies to p.
func (c *Chain) Select(p Profile) (Rule, error) {
	for _, rule := range c.rules {
		if rule.Applies(p) {
			return rule, nil
		}
	}
	return nil, dErrors.Wrap(ErrUnresolvable, dErrors.CodeBusinessRule, "unable to determine eligible cards for the applicant")
}

// SelectOffers returns the offers of the first applicable rule.
func (c *Chain) SelectOffers(p Profile) ([]Offer, error) {
	rule, err := c.Select(p)
	if err != nil {
		return nil, err
	}
	return rule.Offers(p), nil
}

// RuleNames lists the rules in evaluation order.
func (c *Chain) RuleNames() []string {
	names := make([]string, 0, len(c.rules))
	for _, rule := range c.rules {
		names = append(names, rule.Name())
	}
	return names
}
