package eligibility

// Rule is one segmentation strategy. Applies and Offers are pure functions of
// the profile.
type Rule interface {
	Name() string
	Applies(p Profile) bool
	Offers(p Profile) []Offer
}

const (
	RuleYoungClient  = "young_client"
	RuleSPYoungAdult = "sp_young_adult"
	RuleOtherSP      = "sp_other"
	RuleDefault      = "default"
)

// YoungClientRule targets applicants from the minimum age up to the young
// client limit. They may only receive the no-annual-fee card.
type YoungClientRule struct {
	policy Policy
}

func NewYoungClientRule(policy Policy) *YoungClientRule {
	return &YoungClientRule{policy: policy}
}

func (r *YoungClientRule) Name() string { return RuleYoungClient }

func (r *YoungClientRule) Applies(p Profile) bool {
	return r.policy.YoungClient().Contains(p.Age)
}

func (r *YoungClientRule) Offers(p Profile) []Offer {
	return offerIfEligible(make([]Offer, 0, 1), CardNoAnnualFee, r.policy.NoAnnualFee, p.MonthlyIncome)
}

// SPYoungAdultRule matches residents of the configured state inside the young
// adult band. It grants exactly what the Default rule would.
type SPYoungAdultRule struct {
	policy   Policy
	fallback *DefaultRule
}

func NewSPYoungAdultRule(policy Policy, fallback *DefaultRule) *SPYoungAdultRule {
	return &SPYoungAdultRule{policy: policy, fallback: fallback}
}

func (r *SPYoungAdultRule) Name() string { return RuleSPYoungAdult }

func (r *SPYoungAdultRule) Applies(p Profile) bool {
	return p.InState(r.policy.SPState) && r.policy.SPYoungAdult.Contains(p.Age)
}

func (r *SPYoungAdultRule) Offers(p Profile) []Offer {
	return r.fallback.Offers(p)
}

// OtherSPRule covers the remaining residents of the configured state. The
// partner card is never offered here.
type OtherSPRule struct {
	policy Policy
}

func NewOtherSPRule(policy Policy) *OtherSPRule {
	return &OtherSPRule{policy: policy}
}

func (r *OtherSPRule) Name() string { return RuleOtherSP }

func (r *OtherSPRule) Applies(p Profile) bool {
	return p.InState(r.policy.SPState) && !r.policy.SPYoungAdult.Contains(p.Age)
}

func (r *OtherSPRule) Offers(p Profile) []Offer {
	offers := make([]Offer, 0, 2)
	offers = offerIfEligible(offers, CardNoAnnualFee, r.policy.NoAnnualFee, p.MonthlyIncome)
	return offerIfEligible(offers, CardCashback, r.policy.Cashback, p.MonthlyIncome)
}

// DefaultRule applies to everyone. The income band decides which products are
// considered, then each product's own threshold gates it.
type DefaultRule struct {
	policy Policy
}

func NewDefaultRule(policy Policy) *DefaultRule {
	return &DefaultRule{policy: policy}
}

func (r *DefaultRule) Name() string { return RuleDefault }

func (r *DefaultRule) Applies(Profile) bool { return true }

func (r *DefaultRule) Offers(p Profile) []Offer {
	income := p.MonthlyIncome
	bands := r.policy.IncomeBands
	offers := make([]Offer, 0, 3)

	switch {
	case bands.Low.Contains(income):
		offers = offerIfEligible(offers, CardNoAnnualFee, r.policy.NoAnnualFee, income)
	case bands.Medium.Contains(income):
		offers = offerIfEligible(offers, CardNoAnnualFee, r.policy.NoAnnualFee, income)
		offers = offerIfEligible(offers, CardPartner, r.policy.Partner, income)
	case income.GreaterThanOrEqual(bands.HighMin):
		offers = offerIfEligible(offers, CardNoAnnualFee, r.policy.NoAnnualFee, income)
		offers = offerIfEligible(offers, CardPartner, r.policy.Partner, income)
		offers = offerIfEligible(offers, CardCashback, r.policy.Cashback, income)
	}
	return offers
}
