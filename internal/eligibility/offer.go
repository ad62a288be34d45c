package eligibility

import "github.com/shopspring/decimal"

// CardType is the closed set of card products.
type CardType string

const (
	CardNoAnnualFee CardType = "no_annual_fee"
	CardPartner     CardType = "partner"
	CardCashback    CardType = "cashback"
)

// OfferStatus is the decision attached to an offer. Rules only emit approved
// offers; denied exists for the wire contract.
type OfferStatus string

const (
	StatusApproved OfferStatus = "approved"
	StatusDenied   OfferStatus = "denied"
)

type Offer struct {
	Card        CardType
	MonthlyFee  decimal.Decimal
	CreditLimit decimal.Decimal
	Status      OfferStatus
}

// offerIfEligible appends the product's approved offer when income reaches
// its threshold. Equality qualifies.
func offerIfEligible(offers []Offer, card CardType, product Product, income decimal.Decimal) []Offer {
	if income.LessThan(product.MinIncome) {
		return offers
	}
	return append(offers, Offer{
		Card:        card,
		MonthlyFee:  product.MonthlyFee,
		CreditLimit: product.CreditLimit,
		Status:      StatusApproved,
	})
}
