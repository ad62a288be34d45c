package handler

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"cartoes/internal/cardapplication/service"
	"cartoes/internal/eligibility"
)

const requestedAtLayout = "2006-01-02T15:04:05.000"

var cardTypeWire = map[eligibility.CardType]string{
	eligibility.CardNoAnnualFee: "CARTAO_SEM_ANUIDADE",
	eligibility.CardPartner:     "CARTAO_DE_PARCEIROS",
	eligibility.CardCashback:    "CARTAO_COM_CASHBACK",
}

var offerStatusWire = map[eligibility.OfferStatus]string{
	eligibility.StatusApproved: "APROVADO",
	eligibility.StatusDenied:   "NEGADO",
}

// SubmitResponse is the HTTP response for POST /cartoes.
type SubmitResponse struct {
	ApplicationID string          `json:"numero_solicitacao"`
	RequestedAt   string          `json:"data_solicitacao"`
	Client        ClientResponse  `json:"cliente"`
	Offers        []OfferResponse `json:"cartoes_ofertados"`
}

type ClientResponse struct {
	Name          string      `json:"nome"`
	CPF           string      `json:"cpf"`
	Age           int         `json:"idade"`
	BirthDate     string      `json:"data_nascimento"`
	State         string      `json:"uf"`
	MonthlyIncome json.Number `json:"renda_mensal"`
	Email         string      `json:"email"`
	Phone         string      `json:"telefone_whatsapp"`
}

type OfferResponse struct {
	CardType    string      `json:"tipo_cartao"`
	MonthlyFee  json.Number `json:"valor_anuidade_mensal"`
	CreditLimit json.Number `json:"valor_limite_disponivel"`
	Status      string      `json:"status"`
}

// FromSubmission converts a submission to its wire form. Timestamps are UTC
// without zone suffix, money is a JSON number with two decimals.
func FromSubmission(sub *service.Submission) *SubmitResponse {
	offers := make([]OfferResponse, 0, len(sub.Offers))
	for _, o := range sub.Offers {
		offers = append(offers, OfferResponse{
			CardType:    cardTypeWire[o.Card],
			MonthlyFee:  amount(o.MonthlyFee),
			CreditLimit: amount(o.CreditLimit),
			Status:      offerStatusWire[o.Status],
		})
	}

	c := sub.Client
	return &SubmitResponse{
		ApplicationID: sub.ID.String(),
		RequestedAt:   sub.RequestedAt.UTC().Format(requestedAtLayout),
		Client: ClientResponse{
			Name:          c.Name,
			CPF:           c.CPF,
			Age:           c.Age,
			BirthDate:     c.BirthDate.Format(service.BirthDateLayout),
			State:         c.State,
			MonthlyIncome: amount(c.MonthlyIncome),
			Email:         c.Email,
			Phone:         c.Phone,
		},
		Offers: offers,
	}
}

func amount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
