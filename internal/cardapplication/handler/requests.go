package handler

import (
	"github.com/shopspring/decimal"

	"cartoes/internal/cardapplication/service"
	dErrors "cartoes/pkg/domain-errors"
)

// SubmitRequest is the HTTP request body for POST /cartoes.
type SubmitRequest struct {
	Client *ClientRequest `json:"cliente"`
}

type ClientRequest struct {
	Name          string           `json:"nome"`
	CPF           string           `json:"cpf"`
	Age           *int             `json:"idade"`
	BirthDate     string           `json:"data_nascimento"`
	State         string           `json:"uf"`
	MonthlyIncome *decimal.Decimal `json:"renda_mensal"`
	Email         string           `json:"email"`
	Phone         string           `json:"telefone_whatsapp"`
}

// Validate only checks the envelope; field rules belong to the service.
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Client == nil {
		return dErrors.NewValidation("invalid client data", map[string]string{"cliente": "is required"})
	}
	return nil
}

func (r *SubmitRequest) ClientData() service.ClientData {
	c := r.Client
	return service.ClientData{
		Name:          c.Name,
		CPF:           c.CPF,
		Age:           c.Age,
		BirthDate:     c.BirthDate,
		State:         c.State,
		MonthlyIncome: c.MonthlyIncome,
		Email:         c.Email,
		Phone:         c.Phone,
	}
}
