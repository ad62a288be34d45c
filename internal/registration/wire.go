package registration

import (
	"encoding/json"
	"time"

	"cartoes/internal/eligibility"
)

type registerRequest struct {
	Client registerClient `json:"cliente"`
}

type registerClient struct {
	Name          string      `json:"nome"`
	CPF           string      `json:"cpf"`
	Age           int         `json:"idade"`
	BirthDate     string      `json:"data_nascimento"`
	State         string      `json:"uf"`
	MonthlyIncome json.Number `json:"renda_mensal"`
	Email         string      `json:"email"`
	Phone         string      `json:"telefone_whatsapp"`
}

type registerResponse struct {
	ClientID string `json:"id_cliente"`
}

func newRegisterRequest(p eligibility.Profile) registerRequest {
	return registerRequest{Client: registerClient{
		Name:          p.Name,
		CPF:           p.CPF,
		Age:           p.Age,
		BirthDate:     p.BirthDate.Format(time.DateOnly),
		State:         p.State,
		MonthlyIncome: json.Number(p.MonthlyIncome.StringFixed(2)),
		Email:         p.Email,
		Phone:         p.Phone,
	}}
}
