package domain

import "time"

// Company — корпоративный клиент банка.
// Появляется либо напрямую (admin1), либо через одобренный company_onboarding.
type Company struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	Address             string    `json:"address"`
	RCN                 string    `json:"rcn"` // регистрационный номер (registration certificate number)
	TIN                 string    `json:"tin"` // налоговый идентификатор
	AccountNo           string    `json:"account_no"`
	DailyTransferLimit  string    `json:"daily_transfer_limit"`
	SingleTransferLimit string    `json:"single_transfer_limit"`
	CreatedAt           time.Time `json:"createdAt"`
}
