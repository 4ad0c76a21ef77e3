package domain

// CompanyDraft — данные компании из заявки на онбординг.
type CompanyDraft struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone,omitempty"`
	Address             string `json:"address,omitempty"`
	RCN                 string `json:"rcn,omitempty"`
	TIN                 string `json:"tin,omitempty"`
	AccountNo           string `json:"account_no,omitempty"`
	DailyTransferLimit  string `json:"daily_transfer_limit,omitempty"`
	SingleTransferLimit string `json:"single_transfer_limit,omitempty"`
}

// UserDraft — пользователь, которого заявка предлагает завести.
// ID и таймстемпы назначаются только при применении одобренной заявки.
type UserDraft struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

// CompanyOnboardingPayload — онбординг компании вместе с первичными пользователями.
type CompanyOnboardingPayload struct {
	Company CompanyDraft `json:"company"`
	Users   []UserDraft  `json:"users,omitempty"`
}

// Поддерживаемые операции mandate_update. Список расширяемый.
const MandateAddUser = "add_user"

// MandateUpdatePayload — изменение списка уполномоченных пользователей компании.
type MandateUpdatePayload struct {
	CompanyID string    `json:"companyId"`
	Action    string    `json:"action"`
	User      UserDraft `json:"user"`
}

// AccountUnlockPayload — запрос на разблокировку пользователя.
type AccountUnlockPayload struct {
	UserID string `json:"userId"`
	Reason string `json:"reason,omitempty"`
}
