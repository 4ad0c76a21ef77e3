package domain

import "time"

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// CorporateUser — пользователь интернет-банка, привязанный к компании.
type CorporateUser struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Role        string     `json:"role"` // initiator / reviewer / approver
	Status      UserStatus `json:"status"`
	CompanyID   string     `json:"companyId"`
	CompanyName string     `json:"companyName"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLogin   time.Time  `json:"lastLogin"`
}
