package domain

// PortalStats — сводка для главного экрана админки.
type PortalStats struct {
	TotalAdmins    int64 `json:"totalAdmins"`
	TotalCompanies int64 `json:"totalCompanies"`
	TotalUsers     int64 `json:"totalUsers"`
	LockedUsers    int64 `json:"lockedUsers"`

	PendingActions int64 `json:"pendingActions"`
	// Решения за последние 24 часа
	ApprovedToday int64 `json:"approvedToday"`
	RejectedToday int64 `json:"rejectedToday"`
}
