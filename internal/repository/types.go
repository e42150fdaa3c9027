package repository

import "time"

// StationListFilter 站点列表过滤条件
type StationListFilter struct {
	Page       int
	PageSize   int
	Code       string
	Search     string
	OnlyActive bool
}

// CustomerListFilter 顾客列表过滤条件
type CustomerListFilter struct {
	Page     int
	PageSize int
	Search   string
}

// ReviewListFilter 评价列表过滤条件
type ReviewListFilter struct {
	Page       int
	PageSize   int
	StationID  uint
	CustomerID uint
	Flagged    *bool
	From       *time.Time
	To         *time.Time
}

// CouponListFilter 优惠券列表过滤条件
type CouponListFilter struct {
	Page       int
	PageSize   int
	StationID  uint
	CustomerID uint
	Code       string
	Origin     string
	Used       *bool
}

// StatsWindow 统计时间窗口与站点过滤，零值表示不限
type StatsWindow struct {
	StartAt   *time.Time
	EndAt     *time.Time
	StationID uint
}

// AdminAuditLogListFilter 审计日志过滤条件
type AdminAuditLogListFilter struct {
	Page            int
	PageSize        int
	OperatorAdminID uint
	Action          string
	TargetType      string
	TargetID        string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
