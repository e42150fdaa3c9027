package constants

// 优惠券来源
const (
	CouponOriginReview = "review" // 评价满额自动发放
	CouponOriginManual = "manual" // 后台手动发放
)

// 异步任务类型
const (
	TaskCouponIssued            = "coupon:issued"
	TaskCodeSpaceExhaustedAlert = "alert:code_space_exhausted"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 预置后台角色
const (
	RoleReadonlyAuditor = "readonly_auditor"
	RoleCouponOperator  = "coupon_operator"
	RoleModerator       = "moderator"
	RoleStationManager  = "station_manager"
)

// QRPayloadSeparator 二维码组合载荷分隔符（code|name|contact）
const QRPayloadSeparator = "|"

// DateLayout 统计接口日期格式
const DateLayout = "2006-01-02"
