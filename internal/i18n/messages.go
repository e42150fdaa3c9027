package i18n

var messages = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":              "Invalid request",
		"error.unauthorized":             "Unauthorized",
		"error.forbidden":                "Permission denied",
		"error.not_found":                "Resource not found",
		"error.internal":                 "Internal server error",
		"error.service_busy":             "Service is busy, please retry shortly",
		"error.jwt_secret_missing":       "Token secret is not configured",
		"error.auth_header_missing":      "Authorization header is missing",
		"error.auth_header_invalid":      "Authorization header is malformed",
		"error.token_invalid":            "Token is invalid or expired",
		"error.token_revoked":            "Token has been revoked, please log in again",
		"error.rate_limit_unavailable":   "Rate limiter unavailable",
		"error.rate_limited":             "Too many requests, please retry in %d seconds",
		"error.login_too_many":           "Too many login attempts, please retry in %d seconds",
		"error.review_too_frequent":      "Too many review submissions, please retry in %d seconds",
		"error.admin_login_invalid":      "Invalid username or password",
		"error.login_failed":             "Login failed",
		"error.captcha_required":         "Captcha is required",
		"error.captcha_invalid":          "Captcha is incorrect",
		"error.captcha_disabled":         "Captcha is disabled",
		"error.captcha_generate_failed":  "Failed to generate captcha",
		"error.review_invalid":           "Review payload is invalid",
		"error.review_rating_invalid":    "Rating must be between 1 and 5",
		"error.review_name_required":     "Name is required",
		"error.review_contact_required":  "Contact is required",
		"error.review_cooldown":          "You can only submit a review once per %dh. Please try again in %s.",
		"error.review_submit_failed":     "Failed to submit review",
		"error.review_not_found":         "Review not found",
		"error.review_fetch_failed":      "Failed to load reviews",
		"error.review_update_failed":     "Failed to update review",
		"error.station_not_found":        "Station not found",
		"error.station_invalid":          "Station payload is invalid",
		"error.station_code_exists":      "Station id already exists",
		"error.station_fetch_failed":     "Failed to load stations",
		"error.station_save_failed":      "Failed to save station",
		"error.customer_not_found":       "Customer not found",
		"error.customer_fetch_failed":    "Failed to load customers",
		"error.phone_required":           "Phone number is required",
		"error.coupon_not_found":         "Coupon not found",
		"error.coupon_already_used":      "Coupon has already been used",
		"error.coupon_code_required":     "Coupon code is required",
		"error.coupon_count_invalid":     "Coupon count must be between 1 and %d",
		"error.coupon_issue_failed":      "Failed to issue coupons",
		"error.coupon_claim_failed":      "Failed to redeem coupon",
		"error.coupon_fetch_failed":      "Failed to load coupons",
		"error.stats_range_invalid":      "Date range is invalid",
		"error.stats_fetch_failed":       "Failed to compute statistics",
		"error.password_invalid":         "Current password is incorrect",
		"error.password_policy":          "Password does not meet the policy",
		"error.password_update_failed":   "Failed to update password",
		"error.admin_exists":             "Admin username already exists",
		"error.admin_not_found":          "Admin not found",
		"error.admin_create_failed":      "Failed to create admin",
		"error.role_invalid":             "Role is invalid",
		"error.role_fetch_failed":        "Failed to load roles",
		"error.role_update_failed":       "Failed to update roles",
		"error.review_station_required":  "Station is required",
		"error.review_location_invalid":  "Location is invalid",
		"error.review_comment_too_long":  "Comment is too long",
		"error.role_builtin_immutable":   "Builtin roles cannot be modified",
		"error.audit_fetch_failed":       "Failed to load audit logs",
		"email.coupon_issued.subject":    "Your reward coupon from %s",
		"email.coupon_issued.body":       "Hi %s,\n\nThanks for reviewing %s. Show this code at the cashier to redeem your reward:\n\n%s\n\nYou have reviewed us %d times. Each coupon can be used once.",
		"email.code_space_alert.subject": "Coupon code space exhausted",
		"email.code_space_alert.body":    "Coupon issuance failed after %d attempts.\n\nCustomer: %d\nStation: %d\nTime: %s\n\nIncrease rewards.code_length or inspect the coupons table.",
	},
	LocaleZH: {
		"error.bad_request":              "请求参数错误",
		"error.unauthorized":             "未登录或登录已失效",
		"error.forbidden":                "无权限访问",
		"error.not_found":                "资源不存在",
		"error.internal":                 "服务器内部错误",
		"error.service_busy":             "服务繁忙，请稍后重试",
		"error.jwt_secret_missing":       "未配置 Token 密钥",
		"error.auth_header_missing":      "缺少认证头",
		"error.auth_header_invalid":      "认证头格式错误",
		"error.token_invalid":            "Token 无效或已过期",
		"error.token_revoked":            "Token 已失效，请重新登录",
		"error.rate_limit_unavailable":   "限流服务不可用",
		"error.rate_limited":             "请求过于频繁，请 %d 秒后重试",
		"error.login_too_many":           "登录尝试次数过多，请 %d 秒后重试",
		"error.review_too_frequent":      "评价提交过于频繁，请 %d 秒后重试",
		"error.admin_login_invalid":      "用户名或密码错误",
		"error.login_failed":             "登录失败",
		"error.captcha_required":         "请输入验证码",
		"error.captcha_invalid":          "验证码错误",
		"error.captcha_disabled":         "验证码未启用",
		"error.captcha_generate_failed":  "验证码生成失败",
		"error.review_invalid":           "评价参数错误",
		"error.review_rating_invalid":    "评分必须在 1 到 5 之间",
		"error.review_name_required":     "请填写姓名",
		"error.review_contact_required":  "请填写联系方式",
		"error.review_cooldown":          "每 %d 小时只能评价一次 (once per %[1]dh)，请在 %s 后重试",
		"error.review_submit_failed":     "评价提交失败",
		"error.review_not_found":         "评价不存在",
		"error.review_fetch_failed":      "评价加载失败",
		"error.review_update_failed":     "评价更新失败",
		"error.station_not_found":        "站点不存在",
		"error.station_invalid":          "站点参数错误",
		"error.station_code_exists":      "站点编号已存在",
		"error.station_fetch_failed":     "站点加载失败",
		"error.station_save_failed":      "站点保存失败",
		"error.customer_not_found":       "顾客不存在",
		"error.customer_fetch_failed":    "顾客加载失败",
		"error.phone_required":           "请填写手机号",
		"error.coupon_not_found":         "优惠券不存在",
		"error.coupon_already_used":      "优惠券已被使用",
		"error.coupon_code_required":     "请提供券码",
		"error.coupon_count_invalid":     "发券数量必须在 1 到 %d 之间",
		"error.coupon_issue_failed":      "发券失败",
		"error.coupon_claim_failed":      "核销失败",
		"error.coupon_fetch_failed":      "优惠券加载失败",
		"error.stats_range_invalid":      "日期范围错误",
		"error.stats_fetch_failed":       "统计数据计算失败",
		"error.password_invalid":         "原密码错误",
		"error.password_policy":          "密码不符合安全策略",
		"error.password_update_failed":   "密码修改失败",
		"error.admin_exists":             "管理员账号已存在",
		"error.admin_not_found":          "管理员不存在",
		"error.admin_create_failed":      "管理员创建失败",
		"error.role_invalid":             "角色不合法",
		"error.role_fetch_failed":        "角色加载失败",
		"error.role_update_failed":       "角色更新失败",
		"error.review_station_required":  "请选择站点",
		"error.review_location_invalid":  "定位信息不合法",
		"error.review_comment_too_long":  "评价内容过长",
		"error.role_builtin_immutable":   "预置角色不可修改",
		"error.audit_fetch_failed":       "审计日志加载失败",
		"email.coupon_issued.subject":    "您在 %s 获得了一张奖励券",
		"email.coupon_issued.body":       "%s 您好：\n\n感谢您对 %s 的评价。请在收银台出示以下券码兑换奖励：\n\n%s\n\n您已累计评价 %d 次，每张券仅可使用一次。",
		"email.code_space_alert.subject": "券码空间耗尽",
		"email.code_space_alert.body":    "发券在尝试 %d 次后失败。\n\n顾客：%d\n站点：%d\n时间：%s\n\n请调大 rewards.code_length 或检查 coupons 表。",
	},
}
