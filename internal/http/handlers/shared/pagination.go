package shared

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// NormalizePagination 归一化分页参数。
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// ParsePagination 读取 page 与 pageSize 查询参数，兼容 page_size。
func ParsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(strings.TrimSpace(c.Query("page")))
	rawSize := strings.TrimSpace(c.Query("pageSize"))
	if rawSize == "" {
		rawSize = strings.TrimSpace(c.Query("page_size"))
	}
	pageSize, _ := strconv.Atoi(rawSize)
	return NormalizePagination(page, pageSize)
}

// ParseOptionalBool 解析可选布尔查询参数，空值或非法值返回 nil。
func ParseOptionalBool(raw string) *bool {
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &value
}
