package admin

import (
	"strings"
	"time"

	handlershared "github.com/station-rewards/internal/http/handlers/shared"
	"github.com/station-rewards/internal/http/response"
	"github.com/station-rewards/internal/repository"

	"github.com/gin-gonic/gin"
)

// CustomerItem 后台顾客列表项
type CustomerItem struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	Contact      string     `json:"contact"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email"`
	Visits       int        `json:"visits"`
	VisitsLeft   int        `json:"visitsLeft"`
	LastReviewAt *time.Time `json:"lastReviewAt"`
}

// GetCustomers 顾客列表，供手动发券选择
func (h *Handler) GetCustomers(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	customers, total, err := h.CustomerService.List(repository.CustomerListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.customer_fetch_failed", err)
		return
	}
	items := make([]CustomerItem, 0, len(customers))
	for _, customer := range customers {
		items = append(items, CustomerItem{
			ID:           customer.ID,
			Name:         customer.Name,
			Contact:      customer.Contact,
			Phone:        customer.Phone,
			Email:        customer.Email,
			Visits:       customer.Visits,
			VisitsLeft:   h.CustomerService.VisitsLeft(customer.Visits),
			LastReviewAt: customer.LastReviewAt,
		})
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}
