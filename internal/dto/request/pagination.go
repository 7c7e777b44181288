package request

import (
	"net/http"

	"movie-booking/pkg/utils"
)

type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"per_page" validate:"min=1,max=100"`
}

// PaginationFromQuery reads ?page= and ?per_page=, falling back to 1 and 10.
func PaginationFromQuery(r *http.Request) PaginatedRequest {
	q := r.URL.Query()
	return PaginatedRequest{
		Page:    utils.ParseInt(q.Get("page"), 1),
		PerPage: utils.ParseInt(q.Get("per_page"), utils.DefaultPerPage),
	}
}

func (p PaginatedRequest) Offset() int {
	return utils.PageOffset(p.Page, p.Limit())
}

func (p PaginatedRequest) Limit() int {
	return utils.ClampPerPage(p.PerPage)
}
