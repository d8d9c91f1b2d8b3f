package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"jobscout/internal/api/middleware"
	"jobscout/internal/detail"
	"jobscout/pkg/models"
)

func detailResponse(st detail.State) models.DetailResponse {
	resp := models.DetailResponse{
		Status:  st.Status,
		Job:     st.Job,
		Loading: st.Loading(),
	}
	if st.Error != "" {
		msg := st.Error
		resp.Error = &msg
	}
	return resp
}

// SelectJobHandler selects a posting. Full details load in the background
// unless the posting already carries a description.
func SelectJobHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		s := middleware.Session(c)

		var req models.SelectJobRequest
		if ce := bindAndValidate(c, &req); ce != nil {
			return respondError(c, ce, "")
		}

		s.Aggregator.SelectJob(req.Job)
		return c.JSON(http.StatusOK, detailResponse(s.Detail.State()))
	}
}

// ClearSelectionHandler clears the selected posting
func ClearSelectionHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		s := middleware.Session(c)
		s.Aggregator.ClearSelectedJob()
		return c.JSON(http.StatusOK, detailResponse(s.Detail.State()))
	}
}

// DetailHandler returns the detail view of the selected posting
func DetailHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, detailResponse(middleware.Session(c).Detail.State()))
	}
}
