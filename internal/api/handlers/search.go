package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"jobscout/internal/api/middleware"
	"jobscout/internal/jobs"
	"jobscout/internal/logging"
	"jobscout/internal/session"
	"jobscout/pkg/models"
)

func stateResponse(c echo.Context, s *session.Session) models.SearchStateResponse {
	st := s.Aggregator.Snapshot()
	resp := models.SearchStateResponse{
		SessionID:       s.ID,
		Query:           st.Query.Raw,
		NormalizedQuery: st.Query.Normalized,
		Filters:         st.Filters,
		Results:         st.Results,
		TotalJobs:       st.TotalJobs,
		TotalUnknown:    st.TotalUnknown,
		HasMore:         st.HasMore(),
		Loading:         st.Loading,
		SavedIDs:        st.SavedIDs(),
		ScrollTarget:    s.Scroll.Target(),
		RequestID:       middleware.RequestID(c),
	}
	if st.Error != "" {
		msg := st.Error
		resp.Error = &msg
	}
	return resp
}

// SearchHandler starts a new search in the caller's session
func SearchHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		s := middleware.Session(c)
		logger := logging.LogWithSession(s.ID).WithField("request_id", middleware.RequestID(c))

		var req models.SearchRequest
		if ce := bindAndValidate(c, &req); ce != nil {
			return respondError(c, ce, "")
		}

		err := s.Aggregator.RunSearch(c.Request().Context(), req.Query, req.Filters)
		switch {
		case errors.Is(err, jobs.ErrSuperseded):
			// a newer search owns the state now
			logger.Debug("Search superseded", map[string]interface{}{"query": req.Query})
		case err != nil:
			return respondError(c, err, s.Aggregator.Snapshot().Error)
		}
		return c.JSON(http.StatusOK, stateResponse(c, s))
	}
}

// LoadMoreHandler fetches the next page of the current search
func LoadMoreHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		s := middleware.Session(c)

		_, err := s.Aggregator.LoadMore(c.Request().Context())
		if err != nil && !errors.Is(err, jobs.ErrSuperseded) {
			return respondError(c, err, s.Aggregator.Snapshot().Error)
		}
		return c.JSON(http.StatusOK, stateResponse(c, s))
	}
}

// SearchStateHandler returns the session's current search state
func SearchStateHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, stateResponse(c, middleware.Session(c)))
	}
}
