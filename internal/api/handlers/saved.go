package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"jobscout/internal/api/middleware"
	"jobscout/internal/jobs"
	"jobscout/pkg/models"
	"jobscout/pkg/utils"
)

// SavedJobsHandler lists the session's saved postings in save order
func SavedJobsHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		s := middleware.Session(c)
		saved := s.Aggregator.Snapshot().Saved
		return c.JSON(http.StatusOK, models.SavedJobsResponse{
			SessionID: s.ID,
			Jobs:      saved,
			Count:     len(saved),
		})
	}
}

// ToggleSaveHandler saves or unsaves a posting and persists the set
func ToggleSaveHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		s := middleware.Session(c)

		var req models.ToggleSaveRequest
		if ce := bindAndValidate(c, &req); ce != nil {
			return respondError(c, ce, "")
		}

		saved, err := s.Aggregator.ToggleSave(c.Request().Context(), req.Job)
		if err != nil {
			if jobs.IsValidation(err) || errors.Is(err, jobs.ErrClosed) {
				return respondError(c, err, "")
			}
			return respondError(c, utils.NewStorageError("Could not update saved jobs. Please try again."), "")
		}

		return c.JSON(http.StatusOK, models.ToggleSaveResponse{
			JobID: req.Job.JobID,
			Saved: saved,
		})
	}
}
