package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/corpus"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/matcher"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/store"
)

// writeError maps domain errors onto HTTP statuses and the tagged error
// body. Anything unrecognized becomes a logged 500.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error()}

	var (
		invalid  *feature.InvalidFeatureError
		unknown  *store.UnknownProgramError
		tooSmall *corpus.InsufficientDataError
		notInit  *store.NotInitializedError
	)
	switch {
	case errors.As(err, &invalid):
		status = http.StatusBadRequest
		body["kind"] = invalid.Kind()
		body["suggestion"] = invalid.Suggestion()
	case errors.As(err, &unknown):
		status = http.StatusNotFound
		body["kind"] = unknown.Kind()
		body["suggestion"] = unknown.Suggestion()
		body["known_programs"] = unknown.Known
	case errors.As(err, &tooSmall):
		status = http.StatusUnprocessableEntity
		body["kind"] = tooSmall.Kind()
		body["suggestion"] = tooSmall.Suggestion()
	case errors.As(err, &notInit):
		status = http.StatusServiceUnavailable
		body["kind"] = notInit.Kind()
		body["suggestion"] = notInit.Suggestion()
		c.Header("Retry-After", "5")
	case errors.Is(err, matcher.ErrBuildInProgress):
		status = http.StatusConflict
		body["kind"] = "BUILD_IN_PROGRESS"
		body["suggestion"] = "wait for the running build to finish and retry"
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	c.JSON(status, body)
}

// writeBindError reports a request body gin could not bind.
func (s *Server) writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":      err.Error(),
		"kind":       "BAD_REQUEST",
		"suggestion": "send a JSON body matching the documented request schema",
	})
}
