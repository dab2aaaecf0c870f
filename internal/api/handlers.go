package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DwDestiny/StudyAbroadMatcher/internal/feature"
	"github.com/DwDestiny/StudyAbroadMatcher/internal/filtering"
)

type matchRequest struct {
	ProgramID string `json:"program_id" binding:"required"`
	// Features absent from the map take their schema defaults.
	Features map[string]float64 `json:"features"`
}

type recommendRequest struct {
	Features map[string]float64 `json:"features"`
	TopN     int                `json:"top_n"`
	MinScore *float64           `json:"min_score"`
	Exclude  []string           `json:"exclude"`
}

type statusResponse struct {
	Initialized bool              `json:"initialized"`
	Building    bool              `json:"building"`
	BuildID     string            `json:"build_id,omitempty"`
	BuiltAt     *time.Time        `json:"built_at,omitempty"`
	Programs    int               `json:"programs"`
	Skipped     map[string]string `json:"skipped,omitempty"`
}

type rebuildResponse struct {
	BuildID      string            `json:"build_id"`
	Records      int               `json:"records"`
	Programs     int               `json:"programs"`
	Built        []string          `json:"built"`
	Skipped      map[string]string `json:"skipped,omitempty"`
	CappedValues int               `json:"capped_values"`
	Duration     string            `json:"duration"`
}

func (s *Server) match(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	applicant, err := feature.FromMap(req.Features)
	if err != nil {
		s.writeError(c, err)
		return
	}

	result, err := s.system.Score(c.Request.Context(), applicant, req.ProgramID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) recommendHandler(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	applicant, err := feature.FromMap(req.Features)
	if err != nil {
		s.writeError(c, err)
		return
	}

	var filters []filtering.Filter
	if req.MinScore != nil {
		filters = append(filters, filtering.NewMinScore(*req.MinScore))
	}
	if len(req.Exclude) > 0 {
		filters = append(filters, filtering.NewExcludedPrograms(req.Exclude))
	}

	results, err := s.system.Recommend(c.Request.Context(), applicant, req.TopN, filters...)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recommendations": results,
		"count":           len(results),
	})
}

func (s *Server) programs(c *gin.Context) {
	infos, err := s.system.Overview()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"programs": infos,
		"count":    len(infos),
	})
}

func (s *Server) program(c *gin.Context) {
	prof, err := s.system.Lookup(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, prof)
}

func (s *Server) status(c *gin.Context) {
	st := s.system.Status()

	resp := statusResponse{
		Initialized: st.Initialized,
		Building:    st.Building,
		BuildID:     st.BuildID,
		Programs:    st.Programs,
		Skipped:     st.Skipped,
	}
	if !st.BuiltAt.IsZero() {
		resp.BuiltAt = &st.BuiltAt
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) rebuildHandler(c *gin.Context) {
	if s.rebuild == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error":      "rebuilding is not available on this deployment",
			"kind":       "REBUILD_UNAVAILABLE",
			"suggestion": "run the build command on the host instead",
		})
		return
	}

	report, err := s.rebuild(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rebuildResponse{
		BuildID:      report.BuildID,
		Records:      report.Records,
		Programs:     report.Programs,
		Built:        report.Built,
		Skipped:      report.Skipped,
		CappedValues: report.CappedValues,
		Duration:     report.Duration.String(),
	})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
