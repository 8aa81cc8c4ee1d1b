package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/evelooter/looter/pkg/esi"
	"github.com/evelooter/looter/pkg/payout"
	"github.com/evelooter/looter/pkg/pipeline"
	"github.com/evelooter/looter/pkg/zkb"
)

// maxWindowDays caps the requested time window.
const maxWindowDays = 30

// ProcessRequest is the /process request body. All fields are optional;
// an empty link reprocesses the last fetched kill set with new settings.
type ProcessRequest struct {
	ZKillLink             string `json:"zkill_link"`
	StartDate             string `json:"start_date"`
	EndDate               string `json:"end_date"`
	Mapping               string `json:"mapping"`
	ExcludedKills         string `json:"excluded_kills"`
	ExcludedBeneficiaries string `json:"excluded_beneficiaries"`
}

// ProcessResponse is the /process response body.
type ProcessResponse struct {
	Report  payout.Report `json:"report"`
	Warning string        `json:"warning,omitempty"`
}

// resultState holds the last successful kill set, shared across requests.
type resultState struct {
	mu    sync.Mutex
	kills []pipeline.Killmail
}

func newResultState() *resultState {
	return &resultState{}
}

func (r *resultState) get() []pipeline.Killmail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kills
}

func (r *resultState) set(kills []pipeline.Killmail) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kills = kills
}

func (s *Server) handleProcess(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}

	start, end, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	warning := ""
	if req.ZKillLink != "" {
		fetched, err := s.fetcher.Fetch(c.Request.Context(), req.ZKillLink, start)
		switch {
		case err == nil:
			s.state.set(fetched)
		case len(s.state.get()) == 0:
			c.JSON(errorStatus(err), gin.H{"error": err.Error()})
			return
		default:
			// Keep showing the previous result set on a failed refresh.
			s.logger.Error().Err(err).Msg("Fetch failed, serving cached result")
			warning = "fetch failed, showing previous result: " + err.Error()
		}
	}

	kills := payout.FilterWindow(s.state.get(), start, end)
	kills = payout.MarkExcluded(kills, payout.ParseIDList(req.ExcludedKills))

	report := payout.Split(kills,
		payout.ParseMapping(req.Mapping),
		payout.ParseNameList(req.ExcludedBeneficiaries))

	c.JSON(http.StatusOK, ProcessResponse{Report: report, Warning: warning})
}

// parseWindow resolves the requested dates, defaulting to the last seven
// days, and enforces the window cap.
func parseWindow(startDate, endDate string) (time.Time, time.Time, error) {
	now := time.Now().UTC()

	start := now.AddDate(0, 0, -7).Truncate(24 * time.Hour)
	if startDate != "" {
		t, err := time.Parse("2006-01-02", startDate)
		if err == nil {
			start = t.UTC()
		}
	}

	end := now
	if endDate != "" {
		t, err := time.Parse("2006-01-02", endDate)
		if err == nil {
			end = t.UTC().Add(24*time.Hour - time.Second)
		}
	}

	if end.Sub(start) > maxWindowDays*24*time.Hour {
		return time.Time{}, time.Time{}, errors.New("timeframe exceeds 30 days, select a shorter range")
	}

	return start, end, nil
}

// errorStatus maps pipeline errors onto HTTP statuses.
func errorStatus(err error) int {
	var unsupported *zkb.UnsupportedKindError
	var listErr *zkb.ListError
	var rateLimited *esi.RateLimitedError

	switch {
	case errors.Is(err, zkb.ErrInvalidLinkFormat), errors.As(err, &unsupported):
		return http.StatusBadRequest
	case errors.As(err, &rateLimited):
		return http.StatusTooManyRequests
	case errors.As(err, &listErr):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}
