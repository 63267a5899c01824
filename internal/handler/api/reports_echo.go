package api

import (
	"net/http"
	"time"

	models "TrendLab/internal/domain/models"
	drepo "TrendLab/internal/domain/repository"
	"TrendLab/internal/service/ratelimit"
	"TrendLab/internal/usecase"
	xhttp "TrendLab/pkg/http"
	xlogger "TrendLab/pkg/logger"

	"github.com/labstack/echo/v4"
)

// per-client budget for the report endpoints
const (
	rateCapacity     = 20
	rateRefillPerSec = 10
)

// ReportsEchoHandler exposes validation results over HTTP.
type ReportsEchoHandler struct {
	logger    *xlogger.Logger
	validator *usecase.Validator
	live      *usecase.LiveEngine
	limiter   *ratelimit.Limiter
}

// NewReportsEchoHandler creates the API handler. live may be nil when the
// stream is disabled.
func NewReportsEchoHandler(logger *xlogger.Logger, validator *usecase.Validator, live *usecase.LiveEngine) *ReportsEchoHandler {
	return &ReportsEchoHandler{
		logger:    logger,
		validator: validator,
		live:      live,
		limiter:   ratelimit.New(),
	}
}

func (h *ReportsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api", h.rateLimit)
	g.GET("/dataset/stats", h.DatasetStats)
	g.GET("/validation/report", h.ValidationReport)
	g.GET("/features/latest", h.LatestFeatures)
	g.GET("/sessions", h.Sessions)
	g.GET("/live/last", h.LastPrediction)
}

func (h *ReportsEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.limiter.Allow(c.RealIP(), rateCapacity, rateRefillPerSec) {
			return c.NoContent(http.StatusTooManyRequests)
		}
		return next(c)
	}
}

func (h *ReportsEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *ReportsEchoHandler) DatasetStats(c echo.Context) error {
	req := &models.DatasetStatsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	latest := h.validator.Latest()
	if latest == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no validation run has completed yet"))
	}
	if req.Symbol != "" && req.Symbol != latest.Dataset.Stats.Symbol {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no dataset for symbol %s", req.Symbol))
	}
	return xhttp.SuccessResponse(c, latest.Dataset.Stats)
}

func (h *ReportsEchoHandler) ValidationReport(c echo.Context) error {
	req := &models.ValidationReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := req.Symbol
	if symbol == "" {
		symbol = h.validator.Symbol()
	}

	report, err := h.validator.Report(c.Request().Context(), symbol)
	if err != nil {
		if err == drepo.ErrCacheMiss {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no report for symbol %s", symbol))
		}
		h.logger.Error("report lookup error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if req.Folds != nil && !*req.Folds {
		trimmed := *report
		trimmed.Folds = nil
		return xhttp.SuccessResponse(c, &trimmed)
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *ReportsEchoHandler) LatestFeatures(c echo.Context) error {
	req := &models.LatestFeaturesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	latest := h.validator.Latest()
	if latest == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no validation run has completed yet"))
	}
	frame := latest.Dataset.Frame
	n := req.N
	if n > frame.Len() {
		n = frame.Len()
	}
	start := frame.Len() - n

	// optional lower bound, snapped to the bar grid
	if since := xhttp.ParseTimeDefault(c.QueryParam("since"), time.Time{}); !since.IsZero() {
		since, _ = xhttp.AlignFromTo(since, since, "15m")
		for start < frame.Len() && latest.Dataset.Candles[start].Timestamp.Before(since) {
			start++
		}
	}

	rows := make([]map[string]interface{}, 0, frame.Len()-start)
	columns := frame.Schema().Columns()
	for i := start; i < frame.Len(); i++ {
		vector := frame.Vector(i)
		row := make(map[string]interface{}, len(columns)+1)
		row["timestamp"] = latest.Dataset.Candles[i].Timestamp
		for c, name := range columns {
			row[name] = vector[c]
		}
		rows = append(rows, row)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *ReportsEchoHandler) Sessions(c echo.Context) error {
	latest := h.validator.Latest()
	if latest == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no validation run has completed yet"))
	}
	return xhttp.SuccessResponse(c, latest.Sessions)
}

func (h *ReportsEchoHandler) LastPrediction(c echo.Context) error {
	if h.live == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("live inference is disabled"))
	}
	pred := h.live.Last()
	if pred == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no live prediction yet"))
	}
	return xhttp.SuccessResponse(c, pred)
}
