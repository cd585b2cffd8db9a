package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"SilverFetch/internal/domain/models"
	domrepo "SilverFetch/internal/domain/repository"
	"SilverFetch/internal/handler/ws"
	xhttp "SilverFetch/pkg/http"
	xlogger "SilverFetch/pkg/logger"
)

// SnapshotReader serves the latest published snapshot.
type SnapshotReader interface {
	Current() *models.Snapshot
}

// MarketEchoHandler exposes the snapshot over REST and upgrades websocket
// subscribers onto the hub.
type MarketEchoHandler struct {
	logger   *xlogger.Logger
	source   SnapshotReader
	hub      *ws.Hub
	upgrader websocket.Upgrader
	started  time.Time
}

func NewMarketEchoHandler(logger *xlogger.Logger, source SnapshotReader, hub *ws.Hub, allowedOrigins []string) *MarketEchoHandler {
	return &MarketEchoHandler{
		logger:   logger,
		source:   source,
		hub:      hub,
		upgrader: newUpgrader(allowedOrigins),
		started:  time.Now(),
	}
}

func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowAll := len(allowedOrigins) == 0
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, o := range allowedOrigins {
				if o == origin {
					return true
				}
			}
			return false
		},
	}
}

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/ws", h.WebSocket)

	g := e.Group("/api")
	g.GET("/positions", h.Positions)
	g.GET("/current-price", h.CurrentPrice)
	g.GET("/fear-greed", h.FearGreed)
	g.GET("/summary", h.Summary)
	g.GET("/chart", h.Chart)
	g.GET("/health", h.Health)
}

// snapshot returns the latest snapshot or a 503 before the first cycle.
func (h *MarketEchoHandler) snapshot(c echo.Context) (*models.Snapshot, error) {
	snap := h.source.Current()
	if snap == nil {
		return nil, xhttp.AppErrorResponse(c,
			xhttp.NewAppError("ERR_WARMING_UP", "", "first analysis cycle has not completed yet", http.StatusServiceUnavailable))
	}
	return snap, nil
}

func (h *MarketEchoHandler) Index(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"service": "silverfetch",
		"endpoints": []string{
			"/api/positions", "/api/current-price", "/api/fear-greed",
			"/api/summary", "/api/health", "/ws",
		},
	})
}

// queryTimeframe resolves an optional timeframe parameter. Empty selects the
// default; an unknown value is a client error, not a silent fallback.
func queryTimeframe(raw string) (string, *xhttp.AppError) {
	if raw == "" {
		return string(domrepo.DefaultTimeframe()), nil
	}
	tf := domrepo.Timeframe(raw)
	if !domrepo.IsValidTimeframe(tf) {
		return "", xhttp.BadRequestErrorf("unknown timeframe %q", raw)
	}
	return string(tf), nil
}

// Positions returns all per-timeframe positions, or one when ?timeframe= is
// given.
func (h *MarketEchoHandler) Positions(c echo.Context) error {
	snap, err := h.snapshot(c)
	if snap == nil {
		return err
	}

	if raw := c.QueryParam("timeframe"); raw != "" {
		tf, appErr := queryTimeframe(raw)
		if appErr != nil {
			return xhttp.AppErrorResponse(c, appErr)
		}
		for i := range snap.Positions {
			if snap.Positions[i].Timeframe == tf {
				return xhttp.SuccessResponse(c, snap.Positions[i])
			}
		}
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no position for timeframe %s this cycle", tf))
	}

	return xhttp.SuccessResponse(c, map[string]interface{}{
		"timestamp": snap.Timestamp,
		"positions": snap.Positions,
		"degraded":  snap.Degraded,
	})
}

func (h *MarketEchoHandler) CurrentPrice(c echo.Context) error {
	snap, err := h.snapshot(c)
	if snap == nil {
		return err
	}
	return xhttp.SuccessResponse(c, snap.Quote)
}

func (h *MarketEchoHandler) FearGreed(c echo.Context) error {
	snap, err := h.snapshot(c)
	if snap == nil {
		return err
	}
	return xhttp.SuccessResponse(c, snap.Sentiment)
}

func (h *MarketEchoHandler) Summary(c echo.Context) error {
	snap, err := h.snapshot(c)
	if snap == nil {
		return err
	}
	return xhttp.SuccessResponse(c, snap.Narrative)
}

type chartQuery struct {
	Timeframe string `query:"timeframe"`
	// Bars trims the response to the trailing window; 0 returns everything.
	Bars int `query:"bars" validate:"gte=0,lte=1000"`
}

// Chart returns one timeframe's candle window with indicator overlays,
// optionally trimmed to the trailing ?bars= window.
func (h *MarketEchoHandler) Chart(c echo.Context) error {
	var q chartQuery
	if errs := xhttp.ReadAndValidateRequest(c, &q); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	snap, err := h.snapshot(c)
	if snap == nil {
		return err
	}

	tf, appErr := queryTimeframe(q.Timeframe)
	if appErr != nil {
		return xhttp.AppErrorResponse(c, appErr)
	}
	for i := range snap.Positions {
		if snap.Positions[i].Timeframe != tf {
			continue
		}
		return xhttp.SuccessResponse(c, trimChart(snap.Positions[i].Chart, q.Bars))
	}
	return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no chart for timeframe %s this cycle", tf))
}

// trimChart keeps the trailing n points of every chart series.
func trimChart(chart models.ChartData, n int) models.ChartData {
	total := len(chart.Timestamps)
	if n <= 0 || n >= total {
		return chart
	}
	from := total - n
	return models.ChartData{
		Timestamps: chart.Timestamps[from:],
		Close:      chart.Close[from:],
		High:       chart.High[from:],
		Low:        chart.Low[from:],
		Volume:     chart.Volume[from:],
		EMA12:      chart.EMA12[from:],
		EMA26:      chart.EMA26[from:],
		SMA50:      chart.SMA50[from:],
		BBUpper:    chart.BBUpper[from:],
		BBLower:    chart.BBLower[from:],
	}
}

func (h *MarketEchoHandler) Health(c echo.Context) error {
	status := "starting"
	var lastCycle *time.Time
	degraded := false
	if snap := h.source.Current(); snap != nil {
		status = "ok"
		lastCycle = &snap.Timestamp
		degraded = snap.Degraded
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":      status,
		"degraded":    degraded,
		"last_cycle":  lastCycle,
		"subscribers": h.hub.ClientCount(),
		"uptime_sec":  int(time.Since(h.started).Seconds()),
	})
}

// WebSocket upgrades the connection and hands it to the hub. The hub sends
// the current snapshot immediately so new subscribers are not blind until
// the next cycle.
func (h *MarketEchoHandler) WebSocket(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	h.hub.Register(conn)
	return nil
}
