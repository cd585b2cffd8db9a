package usecase

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"SilverFetch/internal/analytics"
	"SilverFetch/internal/domain/models"
	"SilverFetch/internal/domain/repository"
	"SilverFetch/pkg/config"
	"SilverFetch/pkg/logger"
)

// Broadcaster pushes a published snapshot to connected subscribers.
type Broadcaster interface {
	Broadcast(snap *models.Snapshot)
}

// Scheduler drives the fetch, compute, publish cycle. Cycles run strictly
// sequentially; within a cycle, timeframes are evaluated concurrently. The
// latest snapshot is held behind an atomic pointer so readers never block on
// an in-flight cycle.
type Scheduler struct {
	cfg        *config.Config
	aggregator *Aggregator
	candles    repository.CandleProvider
	engine     *ScoringEngine
	narrative  repository.NarrativeService
	broadcast  Broadcaster
	sinks      []repository.SnapshotSink
	log        *logger.Logger
	metrics    repository.Metrics

	current atomic.Pointer[models.Snapshot]
}

func NewScheduler(
	cfg *config.Config,
	aggregator *Aggregator,
	candles repository.CandleProvider,
	engine *ScoringEngine,
	narrative repository.NarrativeService,
	sinks []repository.SnapshotSink,
	log *logger.Logger,
	metrics repository.Metrics,
) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		aggregator: aggregator,
		candles:    candles,
		engine:     engine,
		narrative:  narrative,
		sinks:      sinks,
		log:        log,
		metrics:    metrics,
	}
}

// SetBroadcaster attaches the subscriber hub. The hub needs the scheduler as
// its snapshot source, so this is wired after construction. Must be called
// before Run.
func (s *Scheduler) SetBroadcaster(b Broadcaster) { s.broadcast = b }

// Current returns the last published snapshot, or nil before the first cycle
// completes. The returned snapshot is read-only.
func (s *Scheduler) Current() *models.Snapshot {
	return s.current.Load()
}

// Run executes cycles until ctx is cancelled. The first cycle starts
// immediately; subsequent cycles follow the configured interval.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("scheduler starting",
		logger.Duration("interval", s.cfg.Refresh.Interval),
		logger.Int("timeframes", len(s.cfg.Timeframes)))

	ticker := time.NewTicker(s.cfg.Refresh.Interval)
	defer ticker.Stop()

	s.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	start := time.Now()
	degraded := false

	quote, err := s.aggregator.Blend(ctx)
	if err != nil {
		prev := s.current.Load()
		if prev == nil {
			s.log.Error("cycle skipped, no price and no previous snapshot", logger.Error(err))
			return
		}
		// Reuse the previous quote rather than fabricating a price, and say so.
		s.log.Warn("all sources failed, reusing previous quote", logger.Error(err))
		quote = prev.Quote
		degraded = true
	}

	positions := s.evaluateTimeframes(ctx, quote.Average)
	if len(positions) == 0 {
		s.log.Error("cycle produced no positions, snapshot not published")
		s.metrics.RecordError("empty_cycle")
		return
	}

	sentiment := s.deriveSentiment(positions)
	for i := range positions {
		positions[i].FearGreedValue = float64(sentiment.Value)
		positions[i].FearGreedClassification = sentiment.Classification
	}

	snap := &models.Snapshot{
		Timestamp: time.Now().UTC(),
		Positions: positions,
		Quote:     quote,
		Sentiment: sentiment,
		Degraded:  degraded,
	}

	narrative, ok := s.fetchNarrative(ctx, snap)
	snap.Narrative = narrative
	if !ok {
		snap.Degraded = true
	}

	s.current.Store(snap)
	if s.broadcast != nil {
		s.broadcast.Broadcast(snap)
	}
	s.publishToSinks(snap)

	s.metrics.RecordCycle(time.Since(start).Seconds(), len(positions))
	s.log.Info("cycle published",
		logger.Float64("price", quote.Average),
		logger.Int("positions", len(positions)),
		logger.Bool("degraded", snap.Degraded),
		logger.Duration("took", time.Since(start)))
}

// evaluateTimeframes computes one Position per configured timeframe,
// concurrently. A timeframe that fails is omitted from this cycle rather
// than failing the whole cycle.
func (s *Scheduler) evaluateTimeframes(ctx context.Context, price float64) []models.Position {
	results := make([]*models.Position, len(s.cfg.Timeframes))

	g, gctx := errgroup.WithContext(ctx)
	for i, tfc := range s.cfg.Timeframes {
		g.Go(func() error {
			pos, err := s.evaluateOne(gctx, tfc, price)
			if err != nil {
				s.log.Warn("timeframe evaluation failed",
					logger.String("timeframe", tfc.ID),
					logger.Error(err))
				s.metrics.RecordError("timeframe_failed")
				return nil
			}
			results[i] = pos
			return nil
		})
	}
	g.Wait()

	positions := make([]models.Position, 0, len(results))
	for _, p := range results {
		if p != nil {
			positions = append(positions, *p)
		}
	}
	return positions
}

func (s *Scheduler) evaluateOne(ctx context.Context, tfc config.TimeframeConfig, price float64) (*models.Position, error) {
	tf := repository.Timeframe(tfc.ID)
	candles, err := s.candles.Candles(ctx, tf, tfc.Candles, price)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, repository.ErrInsufficientHistory
	}

	result := analytics.Compute(candles)
	levels := analytics.DetectLevels(candles, price, analytics.LevelConfig{
		SwingWindow:         s.cfg.Scoring.SwingWindow,
		ClusterTolerancePct: s.cfg.Scoring.ClusterTolerancePct,
		MaxLevels:           s.cfg.Scoring.MaxLevels,
	})
	ev := s.engine.Evaluate(price, result.Set, levels)

	pos := &models.Position{
		Timeframe:     tfc.ID,
		TimeframeName: tfc.Label,
		Timestamp:     time.Now().UTC(),
		CurrentPrice:  price,

		Recommendation: ev.Recommendation,
		Action:         ev.Action,
		Confidence:     ev.Confidence,
		Score:          ev.Score,
		MaxScore:       ev.MaxScore,

		Entry:           ev.Entry,
		StopLoss:        ev.StopLoss,
		TakeProfit1:     ev.TakeProfit1,
		TakeProfit2:     ev.TakeProfit2,
		TakeProfit3:     ev.TakeProfit3,
		RiskPct:         ev.RiskPct,
		RewardPct:       ev.RewardPct,
		RiskRewardRatio: ev.RiskRewardRatio,

		Indicators:       result.Set,
		SupportLevels:    levels.Supports,
		ResistanceLevels: levels.Resistances,
		Reasons:          ev.Reasons,
		TechnicalDetails: ev.Details,

		Chart: buildChart(candles, result.Series),
	}
	return pos, nil
}

// deriveSentiment reads the base timeframe's RSI. Falls back to the first
// available position when the base timeframe was omitted this cycle.
func (s *Scheduler) deriveSentiment(positions []models.Position) models.Sentiment {
	base := string(repository.DefaultTimeframe())
	for _, p := range positions {
		if p.Timeframe == base {
			return DeriveSentiment(p.Indicators.RSI)
		}
	}
	return DeriveSentiment(positions[0].Indicators.RSI)
}

// fetchNarrative asks the narrative service with a hard timeout. On any
// failure it substitutes a deterministic fallback so the snapshot still
// publishes on schedule. The bool result reports whether the narrative is
// live.
func (s *Scheduler) fetchNarrative(ctx context.Context, snap *models.Snapshot) (models.Narrative, bool) {
	nctx, cancel := context.WithTimeout(ctx, s.cfg.Narrative.Timeout)
	defer cancel()

	start := time.Now()
	narrative, err := s.narrative.Summarize(nctx, buildNarrativeRequest(snap))
	s.metrics.RecordLatency("narrative", time.Since(start).Seconds())
	if err != nil {
		s.log.Warn("narrative unavailable, using fallback", logger.Error(err))
		s.metrics.RecordError("narrative_failed")
		return fallbackNarrative(snap), false
	}
	return narrative, true
}

func buildNarrativeRequest(snap *models.Snapshot) models.NarrativeRequest {
	req := models.NarrativeRequest{
		Price:      snap.Quote.Average,
		ChangePct:  snap.Quote.ChangePct,
		SpreadPct:  snap.Quote.SpreadPct,
		Timeframes: make(map[string]models.TimeframeSignal, len(snap.Positions)),
	}
	for _, p := range snap.Positions {
		req.Timeframes[p.Timeframe] = models.TimeframeSignal{Score: p.Score, Action: p.Action}
	}
	if best := snap.BestPosition(); best != nil {
		req.BestSignal = &models.TimeframeSignal{Score: best.Score, Action: best.Action}
		req.Supports = best.SupportLevels
		req.Resists = best.ResistanceLevels
	}
	return req
}

// fallbackNarrative is deterministic and derived only from the snapshot, so
// a dead narrative service degrades the summary without changing timing.
func fallbackNarrative(snap *models.Snapshot) models.Narrative {
	headline := fmt.Sprintf("Silver at $%.2f", snap.Quote.Average)
	body := fmt.Sprintf("Silver is trading at $%.2f per troy ounce (%+.2f%% vs last cycle). Sentiment: %s.",
		snap.Quote.Average, snap.Quote.ChangePct, snap.Sentiment.Classification)
	if best := snap.BestPosition(); best != nil {
		body += fmt.Sprintf(" Strongest signal: %s on the %s timeframe.",
			best.Recommendation, best.TimeframeName)
	}
	return models.Narrative{Status: "fallback", Headline: headline, Body: body}
}

// publishToSinks hands the snapshot to the optional sinks. Sink latency and
// failures never delay or fail the broadcast path.
func (s *Scheduler) publishToSinks(snap *models.Snapshot) {
	for _, sink := range s.sinks {
		go func(sink repository.SnapshotSink) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := sink.Publish(ctx, snap); err != nil {
				s.log.Warn("snapshot sink failed", logger.Error(err))
				s.metrics.RecordError("sink_failed")
			}
		}(sink)
	}
}

// chartWindow bounds the number of trailing bars carried on each Position so
// snapshot payloads stay small even with deep indicator lookbacks.
const chartWindow = 150

func buildChart(candles []models.Candle, series models.IndicatorSeries) models.ChartData {
	if len(candles) > chartWindow {
		from := len(candles) - chartWindow
		candles = candles[from:]
		series = models.IndicatorSeries{
			EMA12:   series.EMA12[from:],
			EMA26:   series.EMA26[from:],
			SMA50:   series.SMA50[from:],
			BBUpper: series.BBUpper[from:],
			BBLower: series.BBLower[from:],
		}
	}
	chart := models.ChartData{
		Timestamps: make([]string, len(candles)),
		Close:      make([]float64, len(candles)),
		High:       make([]float64, len(candles)),
		Low:        make([]float64, len(candles)),
		Volume:     make([]float64, len(candles)),
		EMA12:      chartSeries(series.EMA12),
		EMA26:      chartSeries(series.EMA26),
		SMA50:      chartSeries(series.SMA50),
		BBUpper:    chartSeries(series.BBUpper),
		BBLower:    chartSeries(series.BBLower),
	}
	for i, c := range candles {
		chart.Timestamps[i] = c.Timestamp.UTC().Format(time.RFC3339)
		chart.Close[i] = c.Close
		chart.High[i] = c.High
		chart.Low[i] = c.Low
		chart.Volume[i] = c.Volume
	}
	return chart
}

// chartSeries converts a NaN-padded series to nullable overlay points.
func chartSeries(series []float64) []*float64 {
	out := make([]*float64, len(series))
	for i, v := range series {
		if math.IsNaN(v) {
			continue
		}
		v := v
		out[i] = &v
	}
	return out
}
