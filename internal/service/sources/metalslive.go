package sources

import (
	"context"
	"fmt"
	"time"

	"SilverFetch/internal/domain/models"
	"SilverFetch/internal/service/ratelimit"
	"SilverFetch/pkg/config"
	phttp "SilverFetch/pkg/http"
	"SilverFetch/pkg/logger"
)

// APIAdapter fetches from a JSON spot-price API. The payload carries the
// price under either "price" or "rate" depending on the provider.
type APIAdapter struct {
	name    string
	url     string
	client  *phttp.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

func NewAPIAdapter(cfg config.SourceConfig, limiter *ratelimit.Limiter, log *logger.Logger) *APIAdapter {
	return &APIAdapter{
		name:    cfg.Name,
		url:     cfg.URL,
		client:  phttp.NewClient(phttp.WithTimeout(cfg.Timeout)),
		limiter: limiter,
		log:     log,
	}
}

func (a *APIAdapter) Name() string { return a.name }

func (a *APIAdapter) Fetch(ctx context.Context) (models.QuoteObservation, error) {
	if !a.limiter.Allow(a.name, fetchBurst, fetchRefillPerSec) {
		return models.QuoteObservation{}, fmt.Errorf("%s: %w", a.name, ErrThrottled)
	}

	var payload struct {
		Price float64 `json:"price"`
		Rate  float64 `json:"rate"`
	}
	err := a.client.SendAndParse(ctx, &phttp.RequestOptions{
		Method:  phttp.MethodGet,
		URL:     a.url,
		Headers: map[string]string{"User-Agent": browserUserAgent},
	}, &payload)
	if err != nil {
		return models.QuoteObservation{}, fmt.Errorf("%s: %w", a.name, err)
	}

	price := payload.Price
	if price == 0 {
		price = payload.Rate
	}
	if !saneSilverPrice(price) {
		return models.QuoteObservation{}, fmt.Errorf("%s: price %.2f outside sane range", a.name, price)
	}

	a.log.Debug("api spot price",
		logger.String("source", a.name),
		logger.Float64("price", price))
	return models.QuoteObservation{
		Source:     a.name,
		Price:      price,
		Currency:   "USD",
		ObservedAt: time.Now().UTC(),
	}, nil
}
