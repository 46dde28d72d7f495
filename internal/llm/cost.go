package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CostUpdater patches the persisted cost of a finished run. Implemented by
// the store.
type CostUpdater interface {
	UpdateRunCost(ctx context.Context, runID string, cost float64) error
}

// PriceFunc resolves the true cost of a run given the model and token total.
// The default uses a static per-model price table; a provider side-channel
// lookup can be plugged in instead.
type PriceFunc func(model string, totalTokens int) float64

// perMillionTokens holds blended input/output prices in USD per 1M tokens.
var perMillionTokens = map[string]float64{
	"gemini-2.5-pro":        6.25,
	"gemini-2.5-flash":      1.25,
	"gemini-2.5-flash-lite": 0.25,
}

// DefaultPrice resolves cost from the static price table, falling back to
// the provisional placeholder rate for unknown models.
func DefaultPrice(model string, totalTokens int) float64 {
	if price, ok := perMillionTokens[model]; ok {
		return float64(totalTokens) * price / 1e6
	}
	return float64(totalTokens) * placeholderCostPerToken
}

// CostResolver performs the second phase of the two-phase cost write: the
// run record is finalized with a provisional estimate, then patched once
// with the resolved figure after a bounded delay. The request path never
// blocks on this.
type CostResolver struct {
	Updater CostUpdater
	Price   PriceFunc
	Delay   time.Duration
	Logger  zerolog.Logger
}

// NewCostResolver builds a resolver with the default price table and delay.
func NewCostResolver(updater CostUpdater, logger zerolog.Logger) *CostResolver {
	return &CostResolver{
		Updater: updater,
		Price:   DefaultPrice,
		Delay:   30 * time.Second,
		Logger:  logger,
	}
}

// Schedule patches the run's cost in the background after the configured
// delay. Returns immediately; failures are logged, never surfaced.
func (r *CostResolver) Schedule(runID, model string, totalTokens int) {
	if r == nil || r.Updater == nil {
		return
	}
	go func() {
		if r.Delay > 0 {
			time.Sleep(r.Delay)
		}
		price := r.Price
		if price == nil {
			price = DefaultPrice
		}
		cost := price(model, totalTokens)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.Updater.UpdateRunCost(ctx, runID, cost); err != nil {
			r.Logger.Warn().Err(err).Str("run_id", runID).Msg("deferred cost update failed")
			return
		}
		r.Logger.Debug().Str("run_id", runID).Float64("cost", cost).Msg("deferred cost resolved")
	}()
}
