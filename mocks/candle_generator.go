package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/arcadia-lab/sentinel-trading/internal/types"
)

// CandleGenerator produces realistic OHLCV candle series for tests and
// benchmarks. Use a fixed seed for reproducible results.
type CandleGenerator struct {
	rng *rand.Rand
}

// NewCandleGenerator creates a generator with the given seed.
func NewCandleGenerator(seed int64) *CandleGenerator {
	return &CandleGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how candles are generated.
type GeneratorConfig struct {
	Symbol   string
	Interval string
	// StartTime is the open time of the first candle.
	StartTime time.Time
	// Count is the number of candles to generate.
	Count int
	// InitialPrice is the starting price.
	InitialPrice float64
	// Volatility controls per-candle price movement (0.002 = 0.2%).
	Volatility float64
	// Trend is the total drift distributed across the series.
	Trend float64
	// VolumeBase is the average volume per candle.
	VolumeBase float64
}

// DefaultGeneratorConfig returns sensible defaults for a 4h BTCUSDT series.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:       "BTCUSDT",
		Interval:     "240",
		StartTime:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Count:        1000,
		InitialPrice: 50000,
		Volatility:   0.005,
		Trend:        0,
		VolumeBase:   1000,
	}
}

// Generate creates a chronological candle series following a geometric
// Brownian motion with drift.
func (g *CandleGenerator) Generate(config GeneratorConfig) []types.Candle {
	duration, ok := types.IntervalDuration(config.Interval)
	if !ok {
		duration = 4 * time.Hour
	}

	candles := make([]types.Candle, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for a normally distributed step
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)

		closePrice := open * (1 + config.Volatility*z + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, closePrice) + highExtension

		low := math.Min(open, closePrice) - lowExtension
		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volume := config.VolumeBase * (0.7 + g.rng.Float64()*0.6)

		candles[i] = types.Candle{
			Symbol:    config.Symbol,
			Interval:  config.Interval,
			OpenTime:  currentTime,
			CloseTime: currentTime.Add(duration),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
		}

		currentPrice = closePrice
		currentTime = currentTime.Add(duration)
	}

	return candles
}
