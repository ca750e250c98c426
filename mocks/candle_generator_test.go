package mocks

import (
	"testing"
	"time"
)

func TestGenerateProducesValidCandles(t *testing.T) {
	generator := NewCandleGenerator(42)

	config := DefaultGeneratorConfig()
	config.Count = 200

	candles := generator.Generate(config)

	if len(candles) != 200 {
		t.Fatalf("expected 200 candles, got %d", len(candles))
	}

	for i, candle := range candles {
		if candle.High < candle.Low {
			t.Errorf("candle %d: high %f below low %f", i, candle.High, candle.Low)
		}

		if candle.High < candle.Open || candle.High < candle.Close {
			t.Errorf("candle %d: high %f below open/close", i, candle.High)
		}

		if candle.Low > candle.Open || candle.Low > candle.Close {
			t.Errorf("candle %d: low %f above open/close", i, candle.Low)
		}

		if candle.Low <= 0 || candle.Volume <= 0 {
			t.Errorf("candle %d: non-positive low or volume", i)
		}

		if i > 0 {
			if !candle.OpenTime.Equal(candles[i-1].OpenTime.Add(4 * time.Hour)) {
				t.Errorf("candle %d: open time not contiguous", i)
			}

			if candle.Open != candles[i-1].Close {
				t.Errorf("candle %d: open does not continue previous close", i)
			}
		}
	}
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	config := DefaultGeneratorConfig()
	config.Count = 50

	first := NewCandleGenerator(7).Generate(config)
	second := NewCandleGenerator(7).Generate(config)

	for i := range first {
		if first[i].Close != second[i].Close {
			t.Fatalf("candle %d differs across identical seeds", i)
		}
	}
}
