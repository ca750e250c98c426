package types

import "time"

// Candle is one OHLCV bar for a symbol/interval/open-time.
// Identity is (Symbol, Interval, OpenTime); rows are never mutated after insert.
type Candle struct {
	Symbol    string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Interval  string    `yaml:"interval" json:"interval" csv:"interval"`
	OpenTime  time.Time `yaml:"open_time" json:"open_time" csv:"open_time"`
	CloseTime time.Time `yaml:"close_time" json:"close_time" csv:"close_time"`
	Open      float64   `yaml:"open" json:"open" csv:"open"`
	High      float64   `yaml:"high" json:"high" csv:"high"`
	Low       float64   `yaml:"low" json:"low" csv:"low"`
	Close     float64   `yaml:"close" json:"close" csv:"close"`
	Volume    float64   `yaml:"volume" json:"volume" csv:"volume"`
}

// IntervalDuration converts a minutes-as-label interval (e.g. "240") to a duration.
func IntervalDuration(interval string) (time.Duration, bool) {
	minutes := 0

	for _, r := range interval {
		if r < '0' || r > '9' {
			return 0, false
		}

		minutes = minutes*10 + int(r-'0')
	}

	if minutes == 0 {
		return 0, false
	}

	return time.Duration(minutes) * time.Minute, true
}
