package scoring

import (
	"math"

	"github.com/markcheno/go-talib"
)

// minVolatility floors the volatility divisor so flat series do not blow up
// the score.
const minVolatility = 0.0001

// MomentumScore computes the risk-adjusted momentum score for one
// instrument from its daily closes and volumes:
//
//	score = ((1 - volumeWeight) * shortROC + volumeWeight * volumeROC) / volatility
//
// where volatility is the long-period standard deviation of the close
// normalized by the latest close. Instruments whose short AND long momentum
// are both negative are ineligible, as are instruments with insufficient
// history; both cases return NaN so the allocator excludes them.
func MomentumScore(closes, volumes []float64, cfg Config) float64 {
	if len(closes) <= cfg.LongPeriod || len(volumes) != len(closes) {
		return math.NaN()
	}

	shortMomentum := last(talib.Roc(closes, cfg.ShortPeriod))
	longMomentum := last(talib.Roc(closes, cfg.LongPeriod))
	volumeChange := last(talib.Roc(volumes, cfg.ShortPeriod))

	lastClose := closes[len(closes)-1]
	if lastClose <= 0 {
		return math.NaN()
	}
	volatility := last(talib.StdDev(closes, cfg.LongPeriod, 1.0)) / lastClose

	if math.IsNaN(shortMomentum) || math.IsNaN(longMomentum) ||
		math.IsNaN(volumeChange) || math.IsNaN(volatility) {
		return math.NaN()
	}

	// A downtrend on both horizons never rotates in
	if shortMomentum < 0 && longMomentum < 0 {
		return math.NaN()
	}

	if volatility <= 0 {
		volatility = minVolatility
	}

	weighted := (1-cfg.VolumeWeight)*shortMomentum + cfg.VolumeWeight*volumeChange
	return weighted / volatility
}

func last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}
