package quote

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinWindow = 7
	MaxWindow = 50

	MinInterval = 2 * time.Second
	MaxInterval = 5 * time.Second
)

var (
	ErrWindowSize = errors.New("window size out of range")
	ErrAmplitude  = errors.New("negative amplitude")
	ErrInterval   = errors.New("non-positive interval")
)

// Profile parameterizes a random walk for one kind of widget.
type Profile struct {
	Name       string
	Amplitude  decimal.Decimal
	WindowSize int
	Interval   time.Duration
}

var (
	Equity = Profile{Name: "equity", Amplitude: decimal.RequireFromString("0.5"), WindowSize: 20, Interval: 3 * time.Second}
	Crypto = Profile{Name: "crypto", Amplitude: decimal.RequireFromString("1.0"), WindowSize: 20, Interval: 3 * time.Second}
	Index  = Profile{Name: "index", Amplitude: decimal.RequireFromString("0.02"), WindowSize: 7, Interval: 3 * time.Second}
	Candle = Profile{Name: "candle", Amplitude: decimal.RequireFromString("4"), WindowSize: 50, Interval: 5 * time.Second}
)

var profiles = map[string]Profile{
	Equity.Name: Equity,
	Crypto.Name: Crypto,
	Index.Name:  Index,
	Candle.Name: Candle,
}

func ProfileByName(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

func (p Profile) Validate() error {
	if p.WindowSize < MinWindow || p.WindowSize > MaxWindow {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrWindowSize, p.WindowSize, MinWindow, MaxWindow)
	}
	if p.Amplitude.IsNegative() {
		return fmt.Errorf("%w: %s", ErrAmplitude, p.Amplitude)
	}
	if p.Interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInterval, p.Interval)
	}
	return nil
}

// Typical reports whether the tick interval falls inside the usual 2-5s cadence.
func (p Profile) Typical() bool {
	return p.Interval >= MinInterval && p.Interval <= MaxInterval
}
