package quote

import (
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

var half = decimal.RequireFromString("0.5")

type Rand interface {
	Float64() float64
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// NewRand is not safe for concurrent use, every generator gets its own.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Noise yields the per-tick jitter in percent points.
type Noise interface {
	Draw() decimal.Decimal
}

// Uniform draws from [-A/2, +A/2).
type Uniform struct {
	amplitude decimal.Decimal
	rand      Rand
}

func NewUniform(amplitude decimal.Decimal, rnd Rand) Uniform {
	return Uniform{amplitude: amplitude, rand: rnd}
}

func (u Uniform) Draw() decimal.Decimal {
	return decimal.NewFromFloat(u.rand.Float64()).Sub(half).Mul(u.amplitude)
}

type Fixed decimal.Decimal

func (f Fixed) Draw() decimal.Decimal {
	return decimal.Decimal(f)
}
