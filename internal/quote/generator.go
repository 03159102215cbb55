package quote

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/pkg/ringbuf"
)

const (
	// extra places kept on top of the display precision
	extraScale  = 4
	changeScale = 8
)

var one = decimal.NewFromInt(1)

type Generator struct {
	profile Profile
	noise   Noise
	clock   Clock
}

func NewGenerator(profile Profile, noise Noise, clock Clock) (*Generator, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", profile.Name, err)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if noise == nil {
		noise = NewUniform(profile.Amplitude, NewRand(time.Now().UnixNano()))
	}

	return &Generator{
		profile: profile,
		noise:   noise,
		clock:   clock,
	}, nil
}

func (g *Generator) Profile() Profile {
	return g.profile
}

// Seed starts a walk at the base price and fills the window with
// WindowSize steps stamped one interval apart, ending now.
func (g *Generator) Seed(ins entity.Instrument) (State, error) {
	if err := ins.Validate(); err != nil {
		return State{}, err
	}

	state := State{
		Instrument: ins,
		Current:    ins.BasePrice,
		LastChange: decimal.Zero,
		Window:     ringbuf.New[entity.QuotePoint](g.profile.WindowSize),
	}

	now := g.clock.Now()
	size := g.profile.WindowSize
	for i := 0; i < size; i++ {
		at := now.Add(-time.Duration(size-1-i) * g.profile.Interval)
		state = g.next(state, at)
	}
	state.Seq = 0

	return state, nil
}

func (g *Generator) Step(state State) State {
	return g.next(state, g.clock.Now())
}

func (g *Generator) next(state State, at time.Time) State {
	ins := state.Instrument

	change := state.LastChange.Add(g.noise.Draw()).Round(changeScale)
	value := state.Current.Mul(one.Add(change.Div(hundred))).Round(ins.Precision + extraScale)
	value = clamp(value, ins)

	window := state.Window.Clone().Push(entity.QuotePoint{Time: at, Value: value})

	return State{
		Instrument: ins,
		Current:    value,
		LastChange: change,
		Window:     window,
		Seq:        state.Seq + 1,
	}
}

func clamp(value decimal.Decimal, ins entity.Instrument) decimal.Decimal {
	if value.LessThan(ins.Floor) {
		return ins.Floor
	}
	if ins.Bounded() && value.GreaterThan(ins.Ceiling) {
		return ins.Ceiling
	}
	return value
}
