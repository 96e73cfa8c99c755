package synth

import (
	"math"
	"sort"
)

type eventKind int

const (
	eventSet eventKind = iota
	eventLinear
	eventExp
)

type event struct {
	kind  eventKind
	value float64
	time  float64
}

// Param is an automatable value: an intrinsic value plus a time-ordered list of
// set/ramp events, evaluated in seconds relative to the start of the graph.
type Param struct {
	value  float64
	events []event
}

// Const returns a param that holds v with no automation.
func Const(v float64) *Param {
	return &Param{value: v}
}

// P returns a param that is set to v at time zero. Most envelopes start this way.
func P(v float64) *Param {
	return Const(v).Set(v, 0)
}

func (p *Param) add(e event) *Param {
	// Stable insert keeps events scheduled at the same instant in call order.
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > e.time })
	p.events = append(p.events, event{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
	return p
}

// Set jumps to v at time t.
func (p *Param) Set(v, t float64) *Param {
	return p.add(event{kind: eventSet, value: v, time: t})
}

// LinearTo ramps linearly from the previous event to v, arriving at time t.
func (p *Param) LinearTo(v, t float64) *Param {
	return p.add(event{kind: eventLinear, value: v, time: t})
}

// ExpTo ramps exponentially from the previous event to v, arriving at time t.
// Both endpoints must be strictly positive; otherwise the previous value is held
// until t and then replaced.
func (p *Param) ExpTo(v, t float64) *Param {
	return p.add(event{kind: eventExp, value: v, time: t})
}

// End returns the time of the last scheduled event.
func (p *Param) End() float64 {
	if p == nil || len(p.events) == 0 {
		return 0
	}
	return p.events[len(p.events)-1].time
}

// At evaluates the param at time t.
func (p *Param) At(t float64) float64 {
	if p == nil {
		return 0
	}
	v := p.value
	prev := 0.0
	for _, e := range p.events {
		if t < e.time {
			switch e.kind {
			case eventLinear:
				if e.time <= prev {
					return v
				}
				frac := (t - prev) / (e.time - prev)
				return v + (e.value-v)*frac
			case eventExp:
				if e.time <= prev || v <= 0 || e.value <= 0 {
					return v
				}
				frac := (t - prev) / (e.time - prev)
				return v * math.Pow(e.value/v, frac)
			default:
				return v
			}
		}
		v = e.value
		prev = e.time
	}
	return v
}
