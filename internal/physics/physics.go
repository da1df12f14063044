// Package physics turns a stream of desired camera targets into smoothed,
// velocity-continuous motion using a damped spring. Every step is a pure
// function of (previous state, target, dynamics, dt): no clock reads, no
// randomness. That is the property that lets an offline export reproduce the
// exact path a preview computed.
package physics

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/ivlev/followcam/internal/geom"
)

// dampingRatio is fixed slightly above critical so the camera settles
// quickly without oscillating past the target.
const dampingRatio = 1.1

// DefaultSourceJumpThresholdMs is the source-time delta above which a step is
// treated as a clip cut rather than continuous playback.
const DefaultSourceJumpThresholdMs = 1000.0

// Dynamics are the tunable spring parameters.
type Dynamics struct {
	Stiffness float64
	Damping   float64
	Mass      float64
}

// AngularFrequency returns the spring's natural frequency in rad/s.
func (d Dynamics) AngularFrequency() float64 {
	mass := d.Mass
	if mass <= 0 {
		mass = 1
	}
	return math.Sqrt(d.Stiffness / mass)
}

// DampingRatio returns the damping as a fraction of critical damping.
func (d Dynamics) DampingRatio() float64 {
	mass := d.Mass
	if mass <= 0 {
		mass = 1
	}
	return d.Damping / (2 * math.Sqrt(d.Stiffness*mass))
}

// DynamicsForSmoothness maps the user-facing 0-100 smoothness slider to
// spring parameters. Higher smoothness lowers stiffness (slower, floatier
// moves); damping tracks stiffness at the fixed ratio above critical.
// Non-finite input normalizes to zero.
func DynamicsForSmoothness(smoothness float64) Dynamics {
	if math.IsNaN(smoothness) || math.IsInf(smoothness, 0) {
		smoothness = 0
	}
	smoothness = geom.Clamp(smoothness, 0, 100)

	stiffness := geom.Lerp(300, 30, smoothness/100)
	return Dynamics{
		Stiffness: stiffness,
		Damping:   dampingRatio * 2 * math.Sqrt(stiffness),
		Mass:      1,
	}
}

// State is the mutable simulation state for one camera. It is owned by
// exactly one sequential pass; concurrent export jobs each create their own.
type State struct {
	X  float64
	Y  float64
	VX float64
	VY float64

	LastTimeMs       float64
	LastSourceTimeMs float64

	primed bool
}

// NewState returns a zero-velocity state centered in the frame.
func NewState() *State {
	return &State{X: 0.5, Y: 0.5}
}

// Simulator advances camera states under one set of dynamics. Springs are
// derived per step size and cached, so a full-timeline pass at a fixed frame
// rate builds exactly one spring.
type Simulator struct {
	dynamics Dynamics

	// SourceJumpThresholdMs bounds the source-time delta of a continuous
	// step; larger (or negative) deltas snap instead of integrating.
	SourceJumpThresholdMs float64

	springs map[int64]harmonica.Spring
}

// NewSimulator returns a simulator for the given dynamics.
func NewSimulator(dynamics Dynamics) *Simulator {
	return &Simulator{
		dynamics:              dynamics,
		SourceJumpThresholdMs: DefaultSourceJumpThresholdMs,
		springs:               make(map[int64]harmonica.Spring),
	}
}

// Dynamics returns the simulator's spring parameters.
func (s *Simulator) Dynamics() Dynamics { return s.dynamics }

// Step advances the state toward target over the elapsed time since the
// previous step. timeMs is the output-timeline clock, sourceTimeMs the
// active recording's clock. A negative or oversized source-time delta is a
// clip cut: the state snaps to the target with zero velocity, because
// integrating a spurious giant delta would whip the camera across the frame.
func (s *Simulator) Step(st *State, target geom.Point, timeMs, sourceTimeMs float64) {
	if !st.primed {
		// Run start: keep the state's position (the centered default) and
		// integrate toward the target from there, recording the clocks.
		st.VX = 0
		st.VY = 0
		st.LastTimeMs = timeMs
		st.LastSourceTimeMs = sourceTimeMs
		st.primed = true
		return
	}

	dt := timeMs - st.LastTimeMs
	if dt <= 0 {
		return
	}

	srcDelta := sourceTimeMs - st.LastSourceTimeMs
	if srcDelta < 0 || srcDelta > s.SourceJumpThresholdMs {
		s.Snap(st, target, timeMs, sourceTimeMs)
		return
	}

	spring := s.springFor(dt)
	st.X, st.VX = spring.Update(st.X, st.VX, target.X)
	st.Y, st.VY = spring.Update(st.Y, st.VY, target.Y)
	st.LastTimeMs = timeMs
	st.LastSourceTimeMs = sourceTimeMs
}

// Snap teleports the state to the target and zeroes its velocity.
func (s *Simulator) Snap(st *State, target geom.Point, timeMs, sourceTimeMs float64) {
	st.X = target.X
	st.Y = target.Y
	st.VX = 0
	st.VY = 0
	st.LastTimeMs = timeMs
	st.LastSourceTimeMs = sourceTimeMs
	st.primed = true
}

// springFor returns the cached spring for a step of dtMs, building it on
// first use. Keys quantize dt to a nanosecond so float jitter in equal frame
// intervals cannot fork the cache.
func (s *Simulator) springFor(dtMs float64) harmonica.Spring {
	key := int64(math.Round(dtMs * 1e6))
	if spring, ok := s.springs[key]; ok {
		return spring
	}
	zeta := s.dynamics.DampingRatio()
	if zeta <= 0 {
		zeta = dampingRatio
	}
	spring := harmonica.NewSpring(dtMs/1000, s.dynamics.AngularFrequency(), zeta)
	s.springs[key] = spring
	return spring
}
