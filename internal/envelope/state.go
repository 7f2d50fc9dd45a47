package envelope

// Stage identifies where a running envelope is in its ADSR cycle.
type Stage int

const (
	StageAttack Stage = iota
	StageDecay
	StageSustain
	StageRelease
	StageOff
)

// State advances a Spec sample by sample. The renderer owns one State per
// note; the control loop never touches it.
type State struct {
	spec  *Spec
	stage Stage
	level float64
}

func NewState(spec *Spec) *State {
	return &State{spec: spec}
}

// Stage returns the current envelope stage.
func (s *State) Stage() Stage { return s.stage }

// Level returns the current envelope level without advancing.
func (s *State) Level() float64 { return s.level }

// Release moves the envelope into its release stage from wherever it is.
// Releasing an already-finished envelope is a no-op.
func (s *State) Release() {
	if s.stage != StageOff {
		s.stage = StageRelease
	}
}

// Advance steps the envelope by one sample and returns the new level.
// Returns 0 once the release tail has decayed.
func (s *State) Advance(sampleRate float64) float64 {
	switch s.stage {
	case StageAttack:
		step := 1.0
		if s.spec.AttackSec > 0 {
			step = s.spec.AttackLevel / (s.spec.AttackSec * sampleRate)
		}
		s.level += step
		if s.level >= s.spec.AttackLevel {
			s.level = s.spec.AttackLevel
			s.stage = StageDecay
		}
	case StageDecay:
		step := 1.0
		if s.spec.DecaySec > 0 {
			step = (s.spec.AttackLevel - s.spec.SustainLevel) / (s.spec.DecaySec * sampleRate)
		}
		s.level -= step
		if s.level <= s.spec.SustainLevel {
			s.level = s.spec.SustainLevel
			s.stage = StageSustain
		}
	case StageSustain:
		// hold
	case StageRelease:
		step := 1.0
		if s.spec.ReleaseSec > 0 {
			step = s.spec.SustainLevel / (s.spec.ReleaseSec * sampleRate)
		}
		s.level -= step
		if s.level <= 0.0001 {
			s.level = 0
			s.stage = StageOff
		}
	case StageOff:
		s.level = 0
	}
	return s.level
}
