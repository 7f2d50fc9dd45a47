package envelope

// Spec holds the amplitude envelope parameters for one note. A single Spec
// is shared by every oscillator voice of the note and is never mutated
// after creation.
type Spec struct {
	AttackSec    float64
	DecaySec     float64
	ReleaseSec   float64
	AttackLevel  float64
	SustainLevel float64
}

// Fixed stages; only the attack time tracks velocity.
const (
	decaySec     = 0.05
	releaseSec   = 0.8
	attackLevel  = 1.0
	sustainLevel = 0.8
)

// FromVelocity derives the envelope for a note-on velocity (0-127). Harder
// hits open faster: attack time shrinks linearly with velocity and clamps
// at zero. Velocity is pre-clamped to 7-bit range by the dispatcher.
func FromVelocity(velocity int) *Spec {
	attack := 2 * (127 - float64(velocity)*1.2) / 127
	if attack < 0 {
		attack = 0
	}
	return &Spec{
		AttackSec:    attack,
		DecaySec:     decaySec,
		ReleaseSec:   releaseSec,
		AttackLevel:  attackLevel,
		SustainLevel: sustainLevel,
	}
}
