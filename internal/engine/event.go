package engine

// Kind tags the closed set of MIDI event variants the engine understands.
type Kind int

const (
	KindNoteOn Kind = iota
	KindNoteOff
	KindControlChange
)

// Event is one already-parsed MIDI message. Fields are read according to
// Kind: Note/Velocity for note events, Controller/Value for control
// changes. All values are expected in 7-bit MIDI range and are clamped on
// dispatch.
type Event struct {
	Kind       Kind
	Note       int
	Velocity   int
	Controller int
	Value      int
}

// Controller numbers the engine responds to. Anything else is ignored.
const (
	ccModWheel        = 1
	ccOscillatorCount = 82
	ccWaveformSelect  = 83
)

// Source is a blocking MIDI event feed. Receive returns false when the feed
// is closed.
type Source interface {
	Receive() (Event, bool)
}
