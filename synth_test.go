package midisynth

import "testing"

func TestMasterVolumeRuntimeAPI(t *testing.T) {
	s, err := New(48000, WithoutAudio())
	if err != nil {
		t.Fatalf("new synth: %v", err)
	}
	if got := s.MasterVolume(); got != 1 {
		t.Fatalf("default master volume = %v, want 1", got)
	}
	s.SetMasterVolume(0.35)
	if got := s.MasterVolume(); got != 0.35 {
		t.Fatalf("master volume = %v, want 0.35", got)
	}
	s.SetMasterVolume(-2)
	if got := s.MasterVolume(); got != 0 {
		t.Fatalf("master volume should clamp to 0, got %v", got)
	}
}

func TestNewRejectsBadSampleRate(t *testing.T) {
	if _, err := New(0, WithoutAudio()); err == nil {
		t.Fatal("expected error for sample rate 0")
	}
	if _, err := New(-44100, WithoutAudio()); err == nil {
		t.Fatal("expected error for negative sample rate")
	}
}

func TestHandleDrivesVoices(t *testing.T) {
	s, err := New(48000, WithoutAudio())
	if err != nil {
		t.Fatalf("new synth: %v", err)
	}
	s.Handle(Event{Kind: EventControlChange, Controller: 82, Value: 51})
	s.Handle(Event{Kind: EventNoteOn, Note: 60, Velocity: 100})
	if got := s.ActiveVoiceCount(); got != 3 {
		t.Fatalf("active voices = %d, want 3", got)
	}

	buf := make([]float32, 4096)
	s.Render(buf)
	var nonZero bool
	for _, v := range buf {
		if v != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatal("expected audible output after note-on")
	}
}

func TestWatchReportsNoteActivity(t *testing.T) {
	s, err := New(48000, WithoutAudio())
	if err != nil {
		t.Fatalf("new synth: %v", err)
	}
	ch := s.Watch()
	s.Handle(Event{Kind: EventNoteOn, Note: 64, Velocity: 90})
	s.Handle(Event{Kind: EventNoteOff, Note: 64})

	on := <-ch
	if !on.On || on.Note != 64 || on.Voices != 1 {
		t.Fatalf("press event = %+v, want on/64/1 voice", on)
	}
	off := <-ch
	if off.On || off.Note != 64 {
		t.Fatalf("release event = %+v, want off/64", off)
	}
}

func TestCloseWithoutAudioOrMIDI(t *testing.T) {
	s, err := New(48000, WithoutAudio())
	if err != nil {
		t.Fatalf("new synth: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
