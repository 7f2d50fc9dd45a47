package midisynth

import (
	"encoding/binary"
	"testing"
)

func TestRenderSamplesPlaysEvents(t *testing.T) {
	const rate = 8000
	events := []TimedEvent{
		{Frame: 0, Event: Event{Kind: EventNoteOn, Note: 69, Velocity: 127}},
		{Frame: rate / 2, Event: Event{Kind: EventNoteOff, Note: 69}},
	}
	samples, err := RenderSamples(events, rate, 2.0)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(samples) != rate*2*2 {
		t.Fatalf("sample count = %d, want %d", len(samples), rate*2*2)
	}

	energy := func(from, to int) float64 {
		var e float64
		for _, s := range samples[from*2 : to*2] {
			if s < 0 {
				e -= float64(s)
			} else {
				e += float64(s)
			}
		}
		return e
	}
	// Held region sounds; the region after the 0.8s release tail is silent.
	if energy(0, rate/2) == 0 {
		t.Fatal("expected signal while the note is held")
	}
	tailEnd := rate/2 + int(0.9*rate)
	if got := energy(tailEnd, rate*2); got != 0 {
		t.Fatalf("expected silence after release tail, energy = %f", got)
	}
}

func TestRenderSamplesUnsortedEventsAreOrdered(t *testing.T) {
	const rate = 8000
	// Deliberately out of order; RenderSamples sorts by frame.
	events := []TimedEvent{
		{Frame: rate, Event: Event{Kind: EventNoteOff, Note: 60}},
		{Frame: 0, Event: Event{Kind: EventNoteOn, Note: 60, Velocity: 127}},
	}
	samples, err := RenderSamples(events, rate, 0.5)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var nonZero bool
	for _, s := range samples {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatal("note-on at frame 0 should be audible")
	}
}

func TestEncodeWAVHeader(t *testing.T) {
	wav := EncodeWAVFloat32LE(make([]float32, 16), 48000, 2)
	if len(wav) != 44+16*4 {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+16*4)
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE markers")
	}
	if format := binary.LittleEndian.Uint16(wav[20:]); format != 3 {
		t.Fatalf("format tag = %d, want 3 (IEEE float)", format)
	}
	if rate := binary.LittleEndian.Uint32(wav[24:]); rate != 48000 {
		t.Fatalf("sample rate = %d, want 48000", rate)
	}
	if size := binary.LittleEndian.Uint32(wav[40:]); size != 16*4 {
		t.Fatalf("data size = %d, want %d", size, 16*4)
	}
}
