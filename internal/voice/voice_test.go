package voice

import (
	"sync"
	"testing"

	"github.com/sinitsinmike/2040/internal/envelope"
)

func TestVibratoRoundTrip(t *testing.T) {
	v := New(440, []float64{0, 1}, envelope.FromVelocity(100), 0.5, 10)
	if v.VibratoDepth() != 0.5 {
		t.Errorf("depth = %f, want 0.5", v.VibratoDepth())
	}
	if v.VibratoRate() != 10 {
		t.Errorf("rate = %f, want 10", v.VibratoRate())
	}
	v.SetVibrato(1, 20)
	if v.VibratoDepth() != 1 || v.VibratoRate() != 20 {
		t.Errorf("after SetVibrato: depth=%f rate=%f, want 1/20", v.VibratoDepth(), v.VibratoRate())
	}
}

// One writer, one reader, as in the live synth: the control loop rewrites
// the vibrato pair while the audio thread reads it every frame. Run with
// -race to exercise the atomic discipline.
func TestVibratoConcurrentReadWrite(t *testing.T) {
	v := New(440, []float64{0, 1}, envelope.FromVelocity(100), 0, 0)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 10000; i++ {
			v.SetVibrato(float64(i)/10000, 20*float64(i)/10000)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 10000; i++ {
			d := v.VibratoDepth()
			r := v.VibratoRate()
			if d < 0 || d > 1 {
				t.Errorf("torn depth read: %f", d)
				return
			}
			if r < 0 || r > 20 {
				t.Errorf("torn rate read: %f", r)
				return
			}
		}
	}()
	wg.Wait()
}
