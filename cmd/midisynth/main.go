package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	midisynth "github.com/sinitsinmike/2040"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 44100, "output sample rate")
		listPorts  = flag.Bool("list-ports", false, "list MIDI input ports and exit")
		port       = flag.String("port", "", "MIDI input port name (default: first available)")
		volume     = flag.Float64("volume", 1.0, "master volume scalar")
		detune     = flag.Float64("detune", 0.01, "oscillator detune spread")
		quiet      = flag.Bool("quiet", false, "suppress note activity output")
	)
	flag.Parse()

	if *listPorts {
		ports := midisynth.MIDIPorts()
		if len(ports) == 0 {
			fmt.Println("no MIDI input ports")
			return
		}
		for _, name := range ports {
			fmt.Println(name)
		}
		return
	}

	s, err := midisynth.New(*sampleRate, midisynth.WithDetune(*detune))
	if err != nil {
		log.Fatal(err)
	}
	s.SetMasterVolume(*volume)
	ch := s.Watch()
	if err := s.OpenMIDI(*port); err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	log.Printf("listening on %q at %d Hz", s.MIDIPortName(), *sampleRate)
	for {
		select {
		case ev := <-ch:
			if *quiet {
				continue
			}
			if ev.On {
				fmt.Printf("note on  %3d (%d osc)\n", ev.Note, ev.Voices)
			} else {
				fmt.Printf("note off %3d\n", ev.Note)
			}
		case <-sig:
			return
		}
	}
}
