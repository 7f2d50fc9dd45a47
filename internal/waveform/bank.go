package waveform

import (
	"errors"
	"math"
	"math/rand"
)

// TableSize is the length of every single-cycle table in the bank.
const TableSize = 256

// Bank order. Index 0 plays by default until a waveform-select control
// change says otherwise.
const (
	Saw = iota
	Square
	Sine
	DirtySine
	Noise
)

var ErrOutOfRange = errors.New("waveform: table index out of range")

// Bank is a fixed, ordered set of single-cycle waveform tables built once at
// startup. Tables are shared read-only by every voice that selects them and
// are never copied or mutated afterward.
type Bank struct {
	tables [][]float64
}

// NewBank builds the standard five-table bank: saw, square, sine, dirty
// sine (sine with a quarter helping of noise), noise.
func NewBank() *Bank {
	noise := noiseTable()
	return &Bank{tables: [][]float64{
		sawTable(),
		squareTable(),
		sineTable(),
		dirtySineTable(noise),
		noise,
	}}
}

// Len returns the number of tables in the bank.
func (b *Bank) Len() int { return len(b.tables) }

// Table returns the table at index, or ErrOutOfRange. The returned slice
// must be treated as read-only.
func (b *Bank) Table(index int) ([]float64, error) {
	if index < 0 || index >= len(b.tables) {
		return nil, ErrOutOfRange
	}
	return b.tables[index], nil
}

// Clamp maps an arbitrary index into the valid range. Indices scaled from
// continuous controller values pass through here before lookup.
func (b *Bank) Clamp(index int) int {
	if index < 0 {
		return 0
	}
	if index >= len(b.tables) {
		return len(b.tables) - 1
	}
	return index
}

func sawTable() []float64 {
	t := make([]float64, TableSize)
	for i := range t {
		t[i] = 1 - 2*float64(i)/float64(TableSize-1)
	}
	return t
}

func squareTable() []float64 {
	t := make([]float64, TableSize)
	for i := range t {
		if i < TableSize/2 {
			t[i] = 1
		} else {
			t[i] = -1
		}
	}
	return t
}

func sineTable() []float64 {
	t := make([]float64, TableSize)
	for i := range t {
		t[i] = math.Sin(2 * math.Pi * float64(i) / TableSize)
	}
	return t
}

func dirtySineTable(noise []float64) []float64 {
	sine := sineTable()
	t := make([]float64, TableSize)
	for i := range t {
		t[i] = sine[i] + noise[i]/4
	}
	return t
}

func noiseTable() []float64 {
	t := make([]float64, TableSize)
	for i := range t {
		t[i] = rand.Float64()*2 - 1
	}
	return t
}
