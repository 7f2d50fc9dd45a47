package waveform

import (
	"errors"
	"testing"
)

func TestBankHasFiveTables(t *testing.T) {
	b := NewBank()
	if b.Len() != 5 {
		t.Fatalf("bank length = %d, want 5", b.Len())
	}
	for i := 0; i < b.Len(); i++ {
		tbl, err := b.Table(i)
		if err != nil {
			t.Fatalf("Table(%d): %v", i, err)
		}
		if len(tbl) != TableSize {
			t.Fatalf("table %d length = %d, want %d", i, len(tbl), TableSize)
		}
	}
}

func TestTableOutOfRange(t *testing.T) {
	b := NewBank()
	for _, idx := range []int{-1, 5, 100} {
		if _, err := b.Table(idx); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Table(%d) error = %v, want ErrOutOfRange", idx, err)
		}
	}
}

func TestClamp(t *testing.T) {
	b := NewBank()
	cases := []struct{ in, want int }{
		{-10, 0}, {-1, 0}, {0, 0}, {2, 2}, {4, 4}, {5, 4}, {100, 4},
	}
	for _, tc := range cases {
		if got := b.Clamp(tc.in); got != tc.want {
			t.Errorf("Clamp(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSawDescends(t *testing.T) {
	b := NewBank()
	saw, _ := b.Table(Saw)
	if saw[0] != 1 {
		t.Errorf("saw starts at %f, want 1", saw[0])
	}
	if saw[TableSize-1] != -1 {
		t.Errorf("saw ends at %f, want -1", saw[TableSize-1])
	}
	for i := 1; i < len(saw); i++ {
		if saw[i] >= saw[i-1] {
			t.Fatalf("saw not strictly descending at %d", i)
		}
	}
}

func TestSquareHalves(t *testing.T) {
	b := NewBank()
	squ, _ := b.Table(Square)
	for i := 0; i < TableSize/2; i++ {
		if squ[i] != 1 {
			t.Fatalf("square[%d] = %f, want 1", i, squ[i])
		}
	}
	for i := TableSize / 2; i < TableSize; i++ {
		if squ[i] != -1 {
			t.Fatalf("square[%d] = %f, want -1", i, squ[i])
		}
	}
}

func TestSineBounds(t *testing.T) {
	b := NewBank()
	sin, _ := b.Table(Sine)
	if sin[0] != 0 {
		t.Errorf("sine starts at %f, want 0", sin[0])
	}
	for i, v := range sin {
		if v < -1 || v > 1 {
			t.Fatalf("sine[%d] = %f outside [-1, 1]", i, v)
		}
	}
}

func TestDirtySineDiffersFromSine(t *testing.T) {
	b := NewBank()
	sin, _ := b.Table(Sine)
	dirty, _ := b.Table(DirtySine)
	var diff int
	for i := range sin {
		if sin[i] != dirty[i] {
			diff++
		}
	}
	if diff == 0 {
		t.Fatal("dirty sine identical to sine")
	}
}

func TestTablesAreSharedNotCopied(t *testing.T) {
	b := NewBank()
	a, _ := b.Table(Saw)
	c, _ := b.Table(Saw)
	if &a[0] != &c[0] {
		t.Fatal("repeated lookups should return the same backing table")
	}
}
