package regmap

import (
	"errors"
	"math/bits"
	"testing"
)

func TestNewFieldMask(t *testing.T) {
	for high := uint8(0); high < 8; high++ {
		for low := uint8(0); low <= high; low++ {
			f, err := NewField(high, low)
			if err != nil {
				t.Fatalf("NewField(%d, %d) error = %v", high, low, err)
			}
			width := int(high - low + 1)
			if got := bits.OnesCount8(f.Mask()); got != width {
				t.Errorf("NewField(%d, %d) mask 0b%08b has %d bits, want %d", high, low, f.Mask(), got, width)
			}
			if got := bits.TrailingZeros8(f.Mask()); got != int(low) {
				t.Errorf("NewField(%d, %d) mask 0b%08b starts at %d, want %d", high, low, f.Mask(), got, low)
			}
			// contiguous: shifting out the low zeros leaves 2^width-1
			if f.Mask()>>low != byte((1<<width)-1) {
				t.Errorf("NewField(%d, %d) mask 0b%08b not contiguous", high, low, f.Mask())
			}
			if f.Shift() != low || f.Width() != uint8(width) {
				t.Errorf("NewField(%d, %d) shift=%d width=%d", high, low, f.Shift(), f.Width())
			}
		}
	}
}

func TestNewFieldInvalid(t *testing.T) {
	tests := []struct {
		name      string
		high, low uint8
	}{
		{"low above high", 2, 3},
		{"reversed full", 0, 7},
		{"high out of range", 8, 0},
		{"low out of range", 9, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewField(tt.high, tt.low)
			if !errors.Is(err, ErrInvalidFieldSpec) {
				t.Errorf("NewField(%d, %d) error = %v, want ErrInvalidFieldSpec", tt.high, tt.low, err)
			}
		})
	}
}

func TestMustFieldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustField(1, 2) did not panic")
		}
	}()
	MustField(1, 2)
}

func TestBit(t *testing.T) {
	f := Bit(7)
	if f.Mask() != 0x80 || f.Width() != 1 {
		t.Errorf("Bit(7) = mask 0x%02X width %d", f.Mask(), f.Width())
	}
	if f.String() != "[7]" {
		t.Errorf("Bit(7).String() = %q", f.String())
	}
	if s := MustField(2, 0).String(); s != "[2:0]" {
		t.Errorf("MustField(2, 0).String() = %q", s)
	}
}

func TestExtractPlace(t *testing.T) {
	f := MustField(5, 3)
	if got := f.Extract(0b1110_1101); got != 0b101 {
		t.Errorf("Extract() = 0b%b, want 0b101", got)
	}
	if got := f.Place(0b1111_1010); got != 0b0001_0000 {
		t.Errorf("Place() = 0b%08b, want 0b00010000", got)
	}
}
