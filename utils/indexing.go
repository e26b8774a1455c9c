package utils

import (
	"fmt"
)

// MixedRadix encodes a tuple of digits with varying bases into a single
// index. The first digit varies slowest, as in row-major array layout.
type MixedRadix struct {
	Radices []int
	strides []int
	Size    int
}

func NewMixedRadix(radices ...int) (mr MixedRadix, err error) {
	var (
		n = len(radices)
	)
	mr = MixedRadix{
		Radices: append([]int(nil), radices...),
		strides: make([]int, n),
		Size:    1,
	}
	for i := n - 1; i >= 0; i-- {
		if radices[i] < 1 {
			err = fmt.Errorf("radix %d must be positive, have %d", i, radices[i])
			return
		}
		mr.strides[i] = mr.Size
		mr.Size *= radices[i]
	}
	return
}

func (mr MixedRadix) Encode(digits []int) (index int) {
	if len(digits) != len(mr.Radices) {
		panic(fmt.Errorf("have %d digits for %d radices", len(digits), len(mr.Radices)))
	}
	for i, d := range digits {
		if d < 0 || d >= mr.Radices[i] {
			panic(fmt.Errorf("digit %d = %d out of range [0,%d)", i, d, mr.Radices[i]))
		}
		index += d * mr.strides[i]
	}
	return
}

func (mr MixedRadix) Decode(index int, digits []int) []int {
	if index < 0 || index >= mr.Size {
		panic(fmt.Errorf("index %d out of range [0,%d)", index, mr.Size))
	}
	if cap(digits) < len(mr.Radices) {
		digits = make([]int, len(mr.Radices))
	}
	digits = digits[:len(mr.Radices)]
	for i, s := range mr.strides {
		digits[i] = index / s
		index -= digits[i] * s
	}
	return digits
}

// Odometer steps through every combination of positions in lists of the given
// lengths, last position fastest. Next returns false after the final one.
type Odometer struct {
	Lens []int
	Pos  []int
	done bool
}

func NewOdometer(lens []int, pos []int) (od *Odometer) {
	if cap(pos) < len(lens) {
		pos = make([]int, len(lens))
	}
	od = &Odometer{Lens: lens, Pos: pos[:len(lens)]}
	od.Reset()
	return
}

func (od *Odometer) Reset() {
	od.done = false
	for i, l := range od.Lens {
		od.Pos[i] = 0
		if l == 0 {
			od.done = true
		}
	}
}

// Valid is true while Pos names a combination
func (od *Odometer) Valid() bool { return !od.done }

func (od *Odometer) Next() bool {
	for i := len(od.Lens) - 1; i >= 0; i-- {
		od.Pos[i]++
		if od.Pos[i] < od.Lens[i] {
			return true
		}
		od.Pos[i] = 0
	}
	od.done = true
	return false
}
