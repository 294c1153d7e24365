package core

import "math"

// Triplet is a 3-vector whose axes are individually optional. The zero
// value has no axis set.
type Triplet struct {
	vals [3]float64
	set  [3]bool
}

// NewTriplet returns a Triplet with all three axes set.
func NewTriplet(x, y, z float64) Triplet {
	return Triplet{vals: [3]float64{x, y, z}, set: [3]bool{true, true, true}}
}

// At returns the value of the given axis and whether it is set.
func (t Triplet) At(a Axis) (float64, bool) {
	return t.vals[a], t.set[a]
}

// Set assigns the given axis.
func (t *Triplet) Set(a Axis, v float64) {
	t.vals[a] = v
	t.set[a] = true
}

// Clear unsets the given axis.
func (t *Triplet) Clear(a Axis) {
	t.vals[a] = 0
	t.set[a] = false
}

// Reset unsets all axes.
func (t *Triplet) Reset() {
	*t = Triplet{}
}

// Complete reports whether all three axes are set.
func (t Triplet) Complete() bool {
	return t.set[0] && t.set[1] && t.set[2]
}

// Empty reports whether no axis is set.
func (t Triplet) Empty() bool {
	return !t.set[0] && !t.set[1] && !t.set[2]
}

// Known returns the number of set axes.
func (t Triplet) Known() int {
	n := 0
	for _, s := range t.set {
		if s {
			n++
		}
	}

	return n
}

// Values returns the raw per-axis values; unset axes read as 0.
func (t Triplet) Values() [3]float64 { return t.vals }

// Mask returns the per-axis set flags.
func (t Triplet) Mask() [3]bool { return t.set }

// Vec returns the full vector and true when all axes are set.
func (t Triplet) Vec() ([3]float64, bool) {
	return t.vals, t.Complete()
}

// ApproxEqual reports whether two triplets set the same axes and agree on
// every set axis within tol.
func (t Triplet) ApproxEqual(o Triplet, tol float64) bool {
	for a := AxisX; a <= AxisZ; a++ {
		if t.set[a] != o.set[a] {
			return false
		}
		if t.set[a] && math.Abs(t.vals[a]-o.vals[a]) > tol {
			return false
		}
	}

	return true
}

// Merge fills this triplet's unset axes from o, leaving set axes untouched.
func (t *Triplet) Merge(o Triplet) {
	for a := AxisX; a <= AxisZ; a++ {
		if !t.set[a] && o.set[a] {
			t.Set(a, o.vals[a])
		}
	}
}
