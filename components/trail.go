package components

import "iter"

// Trail is a fixed-capacity ring of recent positions.
// Points[Cursor] is the oldest entry and the next slot to be written.
type Trail struct {
	Points []Vec3
	Cursor int
}

// NewTrail returns a trail with capacity n, every entry at the origin.
func NewTrail(n int) Trail {
	return Trail{Points: make([]Vec3, n)}
}

// Len returns the capacity, which is also the number of valid entries.
func (t *Trail) Len() int {
	return len(t.Points)
}

// Fill overwrites every entry with p and resets the cursor.
func (t *Trail) Fill(p Vec3) {
	for i := range t.Points {
		t.Points[i] = p
	}
	t.Cursor = 0
}

// Push records p over the oldest entry.
func (t *Trail) Push(p Vec3) {
	t.Points[t.Cursor] = p
	t.Cursor++
	if t.Cursor == len(t.Points) {
		t.Cursor = 0
	}
}

// At returns the j-th entry in chronological order (0 = oldest).
func (t *Trail) At(j int) Vec3 {
	return t.Points[(t.Cursor+j)%len(t.Points)]
}

// Latest returns the most recently written entry.
func (t *Trail) Latest() Vec3 {
	n := len(t.Points)
	return t.Points[(t.Cursor+n-1)%n]
}

// All yields every entry oldest first. The sequence can be ranged repeatedly.
func (t *Trail) All() iter.Seq[Vec3] {
	return func(yield func(Vec3) bool) {
		n := len(t.Points)
		for j := 0; j < n; j++ {
			if !yield(t.Points[(t.Cursor+j)%n]) {
				return
			}
		}
	}
}

// AppendTo appends the entries oldest first to dst.
func (t *Trail) AppendTo(dst []Vec3) []Vec3 {
	dst = append(dst, t.Points[t.Cursor:]...)
	return append(dst, t.Points[:t.Cursor]...)
}
