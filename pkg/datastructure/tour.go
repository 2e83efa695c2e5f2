package datastructure

// Tour is a visiting order over stop indices 0..n-1.
type Tour []int

func (t Tour) Clone() Tour {
	copyT := make(Tour, len(t))
	copy(copyT, t)
	return copyT
}

// IsPermutation reports whether t visits every index in [0,n) exactly once.
func (t Tour) IsPermutation(n int) bool {
	if len(t) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range t {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// IndexOf. position of stop index v inside the tour, -1 when absent.
func (t Tour) IndexOf(v int) int {
	for i, tv := range t {
		if tv == v {
			return i
		}
	}
	return -1
}

// RotateToStart rotates a closed tour in place so that position 0 holds start.
// the cycle cost is unchanged by rotation.
func (t Tour) RotateToStart(start int) {
	pos := t.IndexOf(start)
	if pos <= 0 {
		return
	}
	rotated := make(Tour, 0, len(t))
	rotated = append(rotated, t[pos:]...)
	rotated = append(rotated, t[:pos]...)
	copy(t, rotated)
}
