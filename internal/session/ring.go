package session

// Ring is a fixed-capacity buffer of playlist indices. Pushing onto a full
// ring evicts the oldest entry. A zero-capacity ring stays empty.
type Ring struct {
	buf   []int
	start int
	size  int
}

// NewRing returns a ring holding at most capacity entries.
func NewRing(capacity int) *Ring {
	if capacity < 0 {
		capacity = 0
	}
	return &Ring{buf: make([]int, capacity)}
}

// Len returns the number of entries.
func (r *Ring) Len() int { return r.size }

// Cap returns the capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Push appends v, returning the evicted entry when the ring was full.
func (r *Ring) Push(v int) (evicted int, ok bool) {
	if len(r.buf) == 0 {
		return v, true
	}
	if r.size == len(r.buf) {
		evicted = r.buf[r.start]
		r.buf[r.start] = v
		r.start = (r.start + 1) % len(r.buf)
		return evicted, true
	}
	r.buf[(r.start+r.size)%len(r.buf)] = v
	r.size++
	return 0, false
}

// Pop removes and returns the newest entry.
func (r *Ring) Pop() (int, bool) {
	if r.size == 0 {
		return 0, false
	}
	r.size--
	return r.buf[(r.start+r.size)%len(r.buf)], true
}

// Peek returns the newest entry without removing it.
func (r *Ring) Peek() (int, bool) {
	if r.size == 0 {
		return 0, false
	}
	return r.buf[(r.start+r.size-1)%len(r.buf)], true
}

// Values returns entries oldest first.
func (r *Ring) Values() []int {
	out := make([]int, r.size)
	for i := range out {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Clear drops every entry.
func (r *Ring) Clear() {
	r.start = 0
	r.size = 0
}

// remove deletes the newest occurrence of v.
func (r *Ring) remove(v int) bool {
	for i := r.size - 1; i >= 0; i-- {
		pos := (r.start + i) % len(r.buf)
		if r.buf[pos] != v {
			continue
		}
		for j := i; j < r.size-1; j++ {
			r.buf[(r.start+j)%len(r.buf)] = r.buf[(r.start+j+1)%len(r.buf)]
		}
		r.size--
		return true
	}
	return false
}

// RecentSet is a Ring with O(1) membership. Each index appears at most once;
// re-adding an index refreshes it to newest.
type RecentSet struct {
	ring    *Ring
	members []bool
}

// NewRecentSet returns a set over playlist positions [0, n) that remembers
// at most capacity indices.
func NewRecentSet(n, capacity int) *RecentSet {
	if n < 0 {
		n = 0
	}
	return &RecentSet{ring: NewRing(capacity), members: make([]bool, n)}
}

// Add marks i recently played.
func (s *RecentSet) Add(i int) {
	if i < 0 || i >= len(s.members) || s.ring.Cap() == 0 {
		return
	}
	if s.members[i] {
		s.ring.remove(i)
	}
	if evicted, ok := s.ring.Push(i); ok {
		s.members[evicted] = false
	}
	s.members[i] = true
}

// Contains reports whether i is recently played.
func (s *RecentSet) Contains(i int) bool {
	return i >= 0 && i < len(s.members) && s.members[i]
}

// Len returns the number of members.
func (s *RecentSet) Len() int { return s.ring.Len() }

// Values returns members oldest first.
func (s *RecentSet) Values() []int { return s.ring.Values() }

// Clear drops every member.
func (s *RecentSet) Clear() {
	for _, i := range s.ring.Values() {
		s.members[i] = false
	}
	s.ring.Clear()
}
