package listcrdt

// Version maps agent -> last seq integrated for that agent. An agent with
// no entry is treated as having last seq -1 (nothing integrated yet), so
// that the first item (seq 0) is always one greater than the last known seq.
type Version map[string]int64

// NewVersion returns an empty version vector.
func NewVersion() Version {
	return make(Version)
}

// Last returns the last integrated seq for agent, or -1 if none.
func (v Version) Last(agent string) int64 {
	if s, ok := v[agent]; ok {
		return s
	}
	return -1
}

// Contains reports whether id has already been integrated.
func (v Version) Contains(id Id) bool {
	return v.Last(id.Agent) >= int64(id.Seq)
}

// ContainsOptional reports whether an optional id is absent (always true) or
// already integrated.
func (v Version) ContainsOptional(id *Id) bool {
	if id == nil {
		return true
	}
	return v.Contains(*id)
}

// Advance records that id has now been integrated. It does not check for a
// skipped seq; callers reject gaps with a CausalGap error before calling
// it, and Advance itself just bumps the bookkeeping.
func (v Version) Advance(id Id) {
	v[id.Agent] = int64(id.Seq)
}

// Clone returns an independent copy of v.
func (v Version) Clone() Version {
	out := make(Version, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Equal reports whether two version vectors describe the same causal state.
func (v Version) Equal(other Version) bool {
	if len(v) != len(other) {
		return false
	}
	for agent, seq := range v {
		if o, ok := other[agent]; !ok || o != seq {
			return false
		}
	}
	return true
}
