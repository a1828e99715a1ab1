package gesture

// Predicate decides whether a single hand performs a gesture. Predicates are
// evaluated fresh every frame and keep no memory.
type Predicate func(o Observation, vp Viewport) bool

// Classify applies p to the primary hand. No hands, or no predicate, is
// never a gesture.
func Classify(p Predicate, hands []Observation, vp Viewport) bool {
	if p == nil || len(hands) == 0 {
		return false
	}
	return p(hands[0], vp)
}

// Open matches an open palm.
func Open(o Observation, _ Viewport) bool {
	return o.Open
}

// Above matches a hand whose palm is higher than frac of the viewport height,
// measured from the top.
func Above(frac float64) Predicate {
	return func(o Observation, vp Viewport) bool {
		return o.Y < vp.Height*frac
	}
}

// Nearer matches a hand whose depth exceeds threshold.
func Nearer(threshold float64) Predicate {
	return func(o Observation, _ Viewport) bool {
		return o.Depth > threshold
	}
}

// AnyOf matches when at least one predicate does.
func AnyOf(ps ...Predicate) Predicate {
	return func(o Observation, vp Viewport) bool {
		for _, p := range ps {
			if p(o, vp) {
				return true
			}
		}
		return false
	}
}

// AllOf matches when every predicate does.
func AllOf(ps ...Predicate) Predicate {
	return func(o Observation, vp Viewport) bool {
		for _, p := range ps {
			if !p(o, vp) {
				return false
			}
		}
		return true
	}
}
