package reach

// #region interval

// Interval is a closed numeric range [Lo, Hi] in native axis units.
type Interval struct {
	Lo float64
	Hi float64
}

// Intersect returns the overlap of two intervals. The result may be empty.
func (iv Interval) Intersect(o Interval) Interval {
	out := iv
	if o.Lo > out.Lo {
		out.Lo = o.Lo
	}
	if o.Hi < out.Hi {
		out.Hi = o.Hi
	}
	return out
}

// Empty reports whether the interval contains no values.
func (iv Interval) Empty() bool { return iv.Lo > iv.Hi }

// Contains reports whether o lies entirely within iv.
func (iv Interval) Contains(o Interval) bool {
	return iv.Lo <= o.Lo && o.Hi <= iv.Hi
}

// Mid returns the interval midpoint.
func (iv Interval) Mid() float64 { return (iv.Lo + iv.Hi) / 2 }

// #endregion interval
