package clock

import "time"

// Clock abstracts time.Now so services can be tested at a fixed instant.
type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to the Clock interface.
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}

// NewSystem returns the wall clock in UTC.
func NewSystem() Clock {
	return Func(func() time.Time {
		return time.Now().UTC()
	})
}

// NewFixed returns a clock pinned to one instant, for tests.
func NewFixed(t time.Time) Clock {
	t = t.UTC()
	return Func(func() time.Time {
		return t
	})
}
