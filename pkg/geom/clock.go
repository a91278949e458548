package geom

import "math/rand/v2"

// saltBits is the width of the random salt in the low bits of a
// timestamp. Two clocks draw the same salt with probability 2^-32.
const saltBits = 32

// Clock is a model's logical clock. Each tick combines a counter with a
// per-clock salt, so two clones that edit the same entity independently
// never produce the same timestamp.
type Clock struct {
	counter int
	salt    int
}

// NewClock returns a clock with a fresh random salt.
func NewClock() *Clock {
	return &Clock{salt: newSalt(0)}
}

func newSalt(not int) int {
	for {
		s := 1 + rand.IntN(1<<saltBits-1)
		if s != not {
			return s
		}
	}
}

// Next advances the counter and returns the new timestamp.
func (c *Clock) Next() int {
	c.counter++
	return c.counter<<saltBits | c.salt
}

// Now returns the most recent timestamp without advancing.
func (c *Clock) Now() int {
	return c.counter<<saltBits | c.salt
}

// Observe moves the counter past a timestamp seen in another model.
func (c *Clock) Observe(ts int) {
	if n := ts >> saltBits; n > c.counter {
		c.counter = n
	}
}

// Fork returns a clock that continues from the same counter with a
// different salt.
func (c *Clock) Fork() *Clock {
	return &Clock{counter: c.counter, salt: newSalt(c.salt)}
}
