package display

import "github.com/jonboulle/clockwork"

// clock supplies "now" for the "(… ago)" part of Text. Tests pin it with SetClock.
var clock = clockwork.NewRealClock()

// SetClock replaces the clock Text measures elapsed time against. nil restores
// the wall clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
