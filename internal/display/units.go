// Package display renders stored observations for people: unit conversions,
// elapsed-time phrases and the multi-line text report printed by the CLI.
package display

import "strconv"

// mphInMetersPerSecond is the exact length of one mile per hour in m/s.
const mphInMetersPerSecond = 0.44704

type Celsius float32

func (c Celsius) Fahrenheit() Fahrenheit {
	return Fahrenheit(float32(c)*(9.0/5.0) + 32.0)
}

func (c Celsius) String() string { return formatFloat(float32(c)) + " °C" }

type Fahrenheit float32

func (f Fahrenheit) Celsius() Celsius {
	return Celsius((float32(f) - 32.0) * (5.0 / 9.0))
}

func (f Fahrenheit) String() string { return formatFloat(float32(f)) + " °F" }

type MetersPerSecond float32

func (s MetersPerSecond) MilesPerHour() MilesPerHour {
	return MilesPerHour(float32(s) / mphInMetersPerSecond)
}

func (s MetersPerSecond) String() string { return formatFloat(float32(s)) + " m/s" }

type MilesPerHour float32

func (s MilesPerHour) MetersPerSecond() MetersPerSecond {
	return MetersPerSecond(float32(s) * mphInMetersPerSecond)
}

func (s MilesPerHour) String() string { return formatFloat(float32(s)) + " mph" }

// formatFloat prints the shortest decimal that round-trips as a float32.
func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}
