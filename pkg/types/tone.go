package types

import (
	"fmt"
	"strconv"
)

// Tone is one of the five concrete Mandarin tones.
type Tone uint8

const (
	Tone1 Tone = iota + 1 // flat
	Tone2                 // rising
	Tone3                 // falling-rising
	Tone4                 // falling
	Tone5                 // neutral
)

// ParseTone returns the tone for a numeric code 1-5.
func ParseTone(n int) (Tone, error) {
	if n < int(Tone1) || n > int(Tone5) {
		return 0, fmt.Errorf("%w: tone %d", ErrInvalidEntry, n)
	}
	return Tone(n), nil
}

// ToneFromDigit parses a single ASCII tone digit.
func ToneFromDigit(c byte) (Tone, bool) {
	if c < '1' || c > '5' {
		return 0, false
	}
	return Tone(c - '0'), true
}

// Valid reports whether t is one of the five concrete tones.
func (t Tone) Valid() bool {
	return t >= Tone1 && t <= Tone5
}

// Number returns the numeric code of the tone.
func (t Tone) Number() int {
	return int(t)
}

// Digit returns the ASCII digit used in the stored encoding.
func (t Tone) Digit() byte {
	return '0' + byte(t)
}

func (t Tone) String() string {
	if !t.Valid() {
		return "Tone(" + strconv.Itoa(int(t)) + ")"
	}
	return strconv.Itoa(int(t))
}
