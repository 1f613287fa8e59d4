package model

import "fmt"

// FocusMinutes is the length of a focus interval, in minutes.
type FocusMinutes int

const (
	FocusTwentyFive FocusMinutes = 25
	FocusThirty     FocusMinutes = 30
	FocusFortyFive  FocusMinutes = 45
	FocusFifty      FocusMinutes = 50
)

// DefaultFocusMinutes is used when no valid focus length is stored.
const DefaultFocusMinutes = FocusTwentyFive

// FocusOptions lists every selectable focus length in menu order.
var FocusOptions = []FocusMinutes{FocusTwentyFive, FocusThirty, FocusFortyFive, FocusFifty}

// Valid reports whether minutes is one of the selectable focus lengths.
func (minutes FocusMinutes) Valid() bool {
	for _, option := range FocusOptions {
		if option == minutes {
			return true
		}
	}
	return false
}

// Seconds returns the interval length in seconds.
func (minutes FocusMinutes) Seconds() int {
	return int(minutes) * 60
}

func (minutes FocusMinutes) String() string {
	return fmt.Sprintf("%d minutes", int(minutes))
}

// BreakMinutes is the length of a break interval, in minutes.
type BreakMinutes int

const (
	BreakFive BreakMinutes = 5
	BreakTen  BreakMinutes = 10
)

// DefaultBreakMinutes is used when no valid break length is stored.
const DefaultBreakMinutes = BreakFive

// BreakOptions lists every selectable break length in menu order.
var BreakOptions = []BreakMinutes{BreakFive, BreakTen}

// Valid reports whether minutes is one of the selectable break lengths.
func (minutes BreakMinutes) Valid() bool {
	for _, option := range BreakOptions {
		if option == minutes {
			return true
		}
	}
	return false
}

// Seconds returns the interval length in seconds.
func (minutes BreakMinutes) Seconds() int {
	return int(minutes) * 60
}

func (minutes BreakMinutes) String() string {
	return fmt.Sprintf("%d minutes", int(minutes))
}
