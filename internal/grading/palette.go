package grading

import "math/rand/v2"

// Palette holds the tag colors assigned to new subjects.
var Palette = []string{"#FFD600", "#00C9A7", "#2196F3", "#FF5252", "#A259FF", "#6A6AFF"}

// RandomColor picks a palette color.
func RandomColor() string {
	return Palette[rand.IntN(len(Palette))]
}
