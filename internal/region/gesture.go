package region

import "github.com/ayusman/vrcpose/internal/landmark"

// Gesture values understood by the avatar's HandGesture parameters.
const (
	GestureNeutral = 0
	GestureOpen    = 1
	GestureFist    = 2
)

// GestureClassifier maps a detected hand to a gesture value.
type GestureClassifier interface {
	Classify(hand *landmark.HandLandmarks) int
}

// ClassifierFunc adapts a function to GestureClassifier.
type ClassifierFunc func(hand *landmark.HandLandmarks) int

// Classify calls f(hand).
func (f ClassifierFunc) Classify(hand *landmark.HandLandmarks) int {
	return f(hand)
}

// NeutralClassifier reports every hand as GestureNeutral.
type NeutralClassifier struct{}

// Classify implements GestureClassifier.
func (NeutralClassifier) Classify(*landmark.HandLandmarks) int {
	return GestureNeutral
}
