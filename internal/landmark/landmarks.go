// Package landmark defines the per-frame body and hand observations consumed by the tracker.
package landmark

import (
	"encoding/json"
	"fmt"
)

// Pose landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/pose_landmarker
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftPinky      = 17
	RightPinky     = 18
	LeftIndex      = 19
	RightIndex     = 20
	LeftThumb      = 21
	RightThumb     = 22
	LeftHip        = 23
	RightHip       = 24
	LeftKnee       = 25
	RightKnee      = 26
	LeftAnkle      = 27
	RightAnkle     = 28
	LeftHeel       = 29
	RightHeel      = 30
	LeftFootIndex  = 31
	RightFootIndex = 32
	NumPose        = 33
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist     = 0
	ThumbCMC  = 1
	ThumbMCP  = 2
	ThumbIP   = 3
	ThumbTip  = 4
	IndexMCP  = 5
	IndexPIP  = 6
	IndexDIP  = 7
	IndexTip  = 8
	MiddleMCP = 9
	MiddlePIP = 10
	MiddleDIP = 11
	MiddleTip = 12
	RingMCP   = 13
	RingPIP   = 14
	RingDIP   = 15
	RingTip   = 16
	PinkyMCP  = 17
	PinkyPIP  = 18
	PinkyDIP  = 19
	PinkyTip  = 20
	NumHand   = 21
)

// Landmark is a point in normalized image space with a detection confidence.
// Visibility is passed through as reported; nothing clamps it on input.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// BodyLandmarks represents the 33 pose landmarks detected by MediaPipe.
// Landmarks missing from the input keep their zero value and never pass a gate.
type BodyLandmarks struct {
	Points [NumPose]Landmark `json:"landmarks"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points [NumHand]Landmark `json:"landmarks"`
	Score  float64           `json:"score,omitempty"`
}

// Frame is one complete set of observations processed atomically by the tracker.
type Frame struct {
	Timestamp int64           `json:"timestamp"` // milliseconds
	Body      *BodyLandmarks  `json:"body"`
	Hands     []HandLandmarks `json:"hands,omitempty"`
}

// Side identifies the left or right half of the body.
type Side string

const (
	Left  Side = "Left"
	Right Side = "Right"
)

// Midline is the horizontal frame position that separates left and right hands.
const Midline = 0.5

// ResolveSide decides which side a hand belongs to from its wrist position.
// A wrist left of the midline is a left hand.
func ResolveSide(h *HandLandmarks) Side {
	if h.Points[Wrist].X < Midline {
		return Left
	}
	return Right
}

// DecodeFrame parses one JSON-encoded frame.
func DecodeFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &f, nil
}
