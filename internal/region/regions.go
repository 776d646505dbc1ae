package region

import (
	"github.com/ayusman/vrcpose/internal/landmark"
	"github.com/ayusman/vrcpose/internal/param"
)

// ShoulderSpan is the shoulder x-distance that corresponds to a full body turn.
const ShoulderSpan = 0.5

type joints struct {
	shoulder, elbow, wrist int
	hip, knee, ankle       int
}

var sideJoints = map[landmark.Side]joints{
	landmark.Left: {
		shoulder: landmark.LeftShoulder, elbow: landmark.LeftElbow, wrist: landmark.LeftWrist,
		hip: landmark.LeftHip, knee: landmark.LeftKnee, ankle: landmark.LeftAnkle,
	},
	landmark.Right: {
		shoulder: landmark.RightShoulder, elbow: landmark.RightElbow, wrist: landmark.RightWrist,
		hip: landmark.RightHip, knee: landmark.RightKnee, ankle: landmark.RightAnkle,
	},
}

// Body derives BodyRotation from the shoulder line.
func Body() *Region {
	return &Region{
		Name:     "body",
		Detected: param.BodyDetected,
		Required: []int{landmark.LeftShoulder, landmark.RightShoulder},
		Outputs: []Output{
			{Name: param.BodyRotation, Measure: func(pts []landmark.Landmark) float64 {
				return (pts[landmark.RightShoulder].X - pts[landmark.LeftShoulder].X) / ShoulderSpan
			}},
		},
	}
}

// Arm derives the arm depth and height of one side.
func Arm(side landmark.Side) *Region {
	j := sideJoints[side]
	return &Region{
		Name:     string(side) + " arm",
		Detected: param.Sided(side, "ArmDetected"),
		Required: []int{j.shoulder, j.elbow, j.wrist},
		Outputs: []Output{
			{Name: param.Sided(side, "ArmX"), Measure: func(pts []landmark.Landmark) float64 {
				return pts[j.wrist].Z - pts[j.shoulder].Z
			}},
			{Name: param.Sided(side, "ArmHeight"), Measure: func(pts []landmark.Landmark) float64 {
				return pts[j.shoulder].Y - pts[j.wrist].Y
			}},
		},
	}
}

// Leg derives the leg lift of one side.
func Leg(side landmark.Side) *Region {
	j := sideJoints[side]
	return &Region{
		Name:     string(side) + " leg",
		Detected: param.Sided(side, "LegDetected"),
		Required: []int{j.hip, j.knee, j.ankle},
		Outputs: []Output{
			{Name: param.Sided(side, "LegLift"), Measure: func(pts []landmark.Landmark) float64 {
				return (pts[j.hip].Y - pts[j.knee].Y) * 2
			}},
		},
	}
}

// Hand derives the gesture of one side's hand using c.
func Hand(side landmark.Side, c GestureClassifier) *Region {
	if c == nil {
		c = NeutralClassifier{}
	}
	return &Region{
		Name:     string(side) + " hand",
		Detected: param.Sided(side, "HandDetected"),
		Required: []int{landmark.IndexTip, landmark.MiddleTip, landmark.RingTip, landmark.PinkyTip},
		Outputs: []Output{
			{Name: param.Sided(side, "HandGesture"), Measure: func(pts []landmark.Landmark) float64 {
				var h landmark.HandLandmarks
				copy(h.Points[:], pts)
				return float64(c.Classify(&h))
			}},
		},
	}
}

// PoseRegions returns the body regions in processing order.
func PoseRegions() []*Region {
	return []*Region{
		Body(),
		Arm(landmark.Left),
		Arm(landmark.Right),
		Leg(landmark.Left),
		Leg(landmark.Right),
	}
}

// HandRegions returns one hand region per side.
func HandRegions(c GestureClassifier) map[landmark.Side]*Region {
	return map[landmark.Side]*Region{
		landmark.Left:  Hand(landmark.Left, c),
		landmark.Right: Hand(landmark.Right, c),
	}
}
