package landmark

// StandingBody returns a preset BodyLandmarks of a person standing upright facing
// the camera with arms relaxed. Every landmark is fully visible.
func StandingBody() BodyLandmarks {
	var b BodyLandmarks

	set := func(i int, x, y, z float64) {
		b.Points[i] = Landmark{X: x, Y: y, Z: z, Visibility: 0.99}
	}

	set(Nose, 0.50, 0.15, -0.30)
	set(LeftEyeInner, 0.48, 0.13, -0.28)
	set(LeftEye, 0.47, 0.13, -0.28)
	set(LeftEyeOuter, 0.46, 0.13, -0.28)
	set(RightEyeInner, 0.52, 0.13, -0.28)
	set(RightEye, 0.53, 0.13, -0.28)
	set(RightEyeOuter, 0.54, 0.13, -0.28)
	set(LeftEar, 0.44, 0.14, -0.15)
	set(RightEar, 0.56, 0.14, -0.15)
	set(MouthLeft, 0.48, 0.18, -0.27)
	set(MouthRight, 0.52, 0.18, -0.27)

	// Shoulders: left landmark sits on the image left in this fixture
	set(LeftShoulder, 0.40, 0.30, 0.00)
	set(RightShoulder, 0.60, 0.30, 0.00)

	// Arms hanging down beside the torso
	set(LeftElbow, 0.38, 0.45, 0.02)
	set(RightElbow, 0.62, 0.45, 0.02)
	set(LeftWrist, 0.37, 0.58, 0.04)
	set(RightWrist, 0.63, 0.58, 0.04)
	set(LeftPinky, 0.37, 0.61, 0.04)
	set(RightPinky, 0.63, 0.61, 0.04)
	set(LeftIndex, 0.37, 0.62, 0.03)
	set(RightIndex, 0.63, 0.62, 0.03)
	set(LeftThumb, 0.38, 0.60, 0.03)
	set(RightThumb, 0.62, 0.60, 0.03)

	// Hips above knees above ankles
	set(LeftHip, 0.44, 0.60, 0.00)
	set(RightHip, 0.56, 0.60, 0.00)
	set(LeftKnee, 0.44, 0.78, 0.01)
	set(RightKnee, 0.56, 0.78, 0.01)
	set(LeftAnkle, 0.44, 0.95, 0.02)
	set(RightAnkle, 0.56, 0.95, 0.02)
	set(LeftHeel, 0.44, 0.97, 0.04)
	set(RightHeel, 0.56, 0.97, 0.04)
	set(LeftFootIndex, 0.44, 0.98, -0.04)
	set(RightFootIndex, 0.56, 0.98, -0.04)

	return b
}

// OpenPalmHand returns a preset HandLandmarks of an open palm with its wrist at x.
// All fingers are extended upward and every landmark is visible.
func OpenPalmHand(x float64) HandLandmarks {
	h := HandLandmarks{Score: 0.95}

	set := func(i int, dx, y, z float64) {
		h.Points[i] = Landmark{X: x + dx, Y: y, Z: z, Visibility: 0.9}
	}

	set(Wrist, 0.00, 0.80, 0.00)

	// Thumb extended to the side
	set(ThumbCMC, 0.05, 0.75, 0.02)
	set(ThumbMCP, 0.12, 0.70, 0.03)
	set(ThumbIP, 0.18, 0.65, 0.03)
	set(ThumbTip, 0.23, 0.60, 0.03)

	// Index finger extended upward
	set(IndexMCP, 0.05, 0.68, 0.00)
	set(IndexPIP, 0.07, 0.55, 0.00)
	set(IndexDIP, 0.08, 0.45, 0.00)
	set(IndexTip, 0.08, 0.35, 0.00)

	// Middle finger extended upward (slightly longer)
	set(MiddleMCP, 0.00, 0.66, 0.00)
	set(MiddlePIP, 0.00, 0.52, 0.00)
	set(MiddleDIP, 0.00, 0.40, 0.00)
	set(MiddleTip, 0.00, 0.28, 0.00)

	// Ring finger extended upward
	set(RingMCP, -0.05, 0.68, 0.00)
	set(RingPIP, -0.07, 0.55, 0.00)
	set(RingDIP, -0.08, 0.45, 0.00)
	set(RingTip, -0.08, 0.35, 0.00)

	// Pinky finger extended upward
	set(PinkyMCP, -0.10, 0.70, 0.00)
	set(PinkyPIP, -0.13, 0.60, 0.00)
	set(PinkyDIP, -0.15, 0.50, 0.00)
	set(PinkyTip, -0.16, 0.42, 0.00)

	return h
}
