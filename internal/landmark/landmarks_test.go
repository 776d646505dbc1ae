package landmark

import (
	"testing"
)

func TestResolveSide(t *testing.T) {
	tests := []struct {
		name  string
		wrist float64
		want  Side
	}{
		{name: "left of midline", wrist: 0.2, want: Left},
		{name: "just left of midline", wrist: 0.4999, want: Left},
		{name: "on midline", wrist: 0.5, want: Right},
		{name: "right of midline", wrist: 0.8, want: Right},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hand := OpenPalmHand(tt.wrist)
			if got := ResolveSide(&hand); got != tt.want {
				t.Errorf("ResolveSide() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecodeFrame(t *testing.T) {
	t.Run("body and hands", func(t *testing.T) {
		data := []byte(`{
			"timestamp": 1200,
			"body": {"landmarks": [
				{"x": 0.5, "y": 0.1, "z": -0.3, "visibility": 0.99},
				{"x": 0.4, "y": 0.2, "z": 0.0, "visibility": 0.5}
			]},
			"hands": [{"landmarks": [{"x": 0.3, "y": 0.8, "z": 0.0, "visibility": 0.7}], "score": 0.9}]
		}`)

		f, err := DecodeFrame(data)
		if err != nil {
			t.Fatalf("DecodeFrame() error = %v", err)
		}

		if f.Timestamp != 1200 {
			t.Errorf("timestamp = %d, want 1200", f.Timestamp)
		}
		if f.Body == nil {
			t.Fatal("expected body to be decoded")
		}
		if f.Body.Points[Nose].Visibility != 0.99 {
			t.Errorf("nose visibility = %f, want 0.99", f.Body.Points[Nose].Visibility)
		}
		if f.Body.Points[1].X != 0.4 {
			t.Errorf("landmark 1 x = %f, want 0.4", f.Body.Points[1].X)
		}

		// Landmarks absent from the input stay zero and therefore undetected
		if f.Body.Points[LeftShoulder] != (Landmark{}) {
			t.Errorf("missing landmark should be zero, got %+v", f.Body.Points[LeftShoulder])
		}

		if len(f.Hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(f.Hands))
		}
		if ResolveSide(&f.Hands[0]) != Left {
			t.Error("hand with wrist x=0.3 should resolve to Left")
		}
	})

	t.Run("null body", func(t *testing.T) {
		f, err := DecodeFrame([]byte(`{"timestamp": 5, "body": null}`))
		if err != nil {
			t.Fatalf("DecodeFrame() error = %v", err)
		}
		if f.Body != nil {
			t.Error("expected nil body")
		}
		if len(f.Hands) != 0 {
			t.Errorf("expected no hands, got %d", len(f.Hands))
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := DecodeFrame([]byte(`{"body": [`)); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}

func TestStandingBody(t *testing.T) {
	body := StandingBody()

	t.Run("all landmarks visible", func(t *testing.T) {
		for i, p := range body.Points {
			if p.Visibility <= 0.5 {
				t.Errorf("landmark %d visibility = %f, want > 0.5", i, p.Visibility)
			}
		}
	})

	t.Run("hips above knees", func(t *testing.T) {
		if body.Points[LeftHip].Y >= body.Points[LeftKnee].Y {
			t.Error("left hip should be above left knee (lower Y value)")
		}
		if body.Points[RightHip].Y >= body.Points[RightKnee].Y {
			t.Error("right hip should be above right knee (lower Y value)")
		}
	})

	t.Run("wrists below shoulders", func(t *testing.T) {
		if body.Points[LeftWrist].Y <= body.Points[LeftShoulder].Y {
			t.Error("left wrist should hang below left shoulder")
		}
	})
}
