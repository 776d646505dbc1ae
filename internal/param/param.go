// Package param defines the avatar parameter channels driven by the tracker.
package param

import (
	"fmt"
	"math"
	"strings"

	"github.com/ayusman/vrcpose/internal/landmark"
)

// AddressPrefix is the OSC namespace of avatar parameters.
const AddressPrefix = "/avatar/parameters/"

// Name identifies a channel. It is also the last element of the channel's OSC address.
type Name string

// Channel names.
const (
	BodyRotation      Name = "BodyRotation"
	BodyDetected      Name = "BodyDetected"
	LeftArmX          Name = "LeftArmX"
	LeftArmHeight     Name = "LeftArmHeight"
	LeftArmDetected   Name = "LeftArmDetected"
	RightArmX         Name = "RightArmX"
	RightArmHeight    Name = "RightArmHeight"
	RightArmDetected  Name = "RightArmDetected"
	LeftLegLift       Name = "LeftLegLift"
	LeftLegDetected   Name = "LeftLegDetected"
	RightLegLift      Name = "RightLegLift"
	RightLegDetected  Name = "RightLegDetected"
	LeftHandGesture   Name = "LeftHandGesture"
	LeftHandDetected  Name = "LeftHandDetected"
	RightHandGesture  Name = "RightHandGesture"
	RightHandDetected Name = "RightHandDetected"

	// TrackingEnabled is toggled by the runtime, not derived from landmarks.
	TrackingEnabled Name = "TrackingEnabled"
)

// Address returns the channel's OSC address.
func (n Name) Address() string {
	return AddressPrefix + string(n)
}

// Sided builds a per-side channel name such as LeftArmX from Left and "ArmX".
func Sided(side landmark.Side, suffix string) Name {
	return Name(string(side) + suffix)
}

// Kind is the payload type of a channel.
type Kind int

const (
	// KindFloat channels carry a float32 value.
	KindFloat Kind = iota
	// KindFlag channels carry 0.0 or 1.0 as a float32 and are never smoothed.
	KindFlag
	// KindInt channels carry an int32.
	KindInt
	// KindBool channels carry an OSC true/false.
	KindBool
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindFlag:
		return "flag"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Spec describes one channel as the avatar declares it.
type Spec struct {
	Name    Name    `json:"name"`
	Kind    Kind    `json:"-"`
	Default float64 `json:"default"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// Arg converts v to the OSC argument type of the channel.
func (s Spec) Arg(v float64) any {
	switch s.Kind {
	case KindInt:
		return int32(math.Round(v))
	case KindBool:
		return v != 0
	default:
		return float32(v)
	}
}

// Smoothed reports whether the channel keeps filter state between frames.
func (s Spec) Smoothed() bool {
	return s.Kind == KindFloat
}

var specs = []Spec{
	{Name: BodyRotation, Kind: KindFloat, Min: -1, Max: 1},
	{Name: BodyDetected, Kind: KindFlag, Min: 0, Max: 1},
	{Name: LeftArmX, Kind: KindFloat, Min: -1, Max: 1},
	{Name: LeftArmHeight, Kind: KindFloat, Min: -1, Max: 1},
	{Name: LeftArmDetected, Kind: KindFlag, Min: 0, Max: 1},
	{Name: RightArmX, Kind: KindFloat, Min: -1, Max: 1},
	{Name: RightArmHeight, Kind: KindFloat, Min: -1, Max: 1},
	{Name: RightArmDetected, Kind: KindFlag, Min: 0, Max: 1},
	{Name: LeftLegLift, Kind: KindFloat, Min: 0, Max: 1},
	{Name: LeftLegDetected, Kind: KindFlag, Min: 0, Max: 1},
	{Name: RightLegLift, Kind: KindFloat, Min: 0, Max: 1},
	{Name: RightLegDetected, Kind: KindFlag, Min: 0, Max: 1},
	{Name: LeftHandGesture, Kind: KindInt, Min: 0, Max: 2},
	{Name: LeftHandDetected, Kind: KindFlag, Min: 0, Max: 1},
	{Name: RightHandGesture, Kind: KindInt, Min: 0, Max: 2},
	{Name: RightHandDetected, Kind: KindFlag, Min: 0, Max: 1},
	{Name: TrackingEnabled, Kind: KindBool, Min: 0, Max: 1},
}

var byName = func() map[Name]Spec {
	m := make(map[Name]Spec, len(specs))
	for _, s := range specs {
		m[s.Name] = s
	}
	return m
}()

// All returns every channel spec in emission order.
func All() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// Lookup returns the spec for name.
func Lookup(name Name) (Spec, bool) {
	s, ok := byName[name]
	return s, ok
}

// MustLookup is like Lookup but panics on an unknown name.
func MustLookup(name Name) Spec {
	s, ok := byName[name]
	if !ok {
		panic(fmt.Sprintf("param: unknown channel %q", name))
	}
	return s
}

// Parse resolves a channel name case-insensitively, so keys lowercased by a
// config loader still match.
func Parse(s string) (Name, error) {
	for _, spec := range specs {
		if strings.EqualFold(string(spec.Name), s) {
			return spec.Name, nil
		}
	}
	return "", fmt.Errorf("unknown channel %q", s)
}
