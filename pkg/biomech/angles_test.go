package biomech

import (
	"math"
	"testing"

	"shot-analysis/pkg/pose"
)

func joint(j pose.Joint, x, y, conf float64) pose.Keypoint {
	return pose.Keypoint{Joint: j, X: x, Y: y, Confidence: conf, Source: pose.DetectedBy("test")}
}

func skeleton(t *testing.T, kps ...pose.Keypoint) pose.Skeleton {
	t.Helper()
	s, err := pose.NewSkeleton(kps...)
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}
	return s
}

// upright right side: straight leg, arm bent at 90 degrees with forearm vertical
func uprightRight(conf float64) []pose.Keypoint {
	return []pose.Keypoint{
		joint(pose.RightShoulder, 100, 100, conf),
		joint(pose.LeftShoulder, 60, 100, conf),
		joint(pose.RightElbow, 100, 150, conf),
		joint(pose.RightWrist, 150, 150, conf),
		joint(pose.RightHip, 100, 200, conf),
		joint(pose.RightKnee, 100, 260, conf),
		joint(pose.RightAnkle, 100, 320, conf),
	}
}

func TestComputeBasicAngles(t *testing.T) {
	c := NewCalculator(DefaultConfig())
	angles := c.Compute(skeleton(t, uprightRight(0.9)...))

	want := map[AngleName]float64{
		Elbow:        90,
		Knee:         180,
		Hip:          180,
		ShoulderTilt: 0,
		Release:      0,
	}
	for name, w := range want {
		got, ok := angles.Get(name)
		if !ok {
			t.Errorf("%s missing", name)
			continue
		}
		if math.Abs(got-w) > 1e-9 {
			t.Errorf("%s = %v, want %v", name, got, w)
		}
	}
	if _, ok := angles.Get(Wrist); ok {
		t.Error("wrist angle reported without an index keypoint")
	}
}

func TestComputeOmitsLowConfidenceAngles(t *testing.T) {
	kps := uprightRight(0.9)
	kps[5] = joint(pose.RightKnee, 100, 260, 0.2)
	angles := NewCalculator(DefaultConfig()).Compute(skeleton(t, kps...))

	if v, ok := angles.Get(Knee); ok {
		t.Errorf("knee = %v, want omitted", v)
	}
	if v, ok := angles.Get(Hip); ok {
		t.Errorf("hip = %v, want omitted", v)
	}
	if _, ok := angles.Get(Elbow); !ok {
		t.Error("elbow omitted although its joints are visible")
	}
}

func TestComputeEmptySkeleton(t *testing.T) {
	angles := NewCalculator(DefaultConfig()).Compute(pose.Skeleton{})
	if len(angles) != 0 {
		t.Errorf("angles = %v, want none", angles)
	}
}

func TestComputeCoincidentJointsOmitted(t *testing.T) {
	s := skeleton(t,
		joint(pose.RightShoulder, 100, 100, 0.9),
		joint(pose.RightElbow, 100, 100, 0.9),
		joint(pose.RightWrist, 150, 150, 0.9),
	)
	angles := NewCalculator(DefaultConfig()).Compute(s)
	if v, ok := angles.Get(Elbow); ok {
		t.Errorf("elbow = %v, want omitted for coincident joints", v)
	}
}

func TestReleaseAngle(t *testing.T) {
	s := skeleton(t,
		joint(pose.RightElbow, 100, 100, 0.9),
		joint(pose.RightWrist, 110, 90, 0.9),
	)
	angles := NewCalculator(DefaultConfig()).Compute(s)
	if v, _ := angles.Get(Release); math.Abs(v-45) > 1e-9 {
		t.Errorf("release = %v, want 45", v)
	}
}

func TestShootingSide(t *testing.T) {
	tests := []struct {
		name   string
		policy SidePolicy
		kps    []pose.Keypoint
		want   pose.Side
	}{
		{"higher left wrist", SideAuto, []pose.Keypoint{
			joint(pose.RightWrist, 0, 200, 0.9), joint(pose.LeftWrist, 0, 100, 0.9)}, pose.Left},
		{"higher right wrist", SideAuto, []pose.Keypoint{
			joint(pose.RightWrist, 0, 100, 0.9), joint(pose.LeftWrist, 0, 200, 0.9)}, pose.Right},
		{"only left visible", SideAuto, []pose.Keypoint{
			joint(pose.RightWrist, 0, 100, 0.1), joint(pose.LeftWrist, 0, 200, 0.9)}, pose.Left},
		{"no wrists", SideAuto, nil, pose.Right},
		{"forced right", SideRight, []pose.Keypoint{
			joint(pose.RightWrist, 0, 200, 0.9), joint(pose.LeftWrist, 0, 100, 0.9)}, pose.Right},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Side = tt.policy
			got := NewCalculator(cfg).ShootingSide(skeleton(t, tt.kps...))
			if got != tt.want {
				t.Errorf("ShootingSide = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignalsWristLevel(t *testing.T) {
	base := []pose.Keypoint{
		joint(pose.RightShoulder, 100, 100, 0.9),
		joint(pose.RightHip, 100, 200, 0.9),
	}
	tests := []struct {
		name   string
		wristY float64
		want   Level
	}{
		{"above shoulder", 50, AboveShoulder},
		{"between", 150, BetweenHipAndShoulder},
		{"below hip", 250, BelowHip},
	}
	c := NewCalculator(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kps := append([]pose.Keypoint{joint(pose.RightWrist, 120, tt.wristY, 0.9)}, base...)
			sig := c.Signals(skeleton(t, kps...), nil)
			if sig.Wrist != tt.want {
				t.Errorf("level = %v, want %v", sig.Wrist, tt.want)
			}
			if !sig.HasWristHeight || sig.WristHeight != 100-tt.wristY {
				t.Errorf("wrist height = %v (%v), want %v", sig.WristHeight, sig.HasWristHeight, 100-tt.wristY)
			}
		})
	}

	sig := c.Signals(skeleton(t, base...), nil)
	if sig.Wrist != LevelUnknown || sig.HasWristHeight {
		t.Errorf("signals without wrist = %+v, want unknown", sig)
	}
}

func TestRoundedAndJSON(t *testing.T) {
	a := AngleSet{Elbow: 92.04, Release: 51.06}
	r := a.Rounded()
	if r[Elbow] != 92.0 || r[Release] != 51.1 {
		t.Errorf("Rounded = %v", r)
	}
	if a[Elbow] != 92.04 {
		t.Error("Rounded mutated the source set")
	}
	raw, err := a.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"elbow":92,"release":51.1}` {
		t.Errorf("json = %s", raw)
	}
	if names := a.Names(); len(names) != 2 || names[0] != Elbow || names[1] != Release {
		t.Errorf("Names = %v", names)
	}
}
