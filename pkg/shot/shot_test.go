package shot

import (
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"shot-analysis/pkg/biomech"
	"shot-analysis/pkg/geometry"
	"shot-analysis/pkg/phase"
	"shot-analysis/pkg/pose"
	"shot-analysis/pkg/quality"
)

// at returns the point length pixels from origin in direction deg, measured
// counter-clockwise from the x axis with y pointing up.
func at(origin geometry.Point, deg, length float64) geometry.Point {
	r := deg * math.Pi / 180
	return geometry.Point{X: origin.X + length*math.Cos(r), Y: origin.Y - length*math.Sin(r)}
}

// setPoint is a right-handed shooter at the set point: elbow 92, release 51,
// wrist 55, shoulder tilt 3, hip 168, knee 128.
func setPoint() map[pose.Joint]geometry.Point {
	elbow := geometry.Point{X: 300, Y: 300}
	wrist := at(elbow, 51, 60)
	shoulder := at(elbow, 143, 60)
	hip := at(shoulder, -90, 150)
	knee := at(hip, -78, 120)

	return map[pose.Joint]geometry.Point{
		pose.Nose:          {X: 260, Y: 220},
		pose.RightElbow:    elbow,
		pose.RightWrist:    wrist,
		pose.RightIndex:    at(wrist, 286, 20),
		pose.RightShoulder: shoulder,
		pose.LeftShoulder:  at(shoulder, 183, 80),
		pose.RightHip:      hip,
		pose.LeftHip:       {X: hip.X - 70, Y: hip.Y},
		pose.RightKnee:     knee,
		pose.LeftKnee:      {X: knee.X - 70, Y: knee.Y},
		pose.RightAnkle:    at(knee, 230, 120),
	}
}

func detection(detector string, joints map[pose.Joint]geometry.Point, conf float64) pose.Detection {
	d := pose.Detection{Detector: detector}
	for j, p := range joints {
		d.Keypoints = append(d.Keypoints, pose.Keypoint{
			Joint: j, X: p.X, Y: p.Y, Confidence: conf, Source: pose.DetectedBy(detector),
		})
	}
	return d
}

func blankFrame(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC3)
}

func drawBall(img *gocv.Mat, center image.Point, radius int) {
	leather := color.RGBA{R: 200, G: 90, B: 30}
	seam := color.RGBA{R: 20, G: 20, B: 20}
	gocv.Circle(img, center, radius, leather, -1)
	gocv.Line(img, image.Pt(center.X-radius, center.Y), image.Pt(center.X+radius, center.Y), seam, 2)
	gocv.Line(img, image.Pt(center.X, center.Y-radius), image.Pt(center.X, center.Y+radius), seam, 2)
}

func TestAnalyzeImageEndToEnd(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	defer a.Close()

	img := blankFrame(720, 640)
	defer img.Close()

	yolo := detection("yolo", setPoint(), 0.9)
	yolo.Box = pose.BoundingBox{MinX: 140, MinY: 200, MaxX: 380, MaxY: 650}
	bystander := pose.Detection{Detector: "yolo", Person: 1, Box: pose.BoundingBox{MinX: 500, MinY: 400, MaxX: 600, MaxY: 600}}

	res := a.AnalyzeImage(img, []pose.Detection{
		detection("mediapipe", setPoint(), 0.9),
		yolo,
		bystander,
	}, nil)

	if res.People != 2 {
		t.Errorf("People = %d, want 2", res.People)
	}
	if res.Box != yolo.Box {
		t.Errorf("subject box = %+v, want the shooter", res.Box)
	}
	if res.Estimated || res.Ball != nil {
		t.Errorf("estimated=%t ball=%v on a frame without a ball", res.Estimated, res.Ball)
	}
	if got := res.Skeleton.Contributors(pose.RightWrist); len(got) != 2 {
		t.Errorf("wrist contributors = %v, want both detectors", got)
	}

	want := biomech.AngleSet{
		biomech.Elbow:        92,
		biomech.Knee:         128,
		biomech.Hip:          168,
		biomech.ShoulderTilt: 3,
		biomech.Wrist:        55,
		biomech.Release:      51,
	}
	got := res.Angles.Rounded()
	if len(got) != len(want) {
		t.Fatalf("angles = %v, want %v", got, want)
	}
	for name, v := range want {
		if got[name] != v {
			t.Errorf("%s = %.1f, want %.1f", name, got[name], v)
		}
	}

	if res.Wrist != biomech.AboveShoulder {
		t.Errorf("wrist level = %v, want above shoulder", res.Wrist)
	}
	if d := a.Classify(res.FrameResult); d.Phase != phase.Dip {
		t.Errorf("phase = %v (%s), want DIP", d.Phase, d.Rule)
	}
	if !res.Verdict.Accepted {
		t.Errorf("verdict = %s (%s), want accepted", res.Verdict.Rejection, res.Verdict.Reason)
	}
}

func TestAnalyzeFrameEstimatesFromBall(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	defer a.Close()

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 128, 128, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()
	drawBall(&img, image.Pt(320, 225), 24)

	res := a.AnalyzeImage(img, nil, []geometry.Point{{X: 320, Y: 240}})
	if res.Ball == nil {
		t.Fatal("ball not found near the hint")
	}
	if !res.Estimated || !res.Skeleton.Estimated() {
		t.Fatal("skeleton not estimated from the ball")
	}
	for _, k := range res.Skeleton.Keypoints() {
		if k.Source != pose.Estimated || k.Confidence > 0.8 {
			t.Errorf("%s: source %s confidence %.2f", k.Joint, k.Source, k.Confidence)
		}
	}
	if _, ok := res.Angles.Get(biomech.Elbow); !ok {
		t.Error("no elbow angle on the estimated skeleton")
	}
	if res.Verdict.Rejection != quality.NoPerson {
		t.Errorf("verdict = %s, want no_person for an estimated skeleton", res.Verdict.Rejection)
	}
}

func TestAnalyzeFrameNoData(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	defer a.Close()

	img := blankFrame(480, 640)
	defer img.Close()

	res := a.AnalyzeFrame(img, nil, nil)
	if !res.Skeleton.Empty() || len(res.Angles) != 0 || res.Ball != nil || res.Estimated {
		t.Errorf("empty frame produced %+v", res)
	}
	if d := a.Classify(res); d.Phase != phase.Setup || d.Matched {
		t.Errorf("empty frame classified as %+v, want held SETUP", d)
	}
}

func TestGroup(t *testing.T) {
	body := pose.Detection{Detector: "yolo", Box: pose.BoundingBox{MinX: 100, MinY: 50, MaxX: 300, MaxY: 450}}
	face := pose.Detection{Detector: "rekognition", Keypoints: []pose.Keypoint{
		{Joint: pose.Nose, X: 200, Y: 80, Confidence: 0.99, Source: pose.DetectedBy("rekognition")},
		{Joint: pose.LeftEye, X: 210, Y: 70, Confidence: 0.99, Source: pose.DetectedBy("rekognition")},
	}}
	other := pose.Detection{Detector: "yolo", Person: 1, Box: pose.BoundingBox{MinX: 400, MinY: 50, MaxX: 500, MaxY: 450}}
	empty := pose.Detection{Detector: "broken"}

	got := Group([]pose.Detection{body, other, face, empty}, 0.5)
	if len(got) != 2 {
		t.Fatalf("got %d people, want 2", len(got))
	}
	if got[0].Box != body.Box || got[0].Skeleton.Len() != 2 {
		t.Errorf("first person = box %+v with %d joints", got[0].Box, got[0].Skeleton.Len())
	}
	if !got[1].Skeleton.Empty() {
		t.Error("face assigned to the wrong person")
	}
}

func TestGroupKeepsSameDetectorApart(t *testing.T) {
	a := pose.Detection{Detector: "yolo", Box: pose.BoundingBox{MinX: 0, MinY: 0, MaxX: 100, MaxY: 200}}
	b := pose.Detection{Detector: "yolo", Person: 1, Box: pose.BoundingBox{MinX: 10, MinY: 10, MaxX: 90, MaxY: 190}}
	if got := Group([]pose.Detection{a, b}, 0.5); len(got) != 2 {
		t.Errorf("got %d people, want 2 overlapping people from one detector", len(got))
	}
}

func TestVideoCarriesAnchors(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	defer a.Close()
	v := a.NewVideo()

	first := blankFrame(720, 640)
	defer first.Close()
	f0 := v.Process(first, 0, 0, []pose.Detection{detection("mediapipe", setPoint(), 0.9)})
	if f0.Phase.Phase != phase.Dip || !f0.Phase.Changed {
		t.Errorf("first frame phase = %+v, want DIP", f0.Phase)
	}

	// detector lost the player; the ball sits where the hands were
	second := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 128, 128, 0), 720, 640, gocv.MatTypeCV8UC3)
	defer second.Close()
	drawBall(&second, image.Pt(337, 240), 30)

	f1 := v.Process(second, 1, 40*time.Millisecond, nil)
	if f1.Ball == nil || !f1.Estimated {
		t.Fatalf("second frame ball=%v estimated=%t, want ball from carried anchors", f1.Ball, f1.Estimated)
	}
	if f1.Phase.Phase < phase.Dip {
		t.Errorf("phase went back to %v", f1.Phase.Phase)
	}

	sum := v.Summary()
	if sum.Frames != 2 || sum.BallFrames != 1 || sum.Estimated != 1 || sum.Shots != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if len(sum.Transitions) == 0 || sum.Transitions[0].Phase != phase.Dip {
		t.Errorf("transitions = %+v", sum.Transitions)
	}

	v.Reset(2, 80*time.Millisecond)
	if sum := v.Summary(); sum.Shots != 2 {
		t.Errorf("shots after reset = %d, want 2", sum.Shots)
	}
}

func TestCompareForm(t *testing.T) {
	base := biomech.AngleSet{
		biomech.Elbow: 92, biomech.Knee: 128, biomech.Hip: 168,
		biomech.ShoulderTilt: 3, biomech.Wrist: 55, biomech.Release: 51,
	}
	cfg := DefaultCompareConfig()

	t.Run("identical", func(t *testing.T) {
		c := CompareForm(base, base, cfg)
		if c.Similarity != 100 || !c.SameForm || c.Matching != 6 || c.Different != 0 {
			t.Errorf("comparison = %+v", c)
		}
	})

	t.Run("one angle off", func(t *testing.T) {
		other := biomech.AngleSet{}
		for k, v := range base {
			other[k] = v
		}
		other[biomech.Elbow] = 112

		c := CompareForm(base, other, cfg)
		if c.Matching != 5 || c.Different != 1 || c.MaxDelta != 20 {
			t.Errorf("comparison = %+v", c)
		}
		want := 100 * (5 + (1 - 20.0/45)) / 6
		if math.Abs(c.Similarity-want) > 1e-9 || !c.SameForm {
			t.Errorf("similarity = %.3f, want %.3f", c.Similarity, want)
		}
	})

	t.Run("missing angle", func(t *testing.T) {
		other := biomech.AngleSet{}
		for k, v := range base {
			if k != biomech.Release {
				other[k] = v
			}
		}
		c := CompareForm(base, other, cfg)
		if len(c.Missing) != 1 || c.Missing[0] != biomech.Release {
			t.Errorf("missing = %v", c.Missing)
		}
		if math.Abs(c.Similarity-100*5.0/6) > 1e-9 {
			t.Errorf("similarity = %.3f", c.Similarity)
		}
	})

	t.Run("zero falloff", func(t *testing.T) {
		other := biomech.AngleSet{biomech.Elbow: 100, biomech.Knee: 128}
		c := CompareForm(biomech.AngleSet{biomech.Elbow: 92, biomech.Knee: 128}, other, CompareConfig{Tolerance: 10})
		if math.IsNaN(c.Similarity) || math.IsInf(c.Similarity, 0) || c.Similarity != 50 {
			t.Errorf("similarity = %v, want 50", c.Similarity)
		}
	})

	t.Run("nothing shared", func(t *testing.T) {
		c := CompareForm(biomech.AngleSet{biomech.Elbow: 90}, biomech.AngleSet{biomech.Knee: 120}, cfg)
		if c.Similarity != 0 || c.SameForm || len(c.Missing) != 2 {
			t.Errorf("comparison = %+v", c)
		}
	})
}
