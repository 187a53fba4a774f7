package estimate

import (
	"math"
	"testing"

	"shot-analysis/pkg/cv"
	"shot-analysis/pkg/pose"
)

func TestFromBallTagsEveryJointEstimated(t *testing.T) {
	ball := cv.BallDetection{X: 400, Y: 150, Radius: 20}
	s := FromBall(ball, 720, DefaultConfig())

	if s.Len() != len(shootingPose) {
		t.Fatalf("skeleton has %d joints, want %d", s.Len(), len(shootingPose))
	}
	for _, kp := range s.Keypoints() {
		if kp.Source.Kind != pose.SourceEstimated {
			t.Errorf("%s source = %v, want estimated", kp.Joint, kp.Source)
		}
		if kp.Confidence > 0.8 {
			t.Errorf("%s confidence = %v, want <= 0.8", kp.Joint, kp.Confidence)
		}
	}
	if !s.Estimated() {
		t.Error("Estimated() = false")
	}
}

func TestFromBallPlacesShootingWristAtBall(t *testing.T) {
	ball := cv.BallDetection{X: 400, Y: 150, Radius: 20}
	s := FromBall(ball, 720, DefaultConfig())

	wrist, ok := s.Get(pose.RightWrist)
	if !ok {
		t.Fatal("no right wrist")
	}
	body := 2 * ball.Radius * DefaultConfig().BodyPerBallDiameter
	if math.Hypot(wrist.X-ball.X, wrist.Y-ball.Y) > 0.1*body {
		t.Errorf("wrist (%v,%v) too far from ball", wrist.X, wrist.Y)
	}

	shoulder, _ := s.Get(pose.RightShoulder)
	ankle, _ := s.Get(pose.RightAnkle)
	if !(wrist.Y < shoulder.Y && shoulder.Y < ankle.Y) {
		t.Errorf("vertical order wrong: wrist %v shoulder %v ankle %v", wrist.Y, shoulder.Y, ankle.Y)
	}
}

func TestFromBallElbowUnderBall(t *testing.T) {
	ball := cv.BallDetection{X: 400, Y: 150, Radius: 20}
	s := FromBall(ball, 720, DefaultConfig())

	elbow, _ := s.Get(pose.RightElbow)
	wrist, _ := s.Get(pose.RightWrist)
	if elbow.Y <= wrist.Y || elbow.X < ball.X {
		t.Errorf("elbow (%v,%v) not below and toward the basket from ball (%v,%v)", elbow.X, elbow.Y, ball.X, ball.Y)
	}
}

func TestFromBallLeftHandedMirrors(t *testing.T) {
	ball := cv.BallDetection{X: 400, Y: 150, Radius: 20}
	right := FromBall(ball, 720, DefaultConfig())

	cfg := DefaultConfig()
	cfg.Side = pose.Left
	left := FromBall(ball, 720, cfg)

	re, _ := right.Get(pose.RightElbow)
	le, ok := left.Get(pose.LeftElbow)
	if !ok {
		t.Fatal("left-handed skeleton has no left elbow")
	}
	if math.Abs((re.X-ball.X)+(le.X-ball.X)) > 1e-9 || re.Y != le.Y {
		t.Errorf("left elbow (%v,%v) is not the mirror of right elbow (%v,%v)", le.X, le.Y, re.X, re.Y)
	}
	if left.Len() != right.Len() {
		t.Errorf("mirrored skeleton has %d joints, want %d", left.Len(), right.Len())
	}
}

func TestFromBallWithoutRadiusUsesFrameHeight(t *testing.T) {
	ball := cv.BallDetection{X: 100, Y: 100}
	s := FromBall(ball, 1000, DefaultConfig())

	ankle, _ := s.Get(pose.RightAnkle)
	want := 100 + 1.03*0.6*1000
	if math.Abs(ankle.Y-want) > 1e-9 {
		t.Errorf("ankle y = %v, want %v", ankle.Y, want)
	}
}
