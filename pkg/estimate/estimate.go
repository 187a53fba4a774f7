// Package estimate synthesizes an approximate skeleton from the ball position
// when no detector produced usable body joints. Every keypoint it creates is
// tagged pose.Estimated and capped in confidence so consumers never mistake it
// for observed data.
package estimate

import (
	"math"

	"shot-analysis/pkg/cv"
	"shot-analysis/pkg/pose"
)

// Config tunes the body proportions used for the synthesized skeleton.
type Config struct {
	// BodyPerBallDiameter is standing height over ball diameter. A 24 cm ball
	// and a 190 cm player give roughly 8.
	BodyPerBallDiameter float64
	// FallbackBodyHeight is the body height as a fraction of frame height when
	// the ball radius is unknown.
	FallbackBodyHeight float64
	// MaxConfidence caps every synthesized keypoint.
	MaxConfidence float64
	// Side is the shooting side; the skeleton faces the shooting direction.
	Side pose.Side
}

func DefaultConfig() Config {
	return Config{
		BodyPerBallDiameter: 8,
		FallbackBodyHeight:  0.6,
		MaxConfidence:       0.8,
		Side:                pose.Right,
	}
}

// offset places a joint relative to the ball centre in body-height units
// (x toward the basket for a right-handed shooter facing right, y downward),
// with the confidence it is reported at before the cap.
type offset struct {
	dx, dy     float64
	confidence float64
}

// shootingPose is a generic set-point posture: ball just above the shooting
// wrist, elbow under the ball, torso upright, knees slightly bent.
var shootingPose = map[pose.Joint]offset{
	pose.RightWrist:    {0.00, 0.06, 0.8},
	pose.RightIndex:    {0.02, 0.03, 0.6},
	pose.RightElbow:    {0.04, 0.18, 0.7},
	pose.RightShoulder: {-0.07, 0.27, 0.6},
	pose.LeftShoulder:  {-0.20, 0.28, 0.5},
	pose.LeftElbow:     {-0.08, 0.15, 0.4},
	pose.LeftWrist:     {-0.04, 0.05, 0.4},
	pose.Nose:          {-0.10, 0.20, 0.5},
	pose.RightHip:      {-0.10, 0.56, 0.5},
	pose.LeftHip:       {-0.19, 0.56, 0.5},
	pose.RightKnee:     {-0.06, 0.79, 0.4},
	pose.LeftKnee:      {-0.15, 0.79, 0.4},
	pose.RightAnkle:    {-0.10, 1.03, 0.3},
	pose.LeftAnkle:     {-0.19, 1.03, 0.3},
}

// mirror swaps left and right joints for a left-handed shooter.
var mirror = map[pose.Joint]pose.Joint{
	pose.RightWrist: pose.LeftWrist, pose.LeftWrist: pose.RightWrist,
	pose.RightIndex: pose.LeftIndex, pose.LeftIndex: pose.RightIndex,
	pose.RightElbow: pose.LeftElbow, pose.LeftElbow: pose.RightElbow,
	pose.RightShoulder: pose.LeftShoulder, pose.LeftShoulder: pose.RightShoulder,
	pose.RightHip: pose.LeftHip, pose.LeftHip: pose.RightHip,
	pose.RightKnee: pose.LeftKnee, pose.LeftKnee: pose.RightKnee,
	pose.RightAnkle: pose.LeftAnkle, pose.LeftAnkle: pose.RightAnkle,
}

// FromBall builds an estimated skeleton around the ball. frameHeight is used
// when the ball radius is zero.
func FromBall(ball cv.BallDetection, frameHeight int, cfg Config) pose.Skeleton {
	bodyHeight := 2 * ball.Radius * cfg.BodyPerBallDiameter
	if bodyHeight <= 0 {
		bodyHeight = cfg.FallbackBodyHeight * float64(frameHeight)
	}

	kps := make([]pose.Keypoint, 0, len(shootingPose))
	for joint, off := range shootingPose {
		dx := off.dx
		if cfg.Side == pose.Left {
			if m, ok := mirror[joint]; ok {
				joint = m
			}
			dx = -dx
		}
		kps = append(kps, pose.Keypoint{
			Joint:      joint,
			X:          ball.X + dx*bodyHeight,
			Y:          ball.Y + off.dy*bodyHeight,
			Confidence: math.Min(off.confidence, cfg.MaxConfidence),
			Source:     pose.Estimated,
		})
	}

	s, err := pose.NewSkeleton(kps...)
	if err != nil {
		// static tables, one entry per joint
		panic(err)
	}
	return s
}
