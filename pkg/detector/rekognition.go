package detector

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"shot-analysis/pkg/pose"
)

// RekognitionName tags keypoints and boxes produced by Rekognition.
const RekognitionName = "rekognition"

// RekognitionAPI is the part of the Rekognition client the detector uses.
type RekognitionAPI interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// Rekognition finds people with AWS Rekognition. Person labels give the
// bounding boxes used for main-subject selection; face landmarks give the
// nose and eye keypoints used for head visibility. It reports no limb joints.
type Rekognition struct {
	client        RekognitionAPI
	minConfidence float32
}

// NewRekognition builds a detector from the default AWS credential chain.
func NewRekognition(ctx context.Context, region string, minConfidence float32) (*Rekognition, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewRekognitionWithClient(rekognition.NewFromConfig(cfg), minConfidence), nil
}

func NewRekognitionWithClient(client RekognitionAPI, minConfidence float32) *Rekognition {
	return &Rekognition{client: client, minConfidence: minConfidence}
}

func (r *Rekognition) Name() string {
	return RekognitionName
}

var faceLandmarks = map[types.LandmarkType]pose.Joint{
	types.LandmarkTypeNose:     pose.Nose,
	types.LandmarkTypeEyeLeft:  pose.LeftEye,
	types.LandmarkTypeEyeRight: pose.RightEye,
}

func (r *Rekognition) Detect(ctx context.Context, in Input) ([]pose.Detection, error) {
	if len(in.Encoded) == 0 {
		return nil, fmt.Errorf("rekognition needs the encoded image")
	}
	img := &types.Image{Bytes: in.Encoded}
	w, h := float64(in.Width), float64(in.Height)

	labels, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         img,
		MaxLabels:     aws.Int32(20),
		MinConfidence: aws.Float32(r.minConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("detect labels: %w", err)
	}

	var out []pose.Detection
	for _, label := range labels.Labels {
		if aws.ToString(label.Name) != "Person" {
			continue
		}
		for _, inst := range label.Instances {
			if inst.BoundingBox == nil {
				continue
			}
			out = append(out, pose.Detection{
				Detector: RekognitionName,
				Person:   len(out),
				Box:      toBox(inst.BoundingBox, w, h),
			})
		}
	}

	faces, err := r.client.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      img,
		Attributes: []types.Attribute{types.AttributeDefault},
	})
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	for _, face := range faces.FaceDetails {
		conf := float64(aws.ToFloat32(face.Confidence)) / 100
		if conf*100 < float64(r.minConfidence) {
			continue
		}

		var kps []pose.Keypoint
		for _, lm := range face.Landmarks {
			joint, ok := faceLandmarks[lm.Type]
			if !ok {
				continue
			}
			kps = append(kps, pose.Keypoint{
				Joint:      joint,
				X:          float64(aws.ToFloat32(lm.X)) * w,
				Y:          float64(aws.ToFloat32(lm.Y)) * h,
				Confidence: conf,
				Source:     pose.DetectedBy(RekognitionName),
			})
		}
		if len(kps) == 0 {
			continue
		}

		idx := ownerOf(out, kps[0])
		if idx < 0 {
			out = append(out, pose.Detection{Detector: RekognitionName, Person: len(out)})
			idx = len(out) - 1
		}
		out[idx].Keypoints = append(out[idx].Keypoints, kps...)
	}

	log.Printf("[REKOGNITION] frame %d: %d people, %d faces", in.Index, len(out), len(faces.FaceDetails))
	return out, nil
}

// ownerOf returns the detection whose box contains kp and has no face yet.
func ownerOf(dets []pose.Detection, kp pose.Keypoint) int {
	for i, d := range dets {
		if len(d.Keypoints) > 0 || d.Box.Empty() {
			continue
		}
		if d.Box.Contains(kp.Point()) {
			return i
		}
	}
	return -1
}

func toBox(b *types.BoundingBox, w, h float64) pose.BoundingBox {
	left := float64(aws.ToFloat32(b.Left))
	top := float64(aws.ToFloat32(b.Top))
	return pose.BoundingBox{
		MinX: left * w,
		MinY: top * h,
		MaxX: (left + float64(aws.ToFloat32(b.Width))) * w,
		MaxY: (top + float64(aws.ToFloat32(b.Height))) * h,
	}
}
