package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"shot-analysis/pkg/pose"
)

// KeypointRecord is one (joint, x, y, confidence) tuple as exported by a
// pose estimator.
type KeypointRecord struct {
	Joint      string  `json:"joint"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// DetectionRecord is one person from one detector. Box is
// [min_x, min_y, max_x, max_y] and is optional. With Normalized set, box and
// keypoint coordinates are fractions of the image size.
type DetectionRecord struct {
	Detector   string           `json:"detector"`
	Person     int              `json:"person"`
	Normalized bool             `json:"normalized"`
	Box        []float64        `json:"box,omitempty"`
	Keypoints  []KeypointRecord `json:"keypoints"`
}

type FrameRecord struct {
	Frame      int               `json:"frame"`
	Detections []DetectionRecord `json:"detections"`
}

// File is the on-disk keypoint export read by FileSource.
type File struct {
	Frames []FrameRecord `json:"frames"`
}

// FileSource serves detections recorded by external pose estimators.
type FileSource struct {
	// Scale multiplies pixel coordinates, so an export made on the original
	// frame lines up with a resized one. Zero means 1.
	Scale float64

	name   string
	frames map[int][]DetectionRecord
}

// OpenFile reads a keypoint export from path.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keypoints: %w", err)
	}
	defer f.Close()

	src, err := ReadFile(path, f)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// ReadFile decodes a keypoint export. Unknown joint names are an error.
func ReadFile(name string, r io.Reader) (*FileSource, error) {
	var file File
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode keypoints %s: %w", name, err)
	}

	src := &FileSource{name: name, frames: make(map[int][]DetectionRecord, len(file.Frames))}
	for _, fr := range file.Frames {
		for _, det := range fr.Detections {
			for _, k := range det.Keypoints {
				if _, err := pose.ParseJoint(k.Joint); err != nil {
					return nil, fmt.Errorf("frame %d detector %s: %w", fr.Frame, det.Detector, err)
				}
			}
			if len(det.Box) != 0 && len(det.Box) != 4 {
				return nil, fmt.Errorf("frame %d detector %s: box needs 4 values, got %d", fr.Frame, det.Detector, len(det.Box))
			}
		}
		src.frames[fr.Frame] = append(src.frames[fr.Frame], fr.Detections...)
	}
	return src, nil
}

func (fs *FileSource) Name() string {
	return "file:" + fs.name
}

// Frames returns the number of distinct frames in the export.
func (fs *FileSource) Frames() int {
	return len(fs.frames)
}

// Detect returns the recorded detections of in.Index scaled to in.Width x
// in.Height. A frame absent from the export yields no detections.
func (fs *FileSource) Detect(_ context.Context, in Input) ([]pose.Detection, error) {
	records := fs.frames[in.Index]
	out := make([]pose.Detection, 0, len(records))

	for _, rec := range records {
		sx, sy := fs.Scale, fs.Scale
		if sx == 0 {
			sx, sy = 1, 1
		}
		if rec.Normalized {
			if in.Width <= 0 || in.Height <= 0 {
				return nil, fmt.Errorf("normalized keypoints need image dimensions")
			}
			sx, sy = float64(in.Width), float64(in.Height)
		}

		det := pose.Detection{Detector: rec.Detector, Person: rec.Person}
		if len(rec.Box) == 4 {
			det.Box = pose.BoundingBox{
				MinX: rec.Box[0] * sx, MinY: rec.Box[1] * sy,
				MaxX: rec.Box[2] * sx, MaxY: rec.Box[3] * sy,
			}
		}
		for _, k := range rec.Keypoints {
			joint, _ := pose.ParseJoint(k.Joint)
			kp, err := pose.NewKeypoint(joint, k.X*sx, k.Y*sy, k.Confidence, pose.DetectedBy(rec.Detector))
			if err != nil {
				return nil, err
			}
			det.Keypoints = append(det.Keypoints, kp)
		}
		out = append(out, det)
	}
	return out, nil
}
