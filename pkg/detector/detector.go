// Package detector adapts external pose and person detectors to pose.Detection.
// Inference itself happens elsewhere; these adapters only translate.
package detector

import (
	"context"
	"errors"
	"fmt"
	"log"

	"shot-analysis/pkg/pose"
)

// Input describes one image handed to the detectors.
type Input struct {
	// Index is the frame number, 0 for a still image.
	Index  int
	Width  int
	Height int
	// Encoded is the PNG or JPEG file content, for detectors that need pixels.
	Encoded []byte
}

// Detector returns zero or more person detections for one image.
type Detector interface {
	Name() string
	Detect(ctx context.Context, in Input) ([]pose.Detection, error)
}

// Collect runs every detector and concatenates their detections. A failing
// detector is logged and skipped; an error is returned only when all failed.
func Collect(ctx context.Context, in Input, detectors ...Detector) ([]pose.Detection, error) {
	var out []pose.Detection
	var errs []error

	for _, d := range detectors {
		dets, err := d.Detect(ctx, in)
		if err != nil {
			log.Printf("[DETECTOR] %s failed on frame %d: %v", d.Name(), in.Index, err)
			errs = append(errs, fmt.Errorf("%s: %w", d.Name(), err))
			continue
		}
		out = append(out, dets...)
	}

	if len(detectors) > 0 && len(errs) == len(detectors) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
