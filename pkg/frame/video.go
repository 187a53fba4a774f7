package frame

import (
	"fmt"
	"math"
	"time"

	"gocv.io/x/gocv"
)

// Video reads frames sequentially from a video file.
type Video struct {
	capture   *gocv.VideoCapture
	mat       gocv.Mat
	maxHeight int
	encode    bool
	fps       float64
	next      int
}

// OpenVideo opens path for reading. With encode set, every frame carries a
// JPEG copy for detectors that need encoded pixels.
func OpenVideo(path string, maxHeight int, encode bool) (*Video, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video: %w", err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("failed to open video %s", path)
	}

	return &Video{
		capture:   capture,
		mat:       gocv.NewMat(),
		maxHeight: maxHeight,
		encode:    encode,
		fps:       capture.Get(gocv.VideoCaptureFPS),
	}, nil
}

func (v *Video) Close() error {
	v.mat.Close()
	return v.capture.Close()
}

// FrameCount is the container's frame count estimate, 0 when unknown.
func (v *Video) FrameCount() int {
	n := v.capture.Get(gocv.VideoCaptureFrameCount)
	if n <= 0 || math.IsNaN(n) {
		return 0
	}
	return int(n)
}

func (v *Video) FPS() float64 {
	return v.fps
}

// Next decodes the next frame. It returns false at the end of the stream.
func (v *Video) Next() (Frame, bool, error) {
	if ok := v.capture.Read(&v.mat); !ok || v.mat.Empty() {
		return Frame{}, false, nil
	}

	idx := v.next
	v.next++

	img, err := v.mat.ToImage()
	if err != nil {
		return Frame{}, false, fmt.Errorf("failed to convert frame %d: %w", idx, err)
	}
	resized, scale := Downscale(img, v.maxHeight)

	f := Frame{
		Index:     idx,
		Timestamp: v.timestamp(idx),
		Image:     resized,
		Scale:     scale,
	}
	if v.encode {
		buf, err := gocv.IMEncode(gocv.JPEGFileExt, v.mat)
		if err != nil {
			return Frame{}, false, fmt.Errorf("failed to encode frame %d: %w", idx, err)
		}
		f.Encoded = append([]byte(nil), buf.GetBytes()...)
		buf.Close()
	}
	return f, true, nil
}

func (v *Video) timestamp(idx int) time.Duration {
	if v.fps <= 0 || math.IsNaN(v.fps) {
		return 0
	}
	return time.Duration(float64(idx) / v.fps * float64(time.Second))
}
