// Package frame turns image files and videos into decoded frames ready for
// the detectors and the ball localizer.
package frame

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"github.com/disintegration/gift"
	"gocv.io/x/gocv"

	"shot-analysis/pkg/detector"
)

// Frame is one decoded image. Coordinates reported by detectors that saw the
// original image must be multiplied by Scale to land on Image.
type Frame struct {
	Index     int
	Timestamp time.Duration
	Image     image.Image
	Scale     float64
	// Encoded holds the original file bytes, or a JPEG of the frame for
	// video, when a detector needs them.
	Encoded []byte
}

func (f Frame) Width() int  { return f.Image.Bounds().Dx() }
func (f Frame) Height() int { return f.Image.Bounds().Dy() }

// Mat converts the frame to a BGR gocv.Mat. The caller must Close it.
func (f Frame) Mat() (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(f.Image)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to convert frame %d: %w", f.Index, err)
	}
	return mat, nil
}

// Input describes the frame to a detector.
func (f Frame) Input() detector.Input {
	return detector.Input{
		Index:   f.Index,
		Width:   f.Width(),
		Height:  f.Height(),
		Encoded: f.Encoded,
	}
}

// Load reads a PNG or JPEG file. A maxHeight above zero downscales taller images.
func Load(path string, maxHeight int) (Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to read image: %w", err)
	}
	f, err := Decode(data, maxHeight)
	if err != nil {
		return Frame{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func Decode(data []byte, maxHeight int) (Frame, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Frame{}, fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return Frame{}, fmt.Errorf("image has no pixels")
	}
	resized, scale := Downscale(img, maxHeight)
	return Frame{Image: resized, Scale: scale, Encoded: data}, nil
}

// Downscale shrinks img to maxHeight keeping the aspect ratio and returns the
// applied scale. Images already within bounds, or a maxHeight of zero, are
// returned unchanged with scale 1.
func Downscale(img image.Image, maxHeight int) (image.Image, float64) {
	h := img.Bounds().Dy()
	if maxHeight <= 0 || h <= maxHeight {
		return img, 1
	}

	g := gift.New(gift.Resize(0, maxHeight, gift.LanczosResampling))
	dst := image.NewRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst, float64(dst.Bounds().Dy()) / float64(h)
}
