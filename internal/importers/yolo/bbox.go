package yolo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/weedai/weedcoco-go/internal/errors"
	"github.com/weedai/weedcoco-go/internal/weedcoco"
)

// fieldsPerLine is the number of values in a YOLO label line:
// class_id x_center y_center width height.
const fieldsPerLine = 5

// errBlankLine marks lines without any fields.
var errBlankLine = errors.NewStd("blank line")

// Box is one normalized YOLO bounding box. Coordinates are fractions of the
// image size and the center point is used as the anchor.
type Box struct {
	ClassID int
	XCenter float64
	YCenter float64
	Width   float64
	Height  float64
}

// ParseLine parses a single label line. Lines that do not hold exactly five
// finite numbers are rejected.
func ParseLine(line string) (Box, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Box{}, errBlankLine
	}
	if len(fields) != fieldsPerLine {
		return Box{}, fmt.Errorf("expected %d fields, got %d", fieldsPerLine, len(fields))
	}

	var values [fieldsPerLine]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Box{}, fmt.Errorf("field %d: %q is not a number", i+1, f)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Box{}, fmt.Errorf("field %d: %q is not finite", i+1, f)
		}
		values[i] = v
	}
	if values[0] > math.MaxInt32 || values[0] < math.MinInt32 {
		return Box{}, fmt.Errorf("field 1: class id %q out of range", fields[0])
	}

	return Box{
		ClassID: int(values[0]),
		XCenter: values[1],
		YCenter: values[2],
		Width:   values[3],
		Height:  values[4],
	}, nil
}

// Pixels converts the box to an absolute [x_min, y_min, width, height] box
// for an image of the given size.
func (b Box) Pixels(imageWidth, imageHeight int) weedcoco.BBox {
	w := float64(imageWidth)
	h := float64(imageHeight)
	return weedcoco.BBox{
		(b.XCenter - b.Width/2) * w,
		(b.YCenter - b.Height/2) * h,
		b.Width * w,
		b.Height * h,
	}
}

// Annotation builds the COCO annotation for the box on an image of the given size.
func (b Box) Annotation(id, imageID, imageWidth, imageHeight int) weedcoco.Annotation {
	bbox := b.Pixels(imageWidth, imageHeight)
	return weedcoco.Annotation{
		ID:         id,
		ImageID:    imageID,
		CategoryID: b.ClassID,
		BBox:       &bbox,
		Area:       weedcoco.Float64Ptr(bbox[2] * bbox[3]),
		IsCrowd:    weedcoco.IntPtr(0),
	}
}
