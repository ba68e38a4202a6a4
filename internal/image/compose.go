package imagepkg

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Placement holds the heuristic that positions a garment over a person.
// There is no pose detection: the garment is centred horizontally at a fixed
// fraction of the person's height.
type Placement struct {
	// The garment's longest side is scaled to min(width, height)/ScaleDivisor
	// of the person image.
	ScaleDivisor     int
	VerticalFraction float64
	BaseOpacity      float64
	// Each further variant loses OpacityStep of opacity and moves by
	// (ShiftX, ShiftY) pixels.
	OpacityStep float64
	ShiftX      int
	ShiftY      int
}

func DefaultPlacement() Placement {
	return Placement{
		ScaleDivisor:     3,
		VerticalFraction: 0.25,
		BaseOpacity:      0.8,
		OpacityStep:      0.1,
		ShiftX:           10,
		ShiftY:           5,
	}
}

// Opacity returns the garment opacity used for the given variant, never
// below zero.
func (p Placement) Opacity(variant int) float64 {
	return math.Max(0, p.BaseOpacity-p.OpacityStep*float64(variant))
}

// GarmentSize returns the size of the garment once resized to sit on a
// person of the given size. Aspect ratio is kept; each side is at least 1px.
func (p Placement) GarmentSize(person, garment image.Point) image.Point {
	longest := max(garment.X, garment.Y)
	if longest <= 0 || p.ScaleDivisor <= 0 {
		return image.Point{}
	}
	target := min(person.X/p.ScaleDivisor, person.Y/p.ScaleDivisor)
	return image.Pt(
		max(garment.X*target/longest, 1),
		max(garment.Y*target/longest, 1),
	)
}

// Offset returns the top-left corner of the garment for the given variant.
func (p Placement) Offset(person, garment image.Point, variant int) image.Point {
	x := (person.X-garment.X)/2 + p.ShiftX*variant
	y := int(float64(person.Y)*p.VerticalFraction) + p.ShiftY*variant
	return image.Pt(x, y)
}

// CompositeGarment blends a resized garment onto a copy of person and returns
// an opaque image with the person's dimensions. The result depends only on
// the inputs.
func CompositeGarment(person, garment image.Image, p Placement, variant int) *image.NRGBA {
	c := newCompositor(person, garment, p)
	return c.variant(variant)
}

// CompositeVariants returns n composites, variant 0 first. The garment is
// resized once and shared by every variant.
func CompositeVariants(person, garment image.Image, p Placement, n int) []*image.NRGBA {
	if n <= 0 {
		return nil
	}
	c := newCompositor(person, garment, p)
	out := make([]*image.NRGBA, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, c.variant(i))
	}
	return out
}

type compositor struct {
	placement Placement
	base      *image.NRGBA
	layer     *image.NRGBA
}

func newCompositor(person, garment image.Image, p Placement) *compositor {
	c := &compositor{
		placement: p,
		base:      imaging.Clone(person),
	}
	size := p.GarmentSize(c.base.Bounds().Size(), garment.Bounds().Size())
	if size.X > 0 && size.Y > 0 {
		c.layer = imaging.Resize(garment, size.X, size.Y, imaging.Lanczos)
	}
	return c
}

func (c *compositor) variant(i int) *image.NRGBA {
	if c.layer == nil {
		return flatten(imaging.Clone(c.base))
	}
	pos := c.placement.Offset(c.base.Bounds().Size(), c.layer.Bounds().Size(), i)
	// Overlay works on a fresh copy of base.
	return flatten(imaging.Overlay(c.base, c.layer, pos, c.placement.Opacity(i)))
}

// flatten drops the alpha channel in place, keeping the colour values.
func flatten(img *image.NRGBA) *image.NRGBA {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}
