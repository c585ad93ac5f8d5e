// Package geometry provides the coordinate primitives shared by the face
// indexing pipeline: points, boxes and pixel dimensions, together with the
// scaling, translation and normalization helpers used when moving between
// the model canvas, source-pixel and unit-square coordinate frames.
package geometry

// Point is a 2D point. Whether coordinates are pixels or relative (0-1)
// depends on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis-aligned rectangle with (X, Y) at the top-left corner.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Dimensions holds image dimensions in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// MaxX returns the right edge of the box.
func (b Box) MaxX() float64 {
	return b.X + b.Width
}

// MaxY returns the bottom edge of the box.
func (b Box) MaxY() float64 {
	return b.Y + b.Height
}

// Center returns the box center point.
func (b Box) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Scale multiplies box position and size by per-axis factors.
func (b Box) Scale(sx, sy float64) Box {
	return Box{
		X:      b.X * sx,
		Y:      b.Y * sy,
		Width:  b.Width * sx,
		Height: b.Height * sy,
	}
}

// Translate shifts the box position, keeping its size.
func (b Box) Translate(dx, dy float64) Box {
	return Box{X: b.X + dx, Y: b.Y + dy, Width: b.Width, Height: b.Height}
}

// Scale multiplies point coordinates by per-axis factors.
func (p Point) Scale(sx, sy float64) Point {
	return Point{X: p.X * sx, Y: p.Y * sy}
}

// Translate shifts the point.
func (p Point) Translate(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// NormalizeBox converts a pixel box to relative (0-1) coordinates by
// dividing by the image dimensions. Values are not clamped.
func NormalizeBox(b Box, dims Dimensions) Box {
	return b.Scale(1/float64(dims.Width), 1/float64(dims.Height))
}

// NormalizePoint converts a pixel point to relative (0-1) coordinates.
func NormalizePoint(p Point, dims Dimensions) Point {
	return p.Scale(1/float64(dims.Width), 1/float64(dims.Height))
}

// NormalizeLandmarks converts pixel landmarks to relative (0-1) coordinates.
func NormalizeLandmarks(landmarks [5]Point, dims Dimensions) [5]Point {
	var out [5]Point
	for i, p := range landmarks {
		out[i] = NormalizePoint(p, dims)
	}
	return out
}
