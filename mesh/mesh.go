package mesh

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var ErrInvalidMesh = errors.New("invalid mesh")

type CoordSys string

const (
	Cartesian   CoordSys = "cartesian"
	Cylindrical CoordSys = "cylindrical polar"
	Spherical   CoordSys = "spherical polar"
)

func ParseCoordSys(s string) (CoordSys, error) {
	switch CoordSys(s) {
	case Cartesian, Cylindrical, Spherical:
		return CoordSys(s), nil
	case "cylindrical":
		return Cylindrical, nil
	case "spherical":
		return Spherical, nil
	}
	return "", fmt.Errorf("%w: unknown coordinate system %q", ErrInvalidMesh, s)
}

// FaceArea is the area of a face at r, per unit angle.
func (c CoordSys) FaceArea(r float64) float64 {
	switch c {
	case Cylindrical:
		return r
	case Spherical:
		return r * r
	}
	return 1
}

// Measure is the volume of the shell [r1, r2], per unit angle.
func (c CoordSys) Measure(r1, r2 float64) float64 {
	switch c {
	case Cylindrical:
		return (r2*r2 - r1*r1) / 2
	case Spherical:
		return (r2*r2*r2 - r1*r1*r1) / 3
	}
	return r2 - r1
}

// Submesh is a uniform one dimensional finite volume mesh.
type Submesh struct {
	Edges []float64
	Nodes []float64
	Coord CoordSys
}

func Uniform(min, max float64, n int, coord CoordSys) (*Submesh, error) {
	if n < 1 || !(max > min) || math.IsInf(max-min, 0) {
		return nil, fmt.Errorf("%w: [%g, %g] with %d cells", ErrInvalidMesh, min, max, n)
	}
	if coord == "" {
		coord = Cartesian
	}
	edges := make([]float64, n+1)
	floats.Span(edges, min, max)
	nodes := make([]float64, n)
	for i := range nodes {
		nodes[i] = (edges[i] + edges[i+1]) / 2
	}
	return &Submesh{Edges: edges, Nodes: nodes, Coord: coord}, nil
}

func (s *Submesh) Npts() int { return len(s.Nodes) }

func (s *Submesh) Min() float64 { return s.Edges[0] }

func (s *Submesh) Max() float64 { return s.Edges[len(s.Edges)-1] }

// Step is the cell width.
func (s *Submesh) Step() float64 { return s.Edges[1] - s.Edges[0] }

// Volume of cell i.
func (s *Submesh) Volume(i int) float64 {
	return s.Coord.Measure(s.Edges[i], s.Edges[i+1])
}

// Area of edge i.
func (s *Submesh) Area(i int) float64 {
	return s.Coord.FaceArea(s.Edges[i])
}

// TotalVolume is the measure of the whole submesh.
func (s *Submesh) TotalVolume() float64 {
	return s.Coord.Measure(s.Min(), s.Max())
}

// VarPts is the number of cells in the radial and axial directions.
type VarPts struct {
	R int
	X int
}

// BasePoints is the level 0 mesh.
var BasePoints = VarPts{R: 10, X: 20}

// MaxLevel is the finest refinement level Points accepts.
const MaxLevel = 16

// Points returns the number of cells at a refinement level.
func Points(level int) (VarPts, error) {
	if level < 0 || level > MaxLevel {
		return VarPts{}, fmt.Errorf("%w: refinement level %d not in [0, %d]", ErrInvalidMesh, level, MaxLevel)
	}
	f := RefinementFactor(level)
	return VarPts{
		R: int(math.Floor(float64(BasePoints.R) * f)),
		X: int(math.Floor(float64(BasePoints.X) * f)),
	}, nil
}

// RefinementFactor is 2^level.
func RefinementFactor(level int) float64 {
	return math.Pow(2, float64(level))
}

// Linspace returns n evenly spaced values over [min, max].
func Linspace(min, max float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{min}
	}
	v := make([]float64, n)
	return floats.Span(v, min, max)
}
