// Package geo provides the planar geometry primitives the clustering
// engine needs: distance-preserving projections, convex hulls, and
// outward polygon buffering. Coordinates are geographic (lon, lat) on
// one side and meters on the other.
package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// earthRadiusMeters is the IUGG mean Earth radius.
const earthRadiusMeters = 6371008.8

// Projection maps geographic coordinates to a planar system measured in
// meters and back. Implementations must be exact inverses of each other
// so cluster polygons survive the round trip.
type Projection interface {
	// Forward projects a geographic (lon, lat) point to planar meters.
	Forward(p orb.Point) orb.Point

	// Inverse projects a planar point back to geographic coordinates.
	Inverse(p orb.Point) orb.Point

	// Name identifies the projection for logging and artifacts.
	Name() string
}

// NewProjection resolves a projection identifier from configuration.
// "equirectangular" (the default) is a local distance-preserving
// projection centered on the supplied origin; "mercator" is Web
// Mercator, whose meters stretch away from the equator but which
// matches common web-map tooling.
func NewProjection(name string, origin orb.Point) (Projection, error) {
	switch name {
	case "", "equirectangular", "local":
		return NewEquirectangular(origin), nil
	case "mercator", "3857":
		return webMercator{}, nil
	default:
		return nil, fmt.Errorf("unknown projection %q", name)
	}
}

// Equirectangular is a local equirectangular projection centered on an
// origin point. Near the origin it preserves distances well enough for
// density clustering with eps values in meters.
type Equirectangular struct {
	origin orb.Point
	cosLat float64
}

// NewEquirectangular creates a projection centered on origin.
func NewEquirectangular(origin orb.Point) *Equirectangular {
	return &Equirectangular{
		origin: origin,
		cosLat: math.Cos(origin[1] * math.Pi / 180),
	}
}

// Forward implements Projection.
func (e *Equirectangular) Forward(p orb.Point) orb.Point {
	x := earthRadiusMeters * (p[0] - e.origin[0]) * math.Pi / 180 * e.cosLat
	y := earthRadiusMeters * (p[1] - e.origin[1]) * math.Pi / 180
	return orb.Point{x, y}
}

// Inverse implements Projection.
func (e *Equirectangular) Inverse(p orb.Point) orb.Point {
	lon := e.origin[0] + p[0]/(earthRadiusMeters*e.cosLat)*180/math.Pi
	lat := e.origin[1] + p[1]/earthRadiusMeters*180/math.Pi
	return orb.Point{lon, lat}
}

// Name implements Projection.
func (e *Equirectangular) Name() string { return "equirectangular" }

type webMercator struct{}

func (webMercator) Forward(p orb.Point) orb.Point { return project.WGS84.ToMercator(p) }

func (webMercator) Inverse(p orb.Point) orb.Point { return project.Mercator.ToWGS84(p) }

func (webMercator) Name() string { return "mercator" }

// Centroid returns the arithmetic mean of a point set, used as the
// origin for local projections.
func Centroid(points []orb.Point) orb.Point {
	if len(points) == 0 {
		return orb.Point{}
	}
	var sx, sy float64
	for _, p := range points {
		sx += p[0]
		sy += p[1]
	}
	n := float64(len(points))
	return orb.Point{sx / n, sy / n}
}
