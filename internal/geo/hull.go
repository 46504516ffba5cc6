package geo

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// bufferSegments is the number of circle points generated per hull
// vertex when buffering. 16 keeps the polygon smooth without bloating
// artifact files.
const bufferSegments = 16

// ConvexHull computes the convex hull of a point set using Andrew's
// monotone chain. The returned ring is closed and wound
// counter-clockwise. Degenerate inputs (one or two points, collinear
// sets) return the degenerate closed ring over those points.
func ConvexHull(points []orb.Point) orb.Ring {
	if len(points) == 0 {
		return nil
	}

	pts := make([]orb.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] != pts[j][0] {
			return pts[i][0] < pts[j][0]
		}
		return pts[i][1] < pts[j][1]
	})

	if len(pts) < 3 {
		ring := orb.Ring(pts)
		return closeRing(ring)
	}

	var lower, upper []orb.Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	return closeRing(orb.Ring(hull))
}

// Buffer expands a hull outward by distance units, approximating the
// Minkowski sum of the hull with a disc: each vertex contributes a
// circle of points and the result is the convex hull of all of them.
// A single-point ring therefore buffers to a polygonized circle.
func Buffer(ring orb.Ring, distance float64) orb.Polygon {
	if len(ring) == 0 {
		return nil
	}
	if distance <= 0 {
		return orb.Polygon{closeRing(ring)}
	}

	expanded := make([]orb.Point, 0, len(ring)*bufferSegments)
	for _, vertex := range ring {
		for i := 0; i < bufferSegments; i++ {
			angle := 2 * math.Pi * float64(i) / bufferSegments
			expanded = append(expanded, orb.Point{
				vertex[0] + distance*math.Cos(angle),
				vertex[1] + distance*math.Sin(angle),
			})
		}
	}

	return orb.Polygon{ConvexHull(expanded)}
}

// cross returns the z component of (b-a) x (c-a); positive when the
// turn a->b->c is counter-clockwise.
func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func closeRing(ring orb.Ring) orb.Ring {
	if len(ring) == 0 {
		return ring
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}
