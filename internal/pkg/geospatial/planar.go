package geospatial

// Planar helpers for geometry expressed in metre grid coordinates
// (easting/northing). At street survey scale the National Grid is close
// enough to an equal-distance plane that spherical math is unnecessary.

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Bearing returns the undirected bearing of the segment a->b in
// degrees, normalised to [0, 180).
func Bearing(a, b orb.Point) float64 {
	deg := math.Atan2(b[0]-a[0], b[1]-a[1]) * 180 / math.Pi
	deg = math.Mod(deg+360, 360)
	if deg >= 180 {
		deg -= 180
	}
	return deg
}

// LineBearing returns the undirected overall bearing of a line, taken
// from its first to its last point.
func LineBearing(ls orb.LineString) float64 {
	if len(ls) < 2 {
		return 0
	}
	return Bearing(ls[0], ls[len(ls)-1])
}

// BearingDiff returns the smallest angle in degrees between two
// undirected bearings. The result is in [0, 90].
func BearingDiff(a, b float64) float64 {
	d := math.Abs(a - b)
	d = math.Mod(d, 180)
	if d > 90 {
		d = 180 - d
	}
	return d
}

// PointAlong returns the point at the given fraction (0..1) of the
// line's total length.
func PointAlong(ls orb.LineString, fraction float64) orb.Point {
	if len(ls) == 0 {
		return orb.Point{}
	}
	if len(ls) == 1 || fraction <= 0 {
		return ls[0]
	}
	total := planar.Length(ls)
	if total == 0 || fraction >= 1 {
		return ls[len(ls)-1]
	}

	target := total * fraction
	walked := 0.0
	for i := 0; i < len(ls)-1; i++ {
		seg := planar.Distance(ls[i], ls[i+1])
		if walked+seg >= target {
			if seg == 0 {
				return ls[i]
			}
			t := (target - walked) / seg
			return orb.Point{
				ls[i][0] + (ls[i+1][0]-ls[i][0])*t,
				ls[i][1] + (ls[i+1][1]-ls[i][1])*t,
			}
		}
		walked += seg
	}
	return ls[len(ls)-1]
}

// Midpoint returns the point halfway along the line.
func Midpoint(ls orb.LineString) orb.Point {
	return PointAlong(ls, 0.5)
}

// ClosestPoint returns the nearest point on the line to p. The result
// may lie in the interior of a segment, not only on a vertex.
func ClosestPoint(ls orb.LineString, p orb.Point) orb.Point {
	if len(ls) == 0 {
		return orb.Point{}
	}
	if len(ls) == 1 {
		return ls[0]
	}

	best := ls[0]
	bestDist := math.Inf(1)
	for i := 0; i < len(ls)-1; i++ {
		c := closestOnSegment(ls[i], ls[i+1], p)
		if d := planar.Distance(c, p); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func closestOnSegment(a, b, p orb.Point) orb.Point {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return a
	}

	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return orb.Point{a[0] + t*dx, a[1] + t*dy}
}
