// Package osgrid converts between WGS 84 geographic coordinates and the
// British National Grid (EPSG:27700).
//
// The conversion is the standard one from the OS "A guide to coordinate
// systems in Great Britain": a 7-parameter Helmert datum shift between
// WGS 84 and OSGB36, and a Transverse Mercator projection on the Airy
// 1830 ellipsoid. Round-trip error is well under a metre anywhere in the
// supported extent. All functions are pure and safe for concurrent use.
package osgrid

import (
	"math"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
)

// Airy 1830 ellipsoid and National Grid projection constants.
const (
	airyA = 6377563.396
	airyB = 6356256.909

	scaleF0    = 0.9996012717
	originLat  = 49.0 * math.Pi / 180
	originLon  = -2.0 * math.Pi / 180
	falseEast  = 400000.0
	falseNorth = -100000.0
)

// GRS80 / WGS 84 ellipsoid.
const (
	wgsA = 6378137.000
	wgsB = 6356752.3141
)

// Helmert parameters, WGS 84 → OSGB36. Translations in metres, scale in
// ppm, rotations in arc-seconds.
const (
	helmertTx = -446.448
	helmertTy = 125.157
	helmertTz = -542.060
	helmertS  = 20.4894e-6
	helmertRx = -0.1502 / 3600 * math.Pi / 180
	helmertRy = -0.2470 / 3600 * math.Pi / 180
	helmertRz = -0.8421 / 3600 * math.Pi / 180
)

// Supported extent. The National Grid covers Great Britain only; points
// outside fail rather than silently clamping.
const (
	minLat, maxLat = 49.0, 61.5
	minLon, maxLon = -9.0, 2.5

	minEasting, maxEasting   = 0.0, 700000.0
	minNorthing, maxNorthing = 0.0, 1300000.0
)

// ToGrid projects a WGS 84 point onto the National Grid.
func ToGrid(geo domain.GeoPoint) (domain.GridPoint, error) {
	if geo.Lat < minLat || geo.Lat > maxLat || geo.Lon < minLon || geo.Lon > maxLon {
		return domain.GridPoint{}, domain.ErrProjectionOutOfRange
	}

	lat, lon := datumShift(geo.Lat*math.Pi/180, geo.Lon*math.Pi/180, wgsA, wgsB, airyA, airyB, 1)
	e, n := project(lat, lon)
	return domain.GridPoint{Easting: e, Northing: n}, nil
}

// ToGeo inverse-projects a National Grid point back to WGS 84.
func ToGeo(grid domain.GridPoint) (domain.GeoPoint, error) {
	if grid.Easting < minEasting || grid.Easting > maxEasting ||
		grid.Northing < minNorthing || grid.Northing > maxNorthing {
		return domain.GeoPoint{}, domain.ErrProjectionOutOfRange
	}

	lat, lon := unproject(grid.Easting, grid.Northing)
	lat, lon = datumShift(lat, lon, airyA, airyB, wgsA, wgsB, -1)
	return domain.GeoPoint{Lat: lat * 180 / math.Pi, Lon: lon * 180 / math.Pi}, nil
}

// project applies the Transverse Mercator projection for OSGB36
// latitude/longitude in radians.
func project(lat, lon float64) (easting, northing float64) {
	e2 := 1 - (airyB*airyB)/(airyA*airyA)

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	tanLat := math.Tan(lat)
	tan2 := tanLat * tanLat
	tan4 := tan2 * tan2

	nu := airyA * scaleF0 / math.Sqrt(1-e2*sinLat*sinLat)
	rho := airyA * scaleF0 * (1 - e2) / math.Pow(1-e2*sinLat*sinLat, 1.5)
	eta2 := nu/rho - 1

	m := meridionalArc(lat)

	i := m + falseNorth
	ii := nu / 2 * sinLat * cosLat
	iii := nu / 24 * sinLat * math.Pow(cosLat, 3) * (5 - tan2 + 9*eta2)
	iiiA := nu / 720 * sinLat * math.Pow(cosLat, 5) * (61 - 58*tan2 + tan4)
	iv := nu * cosLat
	v := nu / 6 * math.Pow(cosLat, 3) * (nu/rho - tan2)
	vi := nu / 120 * math.Pow(cosLat, 5) * (5 - 18*tan2 + tan4 + 14*eta2 - 58*tan2*eta2)

	dLon := lon - originLon

	northing = i + ii*dLon*dLon + iii*math.Pow(dLon, 4) + iiiA*math.Pow(dLon, 6)
	easting = falseEast + iv*dLon + v*math.Pow(dLon, 3) + vi*math.Pow(dLon, 5)
	return easting, northing
}

// unproject inverts the Transverse Mercator projection, returning OSGB36
// latitude/longitude in radians.
func unproject(easting, northing float64) (lat, lon float64) {
	e2 := 1 - (airyB*airyB)/(airyA*airyA)

	lat = (northing-falseNorth)/(airyA*scaleF0) + originLat
	for {
		m := meridionalArc(lat)
		if northing-falseNorth-m < 0.00001 {
			break
		}
		lat += (northing - falseNorth - m) / (airyA * scaleF0)
	}

	sinLat := math.Sin(lat)
	cosLat := math.Cos(lat)
	secLat := 1 / cosLat
	tanLat := math.Tan(lat)
	tan2 := tanLat * tanLat
	tan4 := tan2 * tan2
	tan6 := tan4 * tan2

	nu := airyA * scaleF0 / math.Sqrt(1-e2*sinLat*sinLat)
	rho := airyA * scaleF0 * (1 - e2) / math.Pow(1-e2*sinLat*sinLat, 1.5)
	eta2 := nu/rho - 1

	vii := tanLat / (2 * rho * nu)
	viii := tanLat / (24 * rho * math.Pow(nu, 3)) * (5 + 3*tan2 + eta2 - 9*tan2*eta2)
	ix := tanLat / (720 * rho * math.Pow(nu, 5)) * (61 + 90*tan2 + 45*tan4)
	x := secLat / nu
	xi := secLat / (6 * math.Pow(nu, 3)) * (nu/rho + 2*tan2)
	xii := secLat / (120 * math.Pow(nu, 5)) * (5 + 28*tan2 + 24*tan4)
	xiiA := secLat / (5040 * math.Pow(nu, 7)) * (61 + 662*tan2 + 1320*tan4 + 720*tan6)

	dE := easting - falseEast

	lat = lat - vii*dE*dE + viii*math.Pow(dE, 4) - ix*math.Pow(dE, 6)
	lon = originLon + x*dE - xi*math.Pow(dE, 3) + xii*math.Pow(dE, 5) - xiiA*math.Pow(dE, 7)
	return lat, lon
}

// meridionalArc computes the developed meridian arc M for the National
// Grid projection.
func meridionalArc(lat float64) float64 {
	n := (airyA - airyB) / (airyA + airyB)
	n2 := n * n
	n3 := n2 * n

	dLat := lat - originLat
	sLat := lat + originLat

	return airyB * scaleF0 * ((1+n+5.0/4*n2+5.0/4*n3)*dLat -
		(3*n+3*n2+21.0/8*n3)*math.Sin(dLat)*math.Cos(sLat) +
		(15.0/8*n2+15.0/8*n3)*math.Sin(2*dLat)*math.Cos(2*sLat) -
		35.0/24*n3*math.Sin(3*dLat)*math.Cos(3*sLat))
}

// datumShift converts latitude/longitude (radians) between ellipsoids via
// a Helmert transformation. direction is +1 for WGS 84 → OSGB36 and -1
// for the inverse.
func datumShift(lat, lon, fromA, fromB, toA, toB, direction float64) (float64, float64) {
	// To cartesian on the source ellipsoid (height 0).
	e2 := 1 - (fromB*fromB)/(fromA*fromA)
	sinLat := math.Sin(lat)
	nu := fromA / math.Sqrt(1-e2*sinLat*sinLat)

	x := nu * math.Cos(lat) * math.Cos(lon)
	y := nu * math.Cos(lat) * math.Sin(lon)
	z := (1 - e2) * nu * sinLat

	// Helmert transform.
	tx, ty, tz := direction*helmertTx, direction*helmertTy, direction*helmertTz
	s := 1 + direction*helmertS
	rx, ry, rz := direction*helmertRx, direction*helmertRy, direction*helmertRz

	x2 := tx + s*x - rz*y + ry*z
	y2 := ty + rz*x + s*y - rx*z
	z2 := tz - ry*x + rx*y + s*z

	// Back to latitude/longitude on the target ellipsoid.
	e2 = 1 - (toB*toB)/(toA*toA)
	p := math.Sqrt(x2*x2 + y2*y2)
	lat = math.Atan2(z2, p*(1-e2))
	for i := 0; i < 8; i++ {
		nu = toA / math.Sqrt(1-e2*math.Sin(lat)*math.Sin(lat))
		lat = math.Atan2(z2+e2*nu*math.Sin(lat), p)
	}
	lon = math.Atan2(y2, x2)
	return lat, lon
}
