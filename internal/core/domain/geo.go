package domain

// GeoPoint is a geographic coordinate (WGS 84 degrees).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GridPoint is a planar coordinate on the British National Grid
// (EPSG:27700, metres). All distance and area computation happens in
// grid coordinates, never in degrees.
type GridPoint struct {
	Easting  float64 `json:"easting"`
	Northing float64 `json:"northing"`
}

// Location is a geocoded position carrying both representations.
// Conversions between them are explicit, never implicit.
type Location struct {
	Postcode string    `json:"postcode"`
	Geo      GeoPoint  `json:"geo"`
	Grid     GridPoint `json:"grid"`
}

// BoundingBox is an axis-aligned box in grid coordinates. Immutable once
// constructed; build one with BoundingBoxAround.
type BoundingBox struct {
	MinEasting  float64 `json:"min_easting"`
	MinNorthing float64 `json:"min_northing"`
	MaxEasting  float64 `json:"max_easting"`
	MaxNorthing float64 `json:"max_northing"`
}

// BoundingBoxAround derives a box from a centre point and radius in metres.
func BoundingBoxAround(centre GridPoint, radius float64) BoundingBox {
	return BoundingBox{
		MinEasting:  centre.Easting - radius,
		MinNorthing: centre.Northing - radius,
		MaxEasting:  centre.Easting + radius,
		MaxNorthing: centre.Northing + radius,
	}
}

// PathPoint is one vertex of an approach path, carried in both coordinate
// systems so each consumer can use its canonical representation.
type PathPoint struct {
	Geo  GeoPoint  `json:"geo"`
	Grid GridPoint `json:"grid"`
}
