package usecases

import (
	"github.com/paulmach/orb"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/osgrid"
)

// gridToGeo converts a grid point to a geographic orb.Point in
// lon/lat order for GeoJSON output.
func gridToGeo(p domain.GridPoint) (orb.Point, error) {
	geo, err := osgrid.ToGeo(p)
	if err != nil {
		return orb.Point{}, err
	}
	return orb.Point{geo.Lon, geo.Lat}, nil
}
