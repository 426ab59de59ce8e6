// Package catalog loads vehicle profiles from a JSON file, falling back
// to a built-in removals fleet.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/ports"
)

// defaultFleet covers the vehicle classes a removals survey cares about.
var defaultFleet = []domain.VehicleProfile{
	{
		Name:           "3.5t Luton Van",
		Class:          "luton_van_3_5t",
		WidthM:         2.25,
		LengthM:        6.0,
		HeightM:        3.2,
		WeightKg:       3500,
		TurningRadiusM: 6.5,
		MirrorWidthM:   0.25,
	},
	{
		Name:           "7.5t Box Truck",
		Class:          "truck_7_5t",
		WidthM:         2.45,
		LengthM:        8.0,
		HeightM:        3.6,
		WeightKg:       7500,
		TurningRadiusM: 8.5,
		MirrorWidthM:   0.25,
	},
	{
		Name:           "18t Pantechnicon",
		Class:          "pantechnicon_18t",
		WidthM:         2.55,
		LengthM:        12.0,
		HeightM:        4.0,
		WeightKg:       18000,
		TurningRadiusM: 11.0,
		MirrorWidthM:   0.25,
	},
}

// Catalog implements ports.VehicleCatalog over an in-memory profile
// list loaded once at startup.
type Catalog struct {
	vehicles []domain.VehicleProfile
}

// Load reads profiles from a JSON array file. An empty path loads the
// built-in default fleet.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return &Catalog{vehicles: defaultFleet}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vehicle file: %w", err)
	}
	var vehicles []domain.VehicleProfile
	if err := json.Unmarshal(raw, &vehicles); err != nil {
		return nil, fmt.Errorf("parse vehicle file %s: %w", path, err)
	}
	if len(vehicles) == 0 {
		return nil, fmt.Errorf("vehicle file %s contains no profiles", path)
	}
	for i, v := range vehicles {
		if v.Class == "" || v.WidthM <= 0 {
			return nil, fmt.Errorf("vehicle file %s: profile %d missing class or width", path, i)
		}
	}
	return &Catalog{vehicles: vehicles}, nil
}

// ListVehicles returns profiles, optionally filtered by class name.
func (c *Catalog) ListVehicles(classes []string) []domain.VehicleProfile {
	if len(classes) == 0 {
		return append([]domain.VehicleProfile(nil), c.vehicles...)
	}

	wanted := make(map[string]bool, len(classes))
	for _, cl := range classes {
		wanted[cl] = true
	}
	var out []domain.VehicleProfile
	for _, v := range c.vehicles {
		if wanted[v.Class] {
			out = append(out, v)
		}
	}
	return out
}

var _ ports.VehicleCatalog = (*Catalog)(nil)
