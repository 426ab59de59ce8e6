// Package lidar reads Environment Agency 1 m DTM tiles from a local
// directory and serves elevation samples. Tiles use the ESRI ASCII grid
// export and are located by their National Grid tile reference.
package lidar

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
	"github.com/Hamza-Xoho/digital-surveyor/internal/core/ports"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/logging"
	"github.com/Hamza-Xoho/digital-surveyor/internal/pkg/osgrid"
)

// Provider implements ports.ElevationProvider over a tile directory.
// Parsed tiles are kept in memory; an assessment samples one or two
// tiles tens of times.
type Provider struct {
	dir string
	log *slog.Logger

	mu    sync.Mutex
	tiles map[string]*tile // tile ref -> parsed tile, nil for known-missing
}

// New creates a provider reading tiles from dir. An empty or missing
// directory leaves the provider unconfigured.
func New(dir string) *Provider {
	return &Provider{
		dir:   dir,
		log:   logging.Component("lidar"),
		tiles: make(map[string]*tile),
	}
}

func (p *Provider) Name() string { return "ea_lidar" }

func (p *Provider) Resolution() string { return "1m" }

func (p *Provider) Configured() bool {
	if p.dir == "" {
		return false
	}
	info, err := os.Stat(p.dir)
	return err == nil && info.IsDir()
}

// ElevationAt samples the DTM at a single point.
func (p *Provider) ElevationAt(_ context.Context, pt domain.PathPoint) (domain.Elevation, error) {
	t, err := p.tileFor(pt.Grid)
	if err != nil {
		return domain.Elevation{}, err
	}
	if t == nil {
		return domain.Elevation{}, nil
	}
	v, ok := t.sample(pt.Grid.Easting, pt.Grid.Northing)
	if !ok {
		return domain.Elevation{}, nil
	}
	return domain.Elevation{Value: v, Valid: true}, nil
}

// ElevationsAlong samples each point of a path. Missing tiles and
// NODATA cells yield invalid samples, never errors.
func (p *Provider) ElevationsAlong(ctx context.Context, path []domain.PathPoint) ([]domain.Elevation, error) {
	out := make([]domain.Elevation, len(path))
	for i, pt := range path {
		elev, err := p.ElevationAt(ctx, pt)
		if err != nil {
			return nil, err
		}
		out[i] = elev
	}
	return out, nil
}

// tileFor loads and caches the tile covering a grid point. A nil tile
// with nil error means no tile file exists for that reference.
func (p *Provider) tileFor(grid domain.GridPoint) (*tile, error) {
	ref, err := osgrid.TileRef(grid.Easting, grid.Northing)
	if err != nil {
		return nil, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if t, seen := p.tiles[ref]; seen {
		return t, nil
	}

	path := p.findTileFile(ref)
	if path == "" {
		p.tiles[ref] = nil
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tile %s: %w", path, err)
	}
	defer f.Close()

	t, err := parseASC(f)
	if err != nil {
		return nil, fmt.Errorf("parse tile %s: %w", path, err)
	}
	p.log.Info("loaded dtm tile", "ref", ref, "path", path, "cols", t.ncols, "rows", t.nrows)
	p.tiles[ref] = t
	return t, nil
}

// findTileFile tries the naming patterns the Environment Agency exports
// actually use.
func (p *Provider) findTileFile(ref string) string {
	patterns := []string{
		ref + "_DTM_1m.asc",
		ref + "_DTM_1M.asc",
		strings.ToLower(ref) + "_dtm_1m.asc",
		ref + "_DSM_1m.asc",
	}
	for _, name := range patterns {
		path := filepath.Join(p.dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var _ ports.ElevationProvider = (*Provider)(nil)
