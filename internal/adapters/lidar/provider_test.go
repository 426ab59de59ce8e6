package lidar

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Hamza-Xoho/digital-surveyor/internal/core/domain"
)

const testTile = `ncols 4
nrows 3
xllcorner 530000
yllcorner 104000
cellsize 1
NODATA_value -9999
10 11 12 13
20 21 22 23
30 -9999 32 33
`

func TestParseASC(t *testing.T) {
	tl, err := parseASC(strings.NewReader(testTile))
	if err != nil {
		t.Fatalf("parseASC: %v", err)
	}
	if tl.ncols != 4 || tl.nrows != 3 || tl.cellSize != 1 {
		t.Fatalf("header = %+v", tl)
	}

	cases := []struct {
		e, n  float64
		want  float64
		valid bool
	}{
		{530000.5, 104000.5, 30, true}, // bottom-left cell, last data row
		{530002.5, 104002.5, 12, true}, // top row
		{530003.5, 104001.5, 23, true},
		{530001.5, 104000.5, 0, false}, // NODATA cell
		{529999.0, 104000.5, 0, false}, // west of tile
		{530000.5, 104003.5, 0, false}, // north of tile
	}
	for _, tc := range cases {
		got, ok := tl.sample(tc.e, tc.n)
		if ok != tc.valid {
			t.Errorf("sample(%f,%f) valid=%v, want %v", tc.e, tc.n, ok, tc.valid)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("sample(%f,%f) = %f, want %f", tc.e, tc.n, got, tc.want)
		}
	}
}

func TestParseASCRejectsTruncated(t *testing.T) {
	if _, err := parseASC(strings.NewReader("ncols 4\nnrows 3\ncellsize 1\n1 2 3")); err == nil {
		t.Error("truncated grid must not parse")
	}
}

func writeTile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(testTile), 0o644); err != nil {
		t.Fatal(err)
	}
}

func pathPoint(e, n float64) domain.PathPoint {
	return domain.PathPoint{Grid: domain.GridPoint{Easting: e, Northing: n}}
}

func TestElevationAt(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, dir, "TQ30_DTM_1m.asc")

	p := New(dir)
	if !p.Configured() {
		t.Fatal("provider with tile dir must be configured")
	}

	elev, err := p.ElevationAt(context.Background(), pathPoint(530002.5, 104002.5))
	if err != nil {
		t.Fatalf("ElevationAt: %v", err)
	}
	if !elev.Valid || elev.Value != 12 {
		t.Errorf("elev = %+v, want valid 12", elev)
	}

	// NODATA reads as an invalid sample, not an error.
	elev, err = p.ElevationAt(context.Background(), pathPoint(530001.5, 104000.5))
	if err != nil {
		t.Fatalf("ElevationAt nodata: %v", err)
	}
	if elev.Valid {
		t.Error("NODATA cell must be invalid")
	}

	// A point in a different 10km square has no tile on disk.
	elev, err = p.ElevationAt(context.Background(), pathPoint(630000, 104000))
	if err != nil {
		t.Fatalf("ElevationAt missing tile: %v", err)
	}
	if elev.Valid {
		t.Error("missing tile must yield an invalid sample")
	}
}

func TestElevationsAlong(t *testing.T) {
	dir := t.TempDir()
	writeTile(t, dir, "tq30_dtm_1m.asc") // lower-case pattern

	p := New(dir)
	path := []domain.PathPoint{
		pathPoint(530000.5, 104000.5),
		pathPoint(530001.5, 104000.5), // NODATA
		pathPoint(530002.5, 104000.5),
	}
	elevs, err := p.ElevationsAlong(context.Background(), path)
	if err != nil {
		t.Fatalf("ElevationsAlong: %v", err)
	}
	if len(elevs) != len(path) {
		t.Fatalf("got %d samples for %d points", len(elevs), len(path))
	}
	if !elevs[0].Valid || elevs[0].Value != 30 {
		t.Errorf("elevs[0] = %+v", elevs[0])
	}
	if elevs[1].Valid {
		t.Error("elevs[1] must be invalid (NODATA)")
	}
	if !elevs[2].Valid || elevs[2].Value != 32 {
		t.Errorf("elevs[2] = %+v", elevs[2])
	}
}

func TestUnconfigured(t *testing.T) {
	if New("").Configured() {
		t.Error("empty dir must be unconfigured")
	}
	if New("/no/such/dir").Configured() {
		t.Error("missing dir must be unconfigured")
	}
}
