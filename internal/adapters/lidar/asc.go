package lidar

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// tile is a parsed ESRI ASCII grid DTM tile. Rows are stored
// north-to-south as they appear in the file.
type tile struct {
	ncols, nrows int
	xll, yll     float64 // lower-left corner, grid metres
	cellSize     float64
	nodata       float64
	data         []float64 // row-major, nrows*ncols
}

// parseASC reads an ESRI ASCII grid: a short key/value header followed
// by whitespace-separated cell values, top row first.
func parseASC(r io.Reader) (*tile, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	sc.Split(bufio.ScanWords)

	next := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return sc.Text(), nil
	}

	t := &tile{nodata: -9999}
	// Header keys arrive in any order; data starts at the first numeric
	// token in key position.
	var pending string
	var xCentered, yCentered bool
	for {
		tok, err := next()
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		key := strings.ToLower(tok)
		if _, numErr := strconv.ParseFloat(tok, 64); numErr == nil {
			pending = tok
			break
		}
		val, err := next()
		if err != nil {
			return nil, fmt.Errorf("read header value for %s: %w", key, err)
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("parse header %s=%q: %w", key, val, err)
		}
		switch key {
		case "ncols":
			t.ncols = int(f)
		case "nrows":
			t.nrows = int(f)
		case "xllcorner":
			t.xll = f
		case "yllcorner":
			t.yll = f
		case "xllcenter":
			t.xll = f
			xCentered = true
		case "yllcenter":
			t.yll = f
			yCentered = true
		case "cellsize":
			t.cellSize = f
		case "nodata_value":
			t.nodata = f
		default:
			return nil, fmt.Errorf("unknown header key %q", key)
		}
	}

	if t.ncols <= 0 || t.nrows <= 0 || t.cellSize <= 0 {
		return nil, fmt.Errorf("incomplete header: ncols=%d nrows=%d cellsize=%f",
			t.ncols, t.nrows, t.cellSize)
	}
	if xCentered {
		t.xll -= t.cellSize / 2
	}
	if yCentered {
		t.yll -= t.cellSize / 2
	}

	t.data = make([]float64, 0, t.ncols*t.nrows)
	store := func(tok string) error {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return fmt.Errorf("parse cell %d: %w", len(t.data), err)
		}
		t.data = append(t.data, f)
		return nil
	}
	if err := store(pending); err != nil {
		return nil, err
	}
	for len(t.data) < t.ncols*t.nrows {
		tok, err := next()
		if err != nil {
			return nil, fmt.Errorf("read cells: %w", err)
		}
		if err := store(tok); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// sample returns the cell value at a grid coordinate, or ok=false when
// the point is outside the tile or the cell holds no data.
func (t *tile) sample(easting, northing float64) (float64, bool) {
	col := int(math.Floor((easting - t.xll) / t.cellSize))
	rowFromBottom := int(math.Floor((northing - t.yll) / t.cellSize))
	if col < 0 || col >= t.ncols || rowFromBottom < 0 || rowFromBottom >= t.nrows {
		return 0, false
	}
	row := t.nrows - 1 - rowFromBottom
	v := t.data[row*t.ncols+col]
	if v == t.nodata || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
