package osgrid

import "fmt"

// 100km-square letter pairs of the National Grid, indexed
// [northing/100km][easting/100km].
var gridLetters = [13][7]string{
	{"SV", "SW", "SX", "SY", "SZ", "TV", "TW"},
	{"SQ", "SR", "SS", "ST", "SU", "TQ", "TR"},
	{"SL", "SM", "SN", "SO", "SP", "TL", "TM"},
	{"SF", "SG", "SH", "SJ", "SK", "TF", "TG"},
	{"SA", "SB", "SC", "SD", "SE", "TA", "TB"},
	{"NV", "NW", "NX", "NY", "NZ", "OV", "OW"},
	{"NQ", "NR", "NS", "NT", "NU", "OQ", "OR"},
	{"NL", "NM", "NN", "NO", "NP", "OL", "OM"},
	{"NF", "NG", "NH", "NJ", "NK", "OF", "OG"},
	{"NA", "NB", "NC", "ND", "NE", "OA", "OB"},
	{"HV", "HW", "HX", "HY", "HZ", "JV", "JW"},
	{"HQ", "HR", "HS", "HT", "HU", "JQ", "JR"},
	{"HL", "HM", "HN", "HO", "HP", "JL", "JM"},
}

// TileRef converts grid coordinates to the 10km tile reference used to
// name terrain tiles, e.g. easting 530000, northing 104000 → "TQ30".
func TileRef(easting, northing float64) (string, error) {
	e100 := int(easting / 100000)
	n100 := int(northing / 100000)

	if e100 < 0 || e100 >= 7 || n100 < 0 || n100 >= 13 {
		return "", fmt.Errorf("coordinates (%.0f, %.0f) outside grid letter extent", easting, northing)
	}

	letters := gridLetters[n100][e100]
	eDigit := int(easting/10000) % 10
	nDigit := int(northing/10000) % 10
	return fmt.Sprintf("%s%d%d", letters, eDigit, nDigit), nil
}
