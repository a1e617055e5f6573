// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import "github.com/pdiddy/audit-engine/internal/document"

// staticStartPages holds approximate section start pages for the August
// 2025 report, measured by hand. Used when the table of contents fails
// or does not list the requested county; the locator still validates
// headers around these estimates.
var staticStartPages = map[string]int{
	"mombasa":         324,
	"kwale":           328,
	"kilifi":          332,
	"tana river":      336,
	"lamu":            340,
	"taita taveta":    344,
	"garissa":         348,
	"wajir":           352,
	"mandera":         356,
	"marsabit":        360,
	"isiolo":          153,
	"meru":            368,
	"tharaka nithi":   372,
	"embu":            376,
	"kitui":           380,
	"machakos":        384,
	"makueni":         388,
	"nyandarua":       392,
	"nyeri":           396,
	"kirinyaga":       400,
	"murang'a":        404,
	"kiambu":          408,
	"turkana":         412,
	"west pokot":      416,
	"samburu":         420,
	"trans nzoia":     424,
	"uasin gishu":     428,
	"elgeyo marakwet": 432,
	"nandi":           436,
	"baringo":         440,
	"laikipia":        444,
	"nakuru":          448,
	"narok":           452,
	"kajiado":         456,
	"kericho":         460,
	"bomet":           464,
	"kakamega":        468,
	"vihiga":          472,
	"bungoma":         476,
	"busia":           480,
	"siaya":           484,
	"kisumu":          488,
	"homa bay":        492,
	"migori":          496,
	"kisii":           500,
	"nyamira":         504,
	"nairobi":         508,
}

// StaticStartPage returns the hand-measured approximate start page for
// a county, or 0 when the county is unknown.
func StaticStartPage(county string) int {
	return staticStartPages[document.NormalizeCounty(county)]
}
