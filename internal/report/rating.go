package report

import "github.com/wcharczuk/go-chart/v2/drawing"

// Zone classifies an averaged position percentage for the rating page and
// the run summary. Low positions read as accumulation territory, high
// ones as stretched.
type Zone struct {
	Label string
	Color drawing.Color
}

// zones maps average-position floors to verdicts, scanned top down.
var zones = []struct {
	Min  float64
	Zone Zone
}{
	{80, Zone{Label: "Near Highs", Color: drawing.Color{R: 198, G: 40, B: 40, A: 255}}},
	{60, Zone{Label: "Upper Band", Color: drawing.Color{R: 239, G: 108, B: 0, A: 255}}},
	{40, Zone{Label: "Mid Range", Color: drawing.Color{R: 249, G: 168, B: 37, A: 255}}},
	{20, Zone{Label: "Lower Band", Color: drawing.Color{R: 158, G: 157, B: 36, A: 255}}},
	{0, Zone{Label: "Near Lows", Color: drawing.Color{R: 46, G: 125, B: 50, A: 255}}},
}

// DefaultZone covers values below every floor. Positions are clamped to
// [0, 100], so only malformed input lands here.
var DefaultZone = Zone{Label: "Unrated", Color: drawing.Color{R: 117, G: 117, B: 117, A: 255}}

// RatingZone maps an averaged position percentage to its display zone.
func RatingZone(avg float64) Zone {
	for _, z := range zones {
		if avg >= z.Min {
			return z.Zone
		}
	}
	return DefaultZone
}
