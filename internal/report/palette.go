package report

import "github.com/wcharczuk/go-chart/v2/drawing"

// Palette carries the explicit colors for one chart theme. It is passed
// into the render call rather than living in process-wide style state, so
// two bundles with different themes can render back to back.
type Palette struct {
	Name       string
	Background drawing.Color
	Canvas     drawing.Color
	Text       drawing.Color
	Grid       drawing.Color
	Series     []drawing.Color // cycled for multi-series pages
	HeatLow    drawing.Color   // heatmap fill at position 0
	HeatHigh   drawing.Color   // heatmap fill at position 100
}

// LightPalette is the default report theme.
func LightPalette() Palette {
	return Palette{
		Name:       "light",
		Background: drawing.Color{R: 255, G: 255, B: 255, A: 255},
		Canvas:     drawing.Color{R: 252, G: 252, B: 252, A: 255},
		Text:       drawing.Color{R: 51, G: 51, B: 51, A: 255},
		Grid:       drawing.Color{R: 224, G: 224, B: 224, A: 255},
		Series: []drawing.Color{
			{R: 63, G: 81, B: 181, A: 255},  // indigo
			{R: 0, G: 150, B: 136, A: 255},  // teal
			{R: 255, G: 160, B: 0, A: 255},  // amber
			{R: 96, G: 125, B: 139, A: 255}, // slate
		},
		HeatLow:  drawing.Color{R: 46, G: 125, B: 50, A: 255},
		HeatHigh: drawing.Color{R: 198, G: 40, B: 40, A: 255},
	}
}

// DarkPalette renders the same pages on a dark ground.
func DarkPalette() Palette {
	return Palette{
		Name:       "dark",
		Background: drawing.Color{R: 30, G: 30, B: 30, A: 255},
		Canvas:     drawing.Color{R: 38, G: 38, B: 38, A: 255},
		Text:       drawing.Color{R: 224, G: 224, B: 224, A: 255},
		Grid:       drawing.Color{R: 70, G: 70, B: 70, A: 255},
		Series: []drawing.Color{
			{R: 121, G: 134, B: 203, A: 255},
			{R: 77, G: 182, B: 172, A: 255},
			{R: 255, G: 183, B: 77, A: 255},
			{R: 144, G: 164, B: 174, A: 255},
		},
		HeatLow:  drawing.Color{R: 102, G: 187, B: 106, A: 255},
		HeatHigh: drawing.Color{R: 239, G: 83, B: 80, A: 255},
	}
}

// PaletteByName resolves a configured theme name, defaulting to light.
func PaletteByName(name string) Palette {
	if name == "dark" {
		return DarkPalette()
	}
	return LightPalette()
}
