package deck

import (
	"fmt"

	"github.com/opencurb/curbmap/internal/style"
)

// LegendItem is one labeled color swatch.
type LegendItem struct {
	Label string     `json:"label"`
	Color style.RGBA `json:"color"`
}

// Ramp is a continuous color scale rendered as a gradient bar.
type Ramp struct {
	Stops    []style.RGBA `json:"stops"`
	MinLabel string       `json:"minLabel"`
	MaxLabel string       `json:"maxLabel"`
}

// Legend is one sidebar legend block for a selected dataset.
type Legend struct {
	Title string       `json:"title"`
	Note  string       `json:"note,omitempty"`
	Items []LegendItem `json:"items,omitempty"`
	Ramp  *Ramp        `json:"ramp,omitempty"`
}

// TrafficLegend describes the volume ramp together with the observed
// AADT range of the dataset.
func TrafficLegend(minAADT, maxAADT int) Legend {
	return Legend{
		Title: "Traffic Volume (AADT)",
		Note:  fmt.Sprintf("AADT range: %s – %s", style.Thousands(minAADT), style.Thousands(maxAADT)),
		Ramp: &Ramp{
			Stops:    []style.RGBA{{0, 200, 83, 255}, {255, 214, 0, 255}, {213, 0, 0, 255}},
			MinLabel: "Low",
			MaxLabel: "High",
		},
	}
}

// TransitLegend describes the stop mode swatches.
func TransitLegend() Legend {
	return Legend{
		Title: "Public Transportation Legend",
		Note:  "For Metro Stations, size of circle corresponds to the number of lines.",
		Items: []LegendItem{
			{Label: "Metro Station", Color: style.RGBA{0, 102, 204, 255}},
			{Label: "Bus Stop", Color: style.RGBA{255, 140, 0, 255}},
		},
	}
}

// ParkingLegend describes the restriction intensity gradient.
func ParkingLegend() Legend {
	return Legend{
		Title: "Parking Zones Restriction Legend",
		Ramp: &Ramp{
			Stops:    []style.RGBA{{255, 255, 255, 255}, {0, 166, 255, 255}},
			MinLabel: "Low",
			MaxLabel: "High",
		},
	}
}

// SelectionLegend lists the currently selected datasets with their
// registry swatches.
func SelectionLegend(items []LegendItem) Legend {
	return Legend{Title: "Selected Layers", Items: items}
}
