package style

import (
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// MaxUnrestrictedHours caps the weekly unrestricted-hours intensity scale;
// 166 is the dataset convention for total non-overnight hours in a week.
const MaxUnrestrictedHours = 166

const parkingLineWidth = 3

// Parking styles the parking zones dataset. Zone outlines are colored by
// weekly unrestricted hours, interpolated from white at 0 toward blue at
// MaxUnrestrictedHours and beyond. Derived columns: restriction_type,
// unrestriction_hours, estimated_max_cars, restriction_color, line_width,
// tooltip_html.
func Parking(fc *geojson.FeatureCollection) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	if fc == nil {
		return out
	}
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		g := geojson.NewFeature(f.Geometry)
		g.Properties = cloneProperties(f.Properties)

		restriction := Column(g.Properties, "PARKINGGROUP", "Unknown")
		hours := Column(g.Properties, "UNRESTRICTED_HOURS_PER_WEEK", 0)
		cars := Column(g.Properties, "ESTIMATED_MAX_CARS", 0)

		g.Properties["restriction_type"] = restriction
		g.Properties["unrestriction_hours"] = hours
		g.Properties["estimated_max_cars"] = cars
		g.Properties["restriction_color"] = intensityColor(hours)
		g.Properties["line_width"] = parkingLineWidth
		g.Properties["tooltip_html"] = fmt.Sprintf(
			"<b>Restriction:</b> %s<br/><b>Unrestricted Hours/Week:</b> %d<br/><b>Estimated Max Cars:</b> %d",
			restriction, hours, cars)
		out.Append(g)
	}
	return out
}

// intensityColor interpolates white (0 hours) toward blue
// (MaxUnrestrictedHours, clamped) on the parking intensity scale.
func intensityColor(hours int) RGBA {
	h := hours
	if h < 0 {
		h = 0
	}
	if h > MaxUnrestrictedHours {
		h = MaxUnrestrictedHours
	}
	t := float64(h) / MaxUnrestrictedHours
	return RGBA{int(255 - 255*t), int(255 - 89*t), 255, 255}
}
