package deck

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/opencurb/curbmap/internal/style"
)

const (
	dataOpacity    = 0.9
	genericOpacity = 0.6
	maskOpacity    = 0.8
)

// TransitLayer renders styled stop points sized by radius and colored by
// mode. data is the transit styler's output.
func TransitLayer(name string, data *geojson.FeatureCollection) Layer {
	return Layer{
		Type:          ScatterplotLayer,
		ID:            LayerID(name),
		Data:          data,
		Pickable:      true,
		AutoHighlight: true,
		Opacity:       dataOpacity,
		FillColorProp: "color",
		RadiusProp:    "radius",
		RadiusMin:     1,
		RadiusMax:     30,
	}
}

// TrafficLayer renders volume-ramped road lines. data is the traffic
// styler's output.
func TrafficLayer(name string, data *geojson.FeatureCollection) Layer {
	return Layer{
		Type:           GeoJSONLayer,
		ID:             LayerID(name),
		Data:           data,
		Pickable:       true,
		AutoHighlight:  true,
		Opacity:        dataOpacity,
		Stroked:        true,
		Filled:         false,
		LineColorProp:  "line_color",
		LineWidthProp:  "line_width",
		LineWidthMin:   1,
		LineWidthMax:   20,
		HighlightColor: &style.RGBA{255, 255, 0, 255},
	}
}

// ParkingLayer renders zone outlines colored by restriction intensity.
// data is the parking styler's output.
func ParkingLayer(name string, data *geojson.FeatureCollection) Layer {
	return Layer{
		Type:          GeoJSONLayer,
		ID:            LayerID(name),
		Data:          data,
		Pickable:      true,
		AutoHighlight: true,
		Opacity:       dataOpacity,
		Stroked:       true,
		Filled:        false,
		LineColorProp: "restriction_color",
		LineWidthProp: "line_width",
		LineWidthMin:  2,
		LineWidthMax:  12,
	}
}

// GenericLayer renders a dataset with its static registry colors.
func GenericLayer(name string, data *geojson.FeatureCollection, fill, line style.RGBA) Layer {
	return Layer{
		Type:          GeoJSONLayer,
		ID:            LayerID(name),
		Data:          data,
		Pickable:      true,
		AutoHighlight: true,
		Opacity:       genericOpacity,
		Stroked:       true,
		Filled:        true,
		FillColor:     &fill,
		LineColor:     &line,
		LineWidthMin:  1,
	}
}

// MaskLayer dims everything outside the city boundary. mask is the
// polygon from geo.OutsideMask.
func MaskLayer(mask orb.Polygon) Layer {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(mask))
	return Layer{
		Type:      GeoJSONLayer,
		ID:        "boundary-mask",
		Data:      fc,
		Opacity:   maskOpacity,
		Filled:    true,
		FillColor: &style.RGBA{0, 0, 0, 160},
	}
}

// HighlightLayer marks the selected transit stop with a large ring.
func HighlightLayer(lon, lat float64) Layer {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Point{lon, lat})
	f.Properties["lon"] = lon
	f.Properties["lat"] = lat
	fc.Append(f)
	return Layer{
		Type:         ScatterplotLayer,
		ID:           "stop-highlight",
		Data:         fc,
		Opacity:      dataOpacity,
		Radius:       80,
		RadiusMin:    6,
		RadiusMax:    80,
		FillColor:    &style.RGBA{255, 255, 0, 220},
		LineColor:    &style.RGBA{255, 255, 255, 255},
		LineWidthMin: 2,
	}
}
