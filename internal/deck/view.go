package deck

import "github.com/paulmach/orb"

// Camera distances, outermost to closest.
const (
	cityZoom     = 10
	overviewZoom = 11
	focusZoom    = 14
)

// City-center fallback coordinates.
const (
	cityCenterLat = 38.9072
	cityCenterLon = -77.0369
)

// ViewState is the map camera. Pitch and bearing stay zero: the map is
// strictly top-down.
type ViewState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Pitch     float64 `json:"pitch"`
	Bearing   float64 `json:"bearing"`
}

// CityView frames the whole city, the view when nothing is selected.
func CityView() ViewState {
	return ViewState{Latitude: cityCenterLat, Longitude: cityCenterLon, Zoom: cityZoom}
}

// OverviewView centers on the midpoint of a dataset's extent at
// neighborhood zoom.
func OverviewView(b orb.Bound) ViewState {
	return ViewState{
		Latitude:  (b.Min[1] + b.Max[1]) / 2,
		Longitude: (b.Min[0] + b.Max[0]) / 2,
		Zoom:      overviewZoom,
	}
}

// FocusView frames a single selected stop up close.
func FocusView(lat, lon float64) ViewState {
	return ViewState{Latitude: lat, Longitude: lon, Zoom: focusZoom}
}
