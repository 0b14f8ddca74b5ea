package domain

import "github.com/lcalzada-xor/factmap/internal/geo"

// MarkerHue is the colour of a map pin.
type MarkerHue string

const (
	HueRed    MarkerHue = "red"
	HueYellow MarkerHue = "yellow"
	HueOrange MarkerHue = "orange"
	HueAzure  MarkerHue = "azure"
	HueBlue   MarkerHue = "blue"
)

// Camera zoom levels
const (
	InitialZoom = 13.0
	LocatedZoom = 15.0
)

// Marker is a titled pin on the map.
type Marker struct {
	Title    string       `json:"title"`
	Snippet  string       `json:"snippet"`
	Position geo.Location `json:"position"`
	Hue      MarkerHue    `json:"hue"`
}

// Camera describes where the map is centred.
type Camera struct {
	Target geo.Location `json:"target"`
	Zoom   float64      `json:"zoom"`
}

// MapState is a snapshot of what the map screen shows.
type MapState struct {
	PermissionGranted bool          `json:"permission_granted"`
	UserLocation      *geo.Location `json:"user_location,omitempty"`
	Camera            Camera        `json:"camera"`
	Markers           []Marker      `json:"markers"`
	Loaded            bool          `json:"loaded"`
}

// DefaultLocation is Valmiera city centre, used whenever no device location is known.
var DefaultLocation = geo.Location{Latitude: 57.537233, Longitude: 25.412659}

// PointsOfInterest are the fixed markers always shown on the map.
var PointsOfInterest = []Marker{
	{
		Title:    "Valmiera",
		Snippet:  "City centre",
		Position: DefaultLocation,
		Hue:      HueAzure,
	},
	{
		Title:    "ViA main building",
		Snippet:  "ViA cēsu ielas building",
		Position: geo.Location{Latitude: 57.53494954596886, Longitude: 25.42434425186509},
		Hue:      HueRed,
	},
	{
		Title:    "ViA second building",
		Snippet:  "ViA tērbatas ielas building",
		Position: geo.Location{Latitude: 57.54172014823949, Longitude: 25.428271086501255},
		Hue:      HueYellow,
	},
	{
		Title:    "Valleta",
		Snippet:  "Tirzniecības centrs Valleta",
		Position: geo.Location{Latitude: 57.53868023228932, Longitude: 25.42360526901146},
		Hue:      HueOrange,
	},
}

// UserMarker returns the pin drawn at the device location.
func UserMarker(loc geo.Location) Marker {
	return Marker{
		Title:    "Your Location",
		Snippet:  "You are here",
		Position: loc,
		Hue:      HueBlue,
	}
}
