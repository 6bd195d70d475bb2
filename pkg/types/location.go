package types

import "math"

// EarthRadiusMiles is the mean Earth radius used by HaversineDistanceMiles.
const EarthRadiusMiles = 3958.8

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BlurLocation rounds each coordinate to two decimal places, roughly
// 0.7 miles or postal-code precision. Halves round toward positive infinity.
// Inputs are not range checked.
func BlurLocation(lat, lng float64) Point {
	return Point{Lat: round2(lat), Lng: round2(lng)}
}

func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// HaversineDistanceMiles returns the great-circle distance in miles between
// two points. The result is symmetric and zero for coincident points.
func HaversineDistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMiles * c
}

// DistanceMiles returns the haversine distance from p to q.
func (p Point) DistanceMiles(q Point) float64 {
	return HaversineDistanceMiles(p.Lat, p.Lng, q.Lat, q.Lng)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
