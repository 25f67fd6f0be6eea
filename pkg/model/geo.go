//nolint:gomnd
package model

import (
	"math"
)

const EarthRadiusKm = 6371.

type Location struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

func NewLocation(lat, lon float64) Location {
	return Location{Lat: lat, Lon: lon}
}

// DistKm returns great-circle distance in kilometers (haversine formula).
func DistKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRadian := math.Pi / 180

	deltaF := (lat2 - lat1) * toRadian
	deltaL := (lon2 - lon1) * toRadian
	a := math.Sin(deltaF/2)*math.Sin(deltaF/2) + math.Cos(lat1*toRadian)*math.Cos(lat2*toRadian)*math.Sin(deltaL/2)*math.Sin(deltaL/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Bearing returns initial course from the first point to the second, degrees 0..360.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	toRadian := math.Pi / 180

	y := math.Sin((lon2-lon1)*toRadian) * math.Cos(lat2*toRadian)
	x := math.Cos(lat1*toRadian)*math.Sin(lat2*toRadian) - math.Sin(lat1*toRadian)*math.Cos(lat2*toRadian)*math.Cos((lon2-lon1)*toRadian)
	bea := math.Atan2(y, x) * 180 / math.Pi

	if bea < 0 {
		bea += 360
	}

	return bea
}

func (l Location) DistTo(o Location) float64 {
	return DistKm(l.Lat, l.Lon, o.Lat, o.Lon)
}

func (l Location) BearingTo(o Location) float64 {
	return Bearing(l.Lat, l.Lon, o.Lat, o.Lon)
}

func (l Location) GetCoord() (float64, float64) {
	return l.Lat, l.Lon
}

// RoundTo rounds v half away from zero to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	p := math.Pow10(places)

	return math.Round(v*p) / p
}
