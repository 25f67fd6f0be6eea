package model

import (
	"fmt"
	"time"
)

type Unit struct {
	ID string
	Location
	Speed      float64
	Zone       string
	ReportedAt time.Time
}

func (u Unit) Key() string {
	return u.ID
}

func (u Unit) String() string {
	return fmt.Sprintf("unit %s [%s] %.5f,%.5f %.1f km/h", u.ID, u.Zone, u.Lat, u.Lon, u.Speed)
}

func (u Unit) DTO() *WebUnit {
	return &WebUnit{
		UnitID:    u.ID,
		Lat:       u.Lat,
		Lon:       u.Lon,
		Speed:     u.Speed,
		Zone:      optString(u.Zone),
		Timestamp: Epoch(u.ReportedAt),
	}
}
