package models

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
	"gorm.io/gorm"
)

const earthRadiusKm = 6371.0

type Coordinates struct {
	Lat float64 `json:"lat" firestore:"lat"`
	Lng float64 `json:"lng" firestore:"lng"`
}

// Point returns the coordinates as a WGS84 point (x=lng, y=lat).
func (c Coordinates) Point() *geom.Point {
	return geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{c.Lng, c.Lat}).SetSRID(4326)
}

// DistanceKm is the great-circle distance between two coordinates.
func (c Coordinates) DistanceKm(o Coordinates) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := o.Lat * math.Pi / 180
	dLat := (o.Lat - c.Lat) * math.Pi / 180
	dLng := (o.Lng - c.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// FeederPoint is a waste collection zone. It is only ever soft-deleted.
type FeederPoint struct {
	Base
	AreaName              string      `json:"areaName" firestore:"areaName"`
	WardNumber            string      `json:"wardNumber" firestore:"wardNumber" gorm:"index"`
	KothiName             string      `json:"kothiName" firestore:"kothiName"`
	FeederPointName       string      `json:"feederPointName" firestore:"feederPointName"`
	NearestLandmark       string      `json:"nearestLandmark" firestore:"nearestLandmark"`
	ApproximateHouseholds int         `json:"approximateHouseholds" firestore:"approximateHouseholds"`
	VehicleTypes          []string    `json:"vehicleTypes" firestore:"vehicleTypes" gorm:"serializer:json;type:text"`
	Coordinates           Coordinates `json:"coordinates" firestore:"coordinates" gorm:"embedded;embeddedPrefix:coordinates_"`
	LocationPhoto         string      `json:"locationPhoto,omitempty" firestore:"locationPhoto,omitempty"`
	CreatedBy             string      `json:"createdBy" firestore:"createdBy"`
	CreatedAt             time.Time   `json:"createdAt" firestore:"createdAt"`
	IsActive              bool        `json:"isActive" firestore:"isActive" gorm:"index"`

	// Location is the WKB encoding of Coordinates for spatial queries in postgres.
	Location []byte `json:"-" firestore:"-" gorm:"type:bytea"`
}

// BeforeSave keeps the WKB column in step with the coordinates.
func (f *FeederPoint) BeforeSave(tx *gorm.DB) error {
	b, err := wkb.Marshal(f.Coordinates.Point(), binary.LittleEndian)
	if err != nil {
		return err
	}
	f.Location = b
	return nil
}

// GeoJSON renders the feeder point as a map feature keyed by its ID.
func (f FeederPoint) GeoJSON() *gjson.Feature {
	return &gjson.Feature{
		ID:       f.ID,
		Geometry: f.Coordinates.Point(),
		Properties: map[string]interface{}{
			"name":       f.FeederPointName,
			"wardNumber": f.WardNumber,
			"areaName":   f.AreaName,
			"households": f.ApproximateHouseholds,
		},
	}
}

type AssignmentStatus string

const (
	AssignmentActive   AssignmentStatus = "active"
	AssignmentInactive AssignmentStatus = "inactive"
)

// FeederPointAssignment links a feeder point to a contractor user.
type FeederPointAssignment struct {
	Base
	FeederPointID string           `json:"feederPointId" firestore:"feederPointId" gorm:"index"`
	ContractorID  string           `json:"contractorId" firestore:"contractorId" gorm:"index"`
	AssignedAt    time.Time        `json:"assignedAt" firestore:"assignedAt"`
	AssignedBy    string           `json:"assignedBy" firestore:"assignedBy"`
	Status        AssignmentStatus `json:"status" firestore:"status" gorm:"type:varchar(16)"`
}
