package fueling

import (
	"errors"
	"time"
)

type FuelType string

const (
	FuelGasoline FuelType = "Gasolina"
	FuelDiesel   FuelType = "Diesel"
	FuelEthanol  FuelType = "Etanol"
)

var ErrNotFound = errors.New("fueling record not found")

func (f FuelType) IsValid() bool {
	switch f {
	case FuelGasoline, FuelDiesel, FuelEthanol:
		return true
	default:
		return false
	}
}

func FuelTypes() []FuelType {
	return []FuelType{FuelGasoline, FuelDiesel, FuelEthanol}
}

// PhotoData is an image embedded by value in its record.
type PhotoData struct {
	Base64    string    `json:"base64"`    // data URI
	Timestamp time.Time `json:"timestamp"` // file last-modified
}

func (p PhotoData) IsZero() bool {
	return p.Base64 == ""
}

type Record struct {
	ID           string `json:"id"`
	DriverID     string `json:"driverId"`
	DriverName   string `json:"driverName"`
	Vehicle      string `json:"vehicle"`
	VehiclePlate string `json:"vehiclePlate"`

	Cost     float64  `json:"cost"`
	Liters   float64  `json:"liters"`
	FuelType FuelType `json:"fuelType"`

	Mileage int64 `json:"mileage"`

	DashboardPhoto PhotoData `json:"dashboardPhoto"`
	PumpPhoto      PhotoData `json:"pumpPhoto"`

	RecordTimestamp time.Time `json:"recordTimestamp"`
}

// NewRecord is the driver-supplied part of a record; identity, snapshots and the
// timestamp are filled in by the store.
type NewRecord struct {
	VehiclePlate   string
	Cost           float64
	Liters         float64
	FuelType       FuelType
	Mileage        int64
	DashboardPhoto PhotoData
	PumpPhoto      PhotoData
}
