package fueling

import (
	"strings"
	"time"

	"github.com/geocoder89/fuellog/internal/domain/user"
	"github.com/google/uuid"
)

// NewRecordID returns a time-ordered id; v7 keeps ids unique even when two
// submissions land in the same millisecond.
func NewRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "record-" + uuid.NewString()
	}
	return "record-" + id.String()
}

// Normalize upper-cases the plate and defaults the fuel type.
func (n NewRecord) Normalize() NewRecord {
	n.VehiclePlate = strings.ToUpper(n.VehiclePlate)
	if n.FuelType == "" {
		n.FuelType = FuelGasoline
	}
	return n
}

// NewFromSubmission snapshots the driver into a fresh record stamped at now.
func NewFromSubmission(driver user.User, data NewRecord, now time.Time) Record {
	data = data.Normalize()

	return Record{
		ID:              NewRecordID(),
		DriverID:        driver.ID,
		DriverName:      driver.Name,
		Vehicle:         driver.Vehicle,
		VehiclePlate:    data.VehiclePlate,
		Cost:            data.Cost,
		Liters:          data.Liters,
		FuelType:        data.FuelType,
		Mileage:         data.Mileage,
		DashboardPhoto:  data.DashboardPhoto,
		PumpPhoto:       data.PumpPhoto,
		RecordTimestamp: now.UTC(),
	}
}
