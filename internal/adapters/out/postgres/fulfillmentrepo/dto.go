// Package fulfillmentrepo persists pickup bookings and delivery routes with
// their stops.
package fulfillmentrepo

import (
	"time"

	"marketplace/internal/core/domain/model/fulfillment"
	"marketplace/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// BookingDTO represents a pickup bay booking row.
type BookingDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID          uuid.UUID `gorm:"type:uuid;index"`
	VendorID         uuid.UUID `gorm:"type:uuid;index"`
	Bay              string
	SlotStart        time.Time `gorm:"index"`
	DurationMinutes  int
	ConfirmationCode string `gorm:"uniqueIndex"`
	Status           string `gorm:"index"`
	CreatedAt        time.Time
}

// TableName overrides GORM's default naming convention.
func (BookingDTO) TableName() string {
	return "pickup_bookings"
}

// RouteDTO represents a delivery route row.
type RouteDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	VehicleID        uuid.UUID `gorm:"type:uuid;index"`
	Date             time.Time `gorm:"index"`
	Zone             string
	CapacityWeightKg float64
	CapacityVolumeM3 float64 `gorm:"column:capacity_volume_m3"`
	Refrigerated     bool
	Status           string    `gorm:"index"`
	Stops            []StopDTO `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default naming convention.
func (RouteDTO) TableName() string {
	return "routes"
}

// StopDTO represents one delivery stop in the route_stops table.
type StopDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	RouteID      uuid.UUID `gorm:"type:uuid;index"`
	OrderID      uuid.UUID `gorm:"type:uuid;index"`
	Lat          float64
	Lng          float64
	Sequence     int
	Packages     int
	WeightKg     float64
	VolumeM3     float64 `gorm:"column:volume_m3"`
	Refrigerated bool
}

// TableName overrides GORM's default naming convention.
func (StopDTO) TableName() string {
	return "route_stops"
}

func bookingFromDomain(booking *fulfillment.Booking) BookingDTO {
	return BookingDTO{
		ID:               booking.ID().Bytes(),
		OrderID:          booking.OrderID().Bytes(),
		VendorID:         booking.VendorID().Bytes(),
		Bay:              booking.Bay(),
		SlotStart:        booking.SlotStart(),
		DurationMinutes:  int(booking.Duration().Minutes()),
		ConfirmationCode: booking.ConfirmationCode(),
		Status:           booking.Status().String(),
		CreatedAt:        booking.CreatedAt(),
	}
}

func bookingToDomain(dto BookingDTO) (*fulfillment.Booking, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	vendorID, err := kernel.UUIDFromBytes(dto.VendorID[:])
	if err != nil {
		return nil, err
	}
	status, err := fulfillment.BookingStatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	return fulfillment.RestoreBooking(
		id, orderID, vendorID, dto.Bay, dto.SlotStart,
		time.Duration(dto.DurationMinutes)*time.Minute,
		dto.ConfirmationCode, status, dto.CreatedAt,
	)
}

func routeFromDomain(route *fulfillment.Route) RouteDTO {
	dto := RouteDTO{
		ID:               route.ID().Bytes(),
		VehicleID:        route.VehicleID().Bytes(),
		Date:             route.Date(),
		Zone:             route.Zone(),
		CapacityWeightKg: route.CapacityWeightKg(),
		CapacityVolumeM3: route.CapacityVolumeM3(),
		Refrigerated:     route.Refrigerated(),
		Status:           route.Status().String(),
	}

	dto.Stops = make([]StopDTO, 0, len(route.Stops()))
	for _, stop := range route.Stops() {
		dto.Stops = append(dto.Stops, stopFromDomain(route.ID(), stop))
	}

	return dto
}

func stopFromDomain(routeID kernel.UUID, stop *fulfillment.Stop) StopDTO {
	return StopDTO{
		ID:           stop.ID().Bytes(),
		RouteID:      routeID.Bytes(),
		OrderID:      stop.OrderID().Bytes(),
		Lat:          stop.Location().Latitude(),
		Lng:          stop.Location().Longitude(),
		Sequence:     stop.Sequence(),
		Packages:     stop.Packages(),
		WeightKg:     stop.WeightKg(),
		VolumeM3:     stop.VolumeM3(),
		Refrigerated: stop.Refrigerated(),
	}
}

func routeToDomain(dto RouteDTO) (*fulfillment.Route, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	vehicleID, err := kernel.UUIDFromBytes(dto.VehicleID[:])
	if err != nil {
		return nil, err
	}
	status, err := fulfillment.RouteStatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	stops := make([]*fulfillment.Stop, 0, len(dto.Stops))
	for _, stopDTO := range dto.Stops {
		stop, stopErr := stopToDomain(stopDTO)
		if stopErr != nil {
			return nil, stopErr
		}
		stops = append(stops, stop)
	}

	return fulfillment.RestoreRoute(
		id, vehicleID, dto.Date, dto.Zone,
		dto.CapacityWeightKg, dto.CapacityVolumeM3, dto.Refrigerated,
		status, stops,
	)
}

func stopToDomain(dto StopDTO) (*fulfillment.Stop, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	location, err := kernel.NewGeoPoint(dto.Lat, dto.Lng)
	if err != nil {
		return nil, err
	}

	return fulfillment.RestoreStop(
		id, orderID, location, dto.Sequence,
		dto.Packages, dto.WeightKg, dto.VolumeM3, dto.Refrigerated,
	)
}
