package fulfillmentrepo

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/core/domain/model/fulfillment"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFulfillmentRepository implements FulfillmentRepository using GORM.
type GormFulfillmentRepository struct {
	db *gorm.DB
}

// NewGormFulfillmentRepository creates a new GORM fulfillment repository.
func NewGormFulfillmentRepository(db *gorm.DB) *GormFulfillmentRepository {
	return &GormFulfillmentRepository{db: db}
}

// AddBooking persists a new pickup booking.
func (r *GormFulfillmentRepository) AddBooking(ctx context.Context, booking *fulfillment.Booking) error {
	if err := booking.Validate(); err != nil {
		return err
	}

	dto := bookingFromDomain(booking)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// UpdateBooking persists a booking state change.
func (r *GormFulfillmentRepository) UpdateBooking(ctx context.Context, booking *fulfillment.Booking) error {
	if err := booking.Validate(); err != nil {
		return err
	}

	dto := bookingFromDomain(booking)
	result := r.db.WithContext(ctx).Save(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// GetBooking retrieves a booking by ID.
func (r *GormFulfillmentRepository) GetBooking(ctx context.Context, id kernel.UUID) (*fulfillment.Booking, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto BookingDTO
	err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("booking", id.String())
		}
		return nil, err
	}

	return bookingToDomain(dto)
}

// GetVendorBookingsBetween retrieves the vendor's active slots overlapping
// the window.
func (r *GormFulfillmentRepository) GetVendorBookingsBetween(
	ctx context.Context,
	vendorID kernel.UUID,
	from, to time.Time,
) ([]*fulfillment.Booking, error) {
	if err := vendorID.Validate(); err != nil {
		return nil, err
	}

	var dtos []BookingDTO
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND status IN ? AND slot_start < ? AND slot_start + duration_minutes * INTERVAL '1 minute' > ?",
			vendorID.Bytes(),
			[]string{fulfillment.BookingStatusBooked.String(), fulfillment.BookingStatusReady.String()},
			to, from).
		Order("slot_start").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	bookings := make([]*fulfillment.Booking, 0, len(dtos))
	for _, dto := range dtos {
		booking, bookingErr := bookingToDomain(dto)
		if bookingErr != nil {
			return nil, bookingErr
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

// AddRoute persists a new route with its stops.
func (r *GormFulfillmentRepository) AddRoute(ctx context.Context, route *fulfillment.Route) error {
	if err := route.Validate(); err != nil {
		return err
	}

	dto := routeFromDomain(route)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// UpdateRoute persists route and stop changes. Stops are rewritten as a set
// so removed and resequenced stops come out right.
func (r *GormFulfillmentRepository) UpdateRoute(ctx context.Context, route *fulfillment.Route) error {
	if err := route.Validate(); err != nil {
		return err
	}

	dto := routeFromDomain(route)

	result := r.db.WithContext(ctx).Omit("Stops").Save(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := r.db.WithContext(ctx).Where("route_id = ?", dto.ID).Delete(&StopDTO{}).Error; err != nil {
		return err
	}
	if len(dto.Stops) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&dto.Stops).Error
}

// GetRoute retrieves a route with its stops by ID.
func (r *GormFulfillmentRepository) GetRoute(ctx context.Context, id kernel.UUID) (*fulfillment.Route, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RouteDTO
	err := r.db.WithContext(ctx).Preload("Stops", orderBySequence).First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("route", id.String())
		}
		return nil, err
	}

	return routeToDomain(dto)
}

// GetRouteByStop retrieves the route carrying the given stop.
func (r *GormFulfillmentRepository) GetRouteByStop(ctx context.Context, stopID kernel.UUID) (*fulfillment.Route, error) {
	if err := stopID.Validate(); err != nil {
		return nil, err
	}

	var stopDTO StopDTO
	err := r.db.WithContext(ctx).First(&stopDTO, "id = ?", stopID.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("stop", stopID.String())
		}
		return nil, err
	}

	routeID, err := kernel.UUIDFromBytes(stopDTO.RouteID[:])
	if err != nil {
		return nil, err
	}

	return r.GetRoute(ctx, routeID)
}

// GetOpenRoutesByDate retrieves routes still in planning for the given day,
// locking the route rows so two concurrent assignments cannot overfill one
// vehicle.
func (r *GormFulfillmentRepository) GetOpenRoutesByDate(
	ctx context.Context,
	date time.Time,
) ([]*fulfillment.Route, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var dtos []RouteDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Stops", orderBySequence).
		Where("status = ? AND date >= ? AND date < ?",
			fulfillment.RouteStatusPlanning.String(), dayStart, dayEnd).
		Order("id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	routes := make([]*fulfillment.Route, 0, len(dtos))
	for _, dto := range dtos {
		route, routeErr := routeToDomain(dto)
		if routeErr != nil {
			return nil, routeErr
		}
		routes = append(routes, route)
	}

	return routes, nil
}

func orderBySequence(db *gorm.DB) *gorm.DB {
	return db.Order("route_stops.sequence")
}
