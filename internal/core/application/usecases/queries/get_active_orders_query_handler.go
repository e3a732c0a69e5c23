package queries

import (
	"context"
	"database/sql"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveOrdersQueryHandler lists a buyer's in-flight orders from the
// database, newest first.
type GetActiveOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveOrdersQueryHandler creates a handler for active order queries.
func NewGetActiveOrdersQueryHandler(db *gorm.DB) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{db: db}
}

// Handle executes the query. Returns an empty slice when the buyer has no
// active orders.
func (h GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]GetActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_number,
			vendor_id,
			status,
			fulfillment_type,
			payment_status,
			total_cents,
			urgent,
			expected_at,
			created_at
		FROM orders
		WHERE buyer_id = ? AND status NOT IN (?, ?)
		ORDER BY created_at DESC, order_number DESC
	`, query.BuyerID().Bytes(), order.StatusCompleted.String(), order.StatusCancelled.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]GetActiveOrdersQueryResponse, 0)
	for rows.Next() {
		var response GetActiveOrdersQueryResponse
		var id, vendorID uuid.UUID
		var expectedAt sql.NullTime

		err = rows.Scan(
			&id,
			&response.OrderNumber,
			&vendorID,
			&response.Status,
			&response.FulfillmentType,
			&response.PaymentStatus,
			&response.TotalCents,
			&response.Urgent,
			&expectedAt,
			&response.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if response.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if response.VendorID, err = kernel.UUIDFromBytes(vendorID[:]); err != nil {
			return nil, err
		}
		if expectedAt.Valid {
			expected := expectedAt.Time
			response.ExpectedAt = &expected
		}

		orders = append(orders, response)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
