package queries

import (
	"context"
	"database/sql"
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderQueryHandler reads one order and its items from the database.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler for single order queries.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle executes the query. Returns an object-not-found error when no order
// exists with the requested identifier.
func (h GetOrderQueryHandler) Handle(
	ctx context.Context,
	query GetOrderQuery,
) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	response, err := h.readHeader(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	items, err := h.readItems(ctx, query.OrderID())
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	response.Items = items

	return response, nil
}

func (h GetOrderQueryHandler) readHeader(
	ctx context.Context,
	orderID kernel.UUID,
) (GetOrderQueryResponse, error) {
	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			order_number,
			buyer_id,
			vendor_id,
			status,
			fulfillment_type,
			payment_status,
			subtotal_cents,
			tax_cents,
			discount_cents,
			shipping_cents,
			total_cents,
			urgent,
			requires_approval,
			expected_at,
			created_at
		FROM orders
		WHERE id = ?
	`, orderID.Bytes()).Row()

	var response GetOrderQueryResponse
	var id, buyerID, vendorID uuid.UUID
	var expectedAt sql.NullTime

	err := row.Scan(
		&id,
		&response.OrderNumber,
		&buyerID,
		&vendorID,
		&response.Status,
		&response.FulfillmentType,
		&response.PaymentStatus,
		&response.SubtotalCents,
		&response.TaxCents,
		&response.DiscountCents,
		&response.ShippingCents,
		&response.TotalCents,
		&response.Urgent,
		&response.RequiresApproval,
		&expectedAt,
		&response.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", orderID)
	}
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	if response.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if response.BuyerID, err = kernel.UUIDFromBytes(buyerID[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if response.VendorID, err = kernel.UUIDFromBytes(vendorID[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if expectedAt.Valid {
		expected := expectedAt.Time
		response.ExpectedAt = &expected
	}

	return response, nil
}

func (h GetOrderQueryHandler) readItems(
	ctx context.Context,
	orderID kernel.UUID,
) ([]GetOrderQueryItemResponse, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			product_id,
			product_name,
			product_sku,
			quantity,
			unit_price_cents
		FROM order_items
		WHERE order_id = ?
		ORDER BY product_sku
	`, orderID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]GetOrderQueryItemResponse, 0)
	for rows.Next() {
		var item GetOrderQueryItemResponse
		var id, productID uuid.UUID

		err = rows.Scan(
			&id,
			&productID,
			&item.ProductName,
			&item.ProductSKU,
			&item.Quantity,
			&item.UnitPriceCents,
		)
		if err != nil {
			return nil, err
		}

		if item.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if item.ProductID, err = kernel.UUIDFromBytes(productID[:]); err != nil {
			return nil, err
		}
		item.LineTotalCents = item.UnitPriceCents * int64(item.Quantity)
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
