package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Типы заказов с точки зрения инициатора
const (
	OrderTypeBuy  = "buy"
	OrderTypeSell = "sell"
)

// Статусы заказа
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
)

// Order описывает сделку по офферу между инициатором и владельцем оффера
type Order struct {
	ID                 int64     `db:"id" json:"id"`
	OfferID            int64     `db:"offer_id" json:"offer_id"`
	InitiatorUserID    int64     `db:"initiator_user_id" json:"initiator_user_id"`
	CounterpartyUserID int64     `db:"counterparty_user_id" json:"counterparty_user_id"`
	OrderType          string    `db:"order_type" json:"order_type"`
	OrderStatus        string    `db:"order_status" json:"order_status"`
	LotCount           int       `db:"lot_count" json:"lot_count"`
	PricePerUnit       float64   `db:"price_per_unit" json:"price_per_unit"`
	UnitsPerLot        int       `db:"units_per_lot" json:"units_per_lot"`
	TotalAmount        float64   `db:"total_amount" json:"total_amount"`
	MaxShippingDays    int       `db:"max_shipping_days" json:"max_shipping_days"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

type CreateOrderRequest struct {
	OfferID  int64 `json:"offer_id"`
	Quantity int   `json:"quantity"`
}

// DeriveOrderType выводит тип заказа из типа оффера: на sale-оффер создается
// заказ покупки, на buy-оффер заказ продажи
func DeriveOrderType(offerType string) (string, error) {
	switch offerType {
	case OfferTypeSale:
		return OrderTypeBuy, nil
	case OfferTypeBuy:
		return OrderTypeSell, nil
	default:
		return "", validationErrorf("offer_type must be 'sale' or 'buy'")
	}
}

// SellerID возвращает сторону-продавца заказа
func (o *Order) SellerID() int64 {
	if o.OrderType == OrderTypeBuy {
		return o.CounterpartyUserID
	}
	return o.InitiatorUserID
}

// BuyerID возвращает сторону-покупателя заказа
func (o *Order) BuyerID() int64 {
	if o.OrderType == OrderTypeBuy {
		return o.InitiatorUserID
	}
	return o.CounterpartyUserID
}

var nextOrderStatus = map[string]string{
	OrderStatusPending:    OrderStatusConfirmed,
	OrderStatusConfirmed:  OrderStatusProcessing,
	OrderStatusProcessing: OrderStatusShipped,
	OrderStatusShipped:    OrderStatusDelivered,
}

func isKnownOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// CheckStatusTransition проверяет переход статуса и права стороны:
// до shipped заказ двигает продавец, доставку подтверждает покупатель
func CheckStatusTransition(o *Order, newStatus string, callerID int64) error {
	if !isKnownOrderStatus(newStatus) {
		return validationErrorf(fmt.Sprintf("unknown order status %q", newStatus))
	}
	if nextOrderStatus[o.OrderStatus] != newStatus {
		return validationErrorf(fmt.Sprintf("invalid status transition %s -> %s", o.OrderStatus, newStatus))
	}
	switch newStatus {
	case OrderStatusDelivered:
		if callerID != o.BuyerID() {
			return ErrForbidden
		}
	default:
		if callerID != o.SellerID() {
			return ErrForbidden
		}
	}
	return nil
}

// CreateOrder создает заказ, резервируя лоты под блокировкой строки оффера:
// два одновременных заказа не могут совместно превысить available_lots
func (s *Storage) CreateOrder(ctx context.Context, req *CreateOrderRequest, initiatorID int64) (*Order, error) {
	if req.OfferID <= 0 {
		return nil, validationErrorf("offer_id is required")
	}
	if req.Quantity <= 0 {
		return nil, validationErrorf("quantity must be positive")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	offer := &Offer{}
	err = tx.GetContext(ctx, offer, `SELECT * FROM offers WHERE id = $1 FOR UPDATE`, req.OfferID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if offer.UserID == initiatorID {
		return nil, ErrSelfTrade
	}
	if req.Quantity > offer.AvailableLots {
		return nil, ErrInsufficientLot
	}

	orderType, err := DeriveOrderType(offer.OfferType)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE offers SET available_lots = available_lots - $1, updated_at = NOW() WHERE id = $2`,
		req.Quantity, offer.ID)
	if err != nil {
		return nil, err
	}

	o := &Order{
		OfferID:            offer.ID,
		InitiatorUserID:    initiatorID,
		CounterpartyUserID: offer.UserID,
		OrderType:          orderType,
		OrderStatus:        OrderStatusPending,
		LotCount:           req.Quantity,
		PricePerUnit:       offer.PricePerUnit,
		UnitsPerLot:        offer.UnitsPerLot,
		TotalAmount:        offer.PricePerUnit * float64(req.Quantity) * float64(offer.UnitsPerLot),
		MaxShippingDays:    offer.MaxShippingDays,
	}
	query := `
        INSERT INTO orders
            (offer_id, initiator_user_id, counterparty_user_id, order_type, order_status,
             lot_count, price_per_unit, units_per_lot, total_amount, max_shipping_days)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at`
	err = tx.QueryRowContext(ctx, query,
		o.OfferID, o.InitiatorUserID, o.CounterpartyUserID, o.OrderType, o.OrderStatus,
		o.LotCount, o.PricePerUnit, o.UnitsPerLot, o.TotalAmount, o.MaxShippingDays).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return o, nil
}

// GetOrder виден только инициатору и контрагенту, для остальных заказа нет
func (s *Storage) GetOrder(ctx context.Context, id int64, callerID int64) (*Order, error) {
	o := &Order{}
	query := `
        SELECT * FROM orders
        WHERE id = $1 AND (initiator_user_id = $2 OR counterparty_user_id = $2)`
	err := s.db.GetContext(ctx, o, query, id, callerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// ListOrders возвращает заказы вызывающего, опционально по роли и статусу
func (s *Storage) ListOrders(ctx context.Context, callerID int64, role, status string, limit, offset int) ([]Order, error) {
	var clauses []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch role {
	case "initiator":
		clauses = append(clauses, "initiator_user_id = "+arg(callerID))
	case "counterparty":
		clauses = append(clauses, "counterparty_user_id = "+arg(callerID))
	default:
		p := arg(callerID)
		clauses = append(clauses, fmt.Sprintf("(initiator_user_id = %s OR counterparty_user_id = %s)", p, p))
	}

	if status != "" {
		if !isKnownOrderStatus(status) {
			return nil, validationErrorf(fmt.Sprintf("unknown order status %q", status))
		}
		clauses = append(clauses, "order_status = "+arg(status))
	}

	query := "SELECT * FROM orders WHERE " + strings.Join(clauses, " AND ") +
		fmt.Sprintf(" ORDER BY id DESC LIMIT %d OFFSET %d", limit, offset)
	orders := []Order{}
	err := s.db.SelectContext(ctx, &orders, query, args...)
	return orders, err
}

// UpdateOrderStatus двигает заказ по цепочке статусов с проверкой роли
func (s *Storage) UpdateOrderStatus(ctx context.Context, id int64, newStatus string, callerID int64) (*Order, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	o := &Order{}
	query := `
        SELECT * FROM orders
        WHERE id = $1 AND (initiator_user_id = $2 OR counterparty_user_id = $2)
        FOR UPDATE`
	err = tx.GetContext(ctx, o, query, id, callerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := CheckStatusTransition(o, newStatus, callerID); err != nil {
		return nil, err
	}

	o.OrderStatus = newStatus
	err = tx.QueryRowContext(ctx,
		`UPDATE orders SET order_status = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`,
		newStatus, id).Scan(&o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return o, nil
}
