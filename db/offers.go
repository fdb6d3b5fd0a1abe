package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Типы офферов: sale значит владелец продает, buy значит закупает
const (
	OfferTypeSale = "sale"
	OfferTypeBuy  = "buy"
)

// Области выборки офферов
const (
	ScopeMy     = "my"
	ScopeOthers = "others"
	ScopeAll    = "all"
)

// Offer описывает торговое предложение. Координаты всегда зеркалят склад
// и клиентом напрямую не задаются.
type Offer struct {
	ID              int64     `db:"id" json:"id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	ProductID       int64     `db:"product_id" json:"product_id"`
	WarehouseID     int64     `db:"warehouse_id" json:"warehouse_id"`
	OfferType       string    `db:"offer_type" json:"offer_type"`
	PricePerUnit    float64   `db:"price_per_unit" json:"price_per_unit"`
	AvailableLots   int       `db:"available_lots" json:"available_lots"`
	UnitsPerLot     int       `db:"units_per_lot" json:"units_per_lot"`
	TaxNDS          int       `db:"tax_nds" json:"tax_nds"`
	IsPublic        bool      `db:"is_public" json:"is_public"`
	MaxShippingDays int       `db:"max_shipping_days" json:"max_shipping_days"`
	Latitude        float64   `db:"latitude" json:"latitude"`
	Longitude       float64   `db:"longitude" json:"longitude"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type CreateOfferRequest struct {
	ProductID       int64   `json:"product_id"`
	WarehouseID     int64   `json:"warehouse_id"`
	OfferType       string  `json:"offer_type"`
	PricePerUnit    float64 `json:"price_per_unit"`
	AvailableLots   int     `json:"available_lots"`
	UnitsPerLot     int     `json:"units_per_lot"`
	TaxNDS          int     `json:"tax_nds"`
	IsPublic        *bool   `json:"is_public,omitempty"`
	MaxShippingDays int     `json:"max_shipping_days"`
}

// UpdateOfferRequest намеренно не содержит latitude/longitude:
// координаты меняются только сменой warehouse_id
type UpdateOfferRequest struct {
	WarehouseID     *int64   `json:"warehouse_id,omitempty"`
	PricePerUnit    *float64 `json:"price_per_unit,omitempty"`
	AvailableLots   *int     `json:"available_lots,omitempty"`
	UnitsPerLot     *int     `json:"units_per_lot,omitempty"`
	TaxNDS          *int     `json:"tax_nds,omitempty"`
	IsPublic        *bool    `json:"is_public,omitempty"`
	MaxShippingDays *int     `json:"max_shipping_days,omitempty"`
}

// GeographicFilter задает прямоугольную область для фильтрации по координатам
type GeographicFilter struct {
	MinLatitude  float64 `json:"min_lat"`
	MaxLatitude  float64 `json:"max_lat"`
	MinLongitude float64 `json:"min_lon"`
	MaxLongitude float64 `json:"max_lon"`
}

// OfferFilter собирает набор предикатов, применяются через AND
type OfferFilter struct {
	Scope           string            `json:"scope,omitempty"`
	OfferType       string            `json:"offer_type,omitempty"`
	PriceMin        *float64          `json:"price_min,omitempty"`
	PriceMax        *float64          `json:"price_max,omitempty"`
	Geographic      *GeographicFilter `json:"geographic,omitempty"`
	AvailableLots   *int              `json:"available_lots,omitempty"`
	TaxNDS          *int              `json:"tax_nds,omitempty"`
	MaxShippingDays *int              `json:"max_shipping_days,omitempty"`
}

// NormalizeScope сводит неизвестные значения области к my,
// это осознанное поведение, а не ошибка
func NormalizeScope(scope string) string {
	switch scope {
	case ScopeMy, ScopeOthers, ScopeAll:
		return scope
	default:
		return ScopeMy
	}
}

// ValidateOfferType допускает пустое значение (фильтр не задан)
func ValidateOfferType(offerType string) error {
	switch offerType {
	case "", OfferTypeSale, OfferTypeBuy:
		return nil
	default:
		return validationErrorf("offer_type must be 'sale' or 'buy'")
	}
}

func validateCreateOffer(req *CreateOfferRequest) error {
	if req.ProductID <= 0 {
		return validationErrorf("product_id is required")
	}
	if req.WarehouseID <= 0 {
		return validationErrorf("warehouse_id is required")
	}
	if req.OfferType != OfferTypeSale && req.OfferType != OfferTypeBuy {
		return validationErrorf("offer_type must be 'sale' or 'buy'")
	}
	if req.PricePerUnit <= 0 {
		return validationErrorf("price_per_unit must be positive")
	}
	if req.AvailableLots < 0 {
		return validationErrorf("available_lots must not be negative")
	}
	if req.UnitsPerLot <= 0 {
		return validationErrorf("units_per_lot must be positive")
	}
	if req.MaxShippingDays < 0 {
		return validationErrorf("max_shipping_days must not be negative")
	}
	return nil
}

// CreateOffer создает оффер, копируя координаты склада в той же транзакции
func (s *Storage) CreateOffer(ctx context.Context, req *CreateOfferRequest, ownerID int64) (*Offer, error) {
	if err := validateCreateOffer(req); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var lat, lon float64
	err = tx.QueryRowContext(ctx,
		`SELECT latitude, longitude FROM warehouses WHERE id = $1`, req.WarehouseID).
		Scan(&lat, &lon)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var productExists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, req.ProductID).
		Scan(&productExists)
	if err != nil {
		return nil, err
	}
	if !productExists {
		return nil, ErrNotFound
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	o := &Offer{
		UserID:          ownerID,
		ProductID:       req.ProductID,
		WarehouseID:     req.WarehouseID,
		OfferType:       req.OfferType,
		PricePerUnit:    req.PricePerUnit,
		AvailableLots:   req.AvailableLots,
		UnitsPerLot:     req.UnitsPerLot,
		TaxNDS:          req.TaxNDS,
		IsPublic:        isPublic,
		MaxShippingDays: req.MaxShippingDays,
		Latitude:        lat,
		Longitude:       lon,
	}
	query := `
        INSERT INTO offers
            (user_id, product_id, warehouse_id, offer_type, price_per_unit, available_lots,
             units_per_lot, tax_nds, is_public, max_shipping_days, latitude, longitude)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id, created_at, updated_at`
	err = tx.QueryRowContext(ctx, query,
		o.UserID, o.ProductID, o.WarehouseID, o.OfferType, o.PricePerUnit, o.AvailableLots,
		o.UnitsPerLot, o.TaxNDS, o.IsPublic, o.MaxShippingDays, o.Latitude, o.Longitude).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Storage) GetOffer(ctx context.Context, id int64) (*Offer, error) {
	o := &Offer{}
	query := `SELECT * FROM offers WHERE id = $1`
	err := s.db.GetContext(ctx, o, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

// applyOfferUpdate мержит частичное обновление в оффер. Смена warehouse_id
// подтягивает координаты нового склада через coords; тот же склад
// повторного чтения не делает.
func applyOfferUpdate(o *Offer, req *UpdateOfferRequest, coords func(warehouseID int64) (float64, float64, error)) error {
	if req.WarehouseID != nil && *req.WarehouseID != o.WarehouseID {
		lat, lon, err := coords(*req.WarehouseID)
		if err != nil {
			return err
		}
		o.WarehouseID = *req.WarehouseID
		o.Latitude = lat
		o.Longitude = lon
	}
	if req.PricePerUnit != nil {
		if *req.PricePerUnit <= 0 {
			return validationErrorf("price_per_unit must be positive")
		}
		o.PricePerUnit = *req.PricePerUnit
	}
	if req.AvailableLots != nil {
		if *req.AvailableLots < 0 {
			return validationErrorf("available_lots must not be negative")
		}
		o.AvailableLots = *req.AvailableLots
	}
	if req.UnitsPerLot != nil {
		if *req.UnitsPerLot <= 0 {
			return validationErrorf("units_per_lot must be positive")
		}
		o.UnitsPerLot = *req.UnitsPerLot
	}
	if req.TaxNDS != nil {
		o.TaxNDS = *req.TaxNDS
	}
	if req.IsPublic != nil {
		o.IsPublic = *req.IsPublic
	}
	if req.MaxShippingDays != nil {
		if *req.MaxShippingDays < 0 {
			return validationErrorf("max_shipping_days must not be negative")
		}
		o.MaxShippingDays = *req.MaxShippingDays
	}
	return nil
}

// UpdateOffer применяет частичное обновление. Смена warehouse_id
// пересчитывает координаты атомарно: читатель никогда не увидит новый
// склад со старыми координатами.
func (s *Storage) UpdateOffer(ctx context.Context, id int64, req *UpdateOfferRequest, callerID int64) (*Offer, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	o := &Offer{}
	err = tx.GetContext(ctx, o, `SELECT * FROM offers WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.UserID != callerID {
		return nil, ErrForbidden
	}

	err = applyOfferUpdate(o, req, func(warehouseID int64) (float64, float64, error) {
		var lat, lon float64
		err := tx.QueryRowContext(ctx,
			`SELECT latitude, longitude FROM warehouses WHERE id = $1`, warehouseID).
			Scan(&lat, &lon)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, ErrNotFound
		}
		return lat, lon, err
	})
	if err != nil {
		return nil, err
	}

	query := `
        UPDATE offers
        SET warehouse_id=$1, price_per_unit=$2, available_lots=$3, units_per_lot=$4,
            tax_nds=$5, is_public=$6, max_shipping_days=$7, latitude=$8, longitude=$9,
            updated_at=NOW()
        WHERE id=$10
        RETURNING updated_at`
	err = tx.QueryRowContext(ctx, query,
		o.WarehouseID, o.PricePerUnit, o.AvailableLots, o.UnitsPerLot,
		o.TaxNDS, o.IsPublic, o.MaxShippingDays, o.Latitude, o.Longitude, o.ID).
		Scan(&o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return o, nil
}

// DeleteOffer запрещает удаление, пока по офферу есть незавершенные заказы
func (s *Storage) DeleteOffer(ctx context.Context, id int64, callerID int64) error {
	o, err := s.GetOffer(ctx, id)
	if err != nil {
		return err
	}
	if o.UserID != callerID {
		return ErrForbidden
	}

	var activeOrders int
	err = s.db.GetContext(ctx, &activeOrders,
		`SELECT COUNT(1) FROM orders WHERE offer_id = $1 AND order_status IN ('pending', 'confirmed', 'processing')`, id)
	if err != nil {
		return err
	}
	if activeOrders > 0 {
		return ErrConflict
	}

	_, err = s.db.ExecContext(ctx, `DELETE FROM offers WHERE id = $1`, id)
	return err
}

// buildOfferFilter собирает WHERE из предикатов фильтра.
// callerID нужен только для областей my/others, публичная выборка его не использует.
func buildOfferFilter(f *OfferFilter, callerID int64, publicOnly bool) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if publicOnly {
		clauses = append(clauses, "is_public = TRUE")
	} else {
		switch NormalizeScope(f.Scope) {
		case ScopeMy:
			clauses = append(clauses, "user_id = "+arg(callerID))
		case ScopeOthers:
			clauses = append(clauses, "user_id <> "+arg(callerID))
		case ScopeAll:
		}
	}

	if f.OfferType != "" {
		clauses = append(clauses, "offer_type = "+arg(f.OfferType))
	}
	if f.PriceMin != nil {
		clauses = append(clauses, "price_per_unit >= "+arg(*f.PriceMin))
	}
	if f.PriceMax != nil {
		clauses = append(clauses, "price_per_unit <= "+arg(*f.PriceMax))
	}
	if f.Geographic != nil {
		g := f.Geographic
		clauses = append(clauses, "latitude >= "+arg(g.MinLatitude))
		clauses = append(clauses, "latitude <= "+arg(g.MaxLatitude))
		clauses = append(clauses, "longitude >= "+arg(g.MinLongitude))
		clauses = append(clauses, "longitude <= "+arg(g.MaxLongitude))
	}
	if f.AvailableLots != nil {
		clauses = append(clauses, "available_lots >= "+arg(*f.AvailableLots))
	}
	if f.TaxNDS != nil {
		clauses = append(clauses, "tax_nds = "+arg(*f.TaxNDS))
	}
	if f.MaxShippingDays != nil {
		clauses = append(clauses, "max_shipping_days <= "+arg(*f.MaxShippingDays))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ListOffers возвращает офферы по фильтру в рамках области видимости вызывающего
func (s *Storage) ListOffers(ctx context.Context, f *OfferFilter, callerID int64, limit, offset int) ([]Offer, error) {
	if err := ValidateOfferType(f.OfferType); err != nil {
		return nil, err
	}
	where, args := buildOfferFilter(f, callerID, false)
	query := "SELECT * FROM offers" + where +
		fmt.Sprintf(" ORDER BY id DESC LIMIT %d OFFSET %d", limit, offset)
	offers := []Offer{}
	err := s.db.SelectContext(ctx, &offers, query, args...)
	return offers, err
}

// ListPublicOffers делает анонимную выборку, всегда только is_public=true
func (s *Storage) ListPublicOffers(ctx context.Context, f *OfferFilter, limit, offset int) ([]Offer, error) {
	if err := ValidateOfferType(f.OfferType); err != nil {
		return nil, err
	}
	where, args := buildOfferFilter(f, 0, true)
	query := "SELECT * FROM offers" + where +
		fmt.Sprintf(" ORDER BY id DESC LIMIT %d OFFSET %d", limit, offset)
	offers := []Offer{}
	err := s.db.SelectContext(ctx, &offers, query, args...)
	return offers, err
}
