package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Warehouse описывает склад пользователя, источник координат для офферов
type Warehouse struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Name         string    `db:"name" json:"name"`
	Address      string    `db:"address" json:"address"`
	Latitude     float64   `db:"latitude" json:"latitude"`
	Longitude    float64   `db:"longitude" json:"longitude"`
	WorkingHours string    `db:"working_hours" json:"working_hours"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type CreateWarehouseRequest struct {
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	WorkingHours string  `json:"working_hours"`
}

type UpdateWarehouseRequest struct {
	Name         *string  `json:"name,omitempty"`
	Address      *string  `json:"address,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	WorkingHours *string  `json:"working_hours,omitempty"`
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return validationErrorf("latitude must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return validationErrorf("longitude must be between -180 and 180")
	}
	return nil
}

func (s *Storage) CreateWarehouse(ctx context.Context, req *CreateWarehouseRequest, ownerID int64) (*Warehouse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, validationErrorf("name is required")
	}
	if strings.TrimSpace(req.Address) == "" {
		return nil, validationErrorf("address is required")
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	w := &Warehouse{
		UserID:       ownerID,
		Name:         req.Name,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		WorkingHours: req.WorkingHours,
	}
	query := `
        INSERT INTO warehouses (user_id, name, address, latitude, longitude, working_hours)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`
	err := s.db.QueryRowContext(ctx, query,
		w.UserID, w.Name, w.Address, w.Latitude, w.Longitude, w.WorkingHours).
		Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Storage) GetWarehouse(ctx context.Context, id int64) (*Warehouse, error) {
	w := &Warehouse{}
	query := `SELECT * FROM warehouses WHERE id = $1`
	err := s.db.GetContext(ctx, w, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return w, err
}

func (s *Storage) ListWarehouses(ctx context.Context, ownerID int64, limit, offset int) ([]Warehouse, error) {
	query := `
        SELECT * FROM warehouses
        WHERE user_id = $1
        ORDER BY id DESC
        LIMIT $2 OFFSET $3`
	warehouses := []Warehouse{}
	err := s.db.SelectContext(ctx, &warehouses, query, ownerID, limit, offset)
	return warehouses, err
}

// UpdateWarehouse применяет частичное обновление с проверкой владельца.
// Смена координат склада не трогает существующие офферы: их координаты
// пересчитываются только при смене warehouse_id у самого оффера.
func (s *Storage) UpdateWarehouse(ctx context.Context, id int64, req *UpdateWarehouseRequest, callerID int64) (*Warehouse, error) {
	w, err := s.GetWarehouse(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != callerID {
		return nil, ErrForbidden
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, validationErrorf("name must not be empty")
		}
		w.Name = *req.Name
	}
	if req.Address != nil {
		if strings.TrimSpace(*req.Address) == "" {
			return nil, validationErrorf("address must not be empty")
		}
		w.Address = *req.Address
	}
	if req.Latitude != nil {
		w.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		w.Longitude = *req.Longitude
	}
	if err := validateCoordinates(w.Latitude, w.Longitude); err != nil {
		return nil, err
	}
	if req.WorkingHours != nil {
		w.WorkingHours = *req.WorkingHours
	}

	query := `
        UPDATE warehouses
        SET name=$1, address=$2, latitude=$3, longitude=$4, working_hours=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	err = s.db.QueryRowContext(ctx, query,
		w.Name, w.Address, w.Latitude, w.Longitude, w.WorkingHours, w.ID).
		Scan(&w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// DeleteWarehouse запрещает удаление, пока на склад ссылаются офферы
func (s *Storage) DeleteWarehouse(ctx context.Context, id int64, callerID int64) error {
	w, err := s.GetWarehouse(ctx, id)
	if err != nil {
		return err
	}
	if w.UserID != callerID {
		return ErrForbidden
	}

	var offerCount int
	err = s.db.GetContext(ctx, &offerCount, `SELECT COUNT(1) FROM offers WHERE warehouse_id = $1`, id)
	if err != nil {
		return err
	}
	if offerCount > 0 {
		return ErrConflict
	}

	_, err = s.db.ExecContext(ctx, `DELETE FROM warehouses WHERE id = $1`, id)
	return err
}
