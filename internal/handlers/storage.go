package handlers

import (
	"context"

	"github.com/ostkru/trading/db"
)

type StorageInterface interface {
	CreateUser(ctx context.Context, u *db.User) error
	GetUserByAPIKey(ctx context.Context, apiKey string) (*db.User, error)

	CreateProduct(ctx context.Context, req *db.CreateProductRequest, ownerID int64) (*db.Product, error)
	CreateProducts(ctx context.Context, reqs []db.CreateProductRequest, ownerID int64) ([]db.Product, error)
	GetProduct(ctx context.Context, id int64) (*db.Product, error)
	ListProducts(ctx context.Context, ownerID int64, limit, offset int) ([]db.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *db.UpdateProductRequest, callerID int64) (*db.Product, error)
	DeleteProduct(ctx context.Context, id int64, callerID int64) error

	CreateWarehouse(ctx context.Context, req *db.CreateWarehouseRequest, ownerID int64) (*db.Warehouse, error)
	GetWarehouse(ctx context.Context, id int64) (*db.Warehouse, error)
	ListWarehouses(ctx context.Context, ownerID int64, limit, offset int) ([]db.Warehouse, error)
	UpdateWarehouse(ctx context.Context, id int64, req *db.UpdateWarehouseRequest, callerID int64) (*db.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id int64, callerID int64) error

	CreateOffer(ctx context.Context, req *db.CreateOfferRequest, ownerID int64) (*db.Offer, error)
	GetOffer(ctx context.Context, id int64) (*db.Offer, error)
	ListOffers(ctx context.Context, f *db.OfferFilter, callerID int64, limit, offset int) ([]db.Offer, error)
	ListPublicOffers(ctx context.Context, f *db.OfferFilter, limit, offset int) ([]db.Offer, error)
	UpdateOffer(ctx context.Context, id int64, req *db.UpdateOfferRequest, callerID int64) (*db.Offer, error)
	DeleteOffer(ctx context.Context, id int64, callerID int64) error

	CreateOrder(ctx context.Context, req *db.CreateOrderRequest, initiatorID int64) (*db.Order, error)
	GetOrder(ctx context.Context, id int64, callerID int64) (*db.Order, error)
	ListOrders(ctx context.Context, callerID int64, role, status string, limit, offset int) ([]db.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, newStatus string, callerID int64) (*db.Order, error)
}
