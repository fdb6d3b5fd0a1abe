package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Product описывает карточку товара, принадлежит создавшему пользователю
type Product struct {
	ID             int64          `db:"id" json:"id"`
	UserID         int64          `db:"user_id" json:"user_id"`
	Name           string         `db:"name" json:"name"`
	VendorArticle  string         `db:"vendor_article" json:"vendor_article"`
	RecommendPrice float64        `db:"recommend_price" json:"recommend_price"`
	Brand          string         `db:"brand" json:"brand"`
	Category       string         `db:"category" json:"category"`
	Description    string         `db:"description" json:"description"`
	ImageURLs      pq.StringArray `db:"image_urls" json:"image_urls,omitempty"`
	VideoURLs      pq.StringArray `db:"video_urls" json:"video_urls,omitempty"`
	Model3DURLs    pq.StringArray `db:"model_3d_urls" json:"model_3d_urls,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

type CreateProductRequest struct {
	Name           string   `json:"name"`
	VendorArticle  string   `json:"vendor_article"`
	RecommendPrice float64  `json:"recommend_price"`
	Brand          string   `json:"brand"`
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	ImageURLs      []string `json:"image_urls,omitempty"`
	VideoURLs      []string `json:"video_urls,omitempty"`
	Model3DURLs    []string `json:"model_3d_urls,omitempty"`
}

type UpdateProductRequest struct {
	Name           *string   `json:"name,omitempty"`
	VendorArticle  *string   `json:"vendor_article,omitempty"`
	RecommendPrice *float64  `json:"recommend_price,omitempty"`
	Brand          *string   `json:"brand,omitempty"`
	Category       *string   `json:"category,omitempty"`
	Description    *string   `json:"description,omitempty"`
	ImageURLs      *[]string `json:"image_urls,omitempty"`
	VideoURLs      *[]string `json:"video_urls,omitempty"`
	Model3DURLs    *[]string `json:"model_3d_urls,omitempty"`
}

// MaxBatchProducts ограничивает размер пакетного создания
const MaxBatchProducts = 100

var (
	imageExtensions   = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	videoExtensions   = []string{".mp4", ".avi", ".mov", ".wmv", ".flv"}
	model3DExtensions = []string{".obj", ".fbx", ".3ds", ".dae", ".stl", ".glb"}
)

// ValidateCreateProduct проверяет обязательные поля и медиа-ссылки
func ValidateCreateProduct(req *CreateProductRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return validationErrorf("name is required")
	}
	if strings.TrimSpace(req.VendorArticle) == "" {
		return validationErrorf("vendor_article is required")
	}
	if req.RecommendPrice <= 0 {
		return validationErrorf("recommend_price must be positive")
	}
	if strings.TrimSpace(req.Brand) == "" {
		return validationErrorf("brand is required")
	}
	if strings.TrimSpace(req.Category) == "" {
		return validationErrorf("category is required")
	}
	return validateMediaURLs(req.ImageURLs, req.VideoURLs, req.Model3DURLs)
}

func validateMediaURLs(imageURLs, videoURLs, model3DURLs []string) error {
	for _, u := range imageURLs {
		if err := validateMediaURL(u, imageExtensions); err != nil {
			return validationErrorf(fmt.Sprintf("invalid image url %q: %v", u, err))
		}
	}
	for _, u := range videoURLs {
		if err := validateMediaURL(u, videoExtensions); err != nil {
			return validationErrorf(fmt.Sprintf("invalid video url %q: %v", u, err))
		}
	}
	for _, u := range model3DURLs {
		if err := validateMediaURL(u, model3DExtensions); err != nil {
			return validationErrorf(fmt.Sprintf("invalid 3d model url %q: %v", u, err))
		}
	}
	return nil
}

func validateMediaURL(raw string, allowedExtensions []string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("missing host")
	}
	path := strings.ToLower(parsed.Path)
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(path, ext) {
			return nil
		}
	}
	return fmt.Errorf("unsupported file extension, allowed: %v", allowedExtensions)
}

func (s *Storage) CreateProduct(ctx context.Context, req *CreateProductRequest, ownerID int64) (*Product, error) {
	if err := ValidateCreateProduct(req); err != nil {
		return nil, err
	}
	p := &Product{
		UserID:         ownerID,
		Name:           req.Name,
		VendorArticle:  req.VendorArticle,
		RecommendPrice: req.RecommendPrice,
		Brand:          req.Brand,
		Category:       req.Category,
		Description:    req.Description,
		ImageURLs:      req.ImageURLs,
		VideoURLs:      req.VideoURLs,
		Model3DURLs:    req.Model3DURLs,
	}
	query := `
        INSERT INTO products
            (user_id, name, vendor_article, recommend_price, brand, category, description, image_urls, video_urls, model_3d_urls)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at`
	err := s.db.QueryRowContext(ctx, query,
		p.UserID, p.Name, p.VendorArticle, p.RecommendPrice, p.Brand, p.Category, p.Description,
		p.ImageURLs, p.VideoURLs, p.Model3DURLs).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProducts создает пакет товаров одной транзакцией: либо все, либо ни одного
func (s *Storage) CreateProducts(ctx context.Context, reqs []CreateProductRequest, ownerID int64) ([]Product, error) {
	if len(reqs) == 0 {
		return nil, validationErrorf("products list must not be empty")
	}
	if len(reqs) > MaxBatchProducts {
		return nil, validationErrorf(fmt.Sprintf("products list exceeds limit of %d items", MaxBatchProducts))
	}
	for i := range reqs {
		if err := ValidateCreateProduct(&reqs[i]); err != nil {
			return nil, validationErrorf(fmt.Sprintf("item %d: %v", i, err))
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO products
            (user_id, name, vendor_article, recommend_price, brand, category, description, image_urls, video_urls, model_3d_urls)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at`

	products := make([]Product, 0, len(reqs))
	for i := range reqs {
		req := &reqs[i]
		p := Product{
			UserID:         ownerID,
			Name:           req.Name,
			VendorArticle:  req.VendorArticle,
			RecommendPrice: req.RecommendPrice,
			Brand:          req.Brand,
			Category:       req.Category,
			Description:    req.Description,
			ImageURLs:      req.ImageURLs,
			VideoURLs:      req.VideoURLs,
			Model3DURLs:    req.Model3DURLs,
		}
		err := tx.QueryRowContext(ctx, query,
			p.UserID, p.Name, p.VendorArticle, p.RecommendPrice, p.Brand, p.Category, p.Description,
			p.ImageURLs, p.VideoURLs, p.Model3DURLs).
			Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct доступен любому авторизованному пользователю, не только владельцу
func (s *Storage) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p := &Product{}
	query := `SELECT * FROM products WHERE id = $1`
	err := s.db.GetContext(ctx, p, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *Storage) ListProducts(ctx context.Context, ownerID int64, limit, offset int) ([]Product, error) {
	query := `
        SELECT * FROM products
        WHERE user_id = $1
        ORDER BY id DESC
        LIMIT $2 OFFSET $3`
	products := []Product{}
	err := s.db.SelectContext(ctx, &products, query, ownerID, limit, offset)
	return products, err
}

// UpdateProduct применяет частичное обновление; менять чужой товар нельзя
func (s *Storage) UpdateProduct(ctx context.Context, id int64, req *UpdateProductRequest, callerID int64) (*Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != callerID {
		return nil, ErrForbidden
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, validationErrorf("name must not be empty")
		}
		p.Name = *req.Name
	}
	if req.VendorArticle != nil {
		if strings.TrimSpace(*req.VendorArticle) == "" {
			return nil, validationErrorf("vendor_article must not be empty")
		}
		p.VendorArticle = *req.VendorArticle
	}
	if req.RecommendPrice != nil {
		if *req.RecommendPrice <= 0 {
			return nil, validationErrorf("recommend_price must be positive")
		}
		p.RecommendPrice = *req.RecommendPrice
	}
	if req.Brand != nil {
		if strings.TrimSpace(*req.Brand) == "" {
			return nil, validationErrorf("brand must not be empty")
		}
		p.Brand = *req.Brand
	}
	if req.Category != nil {
		if strings.TrimSpace(*req.Category) == "" {
			return nil, validationErrorf("category must not be empty")
		}
		p.Category = *req.Category
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.ImageURLs != nil {
		p.ImageURLs = *req.ImageURLs
	}
	if req.VideoURLs != nil {
		p.VideoURLs = *req.VideoURLs
	}
	if req.Model3DURLs != nil {
		p.Model3DURLs = *req.Model3DURLs
	}
	if err := validateMediaURLs(p.ImageURLs, p.VideoURLs, p.Model3DURLs); err != nil {
		return nil, err
	}

	query := `
        UPDATE products
        SET name=$1, vendor_article=$2, recommend_price=$3, brand=$4, category=$5, description=$6,
            image_urls=$7, video_urls=$8, model_3d_urls=$9, updated_at=NOW()
        WHERE id=$10
        RETURNING updated_at`
	err = s.db.QueryRowContext(ctx, query,
		p.Name, p.VendorArticle, p.RecommendPrice, p.Brand, p.Category, p.Description,
		p.ImageURLs, p.VideoURLs, p.Model3DURLs, p.ID).
		Scan(&p.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProduct запрещает удаление при наличии офферов на товар
func (s *Storage) DeleteProduct(ctx context.Context, id int64, callerID int64) error {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if p.UserID != callerID {
		return ErrForbidden
	}

	var offerCount int
	err = s.db.GetContext(ctx, &offerCount, `SELECT COUNT(1) FROM offers WHERE product_id = $1`, id)
	if err != nil {
		return err
	}
	if offerCount > 0 {
		return ErrConflict
	}

	_, err = s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}
