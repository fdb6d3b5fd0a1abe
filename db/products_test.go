package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func validProductRequest() *CreateProductRequest {
	return &CreateProductRequest{
		Name:           "Hammer",
		VendorArticle:  "HMR-001",
		RecommendPrice: 150,
		Brand:          "ToolCo",
		Category:       "tools",
	}
}

func TestValidateCreateProduct(t *testing.T) {
	require.NoError(t, ValidateCreateProduct(validProductRequest()))

	tests := []struct {
		name   string
		mutate func(*CreateProductRequest)
	}{
		{"empty name", func(r *CreateProductRequest) { r.Name = "  " }},
		{"empty vendor_article", func(r *CreateProductRequest) { r.VendorArticle = "" }},
		{"zero price", func(r *CreateProductRequest) { r.RecommendPrice = 0 }},
		{"negative price", func(r *CreateProductRequest) { r.RecommendPrice = -5 }},
		{"empty brand", func(r *CreateProductRequest) { r.Brand = "" }},
		{"empty category", func(r *CreateProductRequest) { r.Category = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validProductRequest()
			tt.mutate(req)
			err := ValidateCreateProduct(req)
			require.Error(t, err)
			require.True(t, IsValidation(err))
		})
	}
}

func TestValidateMediaURLs(t *testing.T) {
	req := validProductRequest()
	req.ImageURLs = []string{"https://cdn.example.com/a.jpg", "http://cdn.example.com/b.PNG"}
	req.VideoURLs = []string{"https://cdn.example.com/demo.mp4"}
	req.Model3DURLs = []string{"https://cdn.example.com/model.glb"}
	require.NoError(t, ValidateCreateProduct(req))

	tests := []struct {
		name   string
		mutate func(*CreateProductRequest)
	}{
		{"ftp scheme", func(r *CreateProductRequest) { r.ImageURLs = []string{"ftp://host/a.jpg"} }},
		{"missing host", func(r *CreateProductRequest) { r.ImageURLs = []string{"https:///a.jpg"} }},
		{"video extension for image", func(r *CreateProductRequest) { r.ImageURLs = []string{"https://host/a.mp4"} }},
		{"image extension for video", func(r *CreateProductRequest) { r.VideoURLs = []string{"https://host/a.jpg"} }},
		{"unknown 3d extension", func(r *CreateProductRequest) { r.Model3DURLs = []string{"https://host/a.zip"} }},
		{"no extension", func(r *CreateProductRequest) { r.ImageURLs = []string{"https://host/picture"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validProductRequest()
			tt.mutate(req)
			err := ValidateCreateProduct(req)
			require.Error(t, err)
			require.True(t, IsValidation(err))
		})
	}
}

func TestValidateMediaURLCaseInsensitiveExtension(t *testing.T) {
	require.NoError(t, validateMediaURL("https://host/photo.JPEG", imageExtensions))
	require.NoError(t, validateMediaURL("https://host/MODEL.OBJ", model3DExtensions))
}

func TestBatchSizeLimit(t *testing.T) {
	reqs := make([]CreateProductRequest, MaxBatchProducts+1)
	for i := range reqs {
		r := validProductRequest()
		r.VendorArticle = r.VendorArticle + "-" + strings.Repeat("x", i%5)
		reqs[i] = *r
	}
	s := &Storage{}
	_, err := s.CreateProducts(nil, reqs, 1)
	require.Error(t, err)
	require.True(t, IsValidation(err))

	_, err = s.CreateProducts(nil, nil, 1)
	require.Error(t, err)
	require.True(t, IsValidation(err))
}
