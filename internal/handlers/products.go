package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tradepost/backend/internal/auth"
	"github.com/tradepost/backend/internal/logging"
	"github.com/tradepost/backend/internal/models"
	"github.com/tradepost/backend/internal/repositories"
	"github.com/tradepost/backend/internal/uploads"
)

// maxProductFormMemory bounds the in-memory portion of a multipart parse;
// larger file parts spill to disk.
const maxProductFormMemory = 32 << 20

// ProductHandler implements listing creation and detail endpoints. Both
// require an authenticated principal on the request context.
type ProductHandler struct {
	Users    UserStore
	Products ProductStore
	Images   ImageStore
	Uploader ImageUploader
}

// Create handles POST /api/product requests: a multipart form with a `data`
// JSON part and optional `file` image parts.
func (h ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil || h.Products == nil || h.Uploader == nil {
		logger.Error("product dependencies unavailable", "hasUsers", h.Users != nil, "hasProducts", h.Products != nil, "hasUploader", h.Uploader != nil)
		respondError(ctx, w, http.StatusInternalServerError, codeInternal, "product services unavailable")
		return
	}

	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}

	seller, err := h.Users.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("product create for missing seller", "userId", principal.UserID)
			respondError(ctx, w, http.StatusNotFound, codeNotFound, "seller account not found")
			return
		}
		logger.Error("product create seller lookup failed", "error", err, "userId", principal.UserID)
		respondError(ctx, w, http.StatusInternalServerError, codeInternal, "unable to verify seller")
		return
	}

	if err := r.ParseMultipartForm(maxProductFormMemory); err != nil {
		logger.Warn("invalid multipart payload", "error", err)
		respondError(ctx, w, http.StatusBadRequest, codeValidationFailed, "invalid multipart form")
		return
	}

	var req productCreateRequest
	if err := json.Unmarshal([]byte(r.FormValue("data")), &req); err != nil {
		logger.Warn("invalid product data part", "error", err)
		respondError(ctx, w, http.StatusBadRequest, codeValidationFailed, "invalid product data")
		return
	}

	if err := validateProductCreate(req); err != nil {
		logger.Warn("product validation failed", "reason", err.Error())
		respondError(ctx, w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	product := models.Product{
		ID:        uuid.NewString(),
		SellerID:  seller.ID,
		Title:     strings.TrimSpace(req.Title),
		Category:  strings.TrimSpace(req.Category),
		Price:     req.Price,
		Body:      req.Body,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.Products.Create(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, codeNotFound, "seller account not found")
			return
		}
		logger.Error("product insert failed", "error", err, "productId", product.ID)
		respondError(ctx, w, http.StatusInternalServerError, codeInternal, "failed to create product")
		return
	}

	files, closeFiles, err := openUploads(r)
	if err != nil {
		h.rollbackProduct(r, product.ID)
		logger.Warn("invalid file part", "error", err)
		respondError(ctx, w, http.StatusBadRequest, codeValidationFailed, "invalid file upload")
		return
	}
	defer closeFiles()

	images, err := h.Uploader.UploadAll(ctx, product.ID, files)
	if err != nil {
		h.rollbackProduct(r, product.ID)
		switch {
		case errors.Is(err, uploads.ErrUnsupportedExtension):
			respondError(ctx, w, http.StatusInternalServerError, codeUnsupportedExtension, "file extension is not supported")
		case errors.Is(err, uploads.ErrUploadFailed):
			respondError(ctx, w, http.StatusInternalServerError, codeUploadFailed, "file upload failed")
		default:
			logger.Error("image persistence failed", "error", err, "productId", product.ID)
			respondError(ctx, w, http.StatusInternalServerError, codeInternal, "failed to store images")
		}
		return
	}

	respondSuccess(ctx, w, http.StatusOK, productCreateResponse{
		ProductID: product.ID,
		ImageURLs: imageURLs(images),
	})
}

// GetInfo handles GET /api/product/{productId} requests.
func (h ProductHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil || h.Products == nil || h.Images == nil {
		logger.Error("product dependencies unavailable", "hasUsers", h.Users != nil, "hasProducts", h.Products != nil, "hasImages", h.Images != nil)
		respondError(ctx, w, http.StatusInternalServerError, codeInternal, "product services unavailable")
		return
	}

	if _, ok := auth.PrincipalFromContext(ctx); !ok {
		respondError(ctx, w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}

	productID := r.PathValue("productId")
	if productID == "" {
		respondError(ctx, w, http.StatusBadRequest, codeValidationFailed, "product id is required")
		return
	}

	product, err := h.Products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, codeNotFound, "product not found")
			return
		}
		logger.Error("product lookup failed", "error", err, "productId", productID)
		respondError(ctx, w, http.StatusInternalServerError, codeInternal, "unable to load product")
		return
	}

	seller, err := h.Users.FindByID(ctx, product.SellerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, codeNotFound, "seller account not found")
			return
		}
		logger.Error("seller lookup failed", "error", err, "sellerId", product.SellerID)
		respondError(ctx, w, http.StatusInternalServerError, codeInternal, "unable to load seller")
		return
	}

	images, err := h.Images.ListByProduct(ctx, product.ID)
	if err != nil {
		logger.Error("image listing failed", "error", err, "productId", product.ID)
		respondError(ctx, w, http.StatusInternalServerError, codeInternal, "unable to load images")
		return
	}

	respondSuccess(ctx, w, http.StatusOK, productInfoResponse{
		ProductID:      product.ID,
		Title:          product.Title,
		Category:       product.Category,
		Price:          product.Price,
		Body:           product.Body,
		SellerNickname: seller.Nickname,
		ImageURLs:      imageURLs(images),
		CreatedAt:      product.CreatedAt,
	})
}

// rollbackProduct removes a listing whose image batch was abandoned so the
// all-or-nothing create contract holds. Best-effort.
func (h ProductHandler) rollbackProduct(r *http.Request, productID string) {
	ctx := r.Context()
	if err := h.Products.Delete(ctx, productID); err != nil {
		logging.FromContext(ctx).Error("rollback product after failed upload", "error", err, "productId", productID)
	}
}

// openUploads collects the request's `file` parts into upload descriptors.
// The returned closer releases every opened part.
func openUploads(r *http.Request) ([]uploads.File, func(), error) {
	if r.MultipartForm == nil {
		return nil, func() {}, nil
	}

	headers := r.MultipartForm.File["file"]
	files := make([]uploads.File, 0, len(headers))
	closers := make([]func() error, 0, len(headers))

	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	for _, fh := range headers {
		part, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, part.Close)
		files = append(files, uploads.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Content:     part,
		})
	}

	return files, closeAll, nil
}

func imageURLs(images []models.ProductImage) []string {
	urls := make([]string, 0, len(images))
	for _, image := range images {
		urls = append(urls, image.URL)
	}
	return urls
}

type productCreateRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Price    int64  `json:"price"`
	Body     string `json:"body"`
}

type productCreateResponse struct {
	ProductID string   `json:"productId"`
	ImageURLs []string `json:"imageUrls"`
}

type productInfoResponse struct {
	ProductID      string    `json:"productId"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Price          int64     `json:"price"`
	Body           string    `json:"body"`
	SellerNickname string    `json:"sellerNickname"`
	ImageURLs      []string  `json:"imageUrls"`
	CreatedAt      time.Time `json:"createdAt"`
}
