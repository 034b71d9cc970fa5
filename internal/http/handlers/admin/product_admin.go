package admin

import (
	"errors"
	"strconv"

	"github.com/hkshop-next/internal/http/response"
	"github.com/hkshop-next/internal/models"
	"github.com/hkshop-next/internal/repository"
	"github.com/hkshop-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SaveProductRequest 创建/更新商品请求，金额为最小货币单位（分）
type SaveProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	PriceAmount int64  `json:"price_amount" binding:"required"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
	IsActive    bool   `json:"is_active"`
	SortOrder   int    `json:"sort_order"`
}

func (r SaveProductRequest) toInput() service.SaveProductInput {
	return service.SaveProductInput{
		Name:        r.Name,
		Description: r.Description,
		PriceAmount: models.Money(r.PriceAmount),
		ImageURL:    r.ImageURL,
		Category:    r.Category,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
	}
}

// ListProducts 管理端商品列表（含下架商品）
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "product list failed", err)
		return
	}
	response.SuccessWithPage(c, products, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req SaveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.ProductService.Create(req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrInvalidParam) {
			respondError(c, response.CodeBadRequest, "product fields invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "product create failed", err)
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "product id invalid", err)
		return
	}
	var req SaveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.ProductService.Update(uint(id), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		case errors.Is(err, service.ErrInvalidParam):
			respondError(c, response.CodeBadRequest, "product fields invalid", nil)
		default:
			respondError(c, response.CodeInternal, "product update failed", err)
		}
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "product id invalid", err)
		return
	}
	if err := h.ProductService.Delete(uint(id)); err != nil {
		respondError(c, response.CodeInternal, "product delete failed", err)
		return
	}
	response.Success(c, nil)
}
