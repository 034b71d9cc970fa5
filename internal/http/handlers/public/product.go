package public

import (
	"strconv"

	"github.com/hkshop-next/internal/http/handlers/shared"
	"github.com/hkshop-next/internal/http/response"
	"github.com/hkshop-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListProducts 店面商品列表，仅返回上架商品
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		Category:   c.Query("category"),
		Search:     c.Query("search"),
		OnlyActive: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "product list failed", err)
		return
	}

	response.SuccessWithPage(c, products, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: shared.TotalPages(total, pageSize),
	})
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "product id invalid", err)
		return
	}

	product, err := h.ProductService.GetByID(uint(id))
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "product fetch failed")
		return
	}
	if !product.IsActive {
		respondError(c, response.CodeNotFound, "product not found or inactive", nil)
		return
	}
	response.Success(c, product)
}
