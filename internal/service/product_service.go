package service

import (
	"strings"

	"github.com/hkshop-next/internal/models"
	"github.com/hkshop-next/internal/repository"
)

// ProductService 商品服务
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// List 商品列表
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.productRepo.List(filter)
}

// GetByID 商品详情
func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// SaveProductInput 创建/更新商品输入
type SaveProductInput struct {
	Name        string
	Description string
	PriceAmount models.Money
	ImageURL    string
	Category    string
	IsActive    bool
	SortOrder   int
}

// Create 创建商品
func (s *ProductService) Create(input SaveProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.Name) == "" || input.PriceAmount <= 0 {
		return nil, ErrInvalidParam
	}
	product := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		PriceAmount: input.PriceAmount,
		ImageURL:    input.ImageURL,
		Category:    input.Category,
		IsActive:    input.IsActive,
		SortOrder:   input.SortOrder,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update 更新商品
func (s *ProductService) Update(id uint, input SaveProductInput) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if strings.TrimSpace(input.Name) == "" || input.PriceAmount <= 0 {
		return nil, ErrInvalidParam
	}
	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.PriceAmount = input.PriceAmount
	product.ImageURL = input.ImageURL
	product.Category = input.Category
	product.IsActive = input.IsActive
	product.SortOrder = input.SortOrder
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 删除商品
func (s *ProductService) Delete(id uint) error {
	return s.productRepo.Delete(id)
}
