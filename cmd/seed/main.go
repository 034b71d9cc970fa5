package main

import (
	"github.com/hkshop-next/internal/config"
	"github.com/hkshop-next/internal/logger"
	"github.com/hkshop-next/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加商品（金额单位：分，港币）
	products := []models.Product{
		{
			Name:        "Lightweight Folding Wheelchair",
			Description: "Aluminium frame, 9.8kg, folds flat for MTR and taxi boots. Includes seat belt and detachable footrests.",
			PriceAmount: 268000,
			Category:    "wheelchairs",
			ImageURL:    "https://images.unsplash.com/photo-1588776814546-1ffcf47267a5?w=800",
			SortOrder:   10,
			IsActive:    true,
		},
		{
			Name:        "Electric Power Wheelchair",
			Description: "Dual-motor power chair with 20km range, suitable for Hong Kong pavements and ramps.",
			PriceAmount: 1188000,
			Category:    "wheelchairs",
			ImageURL:    "https://images.unsplash.com/photo-1624638760852-8ede1666ab07?w=800",
			SortOrder:   20,
			IsActive:    true,
		},
		{
			Name:        "Four-Wheel Rollator Walker",
			Description: "Height-adjustable rollator with hand brakes, padded seat and storage basket.",
			PriceAmount: 98000,
			Category:    "walking-aids",
			ImageURL:    "https://images.unsplash.com/photo-1576765608535-5f04d1e3f289?w=800",
			SortOrder:   30,
			IsActive:    true,
		},
		{
			Name:        "Adjustable Walking Cane",
			Description: "Anti-slip quad base cane, adjustable from 73cm to 96cm.",
			PriceAmount: 16800,
			Category:    "walking-aids",
			SortOrder:   40,
			IsActive:    true,
		},
		{
			Name:        "Pressure Relief Seat Cushion",
			Description: "Memory foam cushion with coccyx cut-out, washable cover. Fits standard wheelchair seats.",
			PriceAmount: 45000,
			Category:    "accessories",
			SortOrder:   50,
			IsActive:    true,
		},
		{
			Name:        "Wheelchair Rain Cover",
			Description: "Waterproof poncho covering user and chair, with transparent visor.",
			PriceAmount: 12800,
			Category:    "accessories",
			SortOrder:   60,
			IsActive:    true,
		},
	}

	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("name = ?", product.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Name, err)
			} else {
				stdLog.Printf("Created product: %s (%s)", product.Name, product.PriceAmount.Display())
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Name)
		}
	}

	stdLog.Printf("Seed completed")
}
