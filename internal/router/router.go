package router

import (
	"fmt"
	"strings"

	"github.com/hkshop-next/internal/cache"
	"github.com/hkshop-next/internal/config"
	adminhandlers "github.com/hkshop-next/internal/http/handlers/admin"
	publichandlers "github.com/hkshop-next/internal/http/handlers/public"
	"github.com/hkshop-next/internal/logger"
	"github.com/hkshop-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "hk"
	}
	redisClient := cache.Client()
	checkoutRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:checkout", redisPrefix),
		WindowSeconds: cfg.Security.CheckoutRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CheckoutRateLimit.MaxRequests,
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxRequests,
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		// 店面接口
		apiV1.GET("/products", publicHandler.ListProducts)
		apiV1.GET("/products/:id", publicHandler.GetProduct)
		apiV1.POST("/orders", RateLimitMiddleware(redisClient, checkoutRule, KeyByIP), publicHandler.CreateOrder)
		apiV1.GET("/orders/:order_no", publicHandler.GetOrder)
		apiV1.POST("/payments", RateLimitMiddleware(redisClient, checkoutRule, KeyByIP), publicHandler.CreatePayment)
		apiV1.GET("/payments/:order_no", publicHandler.GetPaymentStatus)

		// 网关异步通知（应答 SUCCESS/FAIL 文本，不走统一响应结构）
		apiV1.POST("/payments/callback", publicHandler.HandlePaymentCallback)

		// 管理端接口
		admin := apiV1.Group("/admin")
		{
			admin.POST("/login",
				RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")),
				adminHandler.Login)

			authed := admin.Group("")
			authed.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				authed.GET("/me", adminHandler.Me)
				authed.PUT("/password", adminHandler.ChangePassword)

				authed.GET("/products", adminHandler.ListProducts)
				authed.POST("/products", adminHandler.CreateProduct)
				authed.PUT("/products/:id", adminHandler.UpdateProduct)
				authed.DELETE("/products/:id", adminHandler.DeleteProduct)

				authed.GET("/orders", adminHandler.ListOrders)
				authed.GET("/orders/:order_no", adminHandler.GetOrder)
				authed.GET("/payments", adminHandler.ListPayments)
			}
		}
	}

	return r
}
