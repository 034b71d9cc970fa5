package provider

import (
	"github.com/hkshop-next/internal/cache"
	"github.com/hkshop-next/internal/config"
	"github.com/hkshop-next/internal/logger"
	"github.com/hkshop-next/internal/models"
	"github.com/hkshop-next/internal/queue"
	"github.com/hkshop-next/internal/repository"
	"github.com/hkshop-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo   repository.AdminRepository
	ProductRepo repository.ProductRepository
	OrderRepo   repository.OrderRepository
	PaymentRepo repository.PaymentRepository

	// Services
	AuthService    *service.AuthService
	ProductService *service.ProductService
	OrderService   *service.OrderService
	PaymentService *service.PaymentService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}
	if queueClient == nil {
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.ProductRepo)
	c.PaymentService = service.NewPaymentService(c.Config, c.OrderRepo, c.PaymentRepo, c.QueueClient)
}

// Close 释放容器持有的外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
}
