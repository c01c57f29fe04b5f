package provider

import (
	"github.com/ctv-ledger/internal/cache"
	"github.com/ctv-ledger/internal/config"
	"github.com/ctv-ledger/internal/logger"
	"github.com/ctv-ledger/internal/models"
	"github.com/ctv-ledger/internal/queue"
	"github.com/ctv-ledger/internal/repository"
	"github.com/ctv-ledger/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo     repository.AdminRepository
	AffiliateRepo repository.AffiliateRepository
	ReferralRepo  repository.ReferralRepository
	LedgerRepo    repository.LedgerRepository
	PayoutRepo    repository.PayoutRepository

	// Services
	AuthService        *service.AuthService
	AffiliateService   *service.AffiliateService
	AttributionService *service.AttributionService
	CommissionService  *service.CommissionService
	PayoutService      *service.PayoutService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.AffiliateRepo = repository.NewAffiliateRepository(db)
	c.ReferralRepo = repository.NewReferralRepository(db)
	c.LedgerRepo = repository.NewLedgerRepository(db)
	c.PayoutRepo = repository.NewPayoutRepository(db)
}

func (c *Container) initServices() {
	var fraudWindow service.FraudWindow
	if cache.Enabled() {
		fraudWindow = service.NewRedisFraudWindow(cache.Client(), c.Config.Redis.Prefix+":fraud:attr")
	} else {
		fraudWindow = service.NewMemoryFraudWindow()
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.AffiliateService = service.NewAffiliateService(c.AffiliateRepo, c.ReferralRepo, c.LedgerRepo, c.Config)
	c.AttributionService = service.NewAttributionService(c.AffiliateRepo, c.ReferralRepo, fraudWindow, c.Config)
	c.CommissionService = service.NewCommissionService(c.AffiliateRepo, c.ReferralRepo, c.LedgerRepo, c.QueueClient)
	c.PayoutService = service.NewPayoutService(c.AffiliateRepo, c.PayoutRepo, c.Config)
}
