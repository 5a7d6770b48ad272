package main

import (
	"context"
	"log"
	"time"

	"github.com/natar10/uva-ong-block/internal/cache"
	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/config"
	"github.com/natar10/uva-ong-block/internal/database"
	"github.com/natar10/uva-ong-block/internal/handler"
	"github.com/natar10/uva-ong-block/internal/logger"
	"github.com/natar10/uva-ong-block/internal/logic"
	"github.com/natar10/uva-ong-block/internal/monitor"
	"github.com/natar10/uva-ong-block/internal/precheck"
	"github.com/natar10/uva-ong-block/internal/reader"
	"github.com/natar10/uva-ong-block/internal/router"
	"github.com/natar10/uva-ong-block/internal/task"
	"github.com/natar10/uva-ong-block/internal/wallet"
	"github.com/natar10/uva-ong-block/internal/workflow"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化链客户端
	client, err := chain.NewClient(cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize chain client: %v", err)
	}
	defer client.Close()

	// 初始化钱包
	provider := wallet.NewKeystoreProvider(cfg.Chain.KeystoreDir, wallet.FixedPassphrase(cfg.Chain.Passphrase))
	defer provider.Close()

	// 初始化账本网关
	gateway, err := chain.NewGateway(client, provider, cfg.Chain.ContractAddr)
	if err != nil {
		logger.Fatal("Failed to initialize ledger gateway: %v", err)
	}

	// 只读会话用于读取器，写入在各流程内打开
	session, err := gateway.Open(context.Background())
	if err != nil {
		logger.Fatal("Failed to open ledger session: %v", err)
	}

	// 读缓存和实体读取器
	store := cache.New(cfg.Cache)
	donors := reader.NewDonorReader(session, store)
	projects := reader.NewProjectReader(session, store)
	purchases := reader.NewPurchaseReader(session, store)
	providers := reader.NewProviderReader(session, store)
	materials := reader.NewMaterialReader(session, store)
	donations := reader.NewDonationReader(session, store)

	// 前置检查和流程编排
	validator := precheck.NewValidator(donors, projects, purchases, providers, materials)
	activity := logic.NewActivityLogic(db)
	deps := workflow.NewDeps(gateway, store, validator, activity)

	// 事件监控
	eventMonitor := monitor.NewEventMonitor(client, gateway.Contract(), store, activity,
		cfg.Chain.StartBlock, time.Duration(cfg.Task.Interval)*time.Second)
	if err := eventMonitor.Start(); err != nil {
		logger.Error("Failed to start event monitor: %v", err)
	}
	defer eventMonitor.Stop()

	// 定时任务
	tasks, err := task.NewManager(cfg, client, projects)
	if err != nil {
		logger.Fatal("Failed to create task manager: %v", err)
	}
	tasks.Start()
	defer tasks.Stop()

	// 路由
	r := router.Setup(cfg, router.Handlers{
		Donor:    handler.NewDonorHandler(donors, workflow.NewRegistrationFlow(deps)),
		Project:  handler.NewProjectHandler(projects, donations, purchases, workflow.NewProjectFlow(deps)),
		Donation: handler.NewDonationHandler(donations, workflow.NewDonationFlow(deps)),
		Vote:     handler.NewVoteHandler(workflow.NewVoteFlow(deps)),
		Purchase: handler.NewPurchaseHandler(purchases, workflow.NewPurchaseFlow(deps)),
		Catalog:  handler.NewCatalogHandler(materials, providers),
		Activity: handler.NewActivityHandler(activity),
		Gateway:  gateway,
		Monitor:  eventMonitor,
	})

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
