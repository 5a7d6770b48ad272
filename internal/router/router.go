package router

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/natar10/uva-ong-block/internal/chain"
	"github.com/natar10/uva-ong-block/internal/config"
	"github.com/natar10/uva-ong-block/internal/handler"
	"github.com/natar10/uva-ong-block/internal/monitor"
)

// Handlers 路由依赖的处理器集合
type Handlers struct {
	Donor    *handler.DonorHandler
	Project  *handler.ProjectHandler
	Donation *handler.DonationHandler
	Vote     *handler.VoteHandler
	Purchase *handler.PurchaseHandler
	Catalog  *handler.CatalogHandler
	Activity *handler.ActivityHandler

	Gateway *chain.Gateway
	Monitor *monitor.EventMonitor
}

func Setup(cfg *config.Config, h Handlers) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		deployed, err := h.Gateway.IsDeployed(ctx)
		status := gin.H{
			"status":   "ok",
			"service":  "ong-donation-service",
			"deployed": deployed,
		}
		if err != nil {
			status["status"] = "degraded"
			status["error"] = err.Error()
		}
		if h.Monitor != nil {
			status["monitor"] = h.Monitor.Status()
		}

		c.JSON(200, status)
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		donors := v1.Group("/donors")
		{
			donors.POST("", h.Donor.RegisterDonor)
			donors.GET("/:address", h.Donor.GetDonor)
			donors.GET("/:address/balance", h.Donor.GetGovernanceBalance)
		}

		projects := v1.Group("/projects")
		{
			projects.POST("", h.Project.CreateProject)
			projects.GET("", h.Project.GetProjects)
			projects.GET("/:id", h.Project.GetProject)
			projects.GET("/:id/donations", h.Project.GetProjectDonations)
			projects.GET("/:id/purchases", h.Project.GetProjectPurchases)
			projects.POST("/:id/votes", h.Vote.CastVote)
		}

		donations := v1.Group("/donations")
		{
			donations.POST("", h.Donation.Donate)
			donations.GET("", h.Donation.GetDonations)
		}

		purchases := v1.Group("/purchases")
		{
			purchases.POST("", h.Purchase.RequestPurchase)
			purchases.GET("/:id", h.Purchase.GetPurchase)
			purchases.POST("/:id/validation", h.Purchase.ValidatePurchase)
		}

		v1.GET("/materials", h.Catalog.GetMaterials)
		v1.GET("/providers/:address", h.Catalog.GetProvider)
		v1.GET("/activities", h.Activity.GetActivities)
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
