package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "papertrail/docs"
	"papertrail/internal/authz"
	"papertrail/internal/handler"
	"papertrail/internal/middleware"
	"papertrail/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	verifier service.TokenVerifier,
	authorizer middleware.Authorizer,
	allowedOrigins []string,
	custodyH *handler.CustodyHandler,
	healthH *handler.HealthHandler,
	metricsHandler http.Handler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks and operational endpoints
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(metricsHandler))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(verifier))

	can := func(action string) gin.HandlerFunc {
		return middleware.RequirePermission(authorizer, authz.ObjectCustody, action)
	}

	docs := v1.Group("/documents/:id/custody")
	docs.GET("", can(authz.ActionRead), custodyH.Get)
	docs.POST("/checkout", can(authz.ActionCheckout), custodyH.Checkout)
	docs.POST("/checkin", can(authz.ActionCheckin), custodyH.Checkin)
	docs.POST("/transfer", can(authz.ActionTransfer), custodyH.Transfer)
	docs.POST("/rollback", can(authz.ActionRollback), custodyH.Rollback)
	docs.GET("/history", can(authz.ActionRead), custodyH.History)
	docs.GET("/history/export", can(authz.ActionExport), custodyH.Export)

	v1.GET("/users/:id/custody", can(authz.ActionRead), custodyH.HeldBy)
	v1.GET("/custody/overdue", can(authz.ActionRead), custodyH.Overdue)

	return r
}
