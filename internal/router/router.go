package router

import (
	"finledger/internal/analytics"
	"finledger/internal/authz"
	"finledger/internal/config"
	"finledger/internal/handler"
	"finledger/internal/logging"
	"finledger/internal/middleware"
	"finledger/internal/notify"
	"finledger/internal/progress"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the gin engine and all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB, log *logging.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute)
	r.Use(
		gin.Recovery(),
		middleware.RequestLog(log),
		middleware.SecurityHeaders(middleware.DefaultSecurityHeaders()),
		limiter.Middleware(),
	)

	resolver := authz.NewResolver(db)
	calculator := progress.NewCalculator(db)
	aggregator := analytics.NewAggregator(db)
	notifier := notify.NewEmitter(db, log)

	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(db, cfg.JWT.Secret, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// webhook authenticates by signature, not session
	webhookHandler := handler.NewWebhookHandler(db, cfg.Security.WebhookSecret, notifier, log)
	api.POST("/webhooks/payment", webhookHandler.HandlePaymentEvent)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret, db))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/me", handler.GetMe)
	protected.POST("/profile", handler.UpdateProfile(db))
	protected.POST("/profile/password", handler.ChangePassword(db))

	expenseHandler := handler.NewExpenseHandler(db, resolver, calculator, notifier, cfg.App.PageSize)
	protected.POST("/expenses", expenseHandler.CreateExpense)
	protected.GET("/expenses", expenseHandler.ListExpenses)
	protected.GET("/expenses/:id", expenseHandler.GetExpense)
	protected.PUT("/expenses/:id", expenseHandler.UpdateExpense)
	protected.DELETE("/expenses/:id", expenseHandler.DeleteExpense)

	budgetHandler := handler.NewBudgetHandler(db, resolver, calculator)
	protected.POST("/budgets", budgetHandler.CreateBudget)
	protected.GET("/budgets", budgetHandler.ListBudgets)
	protected.GET("/budgets/category/:category/usage", budgetHandler.GetBudgetUsage)
	protected.PUT("/budgets/:id", budgetHandler.UpdateBudget)
	protected.DELETE("/budgets/:id", budgetHandler.DeleteBudget)

	goalHandler := handler.NewGoalHandler(db, resolver, calculator, notifier)
	protected.POST("/goals", goalHandler.CreateGoal)
	protected.GET("/goals", goalHandler.ListGoals)
	protected.GET("/goals/:id/progress", goalHandler.GetGoalProgress)
	protected.PUT("/goals/:id", goalHandler.UpdateGoal)
	protected.POST("/goals/:id/contribute", goalHandler.Contribute)
	protected.DELETE("/goals/:id", goalHandler.DeleteGoal)

	occasionHandler := handler.NewOccasionHandler(db, resolver, calculator)
	protected.POST("/occasions", occasionHandler.CreateOccasion)
	protected.GET("/occasions", occasionHandler.ListOccasions)
	protected.GET("/occasions/:id/progress", occasionHandler.GetOccasionProgress)
	protected.PUT("/occasions/:id", occasionHandler.UpdateOccasion)
	protected.POST("/occasions/:id/spend", occasionHandler.AddSpend)
	protected.DELETE("/occasions/:id", occasionHandler.DeleteOccasion)

	groupHandler := handler.NewGroupHandler(db, resolver)
	protected.POST("/groups", groupHandler.CreateGroup)
	protected.GET("/groups", groupHandler.ListGroups)
	protected.GET("/groups/:id", groupHandler.GetGroup)
	protected.PUT("/groups/:id", groupHandler.UpdateGroup)
	protected.DELETE("/groups/:id", groupHandler.DeleteGroup)
	protected.GET("/groups/:id/members", groupHandler.ListMembers)
	protected.POST("/groups/:id/members", groupHandler.AddMember)
	protected.PUT("/groups/:id/members/:userId", groupHandler.UpdateMemberRole)
	protected.DELETE("/groups/:id/members/:userId", groupHandler.RemoveMember)

	notificationHandler := handler.NewNotificationHandler(db, cfg.App.PageSize)
	protected.GET("/notifications", notificationHandler.ListNotifications)
	protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	protected.POST("/notifications/:id/read", notificationHandler.MarkRead)
	protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)

	analyticsHandler := handler.NewAnalyticsHandler(aggregator)
	protected.GET("/analytics", analyticsHandler.GetReport)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	return r
}
