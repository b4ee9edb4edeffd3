package handler

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes. sessionAuth guards every route except
// login and register, which are throttled by loginLimit instead.
func RegisterRoutes(e *echo.Echo, sessionAuth, loginLimit echo.MiddlewareFunc, authHandler *AuthHandler, transactionHandler *TransactionHandler, dashboardHandler *DashboardHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Auth routes (public, rate limited)
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login, loginLimit)
	auth.POST("/register", authHandler.Register, loginLimit)
	auth.POST("/logout", authHandler.Logout, sessionAuth)

	// Transaction routes (protected)
	transactions := api.Group("/transactions")
	transactions.Use(sessionAuth)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/export", transactionHandler.ExportTransactions)
	transactions.POST("/export/archive", transactionHandler.ArchiveExport)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Debt routes (protected)
	debts := api.Group("/debts")
	debts.Use(sessionAuth)
	debts.POST("", transactionHandler.CreateDebt)

	// Dashboard routes (protected)
	dashboard := api.Group("/dashboard")
	dashboard.Use(sessionAuth)
	dashboard.GET("", dashboardHandler.GetDashboard)
	dashboard.GET("/summary", dashboardHandler.GetSummary)
	dashboard.GET("/chart", dashboardHandler.GetChart)
	dashboard.GET("/yearly", dashboardHandler.GetYearly)
}
