package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Routes groups the handlers served by the API
type Routes struct {
	Ping        func(ctx context.Context) error
	Cron        *CronHandler
	Competitors *CompetitorHandler
	Runs        *RunHandler
	Discounts   *DiscountHandler
	Statistics  *StatisticsHandler
	Settings    *SettingsHandler

	// CronMiddleware guards /cron, InternalMiddleware the /internal group
	CronMiddleware     []gin.HandlerFunc
	InternalMiddleware []gin.HandlerFunc
}

// Register mounts every route on r
func (rt *Routes) Register(r gin.IRouter) {
	r.GET("/health", HealthCheck(rt.Ping))
	cron := append([]gin.HandlerFunc{}, rt.CronMiddleware...)
	r.GET("/cron", append(cron, rt.Cron.Run)...)

	internal := r.Group("/internal")
	internal.Use(rt.InternalMiddleware...)
	{
		internal.GET("/health", HealthCheck(rt.Ping))

		comp := internal.Group("/competitors")
		{
			comp.GET("", rt.Competitors.List)
			comp.POST("", rt.Competitors.Create)
			comp.GET("/:id", rt.Competitors.Get)
			comp.PUT("/:id", rt.Competitors.Update)
			comp.DELETE("/:id", rt.Competitors.Delete)
			comp.POST("/:id/toggle", rt.Competitors.Toggle)
			comp.PUT("/:id/settings", rt.Competitors.UpdateSettings)
			comp.POST("/:id/compare", rt.Runs.Compare)
			comp.POST("/:id/update", rt.Runs.Update)
			comp.GET("/:id/matches", rt.Discounts.PriceDifferences)
			comp.GET("/:id/matches/export", rt.Discounts.ExportMatches)
		}

		internal.POST("/update-all", rt.Runs.UpdateAll)

		disc := internal.Group("/discounts")
		{
			disc.GET("", rt.Discounts.List)
			disc.GET("/export", rt.Discounts.ExportDiscounts)
			disc.POST("/clean", rt.Runs.Clean)
			disc.POST("/:id/extend", rt.Discounts.Extend)
			disc.DELETE("/:id", rt.Discounts.Remove)
		}

		st := internal.Group("/statistics")
		{
			st.GET("/summary", rt.Statistics.Summary)
			st.GET("/recent", rt.Statistics.Recent)
		}

		set := internal.Group("/settings")
		{
			set.GET("", rt.Settings.Get)
			set.PUT("", rt.Settings.Save)
			set.POST("/generate-token", rt.Settings.GenerateToken)
		}
	}
}
