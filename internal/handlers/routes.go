package handlers

import "github.com/gin-gonic/gin"

// Handlers groups every HTTP handler the API exposes
type Handlers struct {
	Health     *HealthHandler
	Auth       *AuthHandler
	Members    *MemberHandler
	Payments   *PaymentHandler
	Staff      *StaffHandler
	Attendance *AttendanceHandler
	Routines   *RoutineHandler
	Workouts   *WorkoutHandler
	Stats      *StatsHandler
}

// RegisterRoutes mounts /health and the /api/v1 routes. authMiddleware guards
// everything except login.
func RegisterRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc, h Handlers) {
	router.GET("/health", h.Health.Check)

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)

			protected := auth.Group("")
			protected.Use(authMiddleware)
			{
				protected.GET("/session", h.Auth.Session)
				protected.POST("/logout", h.Auth.Logout)
			}
		}

		api := v1.Group("")
		api.Use(authMiddleware)

		members := api.Group("/members")
		{
			members.GET("", h.Members.List)
			members.POST("", h.Members.Create)
			members.GET("/:id", h.Members.Get)
			members.PUT("/:id", h.Members.Update)
			members.DELETE("/:id", h.Members.Delete)
			members.PUT("/:id/photo", h.Members.UploadPhoto)
			members.GET("/:id/payments", h.Members.ListPayments)
			members.GET("/:id/progress", h.Members.ListProgress)
			members.POST("/:id/progress", h.Members.RecordProgress)
		}

		payments := api.Group("/payments")
		{
			payments.GET("", h.Payments.List)
			payments.POST("", h.Payments.Create)
			payments.GET("/suggested-amount", h.Payments.SuggestedAmount)
		}

		staff := api.Group("/staff")
		{
			staff.GET("", h.Staff.List)
			staff.POST("", h.Staff.Create)
			staff.GET("/:id", h.Staff.Get)
			staff.PUT("/:id", h.Staff.Update)
		}

		attendance := api.Group("/attendance")
		{
			attendance.GET("", h.Attendance.List)
			attendance.POST("", h.Attendance.Create)
		}

		routines := api.Group("/routines")
		{
			routines.GET("", h.Routines.List)
			routines.POST("", h.Routines.Create)
			routines.GET("/:id", h.Routines.Get)
			routines.POST("/:id/exercises", h.Routines.AppendExercise)
		}

		assignments := api.Group("/routine-assignments")
		{
			assignments.GET("", h.Routines.ListAssignments)
			assignments.POST("", h.Routines.Assign)
		}

		workouts := api.Group("/workout-sessions")
		{
			workouts.GET("", h.Workouts.List)
			workouts.POST("", h.Workouts.Create)
		}

		api.GET("/stats/dashboard", h.Stats.Dashboard)
	}
}
