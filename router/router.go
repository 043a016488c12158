package router

import (
	"log"
	"net/http"

	"pecas/config"
	"pecas/controllers"
	"pecas/middleware"

	"github.com/gin-gonic/gin"
)

// Initialize wires all routes and middlewares.
// Public routes + authenticated routes + "validated" routes (Authorizer) + admin routes.
func Initialize(r *gin.Engine, cfg config.Configuration) {
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.Static("/uploads", cfg.UploadsDir)

	api := r.Group("/api")

	// Public (no auth)
	api.POST("/login", Logger(), controllers.Login)

	// Authenticated routes (token required)
	auth := api.Group("")
	auth.Use(controllers.AuthRequired())

	// Validated routes (token + known role)
	validated := auth.Group("")
	validated.Use(Authorizer())

	validated.GET("/profile/me", Logger(), controllers.Me)

	// Peças (leitura para todos os papéis)
	validated.GET("/pecas", Logger(), controllers.GetPecas)

	// Pedidos de separação (técnico)
	validated.POST("/separation-requests", Logger(), controllers.CreateSeparationRequest)
	validated.GET("/separation-requests/my", Logger(), controllers.GetMySeparationRequests)
	validated.POST("/separation-requests/:id/pickup-confirm", Logger(), controllers.PickupConfirm)

	// Estoque do carro (técnico)
	validated.GET("/estoque-carro", Logger(), controllers.GetEstoqueCarro)
	validated.POST("/estoque-carro", Logger(), controllers.CreateCarroItem)
	validated.PUT("/estoque-carro/:id", Logger(), controllers.UpdateCarroItem)

	// Devoluções (técnico)
	validated.GET("/returns/my", Logger(), controllers.GetMyReturns)
	validated.POST("/returns/:id/hand-over", Logger(), controllers.HandOverReturn)

	// Notificações
	validated.GET("/notifications", Logger(), controllers.GetNotifications)
	validated.GET("/notifications/unread-count", Logger(), controllers.GetUnreadCount)
	validated.POST("/notifications/:id/read", Logger(), controllers.MarkNotificationRead)
	validated.DELETE("/notifications/:id", Logger(), controllers.DeleteNotification)
	validated.POST("/notifications/delete-all", Logger(), controllers.DeleteAllNotifications)

	// Treinamentos (aluno)
	validated.GET("/trainings", Logger(), controllers.GetTrainings)
	validated.GET("/trainings/:id", Logger(), controllers.GetTrainingByID)
	validated.POST("/trainings/:id/start", Logger(), controllers.StartTraining)
	validated.POST("/training-attempts/:id/submit", Logger(), controllers.SubmitTrainingAttempt)

	// Admin routes
	admin := validated.Group("")
	admin.Use(Adminizer())

	// Peças CRUD (admin)
	admin.POST("/pecas", Logger(), controllers.CreatePeca)
	admin.PUT("/pecas/:id", Logger(), controllers.UpdatePeca)
	admin.DELETE("/pecas/:id", Logger(), controllers.DeletePeca)

	// Separação (admin)
	admin.GET("/separation-requests", Logger(), controllers.GetSeparationRequests)
	admin.POST("/separation-requests/:id/approve", Logger(), controllers.ApproveSeparationRequest)
	admin.POST("/separation-requests/:id/reject", Logger(), controllers.RejectSeparationRequest)

	// Recondicionamento (admin)
	admin.GET("/recon-items", Logger(), controllers.GetReconItems)
	admin.GET("/recon-history", Logger(), controllers.GetReconHistory)
	admin.POST("/recon-items/:id/confirm-receipt", Logger(), controllers.ConfirmReconReceipt)
	admin.POST("/recon-items/:id/restore", Logger(), controllers.RestoreReconItem)
	admin.POST("/recon-items/:id/discard", Logger(), controllers.DiscardReconItem)
	admin.POST("/recon-items/:id/notes", Logger(), controllers.SaveReconNotes)

	// Usuários (admin)
	admin.GET("/admin/users", Logger(), controllers.GetAdminUsers)
	admin.POST("/admin/users", Logger(), controllers.CreateAdminUser)
	admin.PATCH("/admin/users/:uid", Logger(), controllers.UpdateAdminUser)
	admin.DELETE("/admin/users/:uid", Logger(), controllers.DeleteAdminUser)

	// Treinamentos (admin)
	admin.GET("/trainings/export", Logger(), controllers.ExportTrainingAttempts)
	admin.POST("/trainings", Logger(), controllers.CreateTraining)
	admin.PUT("/trainings/:id", Logger(), controllers.UpdateTraining)
	admin.DELETE("/trainings/:id", Logger(), controllers.DeleteTraining)
	admin.POST("/training-questions", Logger(), controllers.CreateTrainingQuestion)
	admin.PUT("/training-questions/:id", Logger(), controllers.UpdateTrainingQuestion)
	admin.DELETE("/training-questions/:id", Logger(), controllers.DeleteTrainingQuestion)
	admin.POST("/training-options", Logger(), controllers.CreateTrainingOption)
	admin.PUT("/training-options/:id", Logger(), controllers.UpdateTrainingOption)
	admin.DELETE("/training-options/:id", Logger(), controllers.DeleteTrainingOption)

	log.Printf("Routes initialized")
}
