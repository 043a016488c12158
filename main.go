package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pecas/config"
	"pecas/controllers"
	dbpkg "pecas/db"
	"pecas/router"
	"pecas/tools"
	"pecas/workers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env é opcional: em deploy as variáveis vêm do ambiente
	if err := godotenv.Load(); err == nil {
		log.Println("Variáveis carregadas do .env")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg := config.Get(configPath)

	dbpkg.SetConfigurations(cfg)
	controllers.SetConfigurations(cfg)

	db, err := dbpkg.Connect()
	if err != nil {
		log.Fatalf("Falha ao conectar no banco: %v", err)
	}
	defer db.Close()

	identity := selectIdentity(cfg)
	controllers.SetIdentity(identity)

	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		log.Fatalf("Falha ao criar diretório de uploads: %v", err)
	}

	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(db))
	router.Initialize(r, cfg)

	workers.StartAlerts(db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.ApiPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Servidor de peças escutando em :%s", cfg.ApiPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Servidor caiu: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Encerrando...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown forçado: %v", err)
	}
}

// selectIdentity escolhe o provedor: Firebase quando há projeto e credenciais
// configurados, senão o provedor local (dev).
func selectIdentity(cfg config.Configuration) tools.Identity {
	if cfg.Firebase.ProjectID != "" && cfg.Firebase.CredentialsPath != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		fb, err := tools.NewFirebaseIdentity(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsPath)
		if err != nil {
			log.Fatalf("Falha ao inicializar o Firebase Auth: %v", err)
		}
		return fb
	}
	log.Println("Firebase não configurado; usando identidade local (dev)")
	return tools.LocalIdentity{Secret: cfg.Security.JwtSecret}
}
