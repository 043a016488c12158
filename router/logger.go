package router

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger registra método, rota, status e latência de cada chamada da API de
// peças. Fica por rota (e não global) para o health check e os arquivos
// estáticos não poluírem o log.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		log.Printf("pecas-api %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration)
	}
}
