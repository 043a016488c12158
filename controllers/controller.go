package controllers

import (
	"pecas/config"
	"pecas/tools"

	"github.com/gin-gonic/gin"
)

// Códigos de erro que o aplicativo reconhece e traduz para mensagens próprias.
// Tudo que não for código vira mensagem legível direto no campo "error".
const ERR_ALREADY_PROCESSED = "ALREADY_PROCESSED"
const ERR_NOT_FOUND = "NOT_FOUND"
const ERR_HANDOVER_PENDING = "HANDOVER_PENDING"
const ERR_ESTOQUE_INSUFICIENTE = "ESTOQUE_INSUFICIENTE"

var conf config.Configuration
var identity tools.Identity

// SetConfigurations injeta a configuração carregada no main.
func SetConfigurations(configuration config.Configuration) {
	conf = configuration
}

// SetIdentity injeta o provedor de identidade (Firebase em produção,
// LocalIdentity em dev/testes).
func SetIdentity(provider tools.Identity) {
	identity = provider
}

func RespondError(c *gin.Context, msg string, code int) {
	c.JSON(code, gin.H{"error": msg})
}

func RespondSuccess(c *gin.Context, payload any) {
	c.JSON(200, payload)
}
