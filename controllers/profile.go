package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /profile/me
func Me(c *gin.Context) {
	user, ok := GetUserLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
