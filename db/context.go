package db

import (
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

const dbKey = "pecas_db"

// SetDBtoContext injeta a conexão no contexto de cada request. Registre no
// engine antes do router; os controllers a recuperam com DBInstance.
func SetDBtoContext(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(dbKey, database)
		c.Next()
	}
}

// DBInstance devolve a conexão injetada, ou nil se o middleware não rodou
// (os controllers tratam nil como erro de configuração).
func DBInstance(c *gin.Context) *gorm.DB {
	v, ok := c.Get(dbKey)
	if !ok {
		return nil
	}
	db, _ := v.(*gorm.DB)
	return db
}
