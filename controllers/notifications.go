package controllers

import (
	"net/http"

	dbpkg "pecas/db"
	"pecas/models"

	"github.com/gin-gonic/gin"
)

type NotificationKeyBody struct {
	UserUID string `json:"userUid" form:"userUid"`
}

// notificationKey resolve a chave de destinatário: explícita na query/body,
// senão o próprio usuário logado (admins caem no canal administrativo).
func notificationKey(c *gin.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	user, ok := GetUserLogged(c)
	if !ok {
		return ""
	}
	if user.IsAdmin() {
		return models.NOTIF_CHANNEL_ADMIN
	}
	return user.UID
}

// GET /notifications?userUid=&limit=
func GetNotifications(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	key := notificationKey(c, c.Query("userUid"))
	if key == "" {
		RespondError(c, "userUid é obrigatório", http.StatusBadRequest)
		return
	}

	limit := clampInt(queryInt(c, "limit", 50), 1, 200)

	var items []models.Notification
	if err := db.Where("user_uid = ?", key).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&items).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"notifications": items})
}

// GET /notifications/unread-count?userUid=
func GetUnreadCount(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	key := notificationKey(c, c.Query("userUid"))
	if key == "" {
		RespondError(c, "userUid é obrigatório", http.StatusBadRequest)
		return
	}

	var count int
	if err := db.Model(&models.Notification{}).
		Where("user_uid = ? AND read = ?", key, false).
		Count(&count).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"count": count})
}

// POST /notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body NotificationKeyBody
	_ = c.Bind(&body)
	key := notificationKey(c, body.UserUID)

	res := db.Model(&models.Notification{}).
		Where("id = ? AND user_uid = ?", id, key).
		Update("read", true)
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusBadRequest)
		return
	}
	if res.RowsAffected == 0 {
		RespondError(c, ERR_NOT_FOUND, http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"read": true})
}

// DELETE /notifications/:id
func DeleteNotification(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body NotificationKeyBody
	_ = c.Bind(&body)
	key := notificationKey(c, body.UserUID)
	if q := c.Query("userUid"); q != "" {
		key = q
	}

	res := db.Delete(&models.Notification{}, "id = ? AND user_uid = ?", id, key)
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusBadRequest)
		return
	}
	if res.RowsAffected == 0 {
		RespondError(c, ERR_NOT_FOUND, http.StatusNotFound)
		return
	}

	RespondSuccess(c, gin.H{"status": "deleted"})
}

// POST /notifications/delete-all
// Esvazia a lista da chave: o unread-count volta a zero junto.
func DeleteAllNotifications(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body NotificationKeyBody
	_ = c.Bind(&body)
	key := notificationKey(c, body.UserUID)
	if key == "" {
		RespondError(c, "userUid é obrigatório", http.StatusBadRequest)
		return
	}

	if err := db.Delete(&models.Notification{}, "user_uid = ?", key).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"status": "deleted"})
}
