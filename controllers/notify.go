package controllers

import (
	"encoding/json"
	"log"

	"pecas/models"

	"github.com/jinzhu/gorm"
)

// notify grava uma notificação para a chave de destinatário. Falha aqui não
// derruba a operação principal: só loga.
func notify(db *gorm.DB, userUID, title, body, ntype string, payload map[string]any) {
	if db == nil || userUID == "" {
		return
	}
	var raw string
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			raw = string(b)
		}
	}
	n := models.Notification{
		UserUID: userUID,
		Title:   title,
		Body:    body,
		Type:    ntype,
		Payload: raw,
	}
	if err := db.Create(&n).Error; err != nil {
		log.Printf("notify: falha ao gravar notificação para %s: %v", userUID, err)
	}
}

// notifyTechnician escolhe a chave do técnico: uid quando houver, senão email.
func notifyTechnician(db *gorm.DB, uid, email, title, body, ntype string, payload map[string]any) {
	key := uid
	if key == "" {
		key = email
	}
	notify(db, key, title, body, ntype, payload)
}
