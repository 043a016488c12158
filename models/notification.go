package models

import "time"

/************************************************
/**** MARK: NOTIFICATION TYPES ****/
/************************************************/
const NOTIF_TYPE_REQUEST = "separation_request"
const NOTIF_TYPE_RECON = "recon"
const NOTIF_TYPE_STOCK = "stock_alert"
const NOTIF_TYPE_GENERAL = "general"

// NOTIF_CHANNEL_ADMIN é a chave de destinatário do canal administrativo:
// eventos de interesse de todos os admins são gravados nesta chave.
const NOTIF_CHANNEL_ADMIN = "ADMIN"

// Notification representa um aviso persistido para uma chave de destinatário
// (uid de usuário ou canal administrativo).
type Notification struct {
	ID        int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	UserUID   string     `gorm:"column:user_uid;not null;index" json:"userUid" form:"userUid"`
	Title     string     `gorm:"not null" json:"title" form:"title"`
	Body      string     `gorm:"type:text" json:"body" form:"body"`
	Type      string     `gorm:"not null;default:'general';index" json:"type" form:"type"`
	Read      bool       `gorm:"not null;default:false" json:"read"`
	Payload   string     `gorm:"type:text" json:"payload"`
	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
