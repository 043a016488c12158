package models

import "time"

/************************************************
/**** MARK: REQUEST STATUS ****/
/************************************************/
const REQUEST_STATUS_PENDING = "pending"
const REQUEST_STATUS_READY = "ready_for_pickup"
const REQUEST_STATUS_PICKED_UP = "picked_up"
const REQUEST_STATUS_REJECTED = "rejected"

// SeparationRequest representa o pedido de um técnico para retirar uma
// quantidade de peça do estoque central.
//
// A criação do pedido reserva o estoque imediatamente (quantidade -= qty);
// a rejeição devolve a reserva. Transições são feitas com UPDATE condicional
// sobre o status atual: quem perde a corrida recebe ALREADY_PROCESSED.
type SeparationRequest struct {
	ID              int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	PecaID          int64      `gorm:"not null;index" json:"peca_id" form:"pecaId"`
	Qty             int64      `gorm:"not null" json:"qty" form:"qty"`
	TechnicianUID   string     `gorm:"column:technician_uid;default:'';index" json:"technicianUid" form:"technicianUid"`
	TechnicianEmail string     `gorm:"column:technician_email;default:'';index" json:"technicianEmail" form:"technicianEmail"`
	Status          string     `gorm:"not null;default:'pending';index" json:"status"`
	MustReturn      int        `gorm:"not null;default:0" json:"must_return"`
	ApprovedBy      string     `gorm:"default:''" json:"approvedBy"`
	RejectedBy      string     `gorm:"default:''" json:"rejectedBy"`
	PickedUpAt      *time.Time `json:"picked_up_at"`
	CreatedAt       *time.Time `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`

	// Part é preenchido na serialização das listas (não é coluna).
	Part *Peca `gorm:"-" json:"part,omitempty"`
}

// Owns informa se a identidade (uid ou email) é a dona do pedido.
func (r SeparationRequest) Owns(uid, email string) bool {
	if uid != "" && r.TechnicianUID == uid {
		return true
	}
	if email != "" && r.TechnicianEmail == email {
		return true
	}
	return false
}
