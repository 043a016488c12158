package models

import "time"

/************************************************
/**** MARK: RECON STATUS ****/
/************************************************/
const RECON_STATUS_PENDING = "pending"
const RECON_STATUS_RECEIVED = "received"
const RECON_STATUS_RESTORED = "restored"
const RECON_STATUS_DISCARDED = "discarded"

// ReconItem representa uma peça aprovada com retorno obrigatório percorrendo
// o fluxo de recondicionamento: o técnico devolve (hand-over), o admin confirma
// o recebimento e então restaura ao estoque ou descarta.
//
// O item é criado na aprovação (recon_status=pending), mas só entra na lista
// "aguardando análise" depois que HandoverAt é preenchido.
type ReconItem struct {
	ID              int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	RequestID       int64      `gorm:"not null;unique_index" json:"request_id"`
	PecaID          int64      `gorm:"not null;index" json:"peca_id"`
	Qty             int64      `gorm:"not null" json:"qty"`
	MustReturn      int        `gorm:"not null;default:1" json:"must_return"`
	TechnicianUID   string     `gorm:"column:technician_uid;default:'';index" json:"technicianUid"`
	TechnicianEmail string     `gorm:"column:technician_email;default:''" json:"technicianEmail"`
	ReconStatus     string     `gorm:"not null;default:'pending';index" json:"recon_status"`
	HandoverAt      *time.Time `json:"handover_at"`
	ReceivedAt      *time.Time `json:"received_at"`
	ProcessedAt     *time.Time `json:"processed_at"`
	Notes           string     `gorm:"type:text" json:"notes"`
	Reason          string     `gorm:"type:text" json:"reason"`
	CreatedAt       *time.Time `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`

	Part *Peca `gorm:"-" json:"part,omitempty"`
}

// Terminal informa se o item chegou a um estado final do recon.
func (r ReconItem) Terminal() bool {
	return r.ReconStatus == RECON_STATUS_RESTORED || r.ReconStatus == RECON_STATUS_DISCARDED
}
