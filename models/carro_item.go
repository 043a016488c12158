package models

import "time"

// CarroItem representa uma peça no estoque pessoal (carro) de um técnico.
// É alimentado pelo pickup-confirm das solicitações de separação e debitado
// quando o técnico registra a devolução (hand-over).
type CarroItem struct {
	ID         int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	OwnerUID   string     `gorm:"column:owner_uid;not null;index" json:"ownerUid" form:"ownerUid"`
	OwnerEmail string     `gorm:"column:owner_email;default:''" json:"ownerEmail" form:"ownerEmail"`
	Nome       string     `gorm:"not null" json:"nome" form:"nome"`
	Marca      string     `gorm:"default:''" json:"marca" form:"marca"`
	Modelo     string     `gorm:"default:''" json:"modelo" form:"modelo"`
	Codigo     string     `gorm:"not null;index" json:"codigo" form:"codigo"`
	Quantidade int64      `gorm:"not null;default:0" json:"quantidade" form:"quantidade"`
	EstoqueMin int64      `gorm:"not null;default:0" json:"estoqueMin" form:"estoqueMin"`
	EstoqueMax int64      `gorm:"not null;default:0" json:"estoqueMax" form:"estoqueMax"`
	ImagemURL  string     `gorm:"default:''" json:"imagem_url"`
	CreatedAt  *time.Time `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

func (i CarroItem) MissingFields() string {
	if i.OwnerUID == "" {
		return "ownerUid"
	} else if i.Nome == "" {
		return "nome"
	} else if i.Codigo == "" {
		return "codigo"
	}
	return ""
}
