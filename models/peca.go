package models

import "time"

// Peca representa uma peça do estoque central.
// Invariante: Quantidade nunca fica negativa — toda baixa de estoque é feita
// com UPDATE condicional (quantidade >= qty) nos controllers.
type Peca struct {
	ID         int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Nome       string     `gorm:"not null" json:"nome" form:"nome"`
	Marca      string     `gorm:"default:''" json:"marca" form:"marca"`
	Modelo     string     `gorm:"default:''" json:"modelo" form:"modelo"`
	Codigo     string     `gorm:"not null;unique_index" json:"codigo" form:"codigo"`
	Quantidade int64      `gorm:"not null;default:0" json:"quantidade" form:"quantidade"`
	EstoqueMin int64      `gorm:"not null;default:0" json:"estoqueMin" form:"estoqueMin"`
	EstoqueMax int64      `gorm:"not null;default:0" json:"estoqueMax" form:"estoqueMax"`
	ImagemURL  string     `gorm:"default:''" json:"imagem_url"`
	CreatedAt  *time.Time `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

func (p Peca) MissingFields() string {
	if p.Nome == "" {
		return "nome"
	} else if p.Codigo == "" {
		return "codigo"
	}
	return ""
}
