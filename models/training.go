package models

import "time"

// Training representa um treinamento (quiz) com questões ordenadas.
type Training struct {
	ID          int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Title       string     `gorm:"not null" json:"title" form:"title"`
	Description string     `gorm:"type:text" json:"description" form:"description"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active" form:"is_active"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`

	Questions []TrainingQuestion `gorm:"-" json:"questions,omitempty"`
}

// TrainingQuestion pertence a um treinamento; Ordem define a sequência.
type TrainingQuestion struct {
	ID         int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	TrainingID int64      `gorm:"not null;index" json:"training_id" form:"training_id"`
	Ordem      int        `gorm:"not null;default:0" json:"ordem" form:"ordem"`
	Texto      string     `gorm:"not null;type:text" json:"texto" form:"texto"`
	CreatedAt  *time.Time `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`

	Options []TrainingOption `gorm:"-" json:"options,omitempty"`
}

// TrainingOption é uma alternativa de questão. Exatamente uma por questão
// deve ter Correta=true; os controllers mantêm essa regra na escrita.
type TrainingOption struct {
	ID         int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	QuestionID int64      `gorm:"not null;index" json:"question_id" form:"question_id"`
	Ordem      int        `gorm:"not null;default:0" json:"ordem" form:"ordem"`
	Texto      string     `gorm:"not null;type:text" json:"texto" form:"texto"`
	Correta    bool       `gorm:"not null;default:false" json:"correta" form:"correta"`
	CreatedAt  *time.Time `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

/************************************************
/**** MARK: ATTEMPT STATUS ****/
/************************************************/
const ATTEMPT_STATUS_STARTED = "started"
const ATTEMPT_STATUS_SUBMITTED = "submitted"

// TrainingAttempt registra uma tentativa de um respondente; Score é o
// percentual de acertos calculado no submit.
type TrainingAttempt struct {
	ID         int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Token      string     `gorm:"not null;unique_index" json:"token"`
	TrainingID int64      `gorm:"not null;index" json:"training_id"`
	UserUID    string     `gorm:"column:user_uid;default:'';index" json:"userUid"`
	UserEmail  string     `gorm:"column:user_email;default:''" json:"userEmail"`
	Status     string     `gorm:"not null;default:'started'" json:"status"`
	Score      float64    `gorm:"not null;default:0" json:"score"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	CreatedAt  *time.Time `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

// TrainingAnswer é a alternativa escolhida para uma questão em uma tentativa.
type TrainingAnswer struct {
	ID         int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	AttemptID  int64      `gorm:"not null;index" json:"attempt_id"`
	QuestionID int64      `gorm:"not null" json:"question_id" form:"question_id"`
	OptionID   int64      `gorm:"not null" json:"option_id" form:"option_id"`
	Correct    bool       `gorm:"not null;default:false" json:"correct"`
	CreatedAt  *time.Time `json:"created_at"`
}
