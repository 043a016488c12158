package controllers

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	dbpkg "pecas/db"
	"pecas/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StartAttemptBody struct {
	UserUID   string `json:"userUid" form:"userUid"`
	UserEmail string `json:"userEmail" form:"userEmail"`
}

type SubmitAnswer struct {
	QuestionID int64 `json:"question_id" form:"question_id"`
	OptionID   int64 `json:"option_id" form:"option_id"`
}

type SubmitAttemptBody struct {
	Answers []SubmitAnswer `json:"answers"`
}

// GET /trainings
func GetTrainings(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	q := db.Model(&models.Training{})
	if active := c.Query("active"); active != "" {
		q = q.Where("is_active = ?", active == "true" || active == "1")
	}

	var trainings []models.Training
	if err := q.Order("id asc").Find(&trainings).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"trainings": trainings})
}

// GET /trainings/:id
// Devolve o treinamento completo: questões e alternativas em ordem.
func GetTrainingByID(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var training models.Training
	if err := db.First(&training, id).Error; err != nil {
		RespondError(c, "treinamento não encontrado", http.StatusNotFound)
		return
	}

	if err := db.Where("training_id = ?", id).Order("ordem asc, id asc").
		Find(&training.Questions).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	for i := range training.Questions {
		db.Where("question_id = ?", training.Questions[i].ID).
			Order("ordem asc, id asc").
			Find(&training.Questions[i].Options)
	}

	RespondSuccess(c, gin.H{"training": training})
}

// POST /trainings (admin)
func CreateTraining(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var training models.Training
	if err := c.Bind(&training); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if training.Title == "" {
		RespondError(c, "title é obrigatório", http.StatusBadRequest)
		return
	}

	if err := db.Create(&training).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"training": training})
}

// PUT /trainings/:id (admin)
func UpdateTraining(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body models.Training
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var training models.Training
	if err := db.First(&training, id).Error; err != nil {
		RespondError(c, "treinamento não encontrado", http.StatusNotFound)
		return
	}

	if body.Title != "" {
		training.Title = body.Title
	}
	training.Description = body.Description
	training.IsActive = body.IsActive

	if err := db.Save(&training).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"training": training})
}

// DELETE /trainings/:id (admin)
// Remove também questões, alternativas e tentativas do treinamento.
func DeleteTraining(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	tx := db.Begin()

	var questionIDs []int64
	rows, err := tx.Model(&models.TrainingQuestion{}).
		Where("training_id = ?", id).
		Select("id").Rows()
	if err == nil {
		for rows.Next() {
			var qid int64
			if err := rows.Scan(&qid); err == nil {
				questionIDs = append(questionIDs, qid)
			}
		}
		rows.Close()
	}

	if len(questionIDs) > 0 {
		if err := tx.Delete(&models.TrainingOption{}, "question_id IN (?)", questionIDs).Error; err != nil {
			tx.Rollback()
			RespondError(c, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := tx.Delete(&models.TrainingQuestion{}, "training_id = ?", id).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Delete(&models.TrainingAnswer{},
		"attempt_id IN (SELECT id FROM training_attempts WHERE training_id = ?)", id).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Delete(&models.TrainingAttempt{}, "training_id = ?", id).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := tx.Delete(&models.Training{}, "id = ?", id).Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"status": "deleted"})
}

// POST /training-questions (admin)
func CreateTrainingQuestion(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var question models.TrainingQuestion
	if err := c.Bind(&question); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if question.TrainingID <= 0 || question.Texto == "" {
		RespondError(c, "training_id e texto são obrigatórios", http.StatusBadRequest)
		return
	}
	if err := db.First(&models.Training{}, question.TrainingID).Error; err != nil {
		RespondError(c, "treinamento não encontrado", http.StatusNotFound)
		return
	}

	if err := db.Create(&question).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"question": question})
}

// PUT /training-questions/:id (admin)
func UpdateTrainingQuestion(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body models.TrainingQuestion
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var question models.TrainingQuestion
	if err := db.First(&question, id).Error; err != nil {
		RespondError(c, "questão não encontrada", http.StatusNotFound)
		return
	}

	if body.Texto != "" {
		question.Texto = body.Texto
	}
	if body.Ordem > 0 {
		question.Ordem = body.Ordem
	}

	if err := db.Save(&question).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"question": question})
}

// DELETE /training-questions/:id (admin)
func DeleteTrainingQuestion(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	if err := db.Delete(&models.TrainingOption{}, "question_id = ?", id).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if err := db.Delete(&models.TrainingQuestion{}, "id = ?", id).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"status": "deleted"})
}

// POST /training-options (admin)
// Marcar uma alternativa como correta desmarca as demais da questão: cada
// questão mantém exatamente uma correta.
func CreateTrainingOption(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var option models.TrainingOption
	if err := c.Bind(&option); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if option.QuestionID <= 0 || option.Texto == "" {
		RespondError(c, "question_id e texto são obrigatórios", http.StatusBadRequest)
		return
	}
	if err := db.First(&models.TrainingQuestion{}, option.QuestionID).Error; err != nil {
		RespondError(c, "questão não encontrada", http.StatusNotFound)
		return
	}

	if option.Correta {
		db.Model(&models.TrainingOption{}).
			Where("question_id = ?", option.QuestionID).
			Update("correta", false)
	}

	if err := db.Create(&option).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"option": option})
}

// PUT /training-options/:id (admin)
func UpdateTrainingOption(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body models.TrainingOption
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var option models.TrainingOption
	if err := db.First(&option, id).Error; err != nil {
		RespondError(c, "alternativa não encontrada", http.StatusNotFound)
		return
	}

	if body.Texto != "" {
		option.Texto = body.Texto
	}
	if body.Ordem > 0 {
		option.Ordem = body.Ordem
	}
	if body.Correta && !option.Correta {
		db.Model(&models.TrainingOption{}).
			Where("question_id = ?", option.QuestionID).
			Update("correta", false)
		option.Correta = true
	}

	if err := db.Save(&option).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"option": option})
}

// DELETE /training-options/:id (admin)
func DeleteTrainingOption(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	if err := db.Delete(&models.TrainingOption{}, "id = ?", id).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"status": "deleted"})
}

// POST /trainings/:id/start
func StartTraining(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body StartAttemptBody
	_ = c.Bind(&body)
	if body.UserUID == "" && body.UserEmail == "" {
		if user, ok := GetUserLogged(c); ok {
			body.UserUID = user.UID
			body.UserEmail = user.Email
		}
	}

	var training models.Training
	if err := db.First(&training, id).Error; err != nil {
		RespondError(c, "treinamento não encontrado", http.StatusNotFound)
		return
	}
	if !training.IsActive {
		RespondError(c, "treinamento inativo", http.StatusConflict)
		return
	}

	now := time.Now()
	attempt := models.TrainingAttempt{
		Token:      uuid.NewString(),
		TrainingID: training.ID,
		UserUID:    body.UserUID,
		UserEmail:  body.UserEmail,
		Status:     models.ATTEMPT_STATUS_STARTED,
		StartedAt:  &now,
	}
	if err := db.Create(&attempt).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	RespondSuccess(c, gin.H{"attempt": attempt})
}

// POST /training-attempts/:id/submit
// Calcula o percentual de acertos. Submissão dupla é conflito, não um
// recálculo silencioso.
func SubmitTrainingAttempt(c *gin.Context) {
	id, ok := ParamID(c, "id")
	if !ok {
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var body SubmitAttemptBody
	if err := c.Bind(&body); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	var attempt models.TrainingAttempt
	if err := db.First(&attempt, id).Error; err != nil {
		RespondError(c, ERR_NOT_FOUND, http.StatusNotFound)
		return
	}

	var questions []models.TrainingQuestion
	if err := db.Where("training_id = ?", attempt.TrainingID).Find(&questions).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if len(questions) == 0 {
		RespondError(c, "treinamento sem questões", http.StatusConflict)
		return
	}

	questionSet := make(map[int64]bool, len(questions))
	for _, q := range questions {
		questionSet[q.ID] = true
	}

	// alternativa correta por questão
	correctByQuestion := make(map[int64]int64, len(questions))
	var options []models.TrainingOption
	qids := make([]int64, 0, len(questions))
	for _, q := range questions {
		qids = append(qids, q.ID)
	}
	if err := db.Where("question_id IN (?) AND correta = ?", qids, true).Find(&options).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	for _, o := range options {
		correctByQuestion[o.QuestionID] = o.ID
	}

	correct := 0
	answers := make([]models.TrainingAnswer, 0, len(body.Answers))
	seen := make(map[int64]bool, len(body.Answers))
	for _, a := range body.Answers {
		if !questionSet[a.QuestionID] || seen[a.QuestionID] {
			continue
		}
		seen[a.QuestionID] = true
		hit := correctByQuestion[a.QuestionID] == a.OptionID
		if hit {
			correct++
		}
		answers = append(answers, models.TrainingAnswer{
			AttemptID:  attempt.ID,
			QuestionID: a.QuestionID,
			OptionID:   a.OptionID,
			Correct:    hit,
		})
	}

	score := 100 * float64(correct) / float64(len(questions))

	now := time.Now()
	res := db.Model(&models.TrainingAttempt{}).
		Where("id = ? AND status = ?", id, models.ATTEMPT_STATUS_STARTED).
		Updates(map[string]any{
			"status":      models.ATTEMPT_STATUS_SUBMITTED,
			"score":       score,
			"finished_at": &now,
		})
	if res.Error != nil {
		RespondError(c, res.Error.Error(), http.StatusBadRequest)
		return
	}
	if res.RowsAffected == 0 {
		RespondError(c, ERR_ALREADY_PROCESSED, http.StatusConflict)
		return
	}

	for i := range answers {
		db.Create(&answers[i])
	}

	RespondSuccess(c, gin.H{
		"score":   score,
		"correct": correct,
		"total":   len(questions),
	})
}

// GET /trainings/export (admin)
// Exporta as tentativas em CSV.
func ExportTrainingAttempts(c *gin.Context) {
	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	var attempts []models.TrainingAttempt
	if err := db.Order("id asc").Find(&attempts).Error; err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}

	titles := make(map[int64]string)
	var trainings []models.Training
	if err := db.Find(&trainings).Error; err == nil {
		for _, t := range trainings {
			titles[t.ID] = t.Title
		}
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="treinamentos.csv"`)

	w := csv.NewWriter(c.Writer)
	defer w.Flush()

	w.Write([]string{"attempt_id", "treinamento", "usuario", "email", "status", "score", "finalizado_em"})
	for _, a := range attempts {
		finished := ""
		if a.FinishedAt != nil {
			finished = a.FinishedAt.Format(time.RFC3339)
		}
		w.Write([]string{
			strconv.FormatInt(a.ID, 10),
			titles[a.TrainingID],
			a.UserUID,
			a.UserEmail,
			a.Status,
			strconv.FormatFloat(a.Score, 'f', 1, 64),
			finished,
		})
	}
}
