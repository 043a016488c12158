package controllers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"pecas/models"
)

func seedTraining(t *testing.T, env *testEnv, admin string) (models.Training, []models.TrainingQuestion, map[int64]int64) {
	t.Helper()

	w := env.do(t, http.MethodPost, "/api/trainings", admin, map[string]any{
		"title":       "Normas de segurança",
		"description": "Procedimentos da oficina",
	})
	requireStatus(t, w, http.StatusOK)
	var created struct {
		Training models.Training `json:"training"`
	}
	decode(t, w, &created)

	questions := make([]models.TrainingQuestion, 0, 2)
	correct := make(map[int64]int64)

	for i := 1; i <= 2; i++ {
		w = env.do(t, http.MethodPost, "/api/training-questions", admin, map[string]any{
			"training_id": created.Training.ID,
			"ordem":       i,
			"texto":       fmt.Sprintf("Questão %d", i),
		})
		requireStatus(t, w, http.StatusOK)
		var q struct {
			Question models.TrainingQuestion `json:"question"`
		}
		decode(t, w, &q)
		questions = append(questions, q.Question)

		for j := 1; j <= 3; j++ {
			w = env.do(t, http.MethodPost, "/api/training-options", admin, map[string]any{
				"question_id": q.Question.ID,
				"ordem":       j,
				"texto":       fmt.Sprintf("Alternativa %d", j),
				"correta":     j == 2,
			})
			requireStatus(t, w, http.StatusOK)
			var o struct {
				Option models.TrainingOption `json:"option"`
			}
			decode(t, w, &o)
			if o.Option.Correta {
				correct[q.Question.ID] = o.Option.ID
			}
		}
	}

	return created.Training, questions, correct
}

func startAttempt(t *testing.T, env *testEnv, token string, trainingID int64) models.TrainingAttempt {
	t.Helper()
	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/trainings/%d/start", trainingID), token, nil)
	requireStatus(t, w, http.StatusOK)
	var resp struct {
		Attempt models.TrainingAttempt `json:"attempt"`
	}
	decode(t, w, &resp)
	if resp.Attempt.Token == "" {
		t.Fatal("tentativa sem token")
	}
	return resp.Attempt
}

func TestTrainingScoring(t *testing.T) {
	env := newTestEnv(t)
	tech := env.seedUser(t, "tec-1", "tec1@oficina.com", models.USER_ROLE_TECNICO)
	admin := env.seedUser(t, "adm-1", "adm1@oficina.com", models.USER_ROLE_ADMIN)

	training, questions, correct := seedTraining(t, env, admin)
	attempt := startAttempt(t, env, tech, training.ID)

	// acerta a primeira, erra a segunda
	var wrongOption models.TrainingOption
	env.db.Where("question_id = ? AND correta = ?", questions[1].ID, false).First(&wrongOption)

	w := env.do(t, http.MethodPost,
		fmt.Sprintf("/api/training-attempts/%d/submit", attempt.ID),
		tech, map[string]any{
			"answers": []map[string]any{
				{"question_id": questions[0].ID, "option_id": correct[questions[0].ID]},
				{"question_id": questions[1].ID, "option_id": wrongOption.ID},
			},
		})
	requireStatus(t, w, http.StatusOK)

	var result struct {
		Score   float64 `json:"score"`
		Correct int     `json:"correct"`
		Total   int     `json:"total"`
	}
	decode(t, w, &result)
	if result.Score != 50 || result.Correct != 1 || result.Total != 2 {
		t.Fatalf("resultado = %+v, esperado 50%% (1/2)", result)
	}

	var saved models.TrainingAttempt
	env.db.First(&saved, attempt.ID)
	if saved.Status != models.ATTEMPT_STATUS_SUBMITTED || saved.Score != 50 {
		t.Fatalf("tentativa salva = %+v, esperado submitted com score 50", saved)
	}

	var answers int
	env.db.Model(&models.TrainingAnswer{}).Where("attempt_id = ?", attempt.ID).Count(&answers)
	if answers != 2 {
		t.Fatalf("respostas gravadas = %d, esperado 2", answers)
	}
}

func TestTrainingDoubleSubmitConflicts(t *testing.T) {
	env := newTestEnv(t)
	tech := env.seedUser(t, "tec-1", "tec1@oficina.com", models.USER_ROLE_TECNICO)
	admin := env.seedUser(t, "adm-1", "adm1@oficina.com", models.USER_ROLE_ADMIN)

	training, questions, correct := seedTraining(t, env, admin)
	attempt := startAttempt(t, env, tech, training.ID)

	body := map[string]any{
		"answers": []map[string]any{
			{"question_id": questions[0].ID, "option_id": correct[questions[0].ID]},
		},
	}
	path := fmt.Sprintf("/api/training-attempts/%d/submit", attempt.ID)

	w := env.do(t, http.MethodPost, path, tech, body)
	requireStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodPost, path, tech, body)
	requireStatus(t, w, http.StatusConflict)
	if code := errorCode(t, w); code != "ALREADY_PROCESSED" {
		t.Fatalf("error = %q, esperado ALREADY_PROCESSED", code)
	}
}

func TestOptionExactlyOneCorrect(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "adm-1", "adm1@oficina.com", models.USER_ROLE_ADMIN)

	training, questions, _ := seedTraining(t, env, admin)
	_ = training

	// promover outra alternativa desmarca a correta anterior
	var another models.TrainingOption
	env.db.Where("question_id = ? AND correta = ?", questions[0].ID, false).First(&another)

	w := env.do(t, http.MethodPut,
		fmt.Sprintf("/api/training-options/%d", another.ID),
		admin, map[string]any{"correta": true})
	requireStatus(t, w, http.StatusOK)

	var count int
	env.db.Model(&models.TrainingOption{}).
		Where("question_id = ? AND correta = ?", questions[0].ID, true).
		Count(&count)
	if count != 1 {
		t.Fatalf("corretas na questão = %d, esperado exatamente 1", count)
	}

	var promoted models.TrainingOption
	env.db.First(&promoted, another.ID)
	if !promoted.Correta {
		t.Fatal("a alternativa promovida deveria ser a correta")
	}
}

func TestTrainingExportCSV(t *testing.T) {
	env := newTestEnv(t)
	tech := env.seedUser(t, "tec-1", "tec1@oficina.com", models.USER_ROLE_TECNICO)
	admin := env.seedUser(t, "adm-1", "adm1@oficina.com", models.USER_ROLE_ADMIN)

	training, questions, correct := seedTraining(t, env, admin)
	attempt := startAttempt(t, env, tech, training.ID)

	w := env.do(t, http.MethodPost,
		fmt.Sprintf("/api/training-attempts/%d/submit", attempt.ID),
		tech, map[string]any{
			"answers": []map[string]any{
				{"question_id": questions[0].ID, "option_id": correct[questions[0].ID]},
				{"question_id": questions[1].ID, "option_id": correct[questions[1].ID]},
			},
		})
	requireStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodGet, "/api/trainings/export", admin, nil)
	requireStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("Content-Type = %q, esperado text/csv", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Normas de segurança") || !strings.Contains(body, "100.0") {
		t.Fatalf("CSV sem os dados esperados:\n%s", body)
	}
}
