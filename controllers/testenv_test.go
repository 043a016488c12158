package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"pecas/config"
	"pecas/controllers"
	dbpkg "pecas/db"
	"pecas/models"
	"pecas/router"
	"pecas/tools"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

const testSecret = "segredo-de-teste"

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("sqlite em memória: %v", err)
	}
	// uma conexão só: cada conexão nova do pool abriria um banco vazio
	db.DB().SetMaxOpenConns(1)
	db.LogMode(false)
	t.Cleanup(func() { db.Close() })

	dbpkg.AutoMigrate(db)

	var cfg config.Configuration
	cfg.UploadsDir = t.TempDir()
	cfg.Security.JwtSecret = testSecret
	cfg.Security.TokenValidHours = 1

	controllers.SetConfigurations(cfg)
	controllers.SetIdentity(tools.LocalIdentity{Secret: testSecret})

	r := gin.New()
	r.Use(dbpkg.SetDBtoContext(db))
	router.Initialize(r, cfg)

	return &testEnv{router: r, db: db}
}

// seedUser cria o espelho local e devolve um token válido para ele.
func (e *testEnv) seedUser(t *testing.T, uid, email, role string) string {
	t.Helper()

	hash, err := tools.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := models.User{UID: uid, Email: email, Name: uid, Role: role, PasswordHash: hash}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("criando usuário %s: %v", uid, err)
	}

	token, err := tools.SignToken(testSecret, uid, email, 1)
	if err != nil {
		t.Fatalf("emitindo token: %v", err)
	}
	return token
}

func (e *testEnv) seedPeca(t *testing.T, codigo string, qty int64) models.Peca {
	t.Helper()
	p := models.Peca{
		Nome:       "Ventoinha",
		Marca:      "ACME",
		Modelo:     "V2",
		Codigo:     codigo,
		Quantidade: qty,
		EstoqueMin: 1,
		EstoqueMax: 50,
	}
	if err := e.db.Create(&p).Error; err != nil {
		t.Fatalf("criando peça %s: %v", codigo, err)
	}
	return p
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decodificando resposta %q: %v", w.Body.String(), err)
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, w, &body)
	return body.Error
}

func (e *testEnv) pecaQty(t *testing.T, id int64) int64 {
	t.Helper()
	var p models.Peca
	if err := e.db.First(&p, id).Error; err != nil {
		t.Fatalf("lendo peça %d: %v", id, err)
	}
	return p.Quantidade
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, esperado %d (body: %s)", w.Code, want, w.Body.String())
	}
}
