package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"pecas/models"
)

func TestCreatePecaAndDuplicateCodigo(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "adm-1", "adm1@oficina.com", models.USER_ROLE_ADMIN)

	w := env.do(t, http.MethodPost, "/api/pecas", admin, map[string]any{
		"nome":       "Compressor",
		"marca":      "ACME",
		"codigo":     "C-200",
		"quantidade": 5,
	})
	requireStatus(t, w, http.StatusOK)

	var created struct {
		Peca models.Peca `json:"peca"`
	}
	decode(t, w, &created)
	if created.Peca.ID == 0 || created.Peca.Quantidade != 5 {
		t.Fatalf("peça criada = %+v", created.Peca)
	}

	w = env.do(t, http.MethodPost, "/api/pecas", admin, map[string]any{
		"nome":   "Compressor clone",
		"codigo": "C-200",
	})
	requireStatus(t, w, http.StatusConflict)
}

func TestCreatePecaMissingFields(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "adm-1", "adm1@oficina.com", models.USER_ROLE_ADMIN)

	w := env.do(t, http.MethodPost, "/api/pecas", admin, map[string]any{
		"marca": "ACME",
	})
	requireStatus(t, w, http.StatusBadRequest)
	if msg := errorCode(t, w); msg != "Faltando campo nome" {
		t.Fatalf("mensagem = %q", msg)
	}
}

func TestUpdatePecaAllowsZeroingStock(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "adm-1", "adm1@oficina.com", models.USER_ROLE_ADMIN)
	peca := env.seedPeca(t, "P-001", 5)

	// zerar quantidade e mínimo via JSON deve valer
	w := env.do(t, http.MethodPut, fmt.Sprintf("/api/pecas/%d", peca.ID), admin, map[string]any{
		"quantidade": 0,
		"estoqueMin": 0,
	})
	requireStatus(t, w, http.StatusOK)

	var got models.Peca
	env.db.First(&got, peca.ID)
	if got.Quantidade != 0 || got.EstoqueMin != 0 {
		t.Fatalf("peça = %+v, esperado quantidade e mínimo zerados", got)
	}

	// campos omitidos não mudam
	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/pecas/%d", peca.ID), admin, map[string]any{
		"nome": "Ventoinha nova",
	})
	requireStatus(t, w, http.StatusOK)
	env.db.First(&got, peca.ID)
	if got.Quantidade != 0 || got.Nome != "Ventoinha nova" {
		t.Fatalf("peça = %+v, esperado só o nome alterado", got)
	}
}

func TestDeletePecaBlockedByOpenRequests(t *testing.T) {
	env := newTestEnv(t)
	tech := env.seedUser(t, "tec-1", "tec1@oficina.com", models.USER_ROLE_TECNICO)
	admin := env.seedUser(t, "adm-1", "adm1@oficina.com", models.USER_ROLE_ADMIN)
	peca := env.seedPeca(t, "P-001", 10)

	w := env.do(t, http.MethodPost, "/api/separation-requests", tech, map[string]any{
		"pecaId":        peca.ID,
		"qty":           1,
		"technicianUid": "tec-1",
	})
	requireStatus(t, w, http.StatusOK)
	var created struct {
		Request models.SeparationRequest `json:"request"`
	}
	decode(t, w, &created)

	path := fmt.Sprintf("/api/pecas/%d", peca.ID)
	w = env.do(t, http.MethodDelete, path, admin, nil)
	requireStatus(t, w, http.StatusConflict)

	// depois de rejeitar o pedido a exclusão passa
	w = env.do(t, http.MethodPost,
		fmt.Sprintf("/api/separation-requests/%d/reject", created.Request.ID),
		admin, map[string]any{"rejectedBy": "adm-1"})
	requireStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodDelete, path, admin, nil)
	requireStatus(t, w, http.StatusOK)
}

func TestEstoqueCarroIsolation(t *testing.T) {
	env := newTestEnv(t)
	tech := env.seedUser(t, "tec-1", "tec1@oficina.com", models.USER_ROLE_TECNICO)
	other := env.seedUser(t, "tec-2", "tec2@oficina.com", models.USER_ROLE_TECNICO)
	admin := env.seedUser(t, "adm-1", "adm1@oficina.com", models.USER_ROLE_ADMIN)

	w := env.do(t, http.MethodPost, "/api/estoque-carro", tech, map[string]any{
		"ownerUid":   "tec-1",
		"nome":       "Correia",
		"codigo":     "B-10",
		"quantidade": 2,
	})
	requireStatus(t, w, http.StatusOK)

	// técnico não enxerga (nem cria em) carro alheio
	w = env.do(t, http.MethodGet, "/api/estoque-carro?ownerUid=tec-1", other, nil)
	requireStatus(t, w, http.StatusForbidden)

	w = env.do(t, http.MethodPost, "/api/estoque-carro", other, map[string]any{
		"ownerUid": "tec-1",
		"nome":     "Correia",
		"codigo":   "B-10",
	})
	requireStatus(t, w, http.StatusForbidden)

	// admin enxerga qualquer carro
	w = env.do(t, http.MethodGet, "/api/estoque-carro?ownerUid=tec-1", admin, nil)
	requireStatus(t, w, http.StatusOK)
	var list struct {
		Items []models.CarroItem `json:"items"`
	}
	decode(t, w, &list)
	if len(list.Items) != 1 || list.Items[0].Codigo != "B-10" {
		t.Fatalf("itens = %+v", list.Items)
	}
}
