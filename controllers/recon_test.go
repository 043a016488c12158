package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"pecas/models"
)

// runUntilApproved cria um pedido com retorno obrigatório e o aprova,
// devolvendo o pedido e o item de recon recém-criado.
func runUntilApproved(t *testing.T, env *testEnv, tech, admin string, pecaID, qty int64) (models.SeparationRequest, models.ReconItem) {
	t.Helper()

	w := env.do(t, http.MethodPost, "/api/separation-requests", tech, map[string]any{
		"pecaId":        pecaID,
		"qty":           qty,
		"technicianUid": "tec-1",
	})
	requireStatus(t, w, http.StatusOK)
	var created struct {
		Request models.SeparationRequest `json:"request"`
	}
	decode(t, w, &created)

	w = env.do(t, http.MethodPost,
		fmt.Sprintf("/api/separation-requests/%d/approve", created.Request.ID),
		admin, map[string]any{"approvedBy": "adm-1", "mustReturn": true})
	requireStatus(t, w, http.StatusOK)

	var recon models.ReconItem
	if err := env.db.Where("request_id = ?", created.Request.ID).First(&recon).Error; err != nil {
		t.Fatalf("item de recon não criado na aprovação: %v", err)
	}
	return created.Request, recon
}

func TestReconVisibleOnlyAfterHandover(t *testing.T) {
	env := newTestEnv(t)
	tech := env.seedUser(t, "tec-1", "tec1@oficina.com", models.USER_ROLE_TECNICO)
	admin := env.seedUser(t, "adm-1", "adm1@oficina.com", models.USER_ROLE_ADMIN)
	peca := env.seedPeca(t, "P-001", 10)

	req, recon := runUntilApproved(t, env, tech, admin, peca.ID, 2)

	// antes do hand-over a fila de análise fica vazia
	w := env.do(t, http.MethodGet, "/api/recon-items", admin, nil)
	requireStatus(t, w, http.StatusOK)
	var list struct {
		Items []models.ReconItem `json:"items"`
	}
	decode(t, w, &list)
	if len(list.Items) != 0 {
		t.Fatalf("fila de análise = %d itens, esperado 0 antes do hand-over", len(list.Items))
	}

	w = env.do(t, http.MethodPost,
		fmt.Sprintf("/api/separation-requests/%d/pickup-confirm", req.ID),
		tech, map[string]any{"technicianUid": "tec-1"})
	requireStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodPost,
		fmt.Sprintf("/api/returns/%d/hand-over", recon.ID),
		tech, map[string]any{"technicianUid": "tec-1"})
	requireStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodGet, "/api/recon-items", admin, nil)
	requireStatus(t, w, http.StatusOK)
	decode(t, w, &list)
	if len(list.Items) != 1 || list.Items[0].ID != recon.ID {
		t.Fatalf("fila de análise = %+v, esperado só o item %d", list.Items, recon.ID)
	}
}

func TestConfirmReceiptBeforeHandover(t *testing.T) {
	env := newTestEnv(t)
	tech := env.seedUser(t, "tec-1", "tec1@oficina.com", models.USER_ROLE_TECNICO)
	admin := env.seedUser(t, "adm-1", "adm1@oficina.com", models.USER_ROLE_ADMIN)
	peca := env.seedPeca(t, "P-001", 10)

	_, recon := runUntilApproved(t, env, tech, admin, peca.ID, 1)

	w := env.do(t, http.MethodPost,
		fmt.Sprintf("/api/recon-items/%d/confirm-receipt", recon.ID),
		admin, map[string]any{"notes": "chegou?"})
	requireStatus(t, w, http.StatusConflict)
	if code := errorCode(t, w); code != "HANDOVER_PENDING" {
		t.Fatalf("error = %q, esperado HANDOVER_PENDING (distinto de ALREADY_PROCESSED)", code)
	}
}

func TestRestoreAndDiscardAreExclusive(t *testing.T) {
	env := newTestEnv(t)
	tech := env.seedUser(t, "tec-1", "tec1@oficina.com", models.USER_ROLE_TECNICO)
	admin := env.seedUser(t, "adm-1", "adm1@oficina.com", models.USER_ROLE_ADMIN)
	peca := env.seedPeca(t, "P-001", 10)

	req, recon := runUntilApproved(t, env, tech, admin, peca.ID, 1)

	env.do(t, http.MethodPost,
		fmt.Sprintf("/api/separation-requests/%d/pickup-confirm", req.ID),
		tech, map[string]any{"technicianUid": "tec-1"})
	env.do(t, http.MethodPost,
		fmt.Sprintf("/api/returns/%d/hand-over", recon.ID),
		tech, map[string]any{"technicianUid": "tec-1"})

	w := env.do(t, http.MethodPost,
		fmt.Sprintf("/api/recon-items/%d/confirm-receipt", recon.ID),
		admin, nil)
	requireStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodPost,
		fmt.Sprintf("/api/recon-items/%d/restore", recon.ID),
		admin, map[string]any{"notes": "ok"})
	requireStatus(t, w, http.StatusOK)

	// o descarte chega tarde demais
	w = env.do(t, http.MethodPost,
		fmt.Sprintf("/api/recon-items/%d/discard", recon.ID),
		admin, map[string]any{"reason": "danificada"})
	requireStatus(t, w, http.StatusConflict)
	if code := errorCode(t, w); code != "ALREADY_PROCESSED" {
		t.Fatalf("error = %q, esperado ALREADY_PROCESSED", code)
	}

	var item models.ReconItem
	env.db.First(&item, recon.ID)
	if item.ReconStatus != models.RECON_STATUS_RESTORED {
		t.Fatalf("recon_status = %q, esperado restored", item.ReconStatus)
	}
}

func TestHandOverRequiresPickup(t *testing.T) {
	env := newTestEnv(t)
	tech := env.seedUser(t, "tec-1", "tec1@oficina.com", models.USER_ROLE_TECNICO)
	admin := env.seedUser(t, "adm-1", "adm1@oficina.com", models.USER_ROLE_ADMIN)
	peca := env.seedPeca(t, "P-001", 10)

	req, recon := runUntilApproved(t, env, tech, admin, peca.ID, 1)

	// sem pickup-confirm a peça ainda está no estoque central: a devolução
	// não pode entrar
	path := fmt.Sprintf("/api/returns/%d/hand-over", recon.ID)
	w := env.do(t, http.MethodPost, path, tech, map[string]any{"technicianUid": "tec-1"})
	requireStatus(t, w, http.StatusConflict)

	var item models.ReconItem
	env.db.First(&item, recon.ID)
	if item.HandoverAt != nil {
		t.Fatal("handover_at não deveria ter sido gravado")
	}

	// e a fila de análise segue vazia
	w = env.do(t, http.MethodGet, "/api/recon-items", admin, nil)
	requireStatus(t, w, http.StatusOK)
	var list struct {
		Items []models.ReconItem `json:"items"`
	}
	decode(t, w, &list)
	if len(list.Items) != 0 {
		t.Fatalf("fila de análise = %d itens, esperado 0", len(list.Items))
	}

	// depois da retirada a devolução passa
	w = env.do(t, http.MethodPost,
		fmt.Sprintf("/api/separation-requests/%d/pickup-confirm", req.ID),
		tech, map[string]any{"technicianUid": "tec-1"})
	requireStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodPost, path, tech, map[string]any{"technicianUid": "tec-1"})
	requireStatus(t, w, http.StatusOK)
}

func TestHandOverTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	tech := env.seedUser(t, "tec-1", "tec1@oficina.com", models.USER_ROLE_TECNICO)
	admin := env.seedUser(t, "adm-1", "adm1@oficina.com", models.USER_ROLE_ADMIN)
	peca := env.seedPeca(t, "P-001", 10)

	req, recon := runUntilApproved(t, env, tech, admin, peca.ID, 1)
	env.do(t, http.MethodPost,
		fmt.Sprintf("/api/separation-requests/%d/pickup-confirm", req.ID),
		tech, map[string]any{"technicianUid": "tec-1"})

	path := fmt.Sprintf("/api/returns/%d/hand-over", recon.ID)
	w := env.do(t, http.MethodPost, path, tech, map[string]any{"technicianUid": "tec-1"})
	requireStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodPost, path, tech, map[string]any{"technicianUid": "tec-1"})
	requireStatus(t, w, http.StatusConflict)
	if code := errorCode(t, w); code != "ALREADY_PROCESSED" {
		t.Fatalf("error = %q, esperado ALREADY_PROCESSED", code)
	}
}

// Ciclo completo: solicitação de 3 unidades, aprovação com retorno, retirada,
// devolução, recebimento e restauração. No fim o estoque central volta ao
// valor original e as anotações ficam gravadas.
func TestFullReconLifecycle(t *testing.T) {
	env := newTestEnv(t)
	tech := env.seedUser(t, "tec-1", "tec1@oficina.com", models.USER_ROLE_TECNICO)
	admin := env.seedUser(t, "adm-1", "adm1@oficina.com", models.USER_ROLE_ADMIN)
	peca := env.seedPeca(t, "P-100", 10)

	req, recon := runUntilApproved(t, env, tech, admin, peca.ID, 3)

	if got := env.pecaQty(t, peca.ID); got != 7 {
		t.Fatalf("estoque após reserva = %d, esperado 7", got)
	}

	w := env.do(t, http.MethodPost,
		fmt.Sprintf("/api/separation-requests/%d/pickup-confirm", req.ID),
		tech, map[string]any{"technicianUid": "tec-1"})
	requireStatus(t, w, http.StatusOK)

	// o técnico ainda deve a devolução
	w = env.do(t, http.MethodGet, "/api/returns/my?technicianUid=tec-1", tech, nil)
	requireStatus(t, w, http.StatusOK)
	var returns struct {
		Items []models.ReconItem `json:"items"`
	}
	decode(t, w, &returns)
	if len(returns.Items) != 1 {
		t.Fatalf("devoluções pendentes = %d, esperado 1", len(returns.Items))
	}

	w = env.do(t, http.MethodPost,
		fmt.Sprintf("/api/returns/%d/hand-over", recon.ID),
		tech, map[string]any{"technicianUid": "tec-1"})
	requireStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodPost,
		fmt.Sprintf("/api/recon-items/%d/confirm-receipt", recon.ID),
		admin, nil)
	requireStatus(t, w, http.StatusOK)

	w = env.do(t, http.MethodPost,
		fmt.Sprintf("/api/recon-items/%d/restore", recon.ID),
		admin, map[string]any{"notes": "ventoinha recuperada"})
	requireStatus(t, w, http.StatusOK)

	if got := env.pecaQty(t, peca.ID); got != 10 {
		t.Fatalf("estoque final = %d, esperado 10 (restauração devolve as 3)", got)
	}

	var item models.ReconItem
	env.db.First(&item, recon.ID)
	if item.ReconStatus != models.RECON_STATUS_RESTORED {
		t.Fatalf("recon_status = %q, esperado restored", item.ReconStatus)
	}
	if item.Notes != "ventoinha recuperada" {
		t.Fatalf("notes = %q, esperado anotação persistida", item.Notes)
	}
	if item.HandoverAt == nil || item.ReceivedAt == nil || item.ProcessedAt == nil {
		t.Fatalf("timestamps incompletos: %+v", item)
	}
}
