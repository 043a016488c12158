// Package client implementa o acesso do aplicativo ao servidor de peças.
//
// Transições de estado (aprovar, rejeitar, confirmar retirada, devolver,
// confirmar recebimento, restaurar, descartar) são enviadas uma única vez,
// sem retry: o servidor resolve corridas com UPDATE condicional e o perdedor
// recebe um código de conflito. O chamador aplica a mutação local só depois
// da resposta confirmada e recarrega a lista quando o resultado for ambíguo.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"pecas/models"
)

// Timeouts por tipo de chamada.
const (
	TransitionTimeout = 10 * time.Second
	JSONTimeout       = 20 * time.Second
	MultipartTimeout  = 30 * time.Second
)

// Erros reconhecidos, mapeados dos códigos no campo "error" da resposta.
var (
	ErrAlreadyProcessed  = errors.New("registro já processado por outro usuário")
	ErrNotFound          = errors.New("registro não encontrado")
	ErrHandoverPending   = errors.New("peça ainda não foi devolvida pelo técnico")
	ErrInsufficientStock = errors.New("estoque insuficiente")
	ErrUnauthorized      = errors.New("não autorizado")
)

// APIError preserva a mensagem original do servidor quando o código não é um
// dos reconhecidos acima.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("servidor respondeu %d: %s", e.StatusCode, e.Message)
}

// Client fala com a API do servidor de peças.
type Client struct {
	BaseURL string
	Token   string

	httpClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		httpClient: &http.Client{},
	}
}

// Outcome é o resultado confirmado de uma transição.
type Outcome struct {
	// Status resultante reportado pelo servidor (status do pedido ou
	// recon_status do item, conforme a operação).
	Status string
	// MustReturn indica, na aprovação, se um fluxo de devolução foi criado.
	MustReturn bool
	// HandoverAt é preenchido na devolução.
	HandoverAt *time.Time
}

type errorBody struct {
	Error string `json:"error"`
}

// mapError traduz a resposta de erro para a taxonomia do pacote.
func mapError(status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	switch eb.Error {
	case "ALREADY_PROCESSED":
		return ErrAlreadyProcessed
	case "NOT_FOUND":
		return ErrNotFound
	case "HANDOVER_PENDING":
		return ErrHandoverPending
	case "ESTOQUE_INSUFICIENTE":
		return ErrInsufficientStock
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return ErrUnauthorized
	}
	msg := eb.Error
	if msg == "" {
		msg = string(body)
	}
	return &APIError{StatusCode: status, Message: msg}
}

func (c *Client) do(ctx context.Context, timeout time.Duration, method, path string, body any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, mapError(resp.StatusCode, respBody)
	}
	return respBody, nil
}

// transition envia um POST de transição (sem retry) e extrai o estado
// resultante da resposta.
func (c *Client) transition(ctx context.Context, path string, body any) (Outcome, error) {
	respBody, err := c.do(ctx, TransitionTimeout, http.MethodPost, path, body)
	if err != nil {
		return Outcome{}, err
	}

	var parsed struct {
		Status      string     `json:"status"`
		ReconStatus string     `json:"recon_status"`
		MustReturn  bool       `json:"must_return"`
		HandoverAt  *time.Time `json:"handover_at"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		Status:     parsed.Status,
		MustReturn: parsed.MustReturn,
		HandoverAt: parsed.HandoverAt,
	}
	if out.Status == "" {
		out.Status = parsed.ReconStatus
	}
	return out, nil
}

/************************************************
/**** MARK: TRANSIÇÕES DE PEDIDO ****/
/************************************************/

func (c *Client) CreateRequest(ctx context.Context, pecaID, qty int64, technicianUID, technicianEmail string) (models.SeparationRequest, error) {
	body := map[string]any{
		"pecaId":          pecaID,
		"qty":             qty,
		"technicianUid":   technicianUID,
		"technicianEmail": technicianEmail,
	}
	respBody, err := c.do(ctx, JSONTimeout, http.MethodPost, "/api/separation-requests", body)
	if err != nil {
		return models.SeparationRequest{}, err
	}
	var parsed struct {
		Request models.SeparationRequest `json:"request"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return models.SeparationRequest{}, err
	}
	return parsed.Request, nil
}

func (c *Client) ApproveRequest(ctx context.Context, id int64, approvedBy string, mustReturn bool) (Outcome, error) {
	return c.transition(ctx, fmt.Sprintf("/api/separation-requests/%d/approve", id),
		map[string]any{"approvedBy": approvedBy, "mustReturn": mustReturn})
}

func (c *Client) RejectRequest(ctx context.Context, id int64, rejectedBy string) (Outcome, error) {
	return c.transition(ctx, fmt.Sprintf("/api/separation-requests/%d/reject", id),
		map[string]any{"rejectedBy": rejectedBy})
}

func (c *Client) PickupConfirm(ctx context.Context, id int64, technicianUID, technicianEmail string) (Outcome, error) {
	return c.transition(ctx, fmt.Sprintf("/api/separation-requests/%d/pickup-confirm", id),
		map[string]any{"technicianUid": technicianUID, "technicianEmail": technicianEmail})
}

/************************************************
/**** MARK: TRANSIÇÕES DE DEVOLUÇÃO/RECON ****/
/************************************************/

func (c *Client) HandOver(ctx context.Context, reconItemID int64, technicianUID, technicianEmail string) (Outcome, error) {
	return c.transition(ctx, fmt.Sprintf("/api/returns/%d/hand-over", reconItemID),
		map[string]any{"technicianUid": technicianUID, "technicianEmail": technicianEmail})
}

func (c *Client) ConfirmReceipt(ctx context.Context, reconItemID int64, notes string) (Outcome, error) {
	return c.transition(ctx, fmt.Sprintf("/api/recon-items/%d/confirm-receipt", reconItemID),
		map[string]any{"notes": notes})
}

func (c *Client) Restore(ctx context.Context, reconItemID int64, notes string) (Outcome, error) {
	return c.transition(ctx, fmt.Sprintf("/api/recon-items/%d/restore", reconItemID),
		map[string]any{"notes": notes})
}

func (c *Client) Discard(ctx context.Context, reconItemID int64, reason string) (Outcome, error) {
	return c.transition(ctx, fmt.Sprintf("/api/recon-items/%d/discard", reconItemID),
		map[string]any{"reason": reason})
}

func (c *Client) SaveNotes(ctx context.Context, reconItemID int64, notes string) error {
	_, err := c.do(ctx, TransitionTimeout, http.MethodPost,
		fmt.Sprintf("/api/recon-items/%d/notes", reconItemID),
		map[string]any{"notes": notes})
	return err
}

/************************************************
/**** MARK: LISTAS ****/
/************************************************/

func (c *Client) listRequests(ctx context.Context, path string) ([]models.SeparationRequest, error) {
	respBody, err := c.do(ctx, JSONTimeout, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Requests []models.SeparationRequest `json:"requests"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, err
	}
	return parsed.Requests, nil
}

// PendingRequests lista os pedidos aguardando decisão do admin.
func (c *Client) PendingRequests(ctx context.Context) ([]models.SeparationRequest, error) {
	return c.listRequests(ctx, "/api/separation-requests?status="+models.REQUEST_STATUS_PENDING)
}

// MyPickups lista os pedidos do técnico prontos para retirada.
func (c *Client) MyPickups(ctx context.Context, technicianUID string) ([]models.SeparationRequest, error) {
	q := url.Values{}
	q.Set("status", models.REQUEST_STATUS_READY)
	q.Set("technicianUid", technicianUID)
	return c.listRequests(ctx, "/api/separation-requests/my?"+q.Encode())
}

// MyReturns lista as peças do técnico pendentes de devolução.
func (c *Client) MyReturns(ctx context.Context, technicianUID string) ([]models.ReconItem, error) {
	q := url.Values{}
	q.Set("technicianUid", technicianUID)
	respBody, err := c.do(ctx, JSONTimeout, http.MethodGet, "/api/returns/my?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Items []models.ReconItem `json:"items"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, err
	}
	return parsed.Items, nil
}

// ReconItems lista os itens aguardando análise (ou filtrados por status).
func (c *Client) ReconItems(ctx context.Context, status string) ([]models.ReconItem, error) {
	path := "/api/recon-items"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	respBody, err := c.do(ctx, JSONTimeout, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Items []models.ReconItem `json:"items"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, err
	}
	return parsed.Items, nil
}

// UnreadCount consulta o contador de notificações não lidas.
func (c *Client) UnreadCount(ctx context.Context, userUID string) (int, error) {
	path := "/api/notifications/unread-count"
	if userUID != "" {
		path += "?userUid=" + url.QueryEscape(userUID)
	}
	respBody, err := c.do(ctx, JSONTimeout, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}
	var parsed struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return 0, err
	}
	return parsed.Count, nil
}
