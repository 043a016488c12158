package workers

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"pecas/config"
	"pecas/models"

	"github.com/jinzhu/gorm"
)

// StartAlerts starts a loop that scans stock levels and overdue returns.
func StartAlerts(db *gorm.DB, cfg config.Configuration) {
	interval := time.Duration(cfg.Workers.AlertIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 60 * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			ScanLowStock(db)
			ScanOverdueReturns(db, cfg.Workers.ReturnOverdueDays)
		}
	}()
}

// ScanLowStock notifica o canal administrativo sobre peças no mínimo ou abaixo.
// Um alerta só é re-emitido depois que o anterior for lido ou removido.
func ScanLowStock(db *gorm.DB) {
	var pecas []models.Peca
	if err := db.
		Where("estoque_min > 0 AND quantidade <= estoque_min").
		Order("id asc").
		Limit(100).
		Find(&pecas).Error; err != nil {
		log.Printf("alerts worker: low stock query error: %v", err)
		return
	}

	for _, p := range pecas {
		payload, _ := json.Marshal(map[string]any{"pecaId": p.ID, "codigo": p.Codigo})

		// dedupe: já existe alerta aberto para esta peça?
		var count int
		db.Model(&models.Notification{}).
			Where("user_uid = ? AND type = ? AND read = ? AND payload = ?",
				models.NOTIF_CHANNEL_ADMIN, models.NOTIF_TYPE_STOCK, false, string(payload)).
			Count(&count)
		if count > 0 {
			continue
		}

		n := models.Notification{
			UserUID: models.NOTIF_CHANNEL_ADMIN,
			Title:   "Estoque baixo",
			Body:    fmt.Sprintf("%s (%s): %d em estoque, mínimo %d.", p.Nome, p.Codigo, p.Quantidade, p.EstoqueMin),
			Type:    models.NOTIF_TYPE_STOCK,
			Payload: string(payload),
		}
		if err := db.Create(&n).Error; err != nil {
			log.Printf("alerts worker: notify error: %v", err)
		}
	}
}

// ScanOverdueReturns cobra devoluções obrigatórias paradas há mais de
// overdueDays desde a retirada.
func ScanOverdueReturns(db *gorm.DB, overdueDays int) {
	if overdueDays <= 0 {
		overdueDays = 7
	}
	cutoff := time.Now().AddDate(0, 0, -overdueDays)

	var items []models.ReconItem
	if err := db.Model(&models.ReconItem{}).
		Select("recon_items.*").
		Joins("JOIN separation_requests ON separation_requests.id = recon_items.request_id").
		Where("separation_requests.status = ?", models.REQUEST_STATUS_PICKED_UP).
		Where("recon_items.handover_at IS NULL").
		Where("separation_requests.picked_up_at IS NOT NULL AND separation_requests.picked_up_at <= ?", cutoff).
		Limit(100).
		Find(&items).Error; err != nil {
		log.Printf("alerts worker: overdue query error: %v", err)
		return
	}

	for _, item := range items {
		key := item.TechnicianUID
		if key == "" {
			key = item.TechnicianEmail
		}
		if key == "" {
			continue
		}

		payload, _ := json.Marshal(map[string]any{"reconItemId": item.ID, "requestId": item.RequestID})

		var count int
		db.Model(&models.Notification{}).
			Where("user_uid = ? AND type = ? AND read = ? AND payload = ?",
				key, models.NOTIF_TYPE_RECON, false, string(payload)).
			Count(&count)
		if count > 0 {
			continue
		}

		n := models.Notification{
			UserUID: key,
			Title:   "Devolução pendente",
			Body:    fmt.Sprintf("A peça do pedido #%d aguarda devolução há mais de %d dias.", item.RequestID, overdueDays),
			Type:    models.NOTIF_TYPE_RECON,
			Payload: string(payload),
		}
		if err := db.Create(&n).Error; err != nil {
			log.Printf("alerts worker: notify error: %v", err)
		}
	}
}
