package worker

// receipt_worker.go
// Renders the PDF receipt for a completed sale and mails it to the customer.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AssembleOrg/mistica-backend/internal/infra"
	"github.com/AssembleOrg/mistica-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	SaleID  string `json:"sale_id"`
	ToEmail string `json:"to_email"`
}

// ReceiptWorker processes receipt jobs from QueueReceipt.
type ReceiptWorker struct {
	sales        repository.SaleRepository
	renderer     *infra.ReceiptRenderer
	mailer       *infra.Mailer
	businessName string
}

func NewReceiptWorker(sales repository.SaleRepository, renderer *infra.ReceiptRenderer, mailer *infra.Mailer, businessName string) *ReceiptWorker {
	return &ReceiptWorker{sales: sales, renderer: renderer, mailer: mailer, businessName: businessName}
}

func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("receipt_worker: empty to_email — skipping")
		return
	}

	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		log.Error().Str("sale_id", payload.SaleID).Msg("receipt_worker: invalid sale id")
		return
	}
	sale, err := w.sales.FindByID(ctx, saleID)
	if err != nil {
		log.Error().Err(err).Str("sale_id", payload.SaleID).Msg("receipt_worker: sale not found")
		return
	}

	pdfPath, err := w.renderer.Render(sale)
	if err != nil {
		log.Error().Err(err).Str("sale_id", payload.SaleID).Msg("receipt_worker: render failed")
		return
	}

	subject := fmt.Sprintf("%s — Comprobante %s", w.businessName, sale.SaleNumber)
	body := fmt.Sprintf("Gracias por su compra.\n\nAdjuntamos el comprobante %s por $%s.",
		sale.SaleNumber, sale.Total.StringFixed(2))
	if err := w.mailer.SendReceipt(payload.ToEmail, subject, body, pdfPath); err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("receipt_worker: failed to send email")
		return
	}
	log.Info().Str("to", payload.ToEmail).Str("sale", sale.SaleNumber).Msg("receipt_worker: receipt sent")
}
