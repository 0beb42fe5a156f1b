package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"tillpos/internal/infra"
	"tillpos/internal/repository"
)

// ReceiptWorker renders a settled sale to PDF and mails it to the customer.
type ReceiptWorker struct {
	saleRepo    repository.SaleRepository
	mailer      *infra.Mailer
	storeName   string
	storagePath string
}

func NewReceiptWorker(saleRepo repository.SaleRepository, mailer *infra.Mailer, storeName, storagePath string) *ReceiptWorker {
	return &ReceiptWorker{
		saleRepo:    saleRepo,
		mailer:      mailer,
		storeName:   storeName,
		storagePath: storagePath,
	}
}

func (w *ReceiptWorker) Handle(ctx context.Context, payload json.RawMessage) error {
	var job ReceiptJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("receipt: bad payload: %w", err)
	}

	saleID, err := uuid.Parse(job.SaleID)
	if err != nil {
		return fmt.Errorf("receipt: bad sale id %q: %w", job.SaleID, err)
	}
	sale, err := w.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return fmt.Errorf("receipt: load sale %s: %w", job.SaleID, err)
	}

	pdfPath, err := infra.GenerateReceiptPDF(sale, w.storeName, w.storagePath)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s — receipt #%d", w.storeName, sale.TicketNumber)
	body := fmt.Sprintf("Thank you for your purchase. Total: %s", sale.Total)
	if err := w.mailer.SendReceipt(job.Email, subject, body, pdfPath); err != nil {
		return fmt.Errorf("receipt: send to %s: %w", job.Email, err)
	}

	log.Info().Str("sale_id", job.SaleID).Str("email", job.Email).Msg("receipt e-mailed")
	return nil
}
