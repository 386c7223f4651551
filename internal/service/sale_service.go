package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AssembleOrg/mistica-backend/internal/apierror"
	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/model"
	"github.com/AssembleOrg/mistica-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// ReceiptNotifier enqueues receipt generation after a sale commits.
// Implemented by the worker dispatcher; nil disables receipts.
type ReceiptNotifier interface {
	EnqueueReceipt(ctx context.Context, saleID uuid.UUID, email string)
}

// ReceiptRenderer produces the receipt PDF for a sale and returns its path.
type ReceiptRenderer interface {
	Render(sale *model.Sale) (string, error)
}

// SaleService registers, adjusts and reverses sales. Every operation that
// touches stock or prepaid credit runs in a single database transaction.
type SaleService interface {
	Create(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, q dto.PageQuery) (*dto.Paginated[dto.SaleResponse], error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateSaleRequest) (*dto.SaleResponse, error)
	// Remove soft-deletes the sale, restoring stock and prepaid credit
	// unconditionally.
	Remove(ctx context.Context, id uuid.UUID) error
	Daily(ctx context.Context, q dto.DailySalesQuery) (*dto.DailySalesResponse, error)
	// Receipt renders (or re-renders) the sale's PDF receipt and returns its
	// filesystem path.
	Receipt(ctx context.Context, id uuid.UUID) (string, error)
}

type saleService struct {
	sales    repository.SaleRepository
	products ProductService
	prepaids PrepaidService
	clients  repository.ClientRepository
	loc      *time.Location
	notifier ReceiptNotifier
	receipts ReceiptRenderer
}

func NewSaleService(
	sales repository.SaleRepository,
	products ProductService,
	prepaids PrepaidService,
	clients repository.ClientRepository,
	loc *time.Location,
	notifier ReceiptNotifier,
	receipts ReceiptRenderer,
) SaleService {
	if loc == nil {
		loc = time.UTC
	}
	return &saleService{
		sales:    sales,
		products: products,
		prepaids: prepaids,
		clients:  clients,
		loc:      loc,
		notifier: notifier,
		receipts: receipts,
	}
}

// saleNumberPrefix builds the per-day number prefix, e.g. "V-2025-0901-".
func saleNumberPrefix(t time.Time) string {
	return fmt.Sprintf("V-%d-%02d%02d-", t.Year(), int(t.Month()), t.Day())
}

func (s *saleService) Create(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	var clientID *uuid.UUID
	if req.ClientID != nil {
		id, err := uuid.Parse(*req.ClientID)
		if err != nil {
			return nil, apierror.InvalidInput("clientId inválido")
		}
		if _, err := s.clients.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NotFound("Cliente", id.String())
			}
			return nil, apierror.OperationFailed("Error al registrar la venta", err)
		}
		clientID = &id
	}

	var sale *model.Sale
	err := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		items, subtotal, err := s.products.ValidateAndPrice(tx, req.Items)
		if err != nil {
			return err
		}

		prefix := saleNumberPrefix(time.Now().In(s.loc))
		seq, err := s.sales.NextSequenceForPrefix(tx, prefix)
		if err != nil {
			return apierror.OperationFailed("Error al generar el número de venta", err)
		}
		number := fmt.Sprintf("%s%03d", prefix, seq)

		taxAmount := subtotal.Mul(req.Tax).Div(hundred)
		discountAmount := subtotal.Mul(req.Discount).Div(hundred)
		payable := subtotal.Add(taxAmount).Sub(discountAmount)

		prepaidUsed := req.PrepaidUsed
		var prepaidID *uuid.UUID
		switch {
		case req.ConsumedPrepaid && req.PrepaidID != nil:
			// Targeted consumption: the record is consumed whole and any
			// failure aborts the sale.
			pid, err := uuid.Parse(*req.PrepaidID)
			if err != nil {
				return apierror.InvalidInput("prepaidId inválido")
			}
			consumed, err := s.prepaids.ConsumeSpecific(tx, pid)
			if err != nil {
				return err
			}
			prepaidUsed = consumed
			prepaidID = &pid
		case clientID != nil && req.PaymentMethod == model.PaymentCash && req.PrepaidUsed.IsZero():
			// Automatic settlement: cash sales for a known client draw down
			// pending credit oldest-first. Insufficient credit is fine, the
			// remainder is paid in cash.
			consumed, err := s.prepaids.ConsumeByAmountFIFO(tx, *clientID, payable)
			if err != nil {
				return err
			}
			prepaidUsed = consumed
		}

		if prepaidUsed.GreaterThan(payable) {
			return apierror.InvalidInput("El monto de prepaid excede el total de la venta")
		}

		total := payable.Sub(prepaidUsed)
		if total.IsNegative() {
			total = decimal.Zero
		}

		sale = &model.Sale{
			SaleNumber:    number,
			ClientID:      clientID,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
			Subtotal:      subtotal,
			Tax:           req.Tax,
			Discount:      req.Discount,
			PrepaidUsed:   prepaidUsed,
			PrepaidID:     prepaidID,
			Total:         total,
			PaymentMethod: req.PaymentMethod,
			Status:        model.SalePending,
			Notes:         req.Notes,
			Items:         items,
		}
		if err := s.sales.CreateTx(tx, sale); err != nil {
			return apierror.OperationFailed("Error al registrar la venta", err)
		}

		if err := s.products.DebitStock(tx, sale.Items); err != nil {
			return err
		}

		// The sale completes only once stock is actually debited.
		if err := s.sales.UpdateStatusTx(tx, sale.ID, model.SaleCompleted); err != nil {
			return apierror.OperationFailed("Error al registrar la venta", err)
		}
		sale.Status = model.SaleCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && req.CustomerEmail != nil && *req.CustomerEmail != "" {
		s.notifier.EnqueueReceipt(ctx, sale.ID, *req.CustomerEmail)
	}
	return saleToResponse(sale), nil
}

func (s *saleService) Get(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.findSale(ctx, id)
	if err != nil {
		return nil, err
	}
	return saleToResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, q dto.PageQuery) (*dto.Paginated[dto.SaleResponse], error) {
	q.Normalize()
	sales, total, err := s.sales.List(ctx, q)
	if err != nil {
		return nil, apierror.OperationFailed("Error al listar ventas", err)
	}
	data := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		data = append(data, *saleToResponse(&sales[i]))
	}
	return dto.NewPaginated(data, q.Page, q.Limit, total), nil
}

func (s *saleService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	var updated *model.Sale
	err := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		sale, err := s.findSale(ctx, id)
		if err != nil {
			return err
		}
		if sale.Status == model.SaleCancelled {
			return apierror.StateConflict("La venta ya está cancelada")
		}

		if req.Status != nil && *req.Status == model.SaleCancelled {
			if err := s.cancelTx(tx, sale); err != nil {
				return err
			}
			if req.Notes != nil {
				sale.Notes = req.Notes
			}
			if err := s.sales.SaveTx(tx, sale); err != nil {
				return apierror.OperationFailed("Error al cancelar la venta", err)
			}
			updated = sale
			return nil
		}

		// A completed sale is already settled: stock debited, credit consumed,
		// totals final. The only transition left is the cancellation above.
		if sale.Status == model.SaleCompleted {
			return apierror.StateConflict("La venta ya está completada, solo admite cancelación")
		}

		if req.CustomerName != nil {
			sale.CustomerName = req.CustomerName
		}
		if req.CustomerEmail != nil {
			sale.CustomerEmail = req.CustomerEmail
		}
		if req.CustomerPhone != nil {
			sale.CustomerPhone = req.CustomerPhone
		}
		if req.PaymentMethod != nil {
			sale.PaymentMethod = *req.PaymentMethod
		}
		if req.Notes != nil {
			sale.Notes = req.Notes
		}
		if req.Tax != nil {
			sale.Tax = *req.Tax
		}
		if req.Discount != nil {
			sale.Discount = *req.Discount
		}

		if req.Items != nil {
			// Swap the item set: return the old stock, validate and debit the
			// new one, all inside this transaction.
			if err := s.products.CreditStock(tx, sale.Items); err != nil {
				return err
			}
			items, subtotal, err := s.products.ValidateAndPrice(tx, req.Items)
			if err != nil {
				return err
			}
			if err := s.products.DebitStock(tx, items); err != nil {
				return err
			}
			if err := s.sales.ReplaceItemsTx(tx, sale.ID, items); err != nil {
				return apierror.OperationFailed("Error al actualizar la venta", err)
			}
			sale.Items = items
			sale.Subtotal = subtotal
		}

		taxAmount := sale.Subtotal.Mul(sale.Tax).Div(hundred)
		discountAmount := sale.Subtotal.Mul(sale.Discount).Div(hundred)
		payable := sale.Subtotal.Add(taxAmount).Sub(discountAmount)
		if sale.PrepaidUsed.GreaterThan(payable) {
			return apierror.InvalidInput("El monto de prepaid excede el total de la venta")
		}
		sale.Total = payable.Sub(sale.PrepaidUsed)
		if sale.Total.IsNegative() {
			sale.Total = decimal.Zero
		}

		if req.Status != nil {
			sale.Status = *req.Status
		}
		if err := s.sales.SaveTx(tx, sale); err != nil {
			return apierror.OperationFailed("Error al actualizar la venta", err)
		}
		updated = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saleToResponse(updated), nil
}

// cancelTx reverses a sale's side effects: stock goes back and prepaid credit
// is returned. A targeted prepaid flips back to PENDING in place; credit
// consumed FIFO comes back as a fresh PENDING record.
func (s *saleService) cancelTx(tx *gorm.DB, sale *model.Sale) error {
	if err := s.products.CreditStock(tx, sale.Items); err != nil {
		return err
	}
	switch {
	case sale.PrepaidID != nil:
		if err := s.prepaids.Release(tx, *sale.PrepaidID); err != nil {
			return err
		}
	case sale.PrepaidUsed.GreaterThan(decimal.Zero) && sale.ClientID != nil:
		if err := s.prepaids.Restore(tx, *sale.ClientID, sale.PrepaidUsed); err != nil {
			return err
		}
	}
	sale.Status = model.SaleCancelled
	return nil
}

func (s *saleService) Remove(ctx context.Context, id uuid.UUID) error {
	return runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		sale, err := s.findSale(ctx, id)
		if err != nil {
			return err
		}
		// Deletion always compensates, whatever the sale's status.
		if err := s.products.CreditStock(tx, sale.Items); err != nil {
			return err
		}
		switch {
		case sale.PrepaidID != nil:
			if err := s.prepaids.Release(tx, *sale.PrepaidID); err != nil {
				return err
			}
		case sale.PrepaidUsed.GreaterThan(decimal.Zero) && sale.ClientID != nil:
			if err := s.prepaids.Restore(tx, *sale.ClientID, sale.PrepaidUsed); err != nil {
				return err
			}
		}
		if err := s.sales.SoftDeleteTx(tx, sale.ID); err != nil {
			return apierror.OperationFailed("Error al eliminar la venta", err)
		}
		return nil
	})
}

func (s *saleService) Daily(ctx context.Context, q dto.DailySalesQuery) (*dto.DailySalesResponse, error) {
	loc := s.loc
	if q.Timezone != "" {
		l, err := time.LoadLocation(q.Timezone)
		if err != nil {
			return nil, apierror.InvalidInput(fmt.Sprintf("Zona horaria inválida: %s", q.Timezone))
		}
		loc = l
	}

	day := time.Now().In(loc)
	if q.Date != "" {
		d, err := time.ParseInLocation("2006-01-02", q.Date, loc)
		if err != nil {
			return nil, apierror.InvalidInput(fmt.Sprintf("Fecha inválida: %s", q.Date))
		}
		day = d
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)

	sales, err := s.sales.ListByCreatedRange(ctx, start, end)
	if err != nil {
		return nil, apierror.OperationFailed("Error al consultar las ventas del día", err)
	}

	summary := dto.DailySalesSummary{
		TotalAmount: decimal.Zero,
		TotalByPaymentMethod: map[string]decimal.Decimal{
			model.PaymentCash:     decimal.Zero,
			model.PaymentCard:     decimal.Zero,
			model.PaymentTransfer: decimal.Zero,
		},
		TotalByStatus: map[string]int{},
	}
	rows := make([]dto.DailySaleRow, 0, len(sales))
	for i := range sales {
		sale := &sales[i]
		rows = append(rows, dto.DailySaleRow{
			ID:            sale.ID.String(),
			SaleNumber:    sale.SaleNumber,
			CustomerName:  sale.CustomerName,
			Total:         sale.Total,
			PaymentMethod: sale.PaymentMethod,
			Status:        sale.Status,
			CreatedAt:     sale.CreatedAt.In(loc).Format(time.RFC3339),
		})
		summary.TotalSales++
		summary.TotalByStatus[sale.Status]++
		if sale.Status != model.SaleCancelled {
			summary.TotalAmount = summary.TotalAmount.Add(sale.Total)
			summary.TotalByPaymentMethod[sale.PaymentMethod] = summary.TotalByPaymentMethod[sale.PaymentMethod].Add(sale.Total)
		}
	}

	return &dto.DailySalesResponse{
		Date:     start.Format("2006-01-02"),
		Timezone: loc.String(),
		Sales:    rows,
		Summary:  summary,
	}, nil
}

func (s *saleService) Receipt(ctx context.Context, id uuid.UUID) (string, error) {
	if s.receipts == nil {
		return "", apierror.OperationFailed("Generación de comprobantes deshabilitada", nil)
	}
	sale, err := s.findSale(ctx, id)
	if err != nil {
		return "", err
	}
	path, err := s.receipts.Render(sale)
	if err != nil {
		log.Error().Err(err).Str("saleId", id.String()).Msg("receipt render failed")
		return "", apierror.OperationFailed("Error al generar el comprobante", err)
	}
	return path, nil
}

func (s *saleService) findSale(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Venta", id.String())
		}
		return nil, apierror.OperationFailed("Error al buscar la venta", err)
	}
	return sale, nil
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, dto.SaleItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	resp := &dto.SaleResponse{
		ID:            sale.ID.String(),
		SaleNumber:    sale.SaleNumber,
		CustomerName:  sale.CustomerName,
		CustomerEmail: sale.CustomerEmail,
		CustomerPhone: sale.CustomerPhone,
		Items:         items,
		Subtotal:      sale.Subtotal,
		Tax:           sale.Tax,
		Discount:      sale.Discount,
		PrepaidUsed:   sale.PrepaidUsed,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		Status:        sale.Status,
		Notes:         sale.Notes,
		CreatedAt:     sale.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     sale.UpdatedAt.Format(time.RFC3339),
	}
	if sale.ClientID != nil {
		id := sale.ClientID.String()
		resp.ClientID = &id
	}
	if sale.PrepaidID != nil {
		id := sale.PrepaidID.String()
		resp.PrepaidID = &id
	}
	return resp
}
