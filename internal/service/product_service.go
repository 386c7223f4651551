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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductService owns the product ledger: catalog CRUD plus the stock
// operations the sale settlement runs inside its transaction.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, q dto.PageQuery, category string) (*dto.Paginated[dto.ProductResponse], error)
	ListLowStock(ctx context.Context) ([]dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// AdjustStock credits or debits stock and recomputes the derived status.
	AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error)

	// Settlement hooks — run inside the caller's transaction.
	// ValidateAndPrice resolves every requested line against the catalog,
	// pricing with the caller-supplied unit price, and returns the processed
	// items plus their subtotal.
	ValidateAndPrice(tx *gorm.DB, items []dto.SaleItemRequest) ([]model.SaleItem, decimal.Decimal, error)
	// DebitStock locks each product row, verifies availability and decrements
	// stock; insufficiency fails the whole transaction.
	DebitStock(tx *gorm.DB, items []model.SaleItem) error
	// CreditStock restores stock for the given items (cancellation/deletion).
	CreditStock(tx *gorm.DB, items []model.SaleItem) error
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	exists, err := s.repo.ExistsBarcode(ctx, req.Barcode)
	if err != nil {
		return nil, apierror.OperationFailed("Error al crear el producto", err)
	}
	if exists {
		return nil, apierror.Conflict(fmt.Sprintf("Ya existe un producto con el código de barras %s", req.Barcode))
	}
	if req.Price.LessThanOrEqual(req.CostPrice) {
		return nil, apierror.InvalidInput("El precio de venta debe ser mayor al precio de costo")
	}

	unit := req.UnitOfMeasure
	if unit == "" {
		unit = "unidad"
	}
	p := &model.Product{
		Name:          req.Name,
		Barcode:       req.Barcode,
		Category:      req.Category,
		Price:         req.Price,
		CostPrice:     req.CostPrice,
		ProfitMargin:  profitMargin(req.Price, req.CostPrice),
		Stock:         req.Stock,
		UnitOfMeasure: unit,
		Status:        model.DerivedStatus(req.Stock),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apierror.OperationFailed("Error al crear el producto", err)
	}
	return productToResponse(p), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, q dto.PageQuery, category string) (*dto.Paginated[dto.ProductResponse], error) {
	q.Normalize()
	products, total, err := s.repo.List(ctx, q, category)
	if err != nil {
		return nil, apierror.OperationFailed("Error al listar productos", err)
	}
	data := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, *productToResponse(&products[i]))
	}
	return dto.NewPaginated(data, q.Page, q.Limit, total), nil
}

func (s *productService) ListLowStock(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.ListLowStock(ctx, model.LowStockThreshold)
	if err != nil {
		return nil, apierror.OperationFailed("Error al listar productos con stock bajo", err)
	}
	data := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		data = append(data, *productToResponse(&products[i]))
	}
	return data, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.findProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Barcode != nil && *req.Barcode != p.Barcode {
		exists, err := s.repo.ExistsBarcode(ctx, *req.Barcode)
		if err != nil {
			return nil, apierror.OperationFailed("Error al actualizar el producto", err)
		}
		if exists {
			return nil, apierror.Conflict(fmt.Sprintf("Ya existe un producto con el código de barras %s", *req.Barcode))
		}
		p.Barcode = *req.Barcode
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.UnitOfMeasure != nil {
		p.UnitOfMeasure = *req.UnitOfMeasure
	}

	price, cost := p.Price, p.CostPrice
	if req.Price != nil {
		price = *req.Price
	}
	if req.CostPrice != nil {
		cost = *req.CostPrice
	}
	if req.Price != nil || req.CostPrice != nil {
		if price.LessThanOrEqual(cost) {
			return nil, apierror.InvalidInput("El precio de venta debe ser mayor al precio de costo")
		}
		p.Price = price
		p.CostPrice = cost
		p.ProfitMargin = profitMargin(price, cost)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apierror.OperationFailed("Error al actualizar el producto", err)
	}
	return productToResponse(p), nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findProduct(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return apierror.OperationFailed("Error al eliminar el producto", err)
	}
	return nil
}

func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	var adjusted *model.Product
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("Producto", id.String())
			}
			return apierror.OperationFailed("Error al ajustar el stock", err)
		}

		delta := req.Quantity
		if req.Direction == "subtract" {
			if p.Stock < req.Quantity {
				return apierror.Insufficient(fmt.Sprintf(
					"Stock insuficiente para %s: disponible %d, solicitado %d",
					p.Name, p.Stock, req.Quantity))
			}
			delta = -req.Quantity
		}

		ok, err := s.repo.AdjustStockTx(tx, id, delta)
		if err != nil {
			return apierror.OperationFailed("Error al ajustar el stock", err)
		}
		if !ok {
			// The guarded update lost a race despite the row lock — treat as
			// a concurrent modification and let the caller retry.
			return apierror.StateConflict("El stock fue modificado concurrentemente, reintente")
		}

		p.Stock += delta
		p.Status = model.DerivedStatus(p.Stock)
		if err := s.repo.UpdateStatusTx(tx, id, p.Status); err != nil {
			return apierror.OperationFailed("Error al ajustar el stock", err)
		}
		adjusted = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return productToResponse(adjusted), nil
}

func (s *productService) ValidateAndPrice(tx *gorm.DB, items []dto.SaleItemRequest) ([]model.SaleItem, decimal.Decimal, error) {
	processed := make([]model.SaleItem, 0, len(items))
	subtotal := decimal.Zero

	for _, item := range items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, decimal.Zero, apierror.InvalidInput(fmt.Sprintf("productId inválido: %s", item.ProductID))
		}
		p, err := s.repo.FindByIDForUpdate(tx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, apierror.NotFound("Producto", item.ProductID)
			}
			return nil, decimal.Zero, apierror.OperationFailed("Error al validar los productos de la venta", err)
		}
		if p.Stock < item.Quantity {
			return nil, decimal.Zero, apierror.Insufficient(fmt.Sprintf(
				"Stock insuficiente para %s: disponible %d, solicitado %d",
				p.Name, p.Stock, item.Quantity))
		}

		// The line is priced with the unit price the caller sent, not the
		// catalog price — per-line manual discounting is allowed.
		lineSubtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)
		processed = append(processed, model.SaleItem{
			ProductID:   pid,
			ProductName: p.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    lineSubtotal,
		})
	}
	return processed, subtotal, nil
}

func (s *productService) DebitStock(tx *gorm.DB, items []model.SaleItem) error {
	for _, item := range items {
		p, err := s.repo.FindByIDForUpdate(tx, item.ProductID)
		if err != nil {
			return apierror.OperationFailed("Error al descontar stock", err)
		}
		if p.Stock < item.Quantity {
			return apierror.Insufficient(fmt.Sprintf(
				"Stock insuficiente para %s: disponible %d, solicitado %d",
				p.Name, p.Stock, item.Quantity))
		}
		ok, err := s.repo.AdjustStockTx(tx, item.ProductID, -item.Quantity)
		if err != nil {
			return apierror.OperationFailed("Error al descontar stock", err)
		}
		if !ok {
			return apierror.StateConflict("El stock fue modificado concurrentemente, reintente")
		}
		if err := s.repo.UpdateStatusTx(tx, item.ProductID, model.DerivedStatus(p.Stock-item.Quantity)); err != nil {
			return apierror.OperationFailed("Error al descontar stock", err)
		}
	}
	return nil
}

func (s *productService) CreditStock(tx *gorm.DB, items []model.SaleItem) error {
	for _, item := range items {
		p, err := s.repo.FindByIDForUpdate(tx, item.ProductID)
		if err != nil {
			// A product deleted after the sale still gets its record back in
			// stock terms only if it resolves; otherwise skip silently, the
			// sale reversal must not fail because the catalog moved on.
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return apierror.OperationFailed("Error al restaurar stock", err)
		}
		if _, err := s.repo.AdjustStockTx(tx, item.ProductID, item.Quantity); err != nil {
			return apierror.OperationFailed("Error al restaurar stock", err)
		}
		if err := s.repo.UpdateStatusTx(tx, item.ProductID, model.DerivedStatus(p.Stock+item.Quantity)); err != nil {
			return apierror.OperationFailed("Error al restaurar stock", err)
		}
	}
	return nil
}

func (s *productService) findProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Producto", id.String())
		}
		return nil, apierror.OperationFailed("Error al buscar el producto", err)
	}
	return p, nil
}

func profitMargin(price, cost decimal.Decimal) decimal.Decimal {
	if cost.IsZero() {
		return decimal.Zero
	}
	return price.Sub(cost).Div(cost).Mul(decimal.NewFromInt(100)).Round(2)
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Barcode:       p.Barcode,
		Category:      p.Category,
		Price:         p.Price,
		CostPrice:     p.CostPrice,
		ProfitMargin:  p.ProfitMargin,
		Stock:         p.Stock,
		UnitOfMeasure: p.UnitOfMeasure,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
}
