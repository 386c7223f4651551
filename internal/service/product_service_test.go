package service

import (
	"context"
	"testing"

	"github.com/AssembleOrg/mistica-backend/internal/apierror"
	"github.com/AssembleOrg/mistica-backend/internal/dto"
	"github.com/AssembleOrg/mistica-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductCreateComputesMargin(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo)

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:      "Cafe en grano",
		Barcode:   "779123",
		Category:  "almacen",
		Price:     dec("150"),
		CostPrice: dec("100"),
		Stock:     20,
	})
	require.NoError(t, err)

	assert.True(t, resp.ProfitMargin.Equal(dec("50")), "margin %s", resp.ProfitMargin)
	assert.Equal(t, model.ProductActive, resp.Status)
	assert.Equal(t, "unidad", resp.UnitOfMeasure)
}

func TestProductCreateZeroStockIsOutOfStock(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo)

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:      "Yerba",
		Barcode:   "779456",
		Category:  "almacen",
		Price:     dec("120"),
		CostPrice: dec("80"),
		Stock:     0,
	})
	require.NoError(t, err)
	assert.Equal(t, model.ProductOutOfStock, resp.Status)
}

func TestProductCreateBarcodeConflict(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo)
	repo.add(&model.Product{Name: "Azucar", Barcode: "779789", Price: dec("90"), CostPrice: dec("60")})

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:      "Azucar light",
		Barcode:   "779789",
		Category:  "almacen",
		Price:     dec("110"),
		CostPrice: dec("70"),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestProductCreatePriceMustExceedCost(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo)

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:      "Harina",
		Barcode:   "779000",
		Category:  "almacen",
		Price:     dec("100"),
		CostPrice: dec("100"),
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInvalidInput))
}

func TestProductAdjustStockAdd(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo)
	p := repo.add(&model.Product{Name: "Leche", Barcode: "1", Price: dec("50"), CostPrice: dec("30"), Stock: 0})

	resp, err := svc.AdjustStock(context.Background(), p.ID, dto.AdjustStockRequest{Quantity: 12, Direction: "add"})
	require.NoError(t, err)

	assert.Equal(t, 12, resp.Stock)
	assert.Equal(t, model.ProductActive, resp.Status)
}

func TestProductAdjustStockSubtractToZero(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo)
	p := repo.add(&model.Product{Name: "Pan", Barcode: "2", Price: dec("40"), CostPrice: dec("20"), Stock: 5})

	resp, err := svc.AdjustStock(context.Background(), p.ID, dto.AdjustStockRequest{Quantity: 5, Direction: "subtract"})
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Stock)
	assert.Equal(t, model.ProductOutOfStock, resp.Status)
}

func TestProductAdjustStockInsufficient(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo)
	p := repo.add(&model.Product{Name: "Queso", Barcode: "3", Price: dec("200"), CostPrice: dec("120"), Stock: 3})

	_, err := svc.AdjustStock(context.Background(), p.ID, dto.AdjustStockRequest{Quantity: 4, Direction: "subtract"})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindInsufficient))
	assert.Equal(t, 3, repo.products[p.ID].Stock)
}

func TestProductAdjustStockNotFound(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo)

	_, err := svc.AdjustStock(context.Background(), uuid.New(), dto.AdjustStockRequest{Quantity: 1, Direction: "add"})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestProductListLowStock(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo)
	repo.add(&model.Product{Name: "Bajo", Barcode: "4", Price: dec("10"), CostPrice: dec("5"), Stock: model.LowStockThreshold - 1})
	repo.add(&model.Product{Name: "Alto", Barcode: "5", Price: dec("10"), CostPrice: dec("5"), Stock: model.LowStockThreshold + 5})

	low, err := svc.ListLowStock(context.Background())
	require.NoError(t, err)

	require.Len(t, low, 1)
	assert.Equal(t, "Bajo", low[0].Name)
}

func TestProductUpdateRecomputesMargin(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo)
	p := repo.add(&model.Product{Name: "Miel", Barcode: "6", Price: dec("150"), CostPrice: dec("100"), ProfitMargin: dec("50"), Stock: 4})

	newPrice := dec("200")
	resp, err := svc.Update(context.Background(), p.ID, dto.UpdateProductRequest{Price: &newPrice})
	require.NoError(t, err)

	assert.True(t, resp.Price.Equal(dec("200")))
	assert.True(t, resp.ProfitMargin.Equal(dec("100")), "margin %s", resp.ProfitMargin)
}

func TestProductValidateAndPriceUsesCallerUnitPrice(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo)
	p := repo.add(&model.Product{Name: "Budin", Barcode: "7", Price: dec("100"), CostPrice: dec("60"), Stock: 10})

	// The line is priced below catalog — a manual discount.
	items, subtotal, err := svc.ValidateAndPrice(nil, []dto.SaleItemRequest{
		{ProductID: p.ID.String(), Quantity: 3, UnitPrice: dec("90")},
	})
	require.NoError(t, err)

	require.Len(t, items, 1)
	assert.Equal(t, "Budin", items[0].ProductName)
	assert.True(t, items[0].Subtotal.Equal(dec("270")))
	assert.True(t, subtotal.Equal(dec("270")))
	// Validation does not touch stock.
	assert.Equal(t, 10, repo.products[p.ID].Stock)
}

func TestProductCreditStockSkipsMissingProducts(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo)
	p := repo.add(&model.Product{Name: "Scon", Barcode: "8", Price: dec("30"), CostPrice: dec("15"), Stock: 2})

	err := svc.CreditStock(nil, []model.SaleItem{
		{ProductID: p.ID, Quantity: 3},
		{ProductID: uuid.New(), Quantity: 5}, // deleted after the sale
	})
	require.NoError(t, err)
	assert.Equal(t, 5, repo.products[p.ID].Stock)
}
