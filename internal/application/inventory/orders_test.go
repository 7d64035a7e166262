package inventory_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-api/internal/application/dto"
	"github.com/jhoicas/kardex-api/internal/domain"
	"github.com/jhoicas/kardex-api/internal/domain/entity"
	domaininv "github.com/jhoicas/kardex-api/internal/domain/inventory"
	"github.com/jhoicas/kardex-api/internal/domain/repository"
)

func TestCreateOrder_TotalesYNumeracion(t *testing.T) {
	f := newFixture(t, domaininv.OversellClampToZero)
	f.addProduct("A", "PAP-001", 0)
	f.addProduct("B", "CEB-001", 0)

	order, err := f.orders.CreateOrder(t.Context(), entity.OrderKindPurchase, dto.CreateOrderRequest{
		CounterpartyID: "prov-1",
		Lines: []dto.OrderLineRequest{
			{ProductID: "A", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.RequireFromString("2.50")},
			{ProductID: "B", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.RequireFromString("1.333")},
		},
	}, testUser)
	require.NoError(t, err)

	assertDec(t, "29", order.Subtotal)
	assertDec(t, "5.22", order.Tax)
	assertDec(t, "34.22", order.Total)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	today := time.Now().Format("20060102")
	assert.Equal(t, fmt.Sprintf("OC-%s-0001", today), order.Number)
	assert.Equal(t, 1, order.Lines[0].Position)
	assert.Equal(t, 2, order.Lines[1].Position)

	second := f.createOrder(t, entity.OrderKindPurchase, line("A", 1))
	assert.Equal(t, fmt.Sprintf("OC-%s-0002", today), second.Number)
	sale := f.createOrder(t, entity.OrderKindSale, line("A", 1))
	assert.Equal(t, fmt.Sprintf("OV-%s-0001", today), sale.Number)

	// Crear la orden no mueve stock.
	assertDec(t, "0", f.stock(t, "A"))
}

func TestCreateOrder_Validaciones(t *testing.T) {
	f := newFixture(t, domaininv.OversellClampToZero)
	f.addProduct("A", "PAP-001", 0)
	f.store.AddProduct(&entity.Product{ID: "X", SKU: "OFF-1", Active: false})

	cases := []struct {
		name string
		kind entity.OrderKind
		req  dto.CreateOrderRequest
		want error
	}{
		{"tipo desconocido", "DEVOLUCION", dto.CreateOrderRequest{CounterpartyID: "c", Lines: []dto.OrderLineRequest{line("A", 1)}}, domain.ErrInvalidInput},
		{"sin líneas", entity.OrderKindSale, dto.CreateOrderRequest{CounterpartyID: "c"}, domain.ErrInvalidInput},
		{"sin contraparte", entity.OrderKindSale, dto.CreateOrderRequest{Lines: []dto.OrderLineRequest{line("A", 1)}}, domain.ErrInvalidInput},
		{"cantidad cero", entity.OrderKindSale, dto.CreateOrderRequest{CounterpartyID: "c", Lines: []dto.OrderLineRequest{line("A", 0)}}, domain.ErrInvalidInput},
		{"cantidad con cuatro decimales", entity.OrderKindSale, dto.CreateOrderRequest{CounterpartyID: "c", Lines: []dto.OrderLineRequest{
			{ProductID: "A", Quantity: decimal.RequireFromString("1.0005"), UnitPrice: decimal.NewFromInt(1)},
		}}, domain.ErrInvalidQuantity},
		{"producto repetido", entity.OrderKindSale, dto.CreateOrderRequest{CounterpartyID: "c", Lines: []dto.OrderLineRequest{line("A", 1), line("A", 2)}}, domain.ErrDuplicate},
		{"producto inactivo", entity.OrderKindSale, dto.CreateOrderRequest{CounterpartyID: "c", Lines: []dto.OrderLineRequest{line("X", 1)}}, domain.ErrProductNotFound},
		{"producto inexistente", entity.OrderKindSale, dto.CreateOrderRequest{CounterpartyID: "c", Lines: []dto.OrderLineRequest{line("Z", 1)}}, domain.ErrProductNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(t.Context(), tc.kind, tc.req, testUser)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGetOrder_NoEncontrada(t *testing.T) {
	f := newFixture(t, domaininv.OversellClampToZero)
	_, err := f.orders.GetOrder(t.Context(), entity.OrderKindSale, "no-existe")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

// Eliminar una orden aplicada revierte sus asientos y restaura el stock.
func TestDeleteOrder_RevierteMovimientos(t *testing.T) {
	f := newFixture(t, domaininv.OversellClampToZero)
	f.addProduct("A", "PAP-001", 0)
	f.addProduct("B", "CEB-001", 0)
	f.record(t, "A", entity.MovementAjuste, 20)
	f.record(t, "B", entity.MovementAjuste, 20)
	order := f.createOrder(t, entity.OrderKindSale, line("A", 5), line("B", 25))
	_, _, err := f.orders.ConfirmOrder(t.Context(), entity.OrderKindSale, order.ID, testUser)
	require.NoError(t, err)
	assertDec(t, "15", f.stock(t, "A"))
	assertDec(t, "0", f.stock(t, "B"))

	require.NoError(t, f.orders.DeleteOrder(t.Context(), entity.OrderKindSale, order.ID))

	assertDec(t, "20", f.stock(t, "A"))
	assertDec(t, "20", f.stock(t, "B"))
	f.requireConsistent(t, "A")
	f.requireConsistent(t, "B")
	_, err = f.orders.GetOrder(t.Context(), entity.OrderKindSale, order.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

// Si una reversión falla la orden se conserva y el error lista lo revertido y lo fallido.
func TestDeleteOrder_ReversionParcial(t *testing.T) {
	f := newFixture(t, domaininv.OversellClampToZero)
	f.addProduct("A", "PAP-001", 0)
	f.addProduct("B", "CEB-001", 0)
	order := f.createOrder(t, entity.OrderKindPurchase, line("A", 5), line("B", 6))
	_, movs, err := f.orders.ConfirmOrder(t.Context(), entity.OrderKindPurchase, order.ID, testUser)
	require.NoError(t, err)
	require.Len(t, movs, 2)

	f.store.SetFault(func(op, key string) error {
		if op == "movement.delete" && key == movs[0].ID {
			return errors.New("fallo de red")
		}
		return nil
	})
	err = f.orders.DeleteOrder(t.Context(), entity.OrderKindPurchase, order.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOrderReversalFailed)

	var revErr *domain.OrderReversalError
	require.True(t, errors.As(err, &revErr))
	assert.Equal(t, []string{movs[1].ID}, revErr.Reversed)
	assert.Contains(t, revErr.Failed, movs[0].ID)

	f.store.SetFault(nil)
	assertDec(t, "5", f.stock(t, "A"))
	assertDec(t, "0", f.stock(t, "B"))
	stored, err := f.orders.GetOrder(t.Context(), entity.OrderKindPurchase, order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPartial, stored.Status)

	// El reintento termina el trabajo.
	require.NoError(t, f.orders.DeleteOrder(t.Context(), entity.OrderKindPurchase, order.ID))
	assertDec(t, "0", f.stock(t, "A"))
}

func TestQueries_ListMovementsYFaltantes(t *testing.T) {
	f := newFixture(t, domaininv.OversellClampToZero)
	f.addProduct("A", "PAP-001", 0) // mínimo 10
	f.addProduct("B", "CEB-001", 0)
	f.record(t, "A", entity.MovementEntrada, 8)
	f.record(t, "A", entity.MovementSalida, 2)
	f.record(t, "B", entity.MovementEntrada, 30)

	movs, err := f.queries.ListMovements(t.Context(), repository.MovementFilter{ProductID: "A"})
	require.NoError(t, err)
	assert.Len(t, movs, 2)

	movs, err = f.queries.ListMovements(t.Context(), repository.MovementFilter{Kind: entity.MovementEntrada, Limit: 1})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "A", movs[0].ProductID)

	future := time.Now().Add(time.Hour)
	movs, err = f.queries.ListMovements(t.Context(), repository.MovementFilter{From: &future})
	require.NoError(t, err)
	assert.Empty(t, movs)

	_, err = f.queries.ListMovements(t.Context(), repository.MovementFilter{Kind: "MERMA"})
	assert.ErrorIs(t, err, domain.ErrInvalidMovementKind)

	low, err := f.queries.ListLowStock(t.Context())
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "A", low[0].ProductID)
	assertDec(t, "4", low[0].Deficit)
}
