package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/dto"
	"retailpos/internal/errs"
	"retailpos/internal/model"
)

func newStockFixture(t *testing.T) (*fakeProductRepo, *recordingAudit, StockService, *model.Product) {
	t.Helper()
	products := newFakeProductRepo()
	audit := &recordingAudit{}
	p := &model.Product{ID: uuid.New(), SKU: "SKU-1", Name: "Widget", Price: d(10000), Stock: 10, IsActive: true}
	products.products[p.ID] = p
	return products, audit, NewStockService(products, audit), p
}

func TestAdjustProductStock(t *testing.T) {
	cases := []struct {
		name     string
		op       string
		qty      int
		want     int
		wantKind errs.Kind
	}{
		{name: "set", op: "set", qty: 25, want: 25},
		{name: "add", op: "add", qty: 5, want: 15},
		{name: "remove", op: "remove", qty: 4, want: 6},
		{name: "remove to zero", op: "remove", qty: 10, want: 0},
		{name: "remove below zero", op: "remove", qty: 11, wantKind: errs.KindInsufficient},
		{name: "unknown op", op: "increment", qty: 1, wantKind: errs.KindValidation},
		{name: "negative quantity", op: "add", qty: -1, wantKind: errs.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			products, _, svc, p := newStockFixture(t)

			resp, err := svc.AdjustProduct(context.Background(), uuid.New(), p.ID, dto.StockAdjustRequest{
				Op: tc.op, Quantity: tc.qty, Reason: "count correction",
			})
			if tc.wantKind != errs.KindUnknown {
				require.Error(t, err)
				assert.Equal(t, tc.wantKind, errs.KindOf(err))
				assert.Equal(t, 10, products.products[p.ID].Stock, "stock must be untouched on failure")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.Stock)
			assert.Equal(t, tc.want, products.products[p.ID].Stock)
		})
	}
}

func TestAdjustProductStockRecordsAudit(t *testing.T) {
	_, audit, svc, p := newStockFixture(t)
	userID := uuid.New()

	_, err := svc.AdjustProduct(context.Background(), userID, p.ID, dto.StockAdjustRequest{
		Op: "set", Quantity: 3, Reason: "annual stocktake",
	})
	require.NoError(t, err)

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, model.AuditStockAdjust, entry.Action)
	assert.Equal(t, "product", entry.Resource)
	assert.Equal(t, userID, *entry.ActorID)
	assert.Equal(t, 10, entry.OldData["stock"])
	assert.Equal(t, 3, entry.NewData["stock"])
}

func TestAdjustUnknownProduct(t *testing.T) {
	_, _, svc, _ := newStockFixture(t)

	_, err := svc.AdjustProduct(context.Background(), uuid.New(), uuid.New(), dto.StockAdjustRequest{Op: "set", Quantity: 1})
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestAdjustVariantStock(t *testing.T) {
	products, _, svc, p := newStockFixture(t)
	v := &model.ProductVariant{ID: uuid.New(), ProductID: p.ID, SKU: "SKU-1-XL", Name: "XL", Stock: 5}
	products.variants[v.ID] = v

	resp, err := svc.AdjustVariant(context.Background(), uuid.New(), v.ID, dto.StockAdjustRequest{
		Op: "add", Quantity: 7, Reason: "restock",
	})
	require.NoError(t, err)
	assert.Equal(t, 12, resp.Stock)
	assert.Equal(t, "SKU-1-XL", resp.SKU)
	assert.Equal(t, 12, products.variants[v.ID].Stock)

	_, err = svc.AdjustVariant(context.Background(), uuid.New(), v.ID, dto.StockAdjustRequest{
		Op: "remove", Quantity: 13,
	})
	assert.Equal(t, errs.KindInsufficient, errs.KindOf(err))
	assert.Equal(t, 12, products.variants[v.ID].Stock)
}
