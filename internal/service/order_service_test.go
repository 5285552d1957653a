package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/dto"
	"retailpos/internal/errs"
	"retailpos/internal/model"
)

type orderFixture struct {
	orders    *fakeOrderRepo
	sessions  *fakeSessionRepo
	products  *fakeProductRepo
	customers *fakeCustomerRepo
	invoices  *fakeInvoiceRepo
	audit     *recordingAudit
	svc       OrderService
	session   *model.CashSession
	cashierID uuid.UUID
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	orders := newFakeOrderRepo()
	sessions := newFakeSessionRepo()
	products := newFakeProductRepo()
	registers := newFakeRegisterRepo()
	customers := newFakeCustomerRepo()
	invoices := newFakeInvoiceRepo()
	audit := &recordingAudit{}

	session := &model.CashSession{
		RegisterID:    uuid.New(),
		OpenedByID:    uuid.New(),
		Status:        model.SessionOpen,
		OpeningAmount: d(50000),
		CashIn:        decimal.Zero,
		CashOut:       decimal.Zero,
		SalesTotal:    decimal.Zero,
		Payments:      model.PaymentBreakdown{},
		OpenedAt:      time.Now().UTC(),
	}
	require.NoError(t, sessions.Create(context.Background(), session))

	sessionSvc := NewSessionService(sessions, registers, audit)
	customerSvc := NewCustomerService(customers)
	invoiceSvc := NewInvoiceService(invoices, orders, customers, audit, &stubRenderer{path: "/tmp/invoice.pdf"}, nil, "INV", 30)
	return &orderFixture{
		orders:    orders,
		sessions:  sessions,
		products:  products,
		customers: customers,
		invoices:  invoices,
		audit:     audit,
		svc:       NewOrderService(orders, sessions, products, sessionSvc, customerSvc, invoiceSvc, audit, 18, "POS"),
		session:   session,
		cashierID: uuid.New(),
	}
}

func (f *orderFixture) addProduct(t *testing.T, sku string, price int64, stock int) *model.Product {
	t.Helper()
	p := &model.Product{ID: uuid.New(), SKU: sku, Name: "Product " + sku, Price: d(price), Stock: stock, IsActive: true}
	f.products.products[p.ID] = p
	return p
}

func (f *orderFixture) addVariant(t *testing.T, p *model.Product, sku string, modifier *decimal.Decimal, stock int) *model.ProductVariant {
	t.Helper()
	v := &model.ProductVariant{ID: uuid.New(), ProductID: p.ID, SKU: sku, Name: "Variant " + sku, PriceModifier: modifier, Stock: stock}
	f.products.variants[v.ID] = v
	return v
}

func (f *orderFixture) currentSession(t *testing.T) *model.CashSession {
	t.Helper()
	s, err := f.sessions.FindByID(context.Background(), f.session.ID)
	require.NoError(t, err)
	return s
}

func TestCashSaleSettlement(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 5)
	tendered := d(25000)

	receipt, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:      f.session.ID,
		Items:          []dto.PosOrderItem{{ProductID: p.ID, Quantity: 2}},
		PaymentMethod:  "cash",
		TenderedAmount: &tendered,
	})
	require.NoError(t, err)

	// 20000 + 18% tax (3600) = 23600, change 1400.
	assert.True(t, receipt.Subtotal.Equal(d(20000)))
	assert.True(t, receipt.TaxAmount.Equal(d(3600)))
	assert.True(t, receipt.Total.Equal(d(23600)))
	require.NotNil(t, receipt.ChangeAmount)
	assert.True(t, receipt.ChangeAmount.Equal(d(1400)))
	assert.Equal(t, model.OrderCompleted, receipt.Status)
	assert.Equal(t, model.PaymentPaid, receipt.PaymentStatus)

	wantNumber := fmt.Sprintf("POS-%s-0001", time.Now().UTC().Format("060102"))
	assert.Equal(t, wantNumber, receipt.OrderNumber)

	// Stock decremented, session counters folded in.
	assert.Equal(t, 3, f.products.products[p.ID].Stock)
	session := f.currentSession(t)
	assert.Equal(t, 1, session.SalesCount)
	assert.True(t, session.SalesTotal.Equal(d(23600)))
	assert.True(t, session.CashIn.Equal(d(23600)))
	require.Len(t, session.Payments, 1)
	assert.Equal(t, "cash", session.Payments[0].Method)

	// Persisted order carries its lines.
	order, err := f.orders.FindByID(context.Background(), receipt.OrderID)
	require.NoError(t, err)
	require.NotNil(t, order.SessionID)
	assert.Equal(t, f.session.ID, *order.SessionID)
	require.NotNil(t, order.CashierID)
	assert.Equal(t, f.cashierID, *order.CashierID)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].LineTotal.Equal(d(20000)))
	assert.Equal(t, int64(18), order.Items[0].TaxRate)
	assert.True(t, order.Items[0].TaxAmount.Equal(d(3600)))

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, model.AuditSale, f.audit.entries[0].Action)
}

func TestCardSaleSkipsTill(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 5)

	receipt, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:     f.session.ID,
		Items:         []dto.PosOrderItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Nil(t, receipt.TenderedAmount)
	assert.Nil(t, receipt.ChangeAmount)

	session := f.currentSession(t)
	assert.True(t, session.CashIn.IsZero())
	assert.True(t, session.SalesTotal.Equal(d(11800)))
	require.Len(t, session.Payments, 1)
	assert.Equal(t, "card", session.Payments[0].Method)
}

func TestCashSaleRequiresSufficientTender(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 5)
	tendered := d(20000) // total is 23600

	_, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:      f.session.ID,
		Items:          []dto.PosOrderItem{{ProductID: p.ID, Quantity: 2}},
		PaymentMethod:  "cash",
		TenderedAmount: &tendered,
	})
	require.Error(t, err)
	assert.Equal(t, errs.KindInsufficient, errs.KindOf(err))

	// Nothing settled.
	assert.Equal(t, 5, f.products.products[p.ID].Stock)
	assert.Zero(t, f.currentSession(t).SalesCount)
	assert.Empty(t, f.orders.orders)
}

func TestCashSaleRequiresTenderedAmount(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 5)

	_, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:     f.session.ID,
		Items:         []dto.PosOrderItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: "cash",
	})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestStockShortfallAbortsSettlement(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 5)

	_, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:     f.session.ID,
		Items:         []dto.PosOrderItem{{ProductID: p.ID, Quantity: 6}},
		PaymentMethod: "card",
	})
	require.Error(t, err)
	assert.Equal(t, errs.KindInsufficient, errs.KindOf(err))
	assert.Equal(t, 5, f.products.products[p.ID].Stock)
	assert.Zero(t, f.currentSession(t).SalesCount)
	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.audit.entries)
}

func TestDuplicateLinesCannotOversell(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 3)

	// Each line fits on its own; together they exceed stock.
	_, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID: f.session.ID,
		Items: []dto.PosOrderItem{
			{ProductID: p.ID, Quantity: 2},
			{ProductID: p.ID, Quantity: 2},
		},
		PaymentMethod: "card",
	})
	require.Error(t, err)
	assert.Equal(t, errs.KindInsufficient, errs.KindOf(err))
	assert.Equal(t, 3, f.products.products[p.ID].Stock)
}

func TestPercentageDiscount(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 5)
	dtype := "percentage"
	dvalue := d(10)

	receipt, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:     f.session.ID,
		Items:         []dto.PosOrderItem{{ProductID: p.ID, Quantity: 2}},
		PaymentMethod: "card",
		DiscountType:  &dtype,
		DiscountValue: &dvalue,
	})
	require.NoError(t, err)

	// 20000 − 10% = 18000, tax 3240, total 21240.
	assert.True(t, receipt.DiscountAmount.Equal(d(2000)))
	assert.True(t, receipt.AfterDiscount.Equal(d(18000)))
	assert.True(t, receipt.TaxAmount.Equal(d(3240)))
	assert.True(t, receipt.Total.Equal(d(21240)))
}

func TestDiscountBounds(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 5)

	cases := []struct {
		name   string
		dtype  string
		dvalue decimal.Decimal
	}{
		{"percentage over 100", "percentage", d(101)},
		{"fixed above subtotal", "fixed", d(25000)},
		{"fixed fractional", "fixed", decimal.NewFromFloat(10.5)},
		{"negative value", "percentage", d(-5)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dtype, dvalue := tc.dtype, tc.dvalue
			_, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
				SessionID:     f.session.ID,
				Items:         []dto.PosOrderItem{{ProductID: p.ID, Quantity: 2}},
				PaymentMethod: "card",
				DiscountType:  &dtype,
				DiscountValue: &dvalue,
			})
			require.Error(t, err)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))
		})
	}
}

func TestDiscountValueWithoutType(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 5)
	dvalue := d(10)

	_, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:     f.session.ID,
		Items:         []dto.PosOrderItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: "card",
		DiscountValue: &dvalue,
	})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestVariantModifierAddsToProductPrice(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 5)
	modifier := d(2000)
	v := f.addVariant(t, p, "SKU-1-XL", &modifier, 4)

	receipt, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:     f.session.ID,
		Items:         []dto.PosOrderItem{{ProductID: p.ID, VariantID: &v.ID, Quantity: 2}},
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	// Unit price 10000 + 2000 = 12000.
	assert.True(t, receipt.Subtotal.Equal(d(24000)))

	// Variant stock moves, product stock does not.
	assert.Equal(t, 2, f.products.variants[v.ID].Stock)
	assert.Equal(t, 5, f.products.products[p.ID].Stock)

	order, err := f.orders.FindByID(context.Background(), receipt.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].UnitPrice.Equal(d(12000)))
	assert.Equal(t, "Product SKU-1 / Variant SKU-1-XL", order.Items[0].Name)
	assert.Equal(t, "SKU-1-XL", order.Items[0].SKU)
}

func TestNegativeVariantModifierDiscountsProductPrice(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 5)
	modifier := d(-1500)
	v := f.addVariant(t, p, "SKU-1-S", &modifier, 4)

	receipt, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:     f.session.ID,
		Items:         []dto.PosOrderItem{{ProductID: p.ID, VariantID: &v.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.True(t, receipt.Subtotal.Equal(d(8500)))
}

func TestVariantWithoutModifierUsesProductPrice(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 5)
	v := f.addVariant(t, p, "SKU-1-M", nil, 4)

	receipt, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:     f.session.ID,
		Items:         []dto.PosOrderItem{{ProductID: p.ID, VariantID: &v.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.True(t, receipt.Subtotal.Equal(d(10000)))
}

func TestVariantMustBelongToProduct(t *testing.T) {
	f := newOrderFixture(t)
	p1 := f.addProduct(t, "SKU-1", 10000, 5)
	p2 := f.addProduct(t, "SKU-2", 5000, 5)
	v2 := f.addVariant(t, p2, "SKU-2-S", nil, 3)

	_, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:     f.session.ID,
		Items:         []dto.PosOrderItem{{ProductID: p1.ID, VariantID: &v2.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestInactiveProductRejected(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 5)
	p.IsActive = false

	_, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:     f.session.ID,
		Items:         []dto.PosOrderItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))
}

func TestSaleRequiresOpenSession(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 5)

	f.session.Status = model.SessionSuspended
	require.NoError(t, f.sessions.Update(context.Background(), f.session))

	_, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:     f.session.ID,
		Items:         []dto.PosOrderItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	assert.Equal(t, errs.KindInvalidState, errs.KindOf(err))

	_, err = f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:     uuid.New(),
		Items:         []dto.PosOrderItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestOrderNumbersIncrementPerDay(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 10)

	r1, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:     f.session.ID,
		Items:         []dto.PosOrderItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	r2, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:     f.session.ID,
		Items:         []dto.PosOrderItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	day := time.Now().UTC().Format("060102")
	assert.Equal(t, fmt.Sprintf("POS-%s-0001", day), r1.OrderNumber)
	assert.Equal(t, fmt.Sprintf("POS-%s-0002", day), r2.OrderNumber)
}

func TestLineTaxRoundsIndependently(t *testing.T) {
	f := newOrderFixture(t)
	p1 := f.addProduct(t, "SKU-1", 105, 5)
	p2 := f.addProduct(t, "SKU-2", 105, 5)

	receipt, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID: f.session.ID,
		Items: []dto.PosOrderItem{
			{ProductID: p1.ID, Quantity: 1},
			{ProductID: p2.ID, Quantity: 1},
		},
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	// Each line: 105 × 18% = 18.9 → 19. Order: 210 × 18% = 37.8 → 38.
	order, err := f.orders.FindByID(context.Background(), receipt.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	for _, it := range order.Items {
		assert.True(t, it.TaxAmount.Equal(d(19)))
	}
	assert.True(t, receipt.TaxAmount.Equal(d(38)))
	assert.True(t, receipt.Total.Equal(d(248)))
}

func shopRequest(items []dto.PosOrderItem) dto.CreateShopOrderRequest {
	return dto.CreateShopOrderRequest{
		Items:           items,
		PaymentMethod:   "card",
		CustomerName:    "Ada Mensah",
		CustomerEmail:   "ada@example.com",
		CustomerPhone:   "+233200000001",
		ShippingAddress: "12 Harbour Road",
		ShippingCity:    "Accra",
		ShippingCountry: "GH",
	}
}

func TestShopOrderSettlement(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 5)

	order, err := f.svc.CreateShopOrder(context.Background(), shopRequest(
		[]dto.PosOrderItem{{ProductID: p.ID, Quantity: 2}},
	))
	require.NoError(t, err)

	// Confirmed and paid, no till involvement.
	assert.Equal(t, model.OrderConfirmed, order.Status)
	assert.Equal(t, model.PaymentPaid, order.PaymentStatus)
	assert.Nil(t, order.SessionID)
	assert.Nil(t, order.CashierID)
	assert.True(t, order.Subtotal.Equal(d(20000)))
	assert.True(t, order.Total.Equal(d(23600)))
	assert.Equal(t, "Ada Mensah", order.CustomerName)
	assert.Equal(t, "12 Harbour Road", order.ShippingAddress)

	// Stock decremented, customer created from the checkout details.
	assert.Equal(t, 3, f.products.products[p.ID].Stock)
	require.NotNil(t, order.CustomerID)
	customer, err := f.customers.FindByID(context.Background(), *order.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", customer.Email)

	// The invoice is issued immediately and linked back.
	require.NotNil(t, order.InvoiceID)
	inv, err := f.invoices.FindByOrderID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, *order.InvoiceID)
	assert.Equal(t, model.InvoiceIssued, inv.Status)
	assert.True(t, inv.Total.Equal(d(23600)))
}

func TestShopOrderReusesCustomerByEmail(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 5)
	existing := &model.Customer{Email: "ada@example.com", Name: "Ada Mensah"}
	require.NoError(t, f.customers.Create(context.Background(), existing))

	order, err := f.svc.CreateShopOrder(context.Background(), shopRequest(
		[]dto.PosOrderItem{{ProductID: p.ID, Quantity: 1}},
	))
	require.NoError(t, err)
	require.NotNil(t, order.CustomerID)
	assert.Equal(t, existing.ID, *order.CustomerID)
	assert.Len(t, f.customers.customers, 1)
}

func TestShopOrderStockShortfallAborts(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 1)

	_, err := f.svc.CreateShopOrder(context.Background(), shopRequest(
		[]dto.PosOrderItem{{ProductID: p.ID, Quantity: 2}},
	))
	require.Error(t, err)
	assert.Equal(t, errs.KindInsufficient, errs.KindOf(err))
	assert.Equal(t, 1, f.products.products[p.ID].Stock)
	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.invoices.invoices)
}

func TestShopAndPosOrdersShareDailySequence(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "SKU-1", 10000, 10)

	r1, err := f.svc.CreatePosOrder(context.Background(), f.cashierID, dto.CreatePosOrderRequest{
		SessionID:     f.session.ID,
		Items:         []dto.PosOrderItem{{ProductID: p.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	shop, err := f.svc.CreateShopOrder(context.Background(), shopRequest(
		[]dto.PosOrderItem{{ProductID: p.ID, Quantity: 1}},
	))
	require.NoError(t, err)

	day := time.Now().UTC().Format("060102")
	assert.Equal(t, fmt.Sprintf("POS-%s-0001", day), r1.OrderNumber)
	assert.Equal(t, fmt.Sprintf("POS-%s-0002", day), shop.OrderNumber)
}
