package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"retailpos/internal/dto"
	"retailpos/internal/errs"
	"retailpos/internal/model"
	"retailpos/internal/repository"
)

type OrderService interface {
	CreatePosOrder(ctx context.Context, cashierID uuid.UUID, req dto.CreatePosOrderRequest) (*dto.Receipt, error)
	CreateShopOrder(ctx context.Context, req dto.CreateShopOrderRequest) (*model.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, q dto.OrderListQuery) ([]model.Order, int64, error)
}

type orderService struct {
	repo        repository.OrderRepository
	sessionRepo repository.SessionRepository
	productRepo repository.ProductRepository
	sessions    SessionService
	customers   CustomerService
	invoices    InvoiceService
	audit       AuditService
	taxRatePct  int64
	orderPrefix string
}

func NewOrderService(
	repo repository.OrderRepository,
	sessionRepo repository.SessionRepository,
	productRepo repository.ProductRepository,
	sessions SessionService,
	customers CustomerService,
	invoices InvoiceService,
	audit AuditService,
	taxRatePct int,
	orderPrefix string,
) OrderService {
	return &orderService{
		repo:        repo,
		sessionRepo: sessionRepo,
		productRepo: productRepo,
		sessions:    sessions,
		customers:   customers,
		invoices:    invoices,
		audit:       audit,
		taxRatePct:  int64(taxRatePct),
		orderPrefix: orderPrefix,
	}
}

var hundred = decimal.NewFromInt(100)

// taxOn rounds to the whole currency unit, half away from zero.
func (s *orderService) taxOn(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(s.taxRatePct)).Div(hundred).Round(0)
}

// pricedLines is the result of locking and pricing the requested sale lines
// inside a transaction.
type pricedLines struct {
	items       []model.OrderItem
	subtotal    decimal.Decimal
	wantProduct map[uuid.UUID]int
	wantVariant map[uuid.UUID]int
}

// lockAndPrice locks every referenced product (and variant) FOR UPDATE in
// ascending id order, verifies stock against the accumulated quantities so
// duplicate lines cannot oversell, and prices each line. Line tax is rounded
// per line, independently of the order-level tax.
func (s *orderService) lockAndPrice(ctx context.Context, tx *gorm.DB, lines []dto.PosOrderItem) (*pricedLines, error) {
	type lockGroup struct {
		productID uuid.UUID
		variants  []uuid.UUID
	}
	groups := map[uuid.UUID]*lockGroup{}
	order := make([]uuid.UUID, 0, len(lines))
	for _, item := range lines {
		g, ok := groups[item.ProductID]
		if !ok {
			g = &lockGroup{productID: item.ProductID}
			groups[item.ProductID] = g
			order = append(order, item.ProductID)
		}
		if item.VariantID != nil {
			g.variants = append(g.variants, *item.VariantID)
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i].String() < order[j].String() })

	products := map[uuid.UUID]*model.Product{}
	variants := map[uuid.UUID]*model.ProductVariant{}
	for _, pid := range order {
		p, err := s.productRepo.LockByIDTx(ctx, tx, pid)
		if err != nil {
			return nil, errs.NotFound("product %s not found", pid)
		}
		if !p.IsActive {
			return nil, errs.InvalidState("product %s is inactive", p.SKU)
		}
		products[pid] = p

		g := groups[pid]
		sort.Slice(g.variants, func(i, j int) bool { return g.variants[i].String() < g.variants[j].String() })
		for _, vid := range g.variants {
			if _, ok := variants[vid]; ok {
				continue
			}
			v, err := s.productRepo.LockVariantByIDTx(ctx, tx, vid)
			if err != nil {
				return nil, errs.NotFound("variant %s not found", vid)
			}
			if v.ProductID != pid {
				return nil, errs.Validation("variant %s does not belong to product %s", vid, pid)
			}
			variants[vid] = v
		}
	}

	wantProduct := map[uuid.UUID]int{}
	wantVariant := map[uuid.UUID]int{}
	for _, item := range lines {
		if item.VariantID != nil {
			wantVariant[*item.VariantID] += item.Quantity
		} else {
			wantProduct[item.ProductID] += item.Quantity
		}
	}
	for pid, want := range wantProduct {
		if products[pid].Stock < want {
			return nil, errs.Insufficient("insufficient stock for %s: have %d, want %d",
				products[pid].SKU, products[pid].Stock, want)
		}
	}
	for vid, want := range wantVariant {
		if variants[vid].Stock < want {
			return nil, errs.Insufficient("insufficient stock for %s: have %d, want %d",
				variants[vid].SKU, variants[vid].Stock, want)
		}
	}

	subtotal := decimal.Zero
	items := make([]model.OrderItem, 0, len(lines))
	for _, item := range lines {
		p := products[item.ProductID]
		name, sku := p.Name, p.SKU
		var v *model.ProductVariant
		if item.VariantID != nil {
			v = variants[*item.VariantID]
			name = fmt.Sprintf("%s / %s", p.Name, v.Name)
			sku = v.SKU
		}
		unit := v.EffectivePrice(p)
		lineTotal := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		items = append(items, model.OrderItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      name,
			SKU:       sku,
			Quantity:  item.Quantity,
			UnitPrice: unit,
			LineTotal: lineTotal,
			TaxRate:   s.taxRatePct,
			TaxAmount: s.taxOn(lineTotal),
		})
	}

	return &pricedLines{
		items:       items,
		subtotal:    subtotal,
		wantProduct: wantProduct,
		wantVariant: wantVariant,
	}, nil
}

// decrementStock applies the verified quantities: the variant when the line
// names one, the product otherwise.
func (s *orderService) decrementStock(ctx context.Context, tx *gorm.DB, priced *pricedLines) error {
	for vid, want := range priced.wantVariant {
		if err := s.productRepo.DecrementVariantStockTx(ctx, tx, vid, want); err != nil {
			return err
		}
	}
	for pid, want := range priced.wantProduct {
		if err := s.productRepo.DecrementStockTx(ctx, tx, pid, want); err != nil {
			return err
		}
	}
	return nil
}

// nextOrderNumber derives the per-day sequence shared by till and shop sales.
func (s *orderService) nextOrderNumber(ctx context.Context, tx *gorm.DB, now time.Time) (string, error) {
	seq, err := s.repo.CountByDayTx(ctx, tx, now)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%04d", s.orderPrefix, now.Format("060102"), seq+1), nil
}

// CreatePosOrder settles a till sale atomically: every row it touches
// (product and variant stock, the session counters, the new order) commits
// together or not at all. Product rows are locked in ascending id order, the
// session row last, so concurrent checkouts cannot deadlock.
func (s *orderService) CreatePosOrder(ctx context.Context, cashierID uuid.UUID, req dto.CreatePosOrderRequest) (*dto.Receipt, error) {
	if err := validateDiscountShape(req); err != nil {
		return nil, err
	}
	method := model.PaymentMethod(req.PaymentMethod)

	// Pre-flight: the session must exist and be OPEN. Rechecked under lock
	// inside the transaction.
	session, err := s.sessionRepo.FindByID(ctx, req.SessionID)
	if err != nil {
		return nil, errs.NotFound("session %s not found", req.SessionID)
	}
	if session.Status != model.SessionOpen {
		return nil, errs.InvalidState("session is %s, sales require an OPEN session", session.Status)
	}

	var (
		created model.Order
		receipt *dto.Receipt
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		priced, err := s.lockAndPrice(ctx, tx, req.Items)
		if err != nil {
			return err
		}

		discountAmount, err := computeDiscount(priced.subtotal, req.DiscountType, req.DiscountValue)
		if err != nil {
			return err
		}
		afterDiscount := priced.subtotal.Sub(discountAmount)

		taxAmount := s.taxOn(afterDiscount)
		total := afterDiscount.Add(taxAmount)

		// Cash handling: tendered must cover the total.
		var tendered, change *decimal.Decimal
		if method == model.PayCash {
			if req.TenderedAmount == nil {
				return errs.Validation("tendered_amount is required for cash payment")
			}
			if req.TenderedAmount.LessThan(total) {
				return errs.Insufficient("tendered %s is less than total %s",
					req.TenderedAmount.String(), total.String())
			}
			c := req.TenderedAmount.Sub(total)
			tendered, change = req.TenderedAmount, &c
		}

		// Lock the session row last and recheck its state.
		locked, err := s.sessionRepo.LockByIDTx(ctx, tx, req.SessionID)
		if err != nil {
			return errs.NotFound("session %s not found", req.SessionID)
		}
		if locked.Status != model.SessionOpen {
			return errs.InvalidState("session is %s, sales require an OPEN session", locked.Status)
		}

		now := time.Now().UTC()
		number, err := s.nextOrderNumber(ctx, tx, now)
		if err != nil {
			return err
		}

		sessionID := req.SessionID
		created = model.Order{
			OrderNumber:    number,
			SessionID:      &sessionID,
			CustomerID:     req.CustomerID,
			CashierID:      &cashierID,
			Status:         model.OrderCompleted,
			PaymentStatus:  model.PaymentPaid,
			PaymentMethod:  method,
			Subtotal:       priced.subtotal,
			DiscountType:   (*model.DiscountType)(req.DiscountType),
			DiscountValue:  req.DiscountValue,
			DiscountAmount: discountAmount,
			TaxAmount:      taxAmount,
			Total:          total,
			TenderedAmount: tendered,
			ChangeAmount:   change,
			Notes:          req.Notes,
			Items:          priced.items,
		}
		if err := s.repo.CreateTx(ctx, tx, &created); err != nil {
			return err
		}

		if err := s.decrementStock(ctx, tx, priced); err != nil {
			return err
		}

		// Fold the sale into the session counters.
		if err := s.sessions.RecordSaleTx(ctx, tx, locked, total, method); err != nil {
			return err
		}

		receipt = &dto.Receipt{
			OrderID:        created.ID,
			OrderNumber:    created.OrderNumber,
			Status:         created.Status,
			PaymentStatus:  created.PaymentStatus,
			Subtotal:       priced.subtotal,
			DiscountAmount: discountAmount,
			AfterDiscount:  afterDiscount,
			TaxAmount:      taxAmount,
			Total:          total,
			TenderedAmount: tendered,
			ChangeAmount:   change,
			CreatedAt:      now,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Audit is deliberately outside the atomicity boundary: best effort,
	// after commit.
	s.audit.Record(ctx, AuditEntry{
		ActorID:    &cashierID,
		Action:     model.AuditSale,
		Resource:   "order",
		ResourceID: created.ID.String(),
		NewData: model.JSONMap{
			"order_number": created.OrderNumber,
			"total":        created.Total.String(),
			"method":       string(created.PaymentMethod),
		},
	})
	return receipt, nil
}

// CreateShopOrder settles an e-commerce checkout: no register session, no
// cash handling. Stock and the order commit atomically; the invoice is
// generated right after commit and linked back onto the order.
func (s *orderService) CreateShopOrder(ctx context.Context, req dto.CreateShopOrderRequest) (*model.Order, error) {
	method := model.PaymentMethod(req.PaymentMethod)

	// Resolve the customer before the settlement transaction.
	customerID := req.CustomerID
	if customerID == nil {
		customer, err := s.customers.FindOrCreate(ctx, dto.FindOrCreateCustomerRequest{
			Email: req.CustomerEmail,
			Name:  req.CustomerName,
			Phone: req.CustomerPhone,
		})
		if err != nil {
			return nil, err
		}
		customerID = &customer.ID
	}

	var created model.Order
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		priced, err := s.lockAndPrice(ctx, tx, req.Items)
		if err != nil {
			return err
		}

		taxAmount := s.taxOn(priced.subtotal)
		total := priced.subtotal.Add(taxAmount)

		now := time.Now().UTC()
		number, err := s.nextOrderNumber(ctx, tx, now)
		if err != nil {
			return err
		}

		created = model.Order{
			OrderNumber:     number,
			CustomerID:      customerID,
			Status:          model.OrderConfirmed,
			PaymentStatus:   model.PaymentPaid,
			PaymentMethod:   method,
			Subtotal:        priced.subtotal,
			DiscountAmount:  decimal.Zero,
			TaxAmount:       taxAmount,
			Total:           total,
			Notes:           req.Notes,
			CustomerName:    req.CustomerName,
			CustomerEmail:   req.CustomerEmail,
			CustomerPhone:   req.CustomerPhone,
			ShippingAddress: req.ShippingAddress,
			ShippingCity:    req.ShippingCity,
			ShippingCountry: req.ShippingCountry,
			Items:           priced.items,
		}
		if err := s.repo.CreateTx(ctx, tx, &created); err != nil {
			return err
		}
		return s.decrementStock(ctx, tx, priced)
	})
	if txErr != nil {
		return nil, txErr
	}

	// The invoice is issued immediately for shop orders. Failure here leaves
	// a settled order without an invoice; generation stays idempotent, so a
	// later from-order request repairs it.
	if s.invoices != nil {
		inv, err := s.invoices.GenerateFromOrder(ctx, uuid.Nil, created.ID)
		if err != nil {
			log.Error().Err(err).Str("order", created.OrderNumber).Msg("shop order settled but invoice generation failed")
		} else {
			created.InvoiceID = &inv.ID
			if err := s.repo.Update(ctx, &created); err != nil {
				return nil, err
			}
		}
	}

	s.audit.Record(ctx, AuditEntry{
		Action:     model.AuditSale,
		Resource:   "order",
		ResourceID: created.ID.String(),
		Details:    "shop order",
		NewData: model.JSONMap{
			"order_number": created.OrderNumber,
			"total":        created.Total.String(),
			"method":       string(created.PaymentMethod),
		},
	})
	return &created, nil
}

// validateDiscountShape rejects structurally invalid discounts before any
// locking happens. Amount bounds are checked against the priced subtotal
// inside the transaction.
func validateDiscountShape(req dto.CreatePosOrderRequest) error {
	if req.DiscountType == nil {
		if req.DiscountValue != nil {
			return errs.Validation("discount_value given without discount_type")
		}
		return nil
	}
	if req.DiscountValue == nil {
		return errs.Validation("discount_type given without discount_value")
	}
	if req.DiscountValue.IsNegative() {
		return errs.Validation("discount_value cannot be negative")
	}
	return nil
}

// computeDiscount resolves the discount amount against the subtotal.
// Percentage discounts above 100 and fixed discounts above the subtotal
// are rejected.
func computeDiscount(subtotal decimal.Decimal, dtype *string, dvalue *decimal.Decimal) (decimal.Decimal, error) {
	if dtype == nil || dvalue == nil {
		return decimal.Zero, nil
	}
	switch model.DiscountType(*dtype) {
	case model.DiscountPercentage:
		if dvalue.GreaterThan(hundred) {
			return decimal.Zero, errs.Validation("percentage discount cannot exceed 100")
		}
		return subtotal.Mul(*dvalue).Div(hundred).Round(0), nil
	case model.DiscountFixed:
		if !dvalue.IsInteger() {
			return decimal.Zero, errs.Validation("fixed discount must be a whole currency amount")
		}
		if dvalue.GreaterThan(subtotal) {
			return decimal.Zero, errs.Validation("fixed discount cannot exceed the subtotal")
		}
		return *dvalue, nil
	default:
		return decimal.Zero, errs.Validation("unknown discount type %q", *dtype)
	}
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NotFound("order %s not found", id)
	}
	return o, nil
}

func (s *orderService) List(ctx context.Context, q dto.OrderListQuery) ([]model.Order, int64, error) {
	return s.repo.List(ctx, q)
}
