package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"retailpos/internal/dto"
	"retailpos/internal/errs"
	"retailpos/internal/model"
	"retailpos/internal/repository"
)

// PDFRenderer renders an invoice to a PDF file and returns its path.
type PDFRenderer interface {
	RenderInvoice(inv *model.Invoice) (string, error)
}

// EmailQueue enqueues outbound mail for asynchronous delivery.
// Satisfied by *worker.Dispatcher.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload any) error
}

type InvoiceService interface {
	GenerateFromOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Invoice, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, q dto.InvoiceListQuery) ([]model.Invoice, int64, error)
	UpdateStatus(ctx context.Context, id, userID uuid.UUID, req dto.UpdateInvoiceStatusRequest) (*model.Invoice, error)
	Send(ctx context.Context, id, userID uuid.UUID, req dto.SendInvoiceRequest) error
	CheckOverdue(ctx context.Context) (int, error)
	Stats(ctx context.Context) (*dto.InvoiceStats, error)
	PDFPath(ctx context.Context, id uuid.UUID) (string, error)
}

type invoiceService struct {
	repo      repository.InvoiceRepository
	orderRepo repository.OrderRepository
	customers repository.CustomerRepository
	audit     AuditService
	pdf       PDFRenderer
	emails    EmailQueue
	prefix    string
	dueDays   int
}

func NewInvoiceService(
	repo repository.InvoiceRepository,
	orderRepo repository.OrderRepository,
	customers repository.CustomerRepository,
	audit AuditService,
	pdf PDFRenderer,
	emails EmailQueue,
	prefix string,
	dueDays int,
) InvoiceService {
	return &invoiceService{
		repo:      repo,
		orderRepo: orderRepo,
		customers: customers,
		audit:     audit,
		pdf:       pdf,
		emails:    emails,
		prefix:    prefix,
		dueDays:   dueDays,
	}
}

// GenerateFromOrder issues an invoice snapshotting the order's lines and
// amounts. Idempotent: a second call for the same order returns the existing
// invoice untouched, including when two callers race past the existence
// check and one loses the unique-index insert.
func (s *invoiceService) GenerateFromOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Invoice, error) {
	if existing, err := s.repo.FindByOrderID(ctx, orderID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, errs.NotFound("order %s not found", orderID)
	}

	now := time.Now().UTC()
	seq, err := s.repo.CountByMonth(ctx, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	number := fmt.Sprintf("%s-%s-%04d", s.prefix, now.Format("200601"), seq+1)

	items := make(model.InvoiceItems, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, model.InvoiceItem{
			Name:      it.Name,
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
			TaxRate:   it.TaxRate,
		})
	}

	due := now.AddDate(0, 0, s.dueDays)
	inv := &model.Invoice{
		InvoiceNumber:  number,
		OrderID:        order.ID,
		CustomerID:     order.CustomerID,
		Status:         model.InvoiceIssued,
		Subtotal:       order.Subtotal,
		DiscountAmount: order.DiscountAmount,
		TaxAmount:      order.TaxAmount,
		Total:          order.Total,
		Items:          items,
		IssuedAt:       &now,
		DueDate:        &due,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		// A concurrent caller may have inserted between our existence check
		// and this insert. The order_id unique index makes exactly one win;
		// the loser returns the winner's invoice.
		if rival, findErr := s.repo.FindByOrderID(ctx, orderID); findErr == nil {
			return rival, nil
		}
		return nil, err
	}

	entry := AuditEntry{
		Action:     model.AuditInvoice,
		Resource:   "invoice",
		ResourceID: inv.ID.String(),
		Details:    "generated from order",
		NewData:    model.JSONMap{"invoice_number": number, "order_id": orderID.String()},
	}
	if userID != uuid.Nil {
		entry.ActorID = &userID
	}
	s.audit.Record(ctx, entry)
	return inv, nil
}

func (s *invoiceService) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NotFound("invoice %s not found", id)
	}
	return inv, nil
}

func (s *invoiceService) GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error) {
	inv, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, errs.NotFound("no invoice for order %s", orderID)
	}
	return inv, nil
}

func (s *invoiceService) List(ctx context.Context, q dto.InvoiceListQuery) ([]model.Invoice, int64, error) {
	return s.repo.List(ctx, q)
}

// UpdateStatus enforces the invoice state machine. PAID stamps paidAt exactly
// once; the timestamp survives a later PAID→CANCELLED transition.
func (s *invoiceService) UpdateStatus(ctx context.Context, id, userID uuid.UUID, req dto.UpdateInvoiceStatusRequest) (*model.Invoice, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NotFound("invoice %s not found", id)
	}

	target := model.InvoiceStatus(req.Status)
	if !model.CanTransition(inv.Status, target) {
		return nil, errs.InvalidState("invoice cannot move from %s to %s", inv.Status, target)
	}

	prev := inv.Status
	inv.Status = target
	if target == model.InvoicePaid && inv.PaidAt == nil {
		now := time.Now().UTC()
		inv.PaidAt = &now
	}
	if req.Notes != "" {
		inv.Notes = req.Notes
	}
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		ActorID:    &userID,
		Action:     model.AuditInvoice,
		Resource:   "invoice",
		ResourceID: inv.ID.String(),
		Details:    "status change",
		OldData:    model.JSONMap{"status": string(prev)},
		NewData:    model.JSONMap{"status": string(target)},
	})
	return inv, nil
}

// Send queues the invoice for email delivery with the PDF attached. The
// recipient defaults to the invoice's customer; req.Email overrides it.
func (s *invoiceService) Send(ctx context.Context, id, userID uuid.UUID, req dto.SendInvoiceRequest) error {
	if s.emails == nil {
		return errs.InvalidState("email delivery is not configured")
	}
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errs.NotFound("invoice %s not found", id)
	}

	to := req.Email
	if to == "" {
		if inv.CustomerID == nil {
			return errs.Validation("invoice has no customer on record, an email address is required")
		}
		customer, err := s.customers.FindByID(ctx, *inv.CustomerID)
		if err != nil {
			return errs.NotFound("customer %s not found", *inv.CustomerID)
		}
		to = customer.Email
	}

	attachment, err := s.PDFPath(ctx, id)
	if err != nil {
		return err
	}

	payload := map[string]string{
		"to":         to,
		"subject":    fmt.Sprintf("Invoice %s", inv.InvoiceNumber),
		"body":       fmt.Sprintf("Please find attached invoice %s for a total of %s.", inv.InvoiceNumber, inv.Total.String()),
		"attachment": attachment,
	}
	if err := s.emails.EnqueueEmail(ctx, payload); err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		ActorID:    &userID,
		Action:     model.AuditInvoice,
		Resource:   "invoice",
		ResourceID: inv.ID.String(),
		Details:    "sent by email",
		NewData:    model.JSONMap{"to": to},
	})
	return nil
}

// CheckOverdue sweeps ISSUED invoices whose due date has passed into OVERDUE
// and reports how many moved. Each moved invoice with a known customer gets a
// payment reminder queued; a full mail queue never fails the sweep.
func (s *invoiceService) CheckOverdue(ctx context.Context) (int, error) {
	candidates, err := s.repo.FindOverdueCandidates(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	moved := 0
	for i := range candidates {
		inv := &candidates[i]
		inv.Status = model.InvoiceOverdue
		if err := s.repo.Update(ctx, inv); err != nil {
			return moved, err
		}
		moved++
		s.queueOverdueReminder(ctx, inv)
	}
	return moved, nil
}

func (s *invoiceService) queueOverdueReminder(ctx context.Context, inv *model.Invoice) {
	if s.emails == nil || inv.CustomerID == nil {
		return
	}
	customer, err := s.customers.FindByID(ctx, *inv.CustomerID)
	if err != nil || customer.Email == "" {
		return
	}
	payload := map[string]string{
		"to":      customer.Email,
		"subject": fmt.Sprintf("Payment reminder: invoice %s is overdue", inv.InvoiceNumber),
		"body": fmt.Sprintf("Invoice %s for %s was due on %s and is now overdue.",
			inv.InvoiceNumber, inv.Total.String(), inv.DueDate.Format("2006-01-02")),
	}
	if err := s.emails.EnqueueEmail(ctx, payload); err != nil {
		log.Error().Err(err).Str("invoice", inv.InvoiceNumber).Msg("failed to queue overdue reminder")
	}
}

func (s *invoiceService) Stats(ctx context.Context) (*dto.InvoiceStats, error) {
	return s.repo.Stats(ctx)
}

// PDFPath returns the rendered PDF location, generating it lazily on the
// first request.
func (s *invoiceService) PDFPath(ctx context.Context, id uuid.UUID) (string, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", errs.NotFound("invoice %s not found", id)
	}
	if inv.PDFPath != "" {
		return inv.PDFPath, nil
	}
	if s.pdf == nil {
		return "", errs.InvalidState("pdf rendering is not configured")
	}
	path, err := s.pdf.RenderInvoice(inv)
	if err != nil {
		return "", err
	}
	inv.PDFPath = path
	if err := s.repo.Update(ctx, inv); err != nil {
		return "", err
	}
	return path, nil
}
