package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/brisbanesurgical/storefront/internal/config"
	"github.com/brisbanesurgical/storefront/internal/order/domain"
	"github.com/brisbanesurgical/storefront/pkg/db"
	"github.com/brisbanesurgical/storefront/pkg/telemetry"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const codeInsertAttempts = 3

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Cfg      config.Config
	Repo     domain.Repository
	Receipts domain.ReceiptGenerator `optional:"true"`
	Notifier domain.Notifier         `optional:"true"`
	Metrics  *telemetry.Metrics      `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	cfg      config.Config
	repo     domain.Repository
	receipts domain.ReceiptGenerator
	notifier domain.Notifier
	metrics  *telemetry.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("order.service"),
		genID:    p.GenID,
		cfg:      p.Cfg,
		repo:     p.Repo,
		receipts: p.Receipts,
		notifier: p.Notifier,
		metrics:  p.Metrics,
	}
}

func (s *Service) CreateDraft(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	return s.create(ctx, req, domain.StatusDraft, false)
}

func (s *Service) SubmitDirect(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	switch req.Method {
	case domain.MethodCOD, domain.MethodWallet:
	default:
		return nil, domain.ErrInvalidMethod
	}
	return s.create(ctx, req, domain.StatusPending, true)
}

func (s *Service) create(ctx context.Context, req domain.CreateOrderRequest, status string, notifyPlaced bool) (*domain.Order, error) {
	if len(req.Products) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if strings.TrimSpace(req.BillingInfo.Email) == "" {
		return nil, domain.ErrMissingBillingEmail
	}

	method := strings.ToLower(strings.TrimSpace(req.Method))
	if method == "" {
		method = domain.MethodStripe
	}

	subtotal, tax, vat := s.computeTotals(req.Products)
	discount := roundMoney(subtotal * req.Coupon.Discount / 100)
	payAmount := roundMoney(subtotal - discount + tax + vat + req.DeliveryInfo.Cost)

	now := time.Now().UTC()
	order := &domain.Order{
		ID:            s.genID.Generate(),
		Products:      datatypes.NewJSONType(req.Products),
		BillingInfo:   datatypes.NewJSONType(req.BillingInfo),
		ShippingInfo:  datatypes.NewJSONType(req.ShippingInfo),
		DeliveryInfo:  datatypes.NewJSONType(req.DeliveryInfo),
		Coupon:        datatypes.NewJSONType(req.Coupon),
		PaymentMethod: method,
		PaymentStatus: domain.PaymentStatusUnpaid,
		Status:        status,
		TotalPrice:    subtotal,
		Tax:           tax,
		Vat:           vat,
		PayAmount:     payAmount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// The order code carries a time suffix, so a duplicate-key failure here
	// means a random-block collision; regenerate and retry.
	var insertErr error
	for attempt := 0; attempt < codeInsertAttempts; attempt++ {
		code, err := newOrderCode(now)
		if err != nil {
			return nil, err
		}
		order.OrderCode = code

		insertErr = s.repo.Insert(ctx, s.db, order)
		if insertErr == nil {
			s.log.Info("order created",
				zap.String("order_code", order.OrderCode),
				zap.String("status", status),
				zap.Float64("pay_amount", order.PayAmount),
			)
			if notifyPlaced && s.notifier != nil {
				s.notifier.OrderPlaced(ctx, order)
			}
			return order, nil
		}
		if !db.IsDuplicateKeyErr(insertErr) {
			return nil, insertErr
		}
	}
	return nil, domain.ErrCodeConflict
}

func (s *Service) computeTotals(products []domain.OrderProduct) (subtotal, tax, vat float64) {
	for _, p := range products {
		line := float64(p.Qty) * p.Price
		subtotal += line
		tax += line * s.cfg.TaxPercent / 100
		vat += line * s.cfg.VatPercent / 100
	}
	return roundMoney(subtotal), roundMoney(tax), roundMoney(vat)
}

func (s *Service) AttachStripeSession(ctx context.Context, id snowflake.ID, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.ErrSessionConflict
	}

	affected, err := s.repo.AttachSession(ctx, s.db, id, sessionID)
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	return domain.ErrSessionConflict
}

func (s *Service) ApplyPaidTransition(ctx context.Context, sessionID string, method string) (*domain.Order, bool, error) {
	order, err := s.repo.FindBySessionID(ctx, s.db, sessionID)
	if err != nil {
		return nil, false, err
	}
	if order == nil {
		s.metrics.RecordPaidTransition("miss")
		return nil, false, domain.ErrNotFound
	}
	if order.PaymentStatus == domain.PaymentStatusPaid {
		s.metrics.RecordPaidTransition("duplicate")
		return order, false, nil
	}

	if method == "" {
		method = domain.MethodStripe
	}
	paidAt := time.Now().UTC()

	// Conditional update is the sole concurrency guard: exactly one of any
	// number of concurrent deliveries observes an affected row.
	affected, err := s.repo.MarkPaid(ctx, s.db, order.ID, method, paidAt)
	if err != nil {
		return nil, false, err
	}
	if affected == 0 {
		s.metrics.RecordPaidTransition("duplicate")
		refreshed, err := s.repo.FindByID(ctx, s.db, order.ID)
		if err != nil || refreshed == nil {
			return order, false, err
		}
		return refreshed, false, nil
	}

	order.PaymentStatus = domain.PaymentStatusPaid
	order.Status = domain.StatusPending
	order.PaymentMethod = method
	order.PaidAt = &paidAt
	order.UpdatedAt = paidAt

	s.metrics.RecordPaidTransition("won")
	s.log.Info("order marked paid",
		zap.String("order_code", order.OrderCode),
		zap.String("session_id", sessionID),
	)

	// Downstream steps run best-effort after the committed transition;
	// their failures must never surface to the gateway acknowledgment.
	receiptRef := s.ensureReceipt(ctx, order)
	if s.notifier != nil {
		s.notifier.OrderPaid(ctx, order, receiptRef)
	}

	return order, true, nil
}

func (s *Service) ensureReceipt(ctx context.Context, order *domain.Order) string {
	if order.ReceiptRef != nil {
		return *order.ReceiptRef
	}
	if s.receipts == nil {
		return ""
	}

	ref, err := s.receipts.Generate(ctx, order)
	if err != nil {
		s.metrics.RecordReceiptRender("error")
		s.log.Error("receipt generation failed",
			zap.String("order_code", order.OrderCode),
			zap.Error(err),
		)
		return ""
	}

	affected, err := s.repo.SetReceiptRef(ctx, s.db, order.ID, ref)
	if err != nil {
		s.log.Error("receipt reference persist failed",
			zap.String("order_code", order.OrderCode),
			zap.Error(err),
		)
		return ref
	}
	if affected > 0 {
		order.ReceiptRef = &ref
	}
	s.metrics.RecordReceiptRender("ok")
	return ref
}

func (s *Service) CancelDraft(ctx context.Context, orderCode string) error {
	orderCode = strings.TrimSpace(orderCode)
	if orderCode == "" {
		return nil
	}
	affected, err := s.repo.DeleteDraft(ctx, s.db, orderCode)
	if err != nil {
		return err
	}
	if affected > 0 {
		s.log.Info("draft order cancelled", zap.String("order_code", orderCode))
	}
	return nil
}

func (s *Service) FindByIDOrSession(ctx context.Context, req domain.FindOrderRequest) (*domain.Order, error) {
	if sessionID := strings.TrimSpace(req.SessionID); sessionID != "" {
		order, err := s.repo.FindBySessionID(ctx, s.db, sessionID)
		if err != nil {
			return nil, err
		}
		if order != nil {
			return order, nil
		}
	}

	if raw := strings.TrimSpace(req.ID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			return nil, domain.ErrNotFound
		}
		order, err := s.repo.FindByID(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if order != nil {
			return order, nil
		}
	}

	return nil, domain.ErrNotFound
}

func (s *Service) FindByCode(ctx context.Context, orderCode string) (*domain.Order, error) {
	orderCode = strings.TrimSpace(orderCode)
	if orderCode == "" {
		return nil, domain.ErrNotFound
	}
	order, err := s.repo.FindByCode(ctx, s.db, orderCode)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
