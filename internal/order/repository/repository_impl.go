package repository

import (
	"context"
	"time"

	"github.com/brisbanesurgical/storefront/internal/order/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Take(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, orderCode string) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Where("order_code = ?", orderCode).
		Take(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) FindBySessionID(ctx context.Context, db *gorm.DB, sessionID string) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Where("stripe_session_id = ?", sessionID).
		Take(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) AttachSession(ctx context.Context, db *gorm.DB, id snowflake.ID, sessionID string) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET stripe_session_id = ?, updated_at = ?
		 WHERE id = ? AND (stripe_session_id IS NULL OR stripe_session_id = ?)`,
		sessionID,
		time.Now().UTC(),
		id,
		sessionID,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, method string, paidAt time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET payment_status = ?, status = ?, payment_method = ?, paid_at = ?, updated_at = ?
		 WHERE id = ? AND payment_status = ?`,
		domain.PaymentStatusPaid,
		domain.StatusPending,
		method,
		paidAt,
		paidAt,
		id,
		domain.PaymentStatusUnpaid,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) SetReceiptRef(ctx context.Context, db *gorm.DB, id snowflake.ID, ref string) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET receipt_ref = ?, updated_at = ?
		 WHERE id = ? AND receipt_ref IS NULL`,
		ref,
		time.Now().UTC(),
		id,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) DeleteDraft(ctx context.Context, db *gorm.DB, orderCode string) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM orders WHERE order_code = ? AND status = ?`,
		orderCode,
		domain.StatusDraft,
	)
	return result.RowsAffected, result.Error
}
