package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	FindByCode(ctx context.Context, db *gorm.DB, orderCode string) (*Order, error)
	FindBySessionID(ctx context.Context, db *gorm.DB, sessionID string) (*Order, error)

	// AttachSession sets the session id only while it is unset or already
	// equal; returns the number of rows updated.
	AttachSession(ctx context.Context, db *gorm.DB, id snowflake.ID, sessionID string) (int64, error)

	// MarkPaid applies the paid transition conditionally on the current
	// payment status being unpaid; the affected-row count tells the caller
	// whether it won the transition.
	MarkPaid(ctx context.Context, db *gorm.DB, id snowflake.ID, method string, paidAt time.Time) (int64, error)

	// SetReceiptRef records the receipt artifact reference only while unset.
	SetReceiptRef(ctx context.Context, db *gorm.DB, id snowflake.ID, ref string) (int64, error)

	// DeleteDraft removes the order only while it is still a draft.
	DeleteDraft(ctx context.Context, db *gorm.DB, orderCode string) (int64, error)
}
