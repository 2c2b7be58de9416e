package services

import (
	"context"
	"time"

	"botsprinter/models"
	"botsprinter/repositories"
	"botsprinter/types"

	"gorm.io/gorm"
)

// Audit actions.
const (
	ActionLogin             = "login"
	ActionReceiveStock      = "receive_stock"
	ActionTransferToPrinter = "transfer_to_printer"
	ActionReturnToStorage   = "return_to_storage"
	ActionWriteOff          = "write_off"
	ActionSetStorageAmount  = "set_storage_amount"
	ActionSetStorageMinimum = "set_storage_minimum"
	ActionCreate            = "create"
	ActionUpdate            = "update"
	ActionDelete            = "delete"
	ActionResetPassword     = "reset_password"
)

// Audited entity types.
const (
	EntityStorage = "storage"
	EntityPrinter = "printer"
	EntityCabinet = "cabinet"
	EntityUser    = "user"
)

// Actor is the authenticated caller of a request.
type Actor struct {
	Username string
	IP       string
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored in ctx, or the zero Actor.
func ActorFrom(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}

type auditRecord struct {
	Username    string
	Action      string
	EntityType  string
	EntityID    uint
	Description string
}

// recordAction appends an audit entry through r. An empty Username falls back
// to the actor in ctx.
func recordAction(ctx context.Context, r *repositories.Repositories, ts time.Time, rec auditRecord) error {
	actor := ActorFrom(ctx)
	if rec.Username == "" {
		rec.Username = actor.Username
	}
	return r.Audit.Append(ctx, &models.AuditEntry{
		Timestamp:   types.NewLedgerTime(ts),
		Username:    rec.Username,
		Action:      rec.Action,
		EntityType:  rec.EntityType,
		EntityID:    rec.EntityID,
		Description: rec.Description,
		IPAddress:   actor.IP,
	})
}

// AuditService reads the action log.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) ListActions(ctx context.Context, f repositories.AuditFilter) ([]models.AuditEntry, error) {
	const op = "audit.ListActions"
	if f.Limit < 0 {
		return nil, validationError(op, "limit must not be negative")
	}
	if f.From != nil && f.To != nil && f.To.Before(f.From.Time) {
		return nil, validationError(op, "range end is before its start")
	}

	entries, err := repositories.New(s.db).Audit.List(ctx, f)
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	return entries, nil
}
