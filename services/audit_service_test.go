package services

import (
	"context"
	"testing"

	"botsprinter/config"
	"botsprinter/models"
	"botsprinter/repositories"
	"botsprinter/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestActorRoundTrip(t *testing.T) {
	assert.Equal(t, Actor{}, ActorFrom(context.Background()))

	ctx := WithActor(context.Background(), Actor{Username: "alice", IP: "10.0.0.7"})
	assert.Equal(t, Actor{Username: "alice", IP: "10.0.0.7"}, ActorFrom(ctx))
}

func TestMutationsAreAudited(t *testing.T) {
	db := openTestDB(t)
	ctx := WithActor(context.Background(), Actor{Username: "alice", IP: "10.0.0.7"})
	catalog := NewCatalogService(db, zap.NewNop())
	ledger := NewLedgerService(db, zap.NewNop())
	users := NewUserService(db, config.JWTConfig{Secret: "s", Expiration: 60}, zap.NewNop())
	audit := NewAuditService(db)

	cabinet, err := catalog.CreateCabinet(ctx, "Office")
	require.NoError(t, err)
	printer, err := catalog.CreatePrinter(ctx, PrinterInput{CabinetID: &cabinet.ID, Name: "HP", CartridgeModel: "A"})
	require.NoError(t, err)
	_, err = ledger.ReceiveStock(ctx, "A", types.Cartridge, 3, "alice")
	require.NoError(t, err)
	_, _, err = ledger.TransferToPrinter(ctx, "A", types.Cartridge, 1, printer.ID, "alice")
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, "bob", "secret", types.RoleViewer)
	require.NoError(t, err)

	entries, err := audit.ListActions(context.Background(), repositories.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 5)

	byAction := make(map[string]models.AuditEntry)
	for _, e := range entries {
		assert.Equal(t, "alice", e.Username)
		assert.Equal(t, "10.0.0.7", e.IPAddress)
		byAction[e.Action+"/"+e.EntityType] = e
	}
	assert.Equal(t, cabinet.ID, byAction[ActionCreate+"/"+EntityCabinet].EntityID)
	assert.Equal(t, printer.ID, byAction[ActionCreate+"/"+EntityPrinter].EntityID)
	assert.Equal(t, printer.ID, byAction[ActionTransferToPrinter+"/"+EntityPrinter].EntityID)
	assert.Contains(t, byAction[ActionReceiveStock+"/"+EntityStorage].Description, "received 3 A cartridge")
	assert.Contains(t, byAction[ActionCreate+"/"+EntityUser].Description, `"bob"`)

	printers, err := audit.ListActions(context.Background(), repositories.AuditFilter{EntityType: EntityPrinter})
	require.NoError(t, err)
	assert.Len(t, printers, 2)

	limited, err := audit.ListActions(context.Background(), repositories.AuditFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, ActionCreate, limited[0].Action)
	assert.Equal(t, EntityUser, limited[0].EntityType)

	_, err = audit.ListActions(context.Background(), repositories.AuditFilter{Limit: -1})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestFailedMutationLeavesNoAuditEntry(t *testing.T) {
	db := openTestDB(t)
	ledger := NewLedgerService(db, zap.NewNop())
	p := createPrinter(t, db, models.Printer{Name: "HP"})

	_, err := ledger.ReceiveStock(context.Background(), "A", types.Cartridge, 1, "alice")
	require.NoError(t, err)
	_, _, err = ledger.TransferToPrinter(context.Background(), "A", types.Cartridge, 5, p.ID, "alice")
	require.Error(t, err)

	var n int64
	require.NoError(t, db.Model(&models.AuditEntry{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
