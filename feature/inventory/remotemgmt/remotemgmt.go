package remotemgmt

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"inventory-server/core/fieldbag"
	"inventory-server/core/reconcile"
	"inventory-server/feature/inventory/compare"
	"inventory-server/feature/inventory/models"
)

// Reconciler reconciles remote management accounts (TeamViewer,
// AnyDesk and the like), keyed by remote identifier and tool type.
type Reconciler struct{}

func New() *Reconciler { return &Reconciler{} }

func (r *Reconciler) Category() string { return "remote_mgmt" }

func (r *Reconciler) Aliases() []string { return nil }

func (r *Reconciler) CheckConf(conf reconcile.Conf) bool { return conf.ImportRemoteManagement }

// Prepare drops entries without a remote identifier.
func (r *Reconciler) Prepare(rctx *reconcile.Context, items []fieldbag.Item) []fieldbag.Item {
	prepared := make([]fieldbag.Item, 0, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.GetString("id"))
		if id == "" {
			continue
		}
		item.SetString("remoteid", id)
		prepared = append(prepared, item)
	}
	return prepared
}

func accountKey(remoteID, accountType string) string {
	return compare.Key(remoteID, accountType)
}

type existingAccountRow struct {
	ID        int64
	RemoteID  string
	Type      string
	IsDynamic bool
}

func (r *Reconciler) Handle(ctx context.Context, rctx *reconcile.Context, items []fieldbag.Item) error {
	tx := rctx.DB.WithContext(ctx).Session(&gorm.Session{PrepareStmt: true})

	var rows []existingAccountRow
	err := tx.Table("remote_managements").
		Select("id, remoteid AS remote_id, type, is_dynamic").
		Where("itemtype = ? AND items_id = ?", rctx.Itemtype, rctx.ItemID).
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to load existing remote accounts: %w", err)
	}

	idx := reconcile.ExistingIndex{}
	for _, row := range rows {
		idx.Add(accountKey(row.RemoteID, row.Type), reconcile.ExistingRecord{ID: row.ID, Dynamic: row.IsDynamic})
	}

	tally := reconcile.Tally{}
	for _, item := range items {
		remoteID := item.GetString("remoteid")
		accountType := item.GetString("type")

		if _, ok := idx.Take(accountKey(remoteID, accountType)); ok {
			tally.Mark(reconcile.StateMatched)
			continue
		}

		account := models.RemoteManagement{
			Itemtype: rctx.Itemtype,
			ItemID:   rctx.ItemID,
			RemoteID: remoteID,
			Type:     accountType,
			Dynamic:  true,
		}
		if err := tx.Create(&account).Error; err != nil {
			return fmt.Errorf("failed to create remote account %q: %w", remoteID, err)
		}
		tally.Mark(reconcile.StateLinked)
	}

	// A partial submission never deletes accounts it did not mention.
	if !rctx.Partial {
		for _, rec := range idx.Stale() {
			if err := tx.Delete(&models.RemoteManagement{}, rec.ID).Error; err != nil {
				return fmt.Errorf("failed to delete stale remote account: %w", err)
			}
			tally.Mark(reconcile.StateDeleted)
		}
	}

	rctx.Logger.Info("remote accounts reconciled", tally.Fields()...)
	return nil
}
