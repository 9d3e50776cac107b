package dbinstance

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

// Reconciler reconciles database services and the databases they host.
// Instances are keyed by name within the parent asset, hosted databases
// by name within their instance.
type Reconciler struct{}

func New() *Reconciler { return &Reconciler{} }

func (r *Reconciler) Category() string { return "databases_services" }

func (r *Reconciler) Aliases() []string { return nil }

func (r *Reconciler) CheckConf(conf reconcile.Conf) bool { return conf.ImportDatabases }

// Prepare drops unnamed instances; everything else is reconciled as
// submitted.
func (r *Reconciler) Prepare(rctx *reconcile.Context, items []fieldbag.Item) []fieldbag.Item {
	prepared := make([]fieldbag.Item, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.GetString("name"))
		if name == "" {
			continue
		}
		item.SetString("name", name)
		prepared = append(prepared, item)
	}
	return prepared
}

type existingInstanceRow struct {
	ID        int64
	Name      string
	IsDynamic bool
}

func (r *Reconciler) Handle(ctx context.Context, rctx *reconcile.Context, items []fieldbag.Item) error {
	tx := rctx.DB.WithContext(ctx).Session(&gorm.Session{PrepareStmt: true})

	idx, err := loadInstances(tx, rctx)
	if err != nil {
		return fmt.Errorf("failed to load existing database instances: %w", err)
	}

	tally := reconcile.Tally{}
	for _, item := range items {
		instanceID, wasMatched, err := r.upsertInstance(tx, rctx, idx, item)
		if err != nil {
			return err
		}
		if wasMatched {
			tally.Mark(reconcile.StateMatched)
		} else {
			tally.Mark(reconcile.StateLinked)
		}

		if err := r.reconcileDatabases(tx, instanceID, item); err != nil {
			return err
		}
	}

	if len(items) > 0 || !rctx.Partial {
		for _, rec := range idx.Stale() {
			if err := tx.Exec("DELETE FROM databases WHERE database_instances_id = ?", rec.ID).Error; err != nil {
				return fmt.Errorf("failed to delete hosted databases: %w", err)
			}
			if err := tx.Delete(&models.DatabaseInstance{}, rec.ID).Error; err != nil {
				return fmt.Errorf("failed to delete stale database instance: %w", err)
			}
			tally.Mark(reconcile.StateDeleted)
		}
	}

	rctx.Logger.Info("database instances reconciled", tally.Fields()...)
	return nil
}

func loadInstances(tx *gorm.DB, rctx *reconcile.Context) (reconcile.ExistingIndex, error) {
	var rows []existingInstanceRow
	err := tx.Table("database_instances").
		Select("id, name, is_dynamic").
		Where("itemtype = ? AND items_id = ?", rctx.Itemtype, rctx.ItemID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	idx := reconcile.ExistingIndex{}
	for _, row := range rows {
		idx.Add(compare.Fold(row.Name), reconcile.ExistingRecord{ID: row.ID, Dynamic: row.IsDynamic})
	}
	return idx, nil
}

func (r *Reconciler) upsertInstance(tx *gorm.DB, rctx *reconcile.Context, idx reconcile.ExistingIndex, item fieldbag.Item) (int64, bool, error) {
	name := item.GetString("name")

	if rec, ok := idx.Take(compare.Fold(name)); ok {
		updates := map[string]any{
			"version":   item.GetString("version"),
			"port":      item.GetInt("port"),
			"path":      item.GetString("path"),
			"is_active": item.GetBool("is_active"),
		}
		err := tx.Model(&models.DatabaseInstance{}).Where("id = ?", rec.ID).Updates(updates).Error
		if err != nil {
			return 0, false, fmt.Errorf("failed to update database instance %q: %w", name, err)
		}
		return rec.ID, true, nil
	}

	instance := models.DatabaseInstance{
		Itemtype: rctx.Itemtype,
		ItemID:   rctx.ItemID,
		Name:     name,
		Version:  item.GetString("version"),
		Port:     item.GetInt("port"),
		Path:     item.GetString("path"),
		EntityID: rctx.EntityID,
		IsActive: item.GetBool("is_active"),
		Dynamic:  true,
	}
	if err := tx.Create(&instance).Error; err != nil {
		return 0, false, fmt.Errorf("failed to create database instance %q: %w", name, err)
	}
	return instance.ID, false, nil
}

type existingDatabaseRow struct {
	ID        int64
	Name      string
	IsDynamic bool
}

// reconcileDatabases diffs the hosted database list of one instance.
func (r *Reconciler) reconcileDatabases(tx *gorm.DB, instanceID int64, item fieldbag.Item) error {
	var rows []existingDatabaseRow
	err := tx.Table("databases").
		Select("id, name, is_dynamic").
		Where("database_instances_id = ?", instanceID).
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to load hosted databases: %w", err)
	}

	idx := reconcile.ExistingIndex{}
	for _, row := range rows {
		idx.Add(compare.Fold(row.Name), reconcile.ExistingRecord{ID: row.ID, Dynamic: row.IsDynamic})
	}

	for _, child := range item["databases"].AsList() {
		db := child.AsMap()
		if db == nil {
			continue
		}
		name := strings.TrimSpace(db.GetString("name"))
		if name == "" {
			continue
		}

		if rec, ok := idx.Take(compare.Fold(name)); ok {
			updates := map[string]any{
				"size":      int64(db["size"].AsFloat()),
				"is_active": db.GetBool("is_active"),
			}
			if err := tx.Model(&models.DatabaseRecord{}).Where("id = ?", rec.ID).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update database %q: %w", name, err)
			}
			continue
		}

		record := models.DatabaseRecord{
			InstanceID: instanceID,
			Name:       name,
			Size:       int64(db["size"].AsFloat()),
			IsActive:   db.GetBool("is_active"),
			Dynamic:    true,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create database %q: %w", name, err)
		}
	}

	for _, rec := range idx.Stale() {
		if err := tx.Delete(&models.DatabaseRecord{}, rec.ID).Error; err != nil {
			return fmt.Errorf("failed to delete stale database: %w", err)
		}
	}
	return nil
}
