package device

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"inventory-server/core/fieldbag"
	"inventory-server/core/reconcile"
	"inventory-server/feature/inventory/compare"
	"inventory-server/feature/inventory/models"
)

// Class describes one device category: its wire labels, the master and
// link tables it persists to, and the parent itemtypes it attaches to.
type Class struct {
	// Category is the submission category name, Aliases its legacy labels.
	Category string
	Aliases  []string
	// Label is the fallback designation for nameless devices.
	Label string
	// MasterTable holds the shared device model records, LinkTable the
	// per-asset links, ForeignKey the link column referencing the master.
	MasterTable string
	LinkTable   string
	ForeignKey  string
	// Itemtypes lists the parent asset types this class attaches to.
	Itemtypes []string
	// Enabled consults the category's configuration switch.
	Enabled func(conf reconcile.Conf) bool
	// ExtraColumns maps additional item fields onto link table columns.
	ExtraColumns map[string]string
}

// Reconciler is the generic device reconciler, specialized per Class.
// Master records are shared across assets: reconciliation touches only
// the per-asset links, never deletes a master.
type Reconciler struct {
	class Class
}

// New builds a reconciler for one device class.
func New(class Class) *Reconciler {
	return &Reconciler{class: class}
}

func (r *Reconciler) Category() string { return r.class.Category }

func (r *Reconciler) Aliases() []string { return r.class.Aliases }

func (r *Reconciler) CheckConf(conf reconcile.Conf) bool { return r.class.Enabled(conf) }

// Prepare maps wire field names onto the master record's columns and
// fills in the designation fallback.
func (r *Reconciler) Prepare(rctx *reconcile.Context, items []fieldbag.Item) []fieldbag.Item {
	manufacturers := models.NewManufacturerResolver(rctx.DB)

	prepared := make([]fieldbag.Item, 0, len(items))
	for _, item := range items {
		item.Rename("name", "designation")
		item.Rename("description", "comment")

		designation := strings.TrimSpace(item.GetString("designation"))
		if designation == "" {
			designation = strings.TrimSpace(item.GetString("chipset"))
		}
		if designation == "" {
			designation = r.class.Label
		}
		item.SetString("designation", designation)

		manufacturerID, err := manufacturers.Resolve(item.GetString("manufacturer"))
		if err != nil {
			rctx.Logger.Warn("manufacturer resolution failed",
				zap.String("category", r.class.Category), zap.Error(err))
		}
		item.Set("manufacturers_id", fieldbag.Number(float64(manufacturerID)))

		prepared = append(prepared, item)
	}
	return prepared
}

// deviceKey identifies a device model: designation plus manufacturer.
func deviceKey(designation string, manufacturerID int64) string {
	return compare.Key(designation, strconv.FormatInt(manufacturerID, 10))
}

type existingDeviceRow struct {
	ID              int64
	IsDynamic       bool
	Designation     string
	ManufacturersID int64
	MasterID        int64
}

// Handle diffs incoming devices against the asset's links. The class is
// a no-op for parent itemtypes it is not compatible with.
func (r *Reconciler) Handle(ctx context.Context, rctx *reconcile.Context, items []fieldbag.Item) error {
	if !r.compatible(rctx.Itemtype) {
		return nil
	}
	tx := rctx.DB.WithContext(ctx).Session(&gorm.Session{PrepareStmt: true})

	idx, err := r.loadExisting(tx, rctx)
	if err != nil {
		return fmt.Errorf("failed to load existing %s links: %w", r.class.Category, err)
	}

	tally := reconcile.Tally{}
	masters := map[string]int64{}
	for _, item := range items {
		key := deviceKey(item.GetString("designation"), int64(item.GetInt("manufacturers_id")))
		if rec, ok := idx.Take(key); ok {
			tally.Mark(reconcile.StateMatched)
			// The link survives but carries the freshly reported columns.
			if len(r.class.ExtraColumns) > 0 {
				updates := map[string]any{}
				for field, column := range r.class.ExtraColumns {
					updates[column] = item.GetString(field)
				}
				if err := tx.Table(r.class.LinkTable).Where("id = ?", rec.ID).Updates(updates).Error; err != nil {
					return fmt.Errorf("failed to refresh %s link: %w", r.class.Category, err)
				}
			}
			continue
		}

		masterID, err := r.resolveMaster(tx, masters, item)
		if err != nil {
			return err
		}

		link := map[string]any{
			"itemtype":       rctx.Itemtype,
			"items_id":       rctx.ItemID,
			r.class.ForeignKey: masterID,
			"is_dynamic":     true,
		}
		for field, column := range r.class.ExtraColumns {
			link[column] = item.GetString(field)
		}
		if err := tx.Table(r.class.LinkTable).Create(link).Error; err != nil {
			return fmt.Errorf("failed to link %s: %w", r.class.Category, err)
		}
		tally.Mark(reconcile.StateLinked)
	}

	// Stale links are deleted by link id; the shared master survives.
	if !rctx.Partial || len(items) > 0 {
		for _, rec := range idx.Stale() {
			if err := tx.Exec("DELETE FROM "+r.class.LinkTable+" WHERE id = ?", rec.ID).Error; err != nil {
				return fmt.Errorf("failed to delete stale %s link: %w", r.class.Category, err)
			}
			tally.Mark(reconcile.StateDeleted)
		}
	}

	rctx.Logger.Info("devices reconciled",
		append([]zap.Field{zap.String("category", r.class.Category)}, tally.Fields()...)...)
	return nil
}

func (r *Reconciler) compatible(itemtype string) bool {
	for _, t := range r.class.Itemtypes {
		if t == itemtype {
			return true
		}
	}
	return false
}

func (r *Reconciler) loadExisting(tx *gorm.DB, rctx *reconcile.Context) (reconcile.ExistingIndex, error) {
	var rows []existingDeviceRow
	err := tx.Table(r.class.LinkTable+" AS link").
		Select("link.id AS id, link.is_dynamic AS is_dynamic, master.designation AS designation, "+
			"master.manufacturers_id AS manufacturers_id, link."+r.class.ForeignKey+" AS master_id").
		Joins("INNER JOIN "+r.class.MasterTable+" master ON master.id = link."+r.class.ForeignKey).
		Where("link.itemtype = ? AND link.items_id = ?", rctx.Itemtype, rctx.ItemID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	idx := reconcile.ExistingIndex{}
	for _, row := range rows {
		idx.Add(deviceKey(row.Designation, row.ManufacturersID), reconcile.ExistingRecord{
			ID:      row.ID,
			Dynamic: row.IsDynamic,
			Fields:  map[string]any{"master_id": row.MasterID},
		})
	}
	return idx, nil
}

// resolveMaster finds or creates the shared device model record, once
// per distinct key regardless of how many assets reference it.
func (r *Reconciler) resolveMaster(tx *gorm.DB, cache map[string]int64, item fieldbag.Item) (int64, error) {
	designation := item.GetString("designation")
	manufacturerID := int64(item.GetInt("manufacturers_id"))

	key := deviceKey(designation, manufacturerID)
	if id, ok := cache[key]; ok {
		return id, nil
	}

	var row struct{ ID int64 }
	res := tx.Table(r.class.MasterTable).
		Select("id").
		Where("designation = ? AND manufacturers_id = ?", designation, manufacturerID).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to resolve %s master: %w", r.class.Category, res.Error)
	}
	if res.RowsAffected == 0 {
		master := map[string]any{
			"designation":      designation,
			"manufacturers_id": manufacturerID,
		}
		create := tx.Table(r.class.MasterTable).Create(master)
		if create.Error != nil {
			return 0, fmt.Errorf("failed to create %s master: %w", r.class.Category, create.Error)
		}
		var created struct{ ID int64 }
		if err := tx.Table(r.class.MasterTable).
			Select("id").
			Where("designation = ? AND manufacturers_id = ?", designation, manufacturerID).
			Order("id DESC").
			Limit(1).
			Scan(&created).Error; err != nil {
			return 0, fmt.Errorf("failed to read back %s master: %w", r.class.Category, err)
		}
		row.ID = created.ID
	}

	cache[key] = row.ID
	return row.ID, nil
}
