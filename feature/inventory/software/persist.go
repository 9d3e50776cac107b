package software

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"inventory-server/core/fieldbag"
	"inventory-server/core/reconcile"
	"inventory-server/feature/inventory/compare"
	"inventory-server/feature/inventory/models"
)

// Handle diffs the prepared items against the asset's existing install
// links, deletes stale dynamic links, and creates catalog records and
// links for the new items.
func (r *Reconciler) Handle(ctx context.Context, rctx *reconcile.Context, items []fieldbag.Item) error {
	tx := rctx.DB.WithContext(ctx).Session(&gorm.Session{PrepareStmt: true})
	osKey := osPart(rctx, rctx.OSID)

	idx, err := loadExistingLinks(tx, rctx)
	if err != nil {
		return fmt.Errorf("failed to load existing software links: %w", err)
	}

	// Items matching an existing dynamic link are already satisfied.
	// Intra-batch duplicates keep their first occurrence only.
	tally := reconcile.Tally{}
	seen := map[string]bool{}
	remaining := make([]fieldbag.Item, 0, len(items))
	for _, item := range items {
		key := fullKey(item, osKey)
		if _, ok := idx.Take(key); ok {
			tally.Mark(reconcile.StateMatched)
			continue
		}
		vkey := key + compare.Separator + compare.Fold(item.GetString("version"))
		if seen[vkey] {
			tally.Mark(reconcile.StateSkipped)
			continue
		}
		seen[vkey] = true
		remaining = append(remaining, item)
	}

	// A partial scan reporting nothing for this category says nothing
	// about absence, so stale links survive it.
	if len(items) > 0 || !rctx.Partial {
		stale := idx.Stale()
		if len(stale) > 0 {
			ids := make([]int64, len(stale))
			for i, rec := range stale {
				ids[i] = rec.ID
			}
			if err := tx.Delete(&models.ItemSoftwareVersion{}, ids).Error; err != nil {
				return fmt.Errorf("failed to delete stale software links: %w", err)
			}
			tally.MarkN(reconcile.StateDeleted, len(ids))
		}
	}

	categories := newCategoryCache(tx)
	softwareIDs := map[string]int64{}
	versionIDs := map[string]int64{}
	for _, item := range remaining {
		softwareID, err := resolveSoftware(tx, categories, softwareIDs, item)
		if err != nil {
			return err
		}
		versionID, err := resolveVersion(tx, versionIDs, softwareID, item, rctx.OSID)
		if err != nil {
			return err
		}

		link := models.ItemSoftwareVersion{
			Itemtype:    rctx.Itemtype,
			ItemID:      rctx.ItemID,
			VersionID:   versionID,
			Dynamic:     true,
			DateInstall: parseInstallDate(item.GetString("date_install")),
		}
		if err := tx.Create(&link).Error; err != nil {
			return fmt.Errorf("failed to link software version: %w", err)
		}
		tally.Mark(reconcile.StateLinked)
	}

	rctx.Logger.Info("software reconciled", tally.Fields()...)
	return nil
}

type existingLinkRow struct {
	ID                 int64
	Software           string
	Version            string
	Arch               string
	ManufacturersID    int64
	EntitiesID         int
	OperatingsystemsID int64
}

// loadExistingLinks indexes the asset's dynamic install links by full
// comparison key. Manually created links never enter the index and are
// therefore never deleted.
func loadExistingLinks(tx *gorm.DB, rctx *reconcile.Context) (reconcile.ExistingIndex, error) {
	var rows []existingLinkRow
	err := tx.Table("item_software_versions AS isv").
		Select("isv.id AS id, s.name AS software, sv.name AS version, sv.arch AS arch, "+
			"s.manufacturers_id AS manufacturers_id, s.entities_id AS entities_id, "+
			"sv.operatingsystems_id AS operatingsystems_id").
		Joins("INNER JOIN software_versions sv ON sv.id = isv.softwareversions_id").
		Joins("INNER JOIN softwares s ON s.id = sv.softwares_id").
		Where("isv.itemtype = ? AND isv.items_id = ? AND isv.is_dynamic = ?",
			rctx.Itemtype, rctx.ItemID, true).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	idx := reconcile.ExistingIndex{}
	for _, row := range rows {
		os := strconv.FormatInt(row.OperatingsystemsID, 10)
		if rctx.Partial {
			os = compare.Wildcard
		}
		key := compare.Key(
			row.Software,
			row.Version,
			row.Arch,
			strconv.FormatInt(row.ManufacturersID, 10),
			strconv.Itoa(row.EntitiesID),
			os,
		)
		idx.Add(key, reconcile.ExistingRecord{ID: row.ID, Dynamic: true})
	}
	return idx, nil
}

func resolveSoftware(tx *gorm.DB, categories *categoryCache, cache map[string]int64, item fieldbag.Item) (int64, error) {
	name := item.GetString("name")
	manufacturerID := int64(item.GetInt("manufacturers_id"))
	entityID := item.GetInt("entities_id")

	cacheKey := compare.Key(name, strconv.FormatInt(manufacturerID, 10), strconv.Itoa(entityID))
	if id, ok := cache[cacheKey]; ok {
		return id, nil
	}

	var sw models.Software
	err := tx.Where("name = ? AND manufacturers_id = ? AND entities_id = ?",
		name, manufacturerID, entityID).First(&sw).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		categoryID, cerr := categories.classify(item)
		if cerr != nil {
			return 0, cerr
		}
		sw = models.Software{
			Name:           name,
			ManufacturerID: manufacturerID,
			CategoryID:     categoryID,
			EntityID:       entityID,
			IsRecursive:    item.GetBool("is_recursive"),
		}
		err = tx.Create(&sw).Error
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve software %q: %w", name, err)
	}

	cache[cacheKey] = sw.ID
	return sw.ID, nil
}

func resolveVersion(tx *gorm.DB, cache map[string]int64, softwareID int64, item fieldbag.Item, osID int64) (int64, error) {
	// An empty version is a valid value, distinct from every named one.
	version := item.GetString("version")
	arch := item.GetString("arch")

	cacheKey := compare.Key(strconv.FormatInt(softwareID, 10), version, arch, strconv.FormatInt(osID, 10))
	if id, ok := cache[cacheKey]; ok {
		return id, nil
	}

	var sv models.SoftwareVersion
	err := tx.Where("softwares_id = ? AND name = ? AND arch = ? AND operatingsystems_id = ?",
		softwareID, version, arch, osID).First(&sv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sv = models.SoftwareVersion{
			SoftwareID: softwareID,
			Name:       version,
			Arch:       arch,
			OSID:       osID,
			EntityID:   item.GetInt("entities_id"),
		}
		err = tx.Create(&sv).Error
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve software version %q: %w", version, err)
	}

	cache[cacheKey] = sv.ID
	return sv.ID, nil
}

// manufacturerCache wraps the shared resolver. Resolution failures
// degrade to the zero sentinel instead of aborting the whole submission.
type manufacturerCache struct {
	resolver *models.ManufacturerResolver
	failures int
}

func newManufacturerCache(rctx *reconcile.Context) *manufacturerCache {
	return &manufacturerCache{resolver: models.NewManufacturerResolver(rctx.DB)}
}

func (c *manufacturerCache) resolve(name string) int64 {
	id, err := c.resolver.Resolve(name)
	if err != nil {
		c.failures++
		return 0
	}
	return id
}

// categoryCache resolves system-category names to software categories,
// creating missing ones. New software passes through here before insert.
type categoryCache struct {
	tx     *gorm.DB
	byName map[string]int64
}

func newCategoryCache(tx *gorm.DB) *categoryCache {
	return &categoryCache{tx: tx, byName: map[string]int64{}}
}

func (c *categoryCache) classify(item fieldbag.Item) (int64, error) {
	name := strings.TrimSpace(item.GetString("system_category"))
	if name == "" {
		return 0, nil
	}
	key := strings.ToLower(name)
	if id, ok := c.byName[key]; ok {
		return id, nil
	}

	var cat models.SoftwareCategory
	err := c.tx.Where("name = ?", name).First(&cat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cat = models.SoftwareCategory{Name: name}
		err = c.tx.Create(&cat).Error
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve software category %q: %w", name, err)
	}

	c.byName[key] = cat.ID
	return cat.ID, nil
}

// installDateLayouts are the formats agents send install dates in.
var installDateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "02/01/2006"}

func parseInstallDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range installDateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts
		}
	}
	return nil
}
