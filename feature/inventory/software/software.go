package software

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"inventory-server/core/fieldbag"
	"inventory-server/core/reconcile"
	"inventory-server/feature/inventory/compare"
)

// Reconciler reconciles installed-software submissions against the
// software catalog and the parent asset's install links.
type Reconciler struct {
	rules reconcile.RuleEngine
}

// New creates the software reconciler over the given rule engine.
func New(rules reconcile.RuleEngine) *Reconciler {
	if rules == nil {
		rules = reconcile.NoopRules{}
	}
	return &Reconciler{rules: rules}
}

func (r *Reconciler) Category() string { return "softwares" }

func (r *Reconciler) Aliases() []string { return nil }

func (r *Reconciler) CheckConf(conf reconcile.Conf) bool { return conf.ImportSoftware }

// fieldMap renames vendor-specific field names onto the canonical ones
// the reconciler reads.
var fieldMap = map[string]string{
	"publisher":    "manufacturer",
	"vendor":       "manufacturer",
	"comments":     "comment",
	"install_date": "date_install",
	"installdate":  "date_install",
}

// Prepare normalizes incoming items: field mapping, name fallback,
// rule transforms and manufacturer resolution. Items without a usable
// name and items excluded by a rule are dropped.
func (r *Reconciler) Prepare(rctx *reconcile.Context, items []fieldbag.Item) []fieldbag.Item {
	manufacturers := newManufacturerCache(rctx)

	prepared := make([]fieldbag.Item, 0, len(items))
	for _, item := range items {
		for origin, dest := range fieldMap {
			item.Rename(origin, dest)
		}

		name := strings.TrimSpace(item.GetString("name"))
		if name == "" {
			// A GUID is stable across submissions, good enough as a
			// display name for nameless entries.
			name = strings.TrimSpace(item.GetString("guid"))
		}
		if name == "" {
			continue
		}
		item.SetString("name", name)

		entityID := rctx.EntityID
		if rctx.Conf.SoftwareEntity >= 0 {
			entityID = rctx.Conf.SoftwareEntity
		}
		recursive := false

		manufacturer := strings.TrimSpace(item.GetString("manufacturer"))
		if r.rules.Count() > 0 {
			res := r.rules.Apply(reconcile.RuleInput{
				Name:           name,
				Manufacturer:   manufacturer,
				OldVersion:     item.GetString("version"),
				EntityID:       entityID,
				SystemCategory: item.GetString("system_category"),
			})
			switch res.Outcome {
			case reconcile.RuleExcluded:
				continue
			case reconcile.RuleRewritten:
				if res.Name != "" {
					item.SetString("name", res.Name)
				}
				if res.Version != "" {
					item.SetString("version", res.Version)
				}
				if res.Manufacturer != "" {
					manufacturer = res.Manufacturer
				}
			case reconcile.RuleRedirected:
				// Records created in an ancestor entity apply to the
				// subordinate entities too.
				entityID = res.EntityID
				recursive = true
			}
		}

		manufacturerID := manufacturers.resolve(manufacturer)
		item.SetString("manufacturer", manufacturer)
		item.Set("manufacturers_id", fieldbag.Number(float64(manufacturerID)))
		item.Set("entities_id", fieldbag.Number(float64(entityID)))
		item.Set("is_recursive", fieldbag.Bool(recursive))

		prepared = append(prepared, item)
	}

	if failed := manufacturers.failures; failed > 0 {
		rctx.Logger.Warn("manufacturer resolution failures",
			zap.Int("count", failed))
	}

	return dedupUnqualified(prepared, rctx)
}

// dedupUnqualified drops items that duplicate another item's simple key
// while lacking a manufacturer. A manufacturer-qualified duplicate always
// wins over an unqualified one; two qualified duplicates both survive.
func dedupUnqualified(items []fieldbag.Item, rctx *reconcile.Context) []fieldbag.Item {
	qualified := map[string]bool{}
	for _, item := range items {
		if item.GetInt("manufacturers_id") > 0 {
			qualified[simpleKey(item)] = true
		}
	}

	out := make([]fieldbag.Item, 0, len(items))
	for _, item := range items {
		if item.GetInt("manufacturers_id") == 0 && qualified[simpleKey(item)] {
			continue
		}
		out = append(out, item)
	}
	return out
}

// simpleKey identifies an item without its manufacturer, used only for
// the manufacturer-preferring batch dedup.
func simpleKey(item fieldbag.Item) string {
	return compare.Key(
		item.GetString("name"),
		item.GetString("version"),
		item.GetString("arch"),
		item.GetString("entities_id"),
	)
}

// fullKey identifies an item completely. The operating system part is
// wildcarded for partial submissions so that a probe reporting no
// operating system still matches links recorded with one.
func fullKey(item fieldbag.Item, osPart string) string {
	return compare.Key(
		item.GetString("name"),
		item.GetString("version"),
		item.GetString("arch"),
		item.GetString("manufacturers_id"),
		item.GetString("entities_id"),
		osPart,
	)
}

func osPart(rctx *reconcile.Context, osID int64) string {
	if rctx.Partial {
		return compare.Wildcard
	}
	return strconv.FormatInt(osID, 10)
}
