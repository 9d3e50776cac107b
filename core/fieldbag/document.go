package fieldbag

// Document is the canonical decoded inventory submission. It is created once
// per request by the protocol layer and handed read-only to the reconcilers,
// except for the per-item mutations they perform during prepare.
type Document struct {
	// DeviceID identifies the submitting device. Always set; a submission
	// without one is rejected before a Document is built.
	DeviceID string

	// Action is the declared action/query type, lowercased. Defaults to
	// "inventory" when the submission does not declare one.
	Action string

	// Content is the content subtree of the submission: category name to
	// value (usually a list of items). Field names are lowercased.
	Content Item

	// Partial marks submissions covering only a subset of the device's
	// categories (e.g. a network probe). Absence of an item in a partial
	// submission must not imply deletion.
	Partial bool
}

// HasCategory reports whether the submission carries the category at all,
// even as an empty list. Reconcilers only run for categories that were
// reported; silence says nothing about absence.
func (d *Document) HasCategory(names ...string) bool {
	for _, name := range names {
		if d.Content.Has(name) {
			return true
		}
	}
	return false
}

// Items returns the ordered raw items for the first matching category name.
// Several names may be given because the legacy XML encoding and the JSON
// encoding historically use different category labels.
func (d *Document) Items(names ...string) []Item {
	for _, name := range names {
		val, ok := d.Content[name]
		if !ok {
			continue
		}
		list := val.AsList()
		items := make([]Item, 0, len(list))
		for _, entry := range list {
			if m := entry.AsMap(); m != nil {
				items = append(items, m)
			}
		}
		return items
	}
	return nil
}
