package reconcile

// ExistingRecord is one database-side link loaded into a comparison index.
type ExistingRecord struct {
	// ID is the primary key of the link row.
	ID int64
	// Dynamic is true when the link was created by an import;
	// only dynamic links are ever deleted by a later import.
	Dynamic bool
	// Fields keeps extra columns a reconciler needs after matching.
	Fields map[string]any
}

// ExistingIndex maps comparison keys to the database records they identify.
type ExistingIndex map[string]ExistingRecord

// Add records one row under its comparison key. Later rows with the same
// key win, matching the row order of the loading query.
func (x ExistingIndex) Add(key string, rec ExistingRecord) {
	x[key] = rec
}

// Take removes and returns the record for key. The second result is false
// when the key was not present.
func (x ExistingIndex) Take(key string) (ExistingRecord, bool) {
	rec, ok := x[key]
	if ok {
		delete(x, key)
	}
	return rec, ok
}

// Stale returns the dynamic records left after matching. Manually created
// rows survive every import.
func (x ExistingIndex) Stale() []ExistingRecord {
	var out []ExistingRecord
	for _, rec := range x {
		if rec.Dynamic {
			out = append(out, rec)
		}
	}
	return out
}
