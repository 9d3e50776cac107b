package models

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ManufacturerResolver resolves manufacturer names to ids, creating
// missing ones. Lookups are cached for the resolver's lifetime, one
// resolver per reconciliation run.
type ManufacturerResolver struct {
	db     *gorm.DB
	byName map[string]int64
}

func NewManufacturerResolver(db *gorm.DB) *ManufacturerResolver {
	return &ManufacturerResolver{db: db, byName: map[string]int64{}}
}

// Resolve returns the id for name, creating the manufacturer when it
// does not exist. An empty name resolves to the zero sentinel.
func (r *ManufacturerResolver) Resolve(name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, nil
	}
	key := strings.ToLower(name)
	if id, ok := r.byName[key]; ok {
		return id, nil
	}

	var m Manufacturer
	err := r.db.Where("name = ?", name).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		m = Manufacturer{Name: name}
		err = r.db.Create(&m).Error
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve manufacturer %q: %w", name, err)
	}

	r.byName[key] = m.ID
	return m.ID, nil
}

// ResolveOperatingSystem returns the id for an operating system name,
// creating it when missing. An empty name resolves to zero.
func ResolveOperatingSystem(db *gorm.DB, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, nil
	}

	var os OperatingSystem
	err := db.Where("name = ?", name).First(&os).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		os = OperatingSystem{Name: name}
		err = db.Create(&os).Error
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve operating system %q: %w", name, err)
	}
	return os.ID, nil
}
