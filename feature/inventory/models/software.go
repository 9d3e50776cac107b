package models

import "time"

// Software is one catalog entry, unique per name, manufacturer and entity.
type Software struct {
	ID             int64  `gorm:"primaryKey;column:id"`
	Name           string `gorm:"column:name;type:varchar(255)"`
	ManufacturerID int64  `gorm:"column:manufacturers_id;default:0"`
	CategoryID     int64  `gorm:"column:softwarecategories_id;default:0"`
	EntityID       int    `gorm:"column:entities_id;default:0"`
	IsRecursive    bool   `gorm:"column:is_recursive;type:tinyint(1);default:0"`
	IsDeleted      bool   `gorm:"column:is_deleted;type:tinyint(1);default:0"`
}

func (Software) TableName() string {
	return "softwares"
}

// SoftwareVersion is one version of a catalog entry, scoped to the
// operating system it was seen on.
type SoftwareVersion struct {
	ID         int64  `gorm:"primaryKey;column:id"`
	SoftwareID int64  `gorm:"column:softwares_id"`
	Name       string `gorm:"column:name;type:varchar(255)"`
	Arch       string `gorm:"column:arch;type:varchar(255);default:''"`
	OSID       int64  `gorm:"column:operatingsystems_id;default:0"`
	EntityID   int    `gorm:"column:entities_id;default:0"`
}

func (SoftwareVersion) TableName() string {
	return "software_versions"
}

// ItemSoftwareVersion links an asset to an installed software version.
type ItemSoftwareVersion struct {
	ID          int64      `gorm:"primaryKey;column:id"`
	Itemtype    string     `gorm:"column:itemtype;type:varchar(100)"`
	ItemID      int64      `gorm:"column:items_id"`
	VersionID   int64      `gorm:"column:softwareversions_id"`
	Dynamic     bool       `gorm:"column:is_dynamic;type:tinyint(1);default:0"`
	DateInstall *time.Time `gorm:"column:date_install;default:NULL"`
}

func (ItemSoftwareVersion) TableName() string {
	return "item_software_versions"
}

// SoftwareCategory classifies catalog entries, resolved by name.
type SoftwareCategory struct {
	ID   int64  `gorm:"primaryKey;column:id"`
	Name string `gorm:"column:name;type:varchar(255)"`
}

func (SoftwareCategory) TableName() string {
	return "software_categories"
}
