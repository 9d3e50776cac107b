package models

import "time"

// DatabaseInstance is one database service running on an asset,
// resolved by name within the parent asset.
type DatabaseInstance struct {
	ID         int64      `gorm:"primaryKey;column:id"`
	Itemtype   string     `gorm:"column:itemtype;type:varchar(100)"`
	ItemID     int64      `gorm:"column:items_id"`
	Name       string     `gorm:"column:name;type:varchar(255)"`
	Version    string     `gorm:"column:version;type:varchar(255);default:''"`
	Port       int        `gorm:"column:port;default:0"`
	Path       string     `gorm:"column:path;type:varchar(255);default:''"`
	EntityID   int        `gorm:"column:entities_id;default:0"`
	IsActive   bool       `gorm:"column:is_active;type:tinyint(1);default:1"`
	Dynamic    bool       `gorm:"column:is_dynamic;type:tinyint(1);default:0"`
	IsDeleted  bool       `gorm:"column:is_deleted;type:tinyint(1);default:0"`
	LastBackup *time.Time `gorm:"column:date_lastbackup;default:NULL"`
}

func (DatabaseInstance) TableName() string {
	return "database_instances"
}

// DatabaseRecord is one database hosted by an instance, resolved by name
// within the parent instance.
type DatabaseRecord struct {
	ID         int64      `gorm:"primaryKey;column:id"`
	InstanceID int64      `gorm:"column:database_instances_id"`
	Name       string     `gorm:"column:name;type:varchar(255)"`
	Size       int64      `gorm:"column:size;default:0"`
	IsActive   bool       `gorm:"column:is_active;type:tinyint(1);default:1"`
	Dynamic    bool       `gorm:"column:is_dynamic;type:tinyint(1);default:0"`
	IsDeleted  bool       `gorm:"column:is_deleted;type:tinyint(1);default:0"`
	LastBackup *time.Time `gorm:"column:date_lastbackup;default:NULL"`
}

func (DatabaseRecord) TableName() string {
	return "databases"
}
