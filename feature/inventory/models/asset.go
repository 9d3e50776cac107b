package models

import "time"

// Asset is the parent record every category attaches to. Assets are
// resolved by the device identifier the agent presents.
type Asset struct {
	ID          int64      `gorm:"primaryKey;column:id"`
	DeviceID    string     `gorm:"column:deviceid;type:varchar(255)"`
	Name        string     `gorm:"column:name;type:varchar(255)"`
	Itemtype    string     `gorm:"column:itemtype;type:varchar(100);default:Computer"`
	EntityID    int        `gorm:"column:entities_id;default:0"`
	OSID        int64      `gorm:"column:operatingsystems_id;default:0"`
	LastContact *time.Time `gorm:"column:last_contact;default:NULL"`
}

func (Asset) TableName() string {
	return "assets"
}

// OperatingSystem is the operating system dimension shared by assets and
// software versions.
type OperatingSystem struct {
	ID   int64  `gorm:"primaryKey;column:id"`
	Name string `gorm:"column:name;type:varchar(255)"`
}

func (OperatingSystem) TableName() string {
	return "operating_systems"
}

// Manufacturer is the shared manufacturer dimension, resolved by name.
type Manufacturer struct {
	ID   int64  `gorm:"primaryKey;column:id"`
	Name string `gorm:"column:name;type:varchar(255)"`
}

func (Manufacturer) TableName() string {
	return "manufacturers"
}
