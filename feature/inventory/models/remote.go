package models

// RemoteManagement is one remote access account tied to an asset,
// resolved by the remote identifier and tool type.
type RemoteManagement struct {
	ID       int64  `gorm:"primaryKey;column:id"`
	Itemtype string `gorm:"column:itemtype;type:varchar(100)"`
	ItemID   int64  `gorm:"column:items_id"`
	RemoteID string `gorm:"column:remoteid;type:varchar(255)"`
	Type     string `gorm:"column:type;type:varchar(255)"`
	Dynamic  bool   `gorm:"column:is_dynamic;type:tinyint(1);default:0"`
}

func (RemoteManagement) TableName() string {
	return "remote_managements"
}
