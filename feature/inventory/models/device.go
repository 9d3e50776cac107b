package models

// GraphicCard is the master record for one graphic card model.
type GraphicCard struct {
	ID             int64  `gorm:"primaryKey;column:id"`
	Designation    string `gorm:"column:designation;type:varchar(255)"`
	ManufacturerID int64  `gorm:"column:manufacturers_id;default:0"`
	Memory         int    `gorm:"column:memory_default;default:0"`
}

func (GraphicCard) TableName() string {
	return "graphic_cards"
}

// ItemGraphicCard links an asset to a graphic card master record.
type ItemGraphicCard struct {
	ID            int64  `gorm:"primaryKey;column:id"`
	Itemtype      string `gorm:"column:itemtype;type:varchar(100)"`
	ItemID        int64  `gorm:"column:items_id"`
	GraphicCardID int64  `gorm:"column:graphic_cards_id"`
	Memory        int    `gorm:"column:memory;default:0"`
	Dynamic       bool   `gorm:"column:is_dynamic;type:tinyint(1);default:0"`
}

func (ItemGraphicCard) TableName() string {
	return "item_graphic_cards"
}

// SoundCard is the master record for one sound card model.
type SoundCard struct {
	ID             int64  `gorm:"primaryKey;column:id"`
	Designation    string `gorm:"column:designation;type:varchar(255)"`
	ManufacturerID int64  `gorm:"column:manufacturers_id;default:0"`
}

func (SoundCard) TableName() string {
	return "sound_cards"
}

// ItemSoundCard links an asset to a sound card master record.
type ItemSoundCard struct {
	ID          int64  `gorm:"primaryKey;column:id"`
	Itemtype    string `gorm:"column:itemtype;type:varchar(100)"`
	ItemID      int64  `gorm:"column:items_id"`
	SoundCardID int64  `gorm:"column:sound_cards_id"`
	Dynamic     bool   `gorm:"column:is_dynamic;type:tinyint(1);default:0"`
}

func (ItemSoundCard) TableName() string {
	return "item_sound_cards"
}
