package device

import "inventory-server/core/reconcile"

// computerLike lists the parent itemtypes expansion cards attach to.
var computerLike = []string{"Computer"}

// NewGraphicCard reconciles the "videos" category into the graphic card
// master/link tables.
func NewGraphicCard() *Reconciler {
	return New(Class{
		Category:    "videos",
		Label:       "Graphic card",
		MasterTable: "graphic_cards",
		LinkTable:   "item_graphic_cards",
		ForeignKey:  "graphic_cards_id",
		Itemtypes:   computerLike,
		Enabled: func(conf reconcile.Conf) bool {
			return conf.ComponentGraphicCard
		},
		ExtraColumns: map[string]string{"memory": "memory"},
	})
}

// NewSoundCard reconciles the "sounds" category into the sound card
// master/link tables.
func NewSoundCard() *Reconciler {
	return New(Class{
		Category:    "sounds",
		Label:       "Sound card",
		MasterTable: "sound_cards",
		LinkTable:   "item_sound_cards",
		ForeignKey:  "sound_cards_id",
		Itemtypes:   computerLike,
		Enabled: func(conf reconcile.Conf) bool {
			return conf.ComponentSoundCard
		},
	})
}
