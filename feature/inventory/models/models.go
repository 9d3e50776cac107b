package models

// Tables lists every table the inventory feature writes to, in a stable
// order, for startup schema verification.
func Tables() []string {
	return []string{
		Asset{}.TableName(),
		OperatingSystem{}.TableName(),
		Manufacturer{}.TableName(),
		Software{}.TableName(),
		SoftwareVersion{}.TableName(),
		ItemSoftwareVersion{}.TableName(),
		SoftwareCategory{}.TableName(),
		GraphicCard{}.TableName(),
		ItemGraphicCard{}.TableName(),
		SoundCard{}.TableName(),
		ItemSoundCard{}.TableName(),
		DatabaseInstance{}.TableName(),
		DatabaseRecord{}.TableName(),
		RemoteManagement{}.TableName(),
	}
}
