package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTables(t *testing.T) {
	tables := Tables()

	assert.Contains(t, tables, "softwares")
	assert.Contains(t, tables, "item_software_versions")
	assert.Contains(t, tables, "graphic_cards")
	assert.Contains(t, tables, "database_instances")
	assert.Contains(t, tables, "remote_managements")

	seen := map[string]bool{}
	for _, name := range tables {
		assert.False(t, seen[name], "duplicate table %s", name)
		seen[name] = true
	}
}
