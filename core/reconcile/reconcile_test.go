package reconcile

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"inventory-server/core/fieldbag"
)

type stubReconciler struct {
	name    string
	aliases []string
}

func (s stubReconciler) Category() string      { return s.name }
func (s stubReconciler) Aliases() []string     { return s.aliases }
func (s stubReconciler) CheckConf(Conf) bool   { return true }
func (s stubReconciler) Prepare(*Context, []fieldbag.Item) []fieldbag.Item {
	return nil
}
func (s stubReconciler) Handle(context.Context, *Context, []fieldbag.Item) error {
	return nil
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register(stubReconciler{name: "softwares"})
	assert.NoError(t, err)

	err = reg.Register(stubReconciler{name: "softwares"})
	assert.Error(t, err)

	got, ok := reg.Get("softwares")
	assert.True(t, ok)
	assert.Equal(t, "softwares", got.Category())

	err = reg.Register(stubReconciler{name: "storages", aliases: []string{"drives"}})
	assert.NoError(t, err)

	got, ok = reg.Get("drives")
	assert.True(t, ok)
	assert.Equal(t, "storages", got.Category())
}

func TestRegistryOrder(t *testing.T) {
	reg := NewRegistry()
	assert.NoError(t, reg.Register(stubReconciler{name: "videos"}))
	assert.NoError(t, reg.Register(stubReconciler{name: "softwares"}))

	all := reg.All()
	assert.Len(t, all, 2)
	assert.Equal(t, "videos", all[0].Category())
	assert.Equal(t, "softwares", all[1].Category())
}

func TestDictionaryRulesExclude(t *testing.T) {
	eng := NewDictionaryRules([]DictionaryRule{
		{MatchPrefix: "kb", Exclude: true},
		{MatchPrefix: "mozilla", SetManufacturer: "Mozilla Foundation"},
	})

	res := eng.Apply(RuleInput{Name: "KB5021233"})
	assert.Equal(t, RuleExcluded, res.Outcome)

	res = eng.Apply(RuleInput{Name: "Mozilla Firefox"})
	assert.Equal(t, RuleRewritten, res.Outcome)
	assert.Equal(t, "Mozilla Foundation", res.Manufacturer)

	res = eng.Apply(RuleInput{Name: "7-Zip"})
	assert.Equal(t, RuleUnchanged, res.Outcome)
}

func TestDictionaryRulesRedirect(t *testing.T) {
	target := 3
	eng := NewDictionaryRules([]DictionaryRule{
		{MatchPrefix: "oracle", RedirectEntity: &target},
	})

	res := eng.Apply(RuleInput{Name: "Oracle Database", EntityID: 7})
	assert.Equal(t, RuleRedirected, res.Outcome)
	assert.Equal(t, 3, res.EntityID)

	res = eng.Apply(RuleInput{Name: "Oracle Database", EntityID: 3})
	assert.Equal(t, RuleUnchanged, res.Outcome)
}

func TestLoadRulesFile(t *testing.T) {
	eng, err := LoadRulesFile("")
	assert.NoError(t, err)
	assert.Zero(t, eng.Count())

	path := t.TempDir() + "/rules.json"
	content := `[{"match_prefix": "kb", "exclude": true}]`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	eng, err = LoadRulesFile(path)
	assert.NoError(t, err)
	assert.Equal(t, 1, eng.Count())

	_, err = LoadRulesFile(t.TempDir() + "/missing.json")
	assert.Error(t, err)
}

func TestNoopRules(t *testing.T) {
	var eng RuleEngine = NoopRules{}
	assert.Zero(t, eng.Count())
	assert.Equal(t, RuleUnchanged, eng.Apply(RuleInput{Name: "anything"}).Outcome)
}

func TestExistingIndex(t *testing.T) {
	idx := ExistingIndex{}
	idx.Add("a", ExistingRecord{ID: 1, Dynamic: true})
	idx.Add("b", ExistingRecord{ID: 2, Dynamic: false})
	idx.Add("c", ExistingRecord{ID: 3, Dynamic: true})

	rec, ok := idx.Take("a")
	assert.True(t, ok)
	assert.EqualValues(t, 1, rec.ID)

	_, ok = idx.Take("a")
	assert.False(t, ok)

	stale := idx.Stale()
	assert.Len(t, stale, 1)
	assert.EqualValues(t, 3, stale[0].ID)
}

func TestTally(t *testing.T) {
	tally := Tally{}
	tally.Mark(StateMatched)
	tally.Mark(StateMatched)
	tally.Mark(StateLinked)
	tally.MarkN(StateDeleted, 3)

	fields := tally.Fields()
	assert.Len(t, fields, 4)
	assert.Equal(t, "matched", fields[0].Key)
	assert.EqualValues(t, 2, fields[0].Integer)
	assert.Equal(t, "linked", fields[1].Key)
	assert.EqualValues(t, 1, fields[1].Integer)
	assert.Equal(t, "deleted", fields[2].Key)
	assert.EqualValues(t, 3, fields[2].Integer)
	assert.Equal(t, "skipped", fields[3].Key)
	assert.EqualValues(t, 0, fields[3].Integer)
}

func TestItemStateString(t *testing.T) {
	assert.Equal(t, "prepared", StatePrepared.String())
	assert.Equal(t, "matched", StateMatched.String())
	assert.Equal(t, "linked", StateLinked.String())
	assert.Equal(t, "deleted", StateDeleted.String())
	assert.Equal(t, "skipped", StateSkipped.String())
}
