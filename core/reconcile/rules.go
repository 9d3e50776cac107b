package reconcile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// RuleOutcome enumerates the possible results of a rule evaluation.
// It replaces exception-driven control flow with an explicit variant.
type RuleOutcome int

const (
	// RuleUnchanged leaves the item as submitted.
	RuleUnchanged RuleOutcome = iota
	// RuleRewritten carries replacement fields for the item.
	RuleRewritten
	// RuleExcluded marks the item for exclusion from the import.
	RuleExcluded
	// RuleRedirected moves the item to a different (ancestor) entity scope;
	// the resulting record also applies to subordinate scopes.
	RuleRedirected
)

// RuleInput is the raw field view handed to the rule engine for one item.
type RuleInput struct {
	// Name is the item's display name after field mapping.
	Name string
	// Manufacturer is the submitted manufacturer name, "" when absent.
	Manufacturer string
	// OldVersion is the previously submitted version, "" when unknown.
	OldVersion string
	// EntityID is the configuration scope the item would be created in.
	EntityID int
	// SystemCategory is the agent-reported system category, "" when absent.
	SystemCategory string
}

// RuleResult is the transformed field view returned by the rule engine.
// Fields other than Outcome are read only for the outcomes that set them.
type RuleResult struct {
	Outcome RuleOutcome

	// Name and Version replace the submitted values when Outcome is
	// RuleRewritten and the field is non-empty.
	Name    string
	Version string
	// Manufacturer replaces the submitted manufacturer name when non-empty.
	Manufacturer string
	// EntityID is the redirect target when Outcome is RuleRedirected.
	EntityID int
}

// RuleEngine transforms incoming items before they are compared. The rule
// language itself is an external concern; reconcilers consume the engine as
// a black-box function from raw fields to transformed fields.
type RuleEngine interface {
	// Apply evaluates all rules against one item.
	Apply(in RuleInput) RuleResult
	// Count returns the number of active rules, letting callers skip the
	// engine entirely for empty rule sets.
	Count() int
}

// NoopRules is a RuleEngine with no rules; every item passes unchanged.
type NoopRules struct{}

// Apply returns the unchanged outcome.
func (NoopRules) Apply(RuleInput) RuleResult { return RuleResult{Outcome: RuleUnchanged} }

// Count returns zero.
func (NoopRules) Count() int { return 0 }

// DictionaryRule is one configured normalization rule. Matching is a
// case-insensitive prefix match on the item name.
type DictionaryRule struct {
	// MatchPrefix selects the items this rule applies to.
	MatchPrefix string `json:"match_prefix"`
	// Exclude drops matching items from the import.
	Exclude bool `json:"exclude"`
	// SetName rewrites the item name when non-empty.
	SetName string `json:"set_name"`
	// SetVersion rewrites the item version when non-empty.
	SetVersion string `json:"set_version"`
	// SetManufacturer rewrites the manufacturer when non-empty.
	SetManufacturer string `json:"set_manufacturer"`
	// RedirectEntity moves the item to this entity when set.
	RedirectEntity *int `json:"redirect_entity"`
}

// DictionaryRules evaluates a fixed ordered rule list; the first matching
// rule wins.
type DictionaryRules struct {
	rules []DictionaryRule
}

// NewDictionaryRules builds an engine over the given rules.
func NewDictionaryRules(rules []DictionaryRule) *DictionaryRules {
	return &DictionaryRules{rules: rules}
}

// LoadRulesFile reads a JSON rule list from path. An empty path yields the
// no-op engine.
func LoadRulesFile(path string) (RuleEngine, error) {
	if path == "" {
		return NoopRules{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules []DictionaryRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}
	return NewDictionaryRules(rules), nil
}

// Count returns the number of configured rules.
func (d *DictionaryRules) Count() int { return len(d.rules) }

// Apply evaluates the rule list against one item.
func (d *DictionaryRules) Apply(in RuleInput) RuleResult {
	name := strings.ToLower(in.Name)
	for _, rule := range d.rules {
		if rule.MatchPrefix != "" && !strings.HasPrefix(name, strings.ToLower(rule.MatchPrefix)) {
			continue
		}

		if rule.Exclude {
			return RuleResult{Outcome: RuleExcluded}
		}

		res := RuleResult{
			Name:         rule.SetName,
			Version:      rule.SetVersion,
			Manufacturer: rule.SetManufacturer,
		}
		if rule.RedirectEntity != nil && *rule.RedirectEntity != in.EntityID {
			res.Outcome = RuleRedirected
			res.EntityID = *rule.RedirectEntity
			return res
		}
		if res.Name != "" || res.Version != "" || res.Manufacturer != "" {
			res.Outcome = RuleRewritten
			return res
		}
		return RuleResult{Outcome: RuleUnchanged}
	}
	return RuleResult{Outcome: RuleUnchanged}
}
