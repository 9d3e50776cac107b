package reconcile

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ItemState tracks an incoming item through the reconciliation pipeline.
// Every item starts Prepared; Linked, Deleted and Skipped are terminal.
type ItemState int

const (
	// StatePrepared means the item passed field mapping and rule transforms.
	StatePrepared ItemState = iota
	// StateMatched means the item was matched against an existing record.
	StateMatched
	// StateLinked means the item was persisted (created or updated).
	StateLinked
	// StateDeleted means the existing record went stale and was removed.
	StateDeleted
	// StateSkipped means the item was excluded or was a duplicate.
	StateSkipped
)

// String returns the state name for logs.
func (s ItemState) String() string {
	switch s {
	case StatePrepared:
		return "prepared"
	case StateMatched:
		return "matched"
	case StateLinked:
		return "linked"
	case StateDeleted:
		return "deleted"
	case StateSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Tally counts the items of one reconciliation pass per state, feeding the
// pass summary log line.
type Tally map[ItemState]int

// Mark records one item reaching the given state.
func (t Tally) Mark(s ItemState) { t[s]++ }

// MarkN records n items reaching the given state at once.
func (t Tally) MarkN(s ItemState, n int) { t[s] += n }

// Fields renders the terminal states as zap fields in a fixed order.
func (t Tally) Fields() []zap.Field {
	return []zap.Field{
		zap.Int(StateMatched.String(), t[StateMatched]),
		zap.Int(StateLinked.String(), t[StateLinked]),
		zap.Int(StateDeleted.String(), t[StateDeleted]),
		zap.Int(StateSkipped.String(), t[StateSkipped]),
	}
}

// Conf is the inventory configuration consulted by the protocol layer and
// the reconcilers. Loaded from the "inventory" config section.
type Conf struct {
	// ImportSoftware enables the software category.
	ImportSoftware bool `mapstructure:"import_software" default:"true"`
	// ComponentGraphicCard enables the graphic card device category.
	ComponentGraphicCard bool `mapstructure:"component_graphiccard" default:"true"`
	// ComponentSoundCard enables the sound card device category.
	ComponentSoundCard bool `mapstructure:"component_soundcard" default:"true"`
	// ImportDatabases enables the database instance category.
	ImportDatabases bool `mapstructure:"import_databases" default:"true"`
	// ImportRemoteManagement enables the remote management category.
	ImportRemoteManagement bool `mapstructure:"import_remote_management" default:"true"`
	// SoftwareEntity is the entity software records are created in.
	// Negative means "inherit from the parent asset's entity".
	SoftwareEntity int `mapstructure:"software_entity" default:"-1"`
	// DefaultFrequency is the agent contact frequency in hours, reported as
	// the expiration in agent-facing responses.
	DefaultFrequency int `mapstructure:"default_frequency" default:"24"`
	// AgentHeader is the request header carrying the agent identity. Clients
	// presenting it receive structured error payloads.
	AgentHeader string `mapstructure:"agent_header" default:"Agent-ID"`
	// BrotliEnabled advertises and accepts the brotli codec. When false a
	// brotli request is rejected with 415.
	BrotliEnabled bool `mapstructure:"brotli_enabled" default:"true"`
	// ArchiveSubmissions stores the raw decompressed payload of each
	// accepted inventory in object storage.
	ArchiveSubmissions bool `mapstructure:"archive_submissions" default:"false"`
	// RulesFile is the path of a JSON file holding dictionary rules,
	// empty for no rules.
	RulesFile string `mapstructure:"rules_file" default:""`
}

// Context carries the per-request reconciliation state. It replaces ambient
// globals: everything a reconciler consults is passed in explicitly.
type Context struct {
	// DB is the persistence handle for this request.
	DB *gorm.DB
	// Logger is the request-scoped logger.
	Logger *zap.Logger
	// Conf is the inventory configuration.
	Conf Conf

	// Itemtype and ItemID identify the parent asset all category records
	// attach to.
	Itemtype string
	ItemID   int64

	// EntityID is the scope identifier of the parent asset.
	EntityID int

	// OSID is the operating system context resolved for this submission,
	// zero when unknown.
	OSID int64

	// Partial marks a partial submission: existing records absent from the
	// submission must not be deleted.
	Partial bool

	// AgentID identifies the submitting agent, empty when anonymous.
	AgentID string
}
