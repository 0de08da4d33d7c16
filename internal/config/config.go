package config

import (
	"fmt"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/freq"
)

// Toggles enables or disables whole audit families. A disabled family is
// skipped entirely: its checks emit no ledger rows at all.
type Toggles struct {
	FrequencyAudit bool
	ProfilesAudit  bool
}

// CardinalityLimit declares a per-entity multiplicity ceiling for one table.
type CardinalityLimit struct {
	Table   string
	GroupBy string
	Limit   int
}

// ProfileTable names one old/new profile table pair audited for drift,
// keyed by its profile-identifier field.
type ProfileTable struct {
	Table   string
	IDField string
}

// Config carries every tunable of an audit run. It is an immutable value
// passed explicitly into the engine entry points; there are no process-wide
// settings.
type Config struct {
	// Campaign frequencies: the SSB being migrated away from and to.
	SSBPre  string
	SSBPost string

	// Allow-lists for the scope resolver and the presence checks.
	AllowedSSBPre    []string
	AllowedSSBPost   []string
	AllowedARFCNPre  []string
	AllowedARFCNPost []string

	// Band restricts which carriers count as part of the campaign.
	Band freq.Band

	Toggles           Toggles
	CardinalityLimits []CardinalityLimit
	ProfileTables     []ProfileTable

	// IgnoredFields are excluded from field-level comparisons (volatile
	// fields such as creation timestamps).
	IgnoredFields []string

	// ExtraInfoLimit caps the affected-identifier lists on metric rows.
	ExtraInfoLimit int
}

// Default returns the configuration matching the standard N77 campaign.
func Default() Config {
	return Config{
		SSBPre:           "648672",
		SSBPost:          "647328",
		AllowedSSBPre:    []string{"647328", "648672", "653952"},
		AllowedSSBPost:   []string{"647328", "648672", "653952"},
		AllowedARFCNPre:  []string{"650006", "654652", "655324", "655984", "656656"},
		AllowedARFCNPost: []string{"650006", "654652", "655324", "655984", "656656"},
		Band:             freq.Band{Low: 646600, High: 660000},
		Toggles: Toggles{
			FrequencyAudit: true,
			ProfilesAudit:  true,
		},
		CardinalityLimits: []CardinalityLimit{
			{Table: "NRFreqRelation", GroupBy: "nRCellCUId", Limit: 16},
			{Table: "NRFrequency", GroupBy: "NodeId", Limit: 64},
			{Table: "GUtranFreqRelation", GroupBy: "eUtranCellFDDId", Limit: 16},
			{Table: "GUtranSyncSignalFrequency", GroupBy: "NodeId", Limit: 24},
		},
		ProfileTables: []ProfileTable{
			{Table: "McpcPCellNrFreqRelProfileUeCfg", IDField: "mcpcPCellNrFreqRelProfileId"},
			{Table: "McpcPCellProfileUeCfg", IDField: "mcpcPCellProfileId"},
			{Table: "UlQualMcpcMeasCfg", IDField: "ulQualMcpcMeasCfgId"},
			{Table: "McpcPSCellProfileUeCfg", IDField: "mcpcPSCellProfileId"},
			{Table: "TrStSaCellProfileUeCfg", IDField: "trStSaCellProfileId"},
			{Table: "McpcPCellEUtranFreqRelProfileUeCfg", IDField: "mcpcPCellEUtranFreqRelProfileId"},
		},
		IgnoredFields:  []string{"timeOfCreation"},
		ExtraInfoLimit: 50,
	}
}

// EffectiveSSBPre returns the pre allow-list, falling back to the single
// campaign pre value when no list is configured.
func (c Config) EffectiveSSBPre() []string {
	if len(c.AllowedSSBPre) > 0 {
		return c.AllowedSSBPre
	}
	return []string{c.SSBPre}
}

// EffectiveSSBPost returns the post allow-list, falling back to the single
// campaign post value when no list is configured.
func (c Config) EffectiveSSBPost() []string {
	if len(c.AllowedSSBPost) > 0 {
		return c.AllowedSSBPost
	}
	return []string{c.SSBPost}
}

// Plan returns the frequency plan the parsers classify against.
func (c Config) Plan() freq.Plan {
	return freq.Plan{PreValue: c.SSBPre, PostValue: c.SSBPost}
}

// IgnoredFieldSet returns the ignored fields as a membership set.
func (c Config) IgnoredFieldSet() map[string]struct{} {
	out := make(map[string]struct{}, len(c.IgnoredFields))
	for _, f := range c.IgnoredFields {
		out[f] = struct{}{}
	}
	return out
}

// Validate rejects configurations the engines cannot run with.
func (c Config) Validate() error {
	if c.SSBPre == "" || c.SSBPost == "" {
		return fmt.Errorf("config: both the pre and post SSB values are required")
	}
	if c.SSBPre == c.SSBPost {
		return fmt.Errorf("config: pre and post SSB values must differ (got %s)", c.SSBPre)
	}
	if c.ExtraInfoLimit <= 0 {
		return fmt.Errorf("config: extra-info limit must be positive")
	}
	return nil
}
