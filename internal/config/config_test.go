package config

import (
	"reflect"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.SSBPre == cfg.SSBPost {
		t.Fatalf("default campaign values must differ")
	}
	if len(cfg.CardinalityLimits) == 0 || len(cfg.ProfileTables) == 0 {
		t.Fatalf("default catalog tables missing")
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cfg := Default()
	cfg.SSBPre = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing pre value")
	}

	cfg = Default()
	cfg.SSBPost = cfg.SSBPre
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for equal pre/post values")
	}

	cfg = Default()
	cfg.ExtraInfoLimit = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for non-positive extra-info limit")
	}
}

func TestEffectiveListsFallBackToCampaignValues(t *testing.T) {
	cfg := Default()
	cfg.AllowedSSBPre = nil
	cfg.AllowedSSBPost = nil

	if got := cfg.EffectiveSSBPre(); !reflect.DeepEqual(got, []string{cfg.SSBPre}) {
		t.Fatalf("EffectiveSSBPre = %v", got)
	}
	if got := cfg.EffectiveSSBPost(); !reflect.DeepEqual(got, []string{cfg.SSBPost}) {
		t.Fatalf("EffectiveSSBPost = %v", got)
	}

	cfg.AllowedSSBPre = []string{"1", "2"}
	if got := cfg.EffectiveSSBPre(); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("explicit allow-list ignored: %v", got)
	}
}

func TestPlanCarriesCampaignValues(t *testing.T) {
	cfg := Default()
	plan := cfg.Plan()
	if plan.PreValue != cfg.SSBPre || plan.PostValue != cfg.SSBPost {
		t.Fatalf("plan %+v does not match config", plan)
	}
}

func TestIgnoredFieldSet(t *testing.T) {
	cfg := Default()
	set := cfg.IgnoredFieldSet()
	if _, ok := set["timeOfCreation"]; !ok {
		t.Fatalf("timeOfCreation missing from ignored set")
	}
}
