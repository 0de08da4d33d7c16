package config

import (
	"log"

	"github.com/spf13/viper"
)

// Load reads config.yaml from configPath, layering environment overrides
// (AUDIT_SSB_PRE, AUDIT_SSB_POST, ...) over defaults. A missing file is not
// an error; defaults plus env are enough to run.
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("AUDIT")

	v.BindEnv("ssb_pre")
	v.BindEnv("ssb_post")
	v.BindEnv("frequency_audit")
	v.BindEnv("profiles_audit")

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config.yaml found, using defaults and env vars")
	} else {
		log.Println("Loaded config.yaml")
	}

	if v.IsSet("ssb_pre") {
		cfg.SSBPre = v.GetString("ssb_pre")
	}
	if v.IsSet("ssb_post") {
		cfg.SSBPost = v.GetString("ssb_post")
	}
	if v.IsSet("allowed_ssb_pre") {
		cfg.AllowedSSBPre = v.GetStringSlice("allowed_ssb_pre")
	}
	if v.IsSet("allowed_ssb_post") {
		cfg.AllowedSSBPost = v.GetStringSlice("allowed_ssb_post")
	}
	if v.IsSet("allowed_arfcn_pre") {
		cfg.AllowedARFCNPre = v.GetStringSlice("allowed_arfcn_pre")
	}
	if v.IsSet("allowed_arfcn_post") {
		cfg.AllowedARFCNPost = v.GetStringSlice("allowed_arfcn_post")
	}
	if v.IsSet("band.low") {
		cfg.Band.Low = v.GetInt("band.low")
	}
	if v.IsSet("band.high") {
		cfg.Band.High = v.GetInt("band.high")
	}
	if v.IsSet("frequency_audit") {
		cfg.Toggles.FrequencyAudit = v.GetBool("frequency_audit")
	}
	if v.IsSet("profiles_audit") {
		cfg.Toggles.ProfilesAudit = v.GetBool("profiles_audit")
	}
	if v.IsSet("ignored_fields") {
		cfg.IgnoredFields = v.GetStringSlice("ignored_fields")
	}
	if v.IsSet("extra_info_limit") {
		cfg.ExtraInfoLimit = v.GetInt("extra_info_limit")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
