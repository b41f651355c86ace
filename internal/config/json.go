package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/agentdesk/internal/flagx"
	"github.com/dmitrijs2005/agentdesk/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config. Absent fields keep their earlier (default) values.
type JsonConfig struct {
	StoreDriver         *string        `json:"store_driver"`
	StorePath           *string        `json:"store_path"`
	SessionPath         *string        `json:"session_path"`
	SessionSecret       *string        `json:"session_secret"`
	TokenValidity       timex.Duration `json:"token_validity"`
	OriginBaseURL       *string        `json:"origin_base_url"`
	APIPrefix           *string        `json:"api_prefix"`
	StaticPrefixes      []string       `json:"static_prefixes"`
	StaticExtensions    []string       `json:"static_extensions"`
	ShellAssets         []string       `json:"shell_assets"`
	CacheVersion        *string        `json:"cache_version"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	SyncTag             *string        `json:"sync_tag"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
}

// parseJson overlays Config with values loaded from a JSON file resolved via
// the -c/-config flags. If no file is given the function returns without
// touching cfg. Read or unmarshal errors panic; config must be correct if
// supplied at all.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.StoreDriver != nil {
		cfg.StoreDriver = *jc.StoreDriver
	}
	if jc.StorePath != nil {
		cfg.StorePath = *jc.StorePath
	}
	if jc.SessionPath != nil {
		cfg.SessionPath = *jc.SessionPath
	}
	if jc.SessionSecret != nil {
		cfg.SessionSecret = *jc.SessionSecret
	}
	if jc.TokenValidity.Duration != 0 {
		cfg.TokenValidity = time.Duration(jc.TokenValidity.Duration)
	}
	if jc.OriginBaseURL != nil {
		cfg.OriginBaseURL = *jc.OriginBaseURL
	}
	if jc.APIPrefix != nil {
		cfg.APIPrefix = *jc.APIPrefix
	}
	if jc.StaticPrefixes != nil {
		cfg.StaticPrefixes = jc.StaticPrefixes
	}
	if jc.StaticExtensions != nil {
		cfg.StaticExtensions = jc.StaticExtensions
	}
	if jc.ShellAssets != nil {
		cfg.ShellAssets = jc.ShellAssets
	}
	if jc.CacheVersion != nil {
		cfg.CacheVersion = *jc.CacheVersion
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.SyncTag != nil {
		cfg.SyncTag = *jc.SyncTag
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
}
