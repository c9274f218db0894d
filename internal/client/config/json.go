package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/aguerraochoa/Speakance-sub000/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals are
// integer seconds so config files stay hand-editable.
type JsonConfig struct {
	ServerAddr                 string `json:"server_addr"`
	DataDir                    string `json:"data_dir"`
	OnlineCheckIntervalSeconds int    `json:"online_check_interval_seconds"`
	RequestTimeoutSeconds      int    `json:"request_timeout_seconds"`
}

// parseJson overlays cfg with values from the JSON file named by the -c or
// -config flag. Absent flag means no file is loaded. Empty or zero JSON
// fields leave the current value alone, so a partial file only overrides
// what it names. Read or unmarshal errors panic; the CLI has no way to run
// with a config the user explicitly pointed it at but it cannot parse.
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

	if jc.ServerAddr != "" {
		cfg.ServerAddr = jc.ServerAddr
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.OnlineCheckIntervalSeconds > 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckIntervalSeconds) * time.Second
	}
	if jc.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeoutSeconds) * time.Second
	}
}
