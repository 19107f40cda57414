package main

import (
	"encoding/json"
	"os"
)

// Config mirrors the flags libecctl accepts, loadable from either the
// command line or a JSON file via -c, the same override pattern the
// teacher's kcptun client uses for its own Config.
type Config struct {
	Backend    string `json:"backend"`
	K          int    `json:"k"`
	M          int    `json:"m"`
	W          int    `json:"w"`
	HD         int    `json:"hd"`
	Chksum     string `json:"chksum"`
	ForceCheck bool   `json:"forcecheck"`
}

// parseJSONConfig overrides cfg's fields from a JSON file, the same override
// semantics as kcptun's own parseJSONConfig: an explicit -c always wins over
// flags parsed earlier in the Action.
func parseJSONConfig(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(cfg)
}
