package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/xbackend/internal/flagx"
	"github.com/dmitrijs2005/xbackend/internal/timex"
)

// JsonConfig is the on-disk shape of the CLI config file. Every key is
// optional; a missing key keeps the value from the previous stage.
type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	Output             OutputFormat    `json:"output"`
}

// parseJson overlays cfg with the keys present in the file named by -c,
// -config or $XBCLI_CONFIG. Read and decode failures panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigFile(ConfigEnv)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.Output != "" {
		cfg.Output = jc.Output
	}
}
