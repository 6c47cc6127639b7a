package configs

import (
	"flag"
	"os"

	"github.com/hilthontt/embermud/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file from the --config flag, the
// EMBERMUD_CONFIG env var or a fixed candidate list. An empty result means
// run on defaults and env overrides alone.
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("EMBERMUD_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"/etc/embermud/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
