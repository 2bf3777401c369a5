package main

import (
	"flag"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/charmctl/internal/config"
	"github.com/danmuck/charmctl/internal/observability"
	"github.com/danmuck/charmctl/internal/unitd"
)

func main() {
	configPath := flag.String("config", "", "unit config TOML; defaults apply when empty")
	flag.Parse()

	observability.InitLogger("charmd")

	cfg := config.DefaultUnitConfig()
	if *configPath != "" {
		loaded, err := config.LoadUnitConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load unit config")
		}
		cfg = loaded
		log.Info().Str("path", *configPath).Msg("loaded unit config")
	}

	log.Info().Str("unit", cfg.Unit).Str("http", cfg.HTTPAddr).Msg("charmd starting")
	if err := unitd.NewService(cfg).Run(); err != nil {
		log.Fatal().Err(err).Msg("charmd stopped")
	}
}
