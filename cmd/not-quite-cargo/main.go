package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/lczyk/not-quite-cargo/pkg/errors"
)

func main() {
	if err := Execute(); err != nil {
		log.Error().Err(err).Msg("Fatal error")
		os.Exit(errors.ExitStatus(err))
	}
}
