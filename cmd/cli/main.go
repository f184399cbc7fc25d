package main

import (
	"github.com/amirasaad/ledgerbus/internal/cli"
	log "github.com/charmbracelet/log"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}
