package script

import (
	_ "embed"
)

//go:embed demo.yaml
var demoYAML []byte

// Demo returns the built-in demonstration script.
func Demo() (*Script, error) {
	return ParseBytes(demoYAML)
}
