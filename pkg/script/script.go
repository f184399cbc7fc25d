// Package script loads YAML operation scripts and replays them against a
// ledger, producing a deterministic transcript.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Step operations. Everything except OpRegister and OpBalances maps to an
// operation event.
const (
	OpRegister    = "register"
	OpAdd         = "add"
	OpGet         = "get"
	OpWithdraw    = "withdraw"
	OpSend        = "send"
	OpChangeLimit = "changeLimit"
	OpBalances    = "balances"
)

// ErrInvalidScript wraps every load and validation failure.
var ErrInvalidScript = errors.New("invalid script")

// Script is a named sequence of steps.
type Script struct {
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps" validate:"required,min=1,dive"`
}

// Step is one ledger call. Only the fields its Op uses are read. Amounts and
// balances are not range checked here: the ledger reports bad values on its
// error channel like any other caller's.
type Step struct {
	Op      string  `yaml:"op" validate:"required,oneof=register add get withdraw send changeLimit balances"`
	Name    string  `yaml:"name,omitempty" validate:"required_if=Op register"`
	Balance float64 `yaml:"balance,omitempty"`
	Limit   string  `yaml:"limit,omitempty"`
	Account int64   `yaml:"account,omitempty" validate:"required_if=Op add,required_if=Op get,required_if=Op withdraw,required_if=Op changeLimit"`
	From    int64   `yaml:"from,omitempty" validate:"required_if=Op send"`
	To      int64   `yaml:"to,omitempty" validate:"required_if=Op send"`
	Amount  float64 `yaml:"amount,omitempty"`
}

var validate = validator.New()

// Parse decodes and validates a script. Unknown keys are rejected.
func Parse(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScript)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	if err := validate.Struct(s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	return &s, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(b []byte) (*Script, error) {
	return Parse(bytes.NewReader(b))
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck
	return Parse(f)
}
