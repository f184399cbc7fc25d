package config

// Log configures the process logger.
type Log struct {
	Level      string `envconfig:"LEVEL" default:"info"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[ledger]"`
}

// Ledger configures the ledger engine.
type Ledger struct {
	// WarnUnhandled logs a warning for errors no subscriber receives.
	WarnUnhandled bool `envconfig:"WARN_UNHANDLED" default:"true"`
}

// Script configures the script runner.
type Script struct {
	FailOnError bool `envconfig:"FAIL_ON_ERROR" default:"false"`
	NoColor     bool `envconfig:"NO_COLOR" default:"false"`
}

type App struct {
	Env    string  `envconfig:"APP_ENV" default:"development"`
	Log    *Log    `envconfig:"LOG"`
	Ledger *Ledger `envconfig:"LEDGER"`
	Script *Script `envconfig:"SCRIPT"`
}
