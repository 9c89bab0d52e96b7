package config

// Source indicates where a configuration value came from.
type Source string

const (
	// SourceDefault indicates a built-in default.
	SourceDefault Source = "default"

	// SourceGlobal indicates ~/.config/grove/config.yaml.
	SourceGlobal Source = "global"

	// SourceLocal indicates .grove.yaml in the repository root.
	SourceLocal Source = "local"

	// SourceEnv indicates a GROVE_* environment variable.
	SourceEnv Source = "env"

	// SourceFlag indicates a command-line flag.
	SourceFlag Source = "flag"
)
