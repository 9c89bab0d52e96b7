// Package config provides hierarchical configuration for the grove CLI.
//
// Values resolve with clear precedence, highest first:
//  1. Command-line flags
//  2. GROVE_* environment variables
//  3. Local config (.grove.yaml in the repository root)
//  4. Global config (~/.config/grove/config.yaml)
//  5. Built-in defaults
//
// Each resolved value remembers its source, so `grove config list` can
// show where a setting came from. Settings use flat dotted keys
// ("tmux.layout", "sync.strategy"); Settings() assembles the typed view
// the rest of the program consumes.
package config
