package data

import "embed"

var (
	// Config holds config.yaml, the configuration used when no config file
	// is given.
	//go:embed config.yaml
	Config embed.FS
)
