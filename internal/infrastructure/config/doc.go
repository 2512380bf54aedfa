// Package config loads the service configuration.
//
// Values come from a YAML file, then GRAYLOGIC_AV_* environment variables
// override selected keys (secrets belong there, not in the file). Load
// applies defaults for anything omitted and rejects invalid combinations
// before returning.
//
// The room inventory is a separate file named by room.topology_file and is
// parsed by the room package.
//
//	cfg, err := config.Load("configs/config.yaml")
package config
