// Package config manages vaultsync user configuration.
//
// Settings are read from a YAML file (by default
// $XDG_CONFIG_HOME/vaultsync/config.yaml) and can be overridden with
// VAULTSYNC_* environment variables. Missing files and keys fall back to
// the defaults returned by Default.
package config
