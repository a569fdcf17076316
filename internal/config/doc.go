// Package config loads the optional twbmig.yaml project file.
//
// Precedence, lowest to highest: Default, twbmig.yaml, environment
// (TWBMIG_* variables, optionally from a .env file), command-line flags.
package config
