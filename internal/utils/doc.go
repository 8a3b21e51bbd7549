// Package utils hosts the ambient infrastructure of the command-line application:
// the zap logger factory, the viper configuration loader and home directory expansion.
package utils
