// Package cli constructs the branchflow command-line interface. It wires the
// Cobra root command, the configuration loader, structured logging and the
// workflow machine that drives one feature-branch cycle per invocation.
package cli
