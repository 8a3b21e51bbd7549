// Package preflight enforces the repository preconditions a workflow run depends on.
//
// Violations are returned as FatalPreconditionError values carrying a remediation
// command. The dirty working tree check offers three gated remediations first.
package preflight
