// Package gitclient abstracts the version-control queries and mutations used by
// the branch workflow.
//
// Client exposes one method per logical query so that callers never parse git
// invocations themselves, while Command values describe mutations that are
// displayed verbatim and executed only after approval. ShellClient implements
// Client on top of execshell.
package gitclient
