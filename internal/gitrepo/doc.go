// Package gitrepo parses remote URLs and derives review links for pushed branches.
package gitrepo
