// Package branchname normalizes user-entered branch names and validates them against git's reference grammar.
package branchname
