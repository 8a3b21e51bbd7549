// Package gate presents every mutating git command to the user and runs only the approved ones.
package gate
