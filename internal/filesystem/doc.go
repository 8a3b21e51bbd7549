// Package filesystem adapts operating system file primitives to the interfaces consumed by other packages.
package filesystem
