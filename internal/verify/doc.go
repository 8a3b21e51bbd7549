// Package verify proves that a finished cycle left the repository clean, aligned and integrated.
package verify
