// Package testsupport provides deterministic doubles for workflow tests: a
// prompter that answers from a script keyed by question, and an in-memory
// repository that implements gitclient.Client.
package testsupport
