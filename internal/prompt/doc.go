// Package prompt supplies the interactive capability used by every workflow
// component: yes/no confirmations, free-text input, and single choices.
//
// LinePrompter reads answers line by line from any reader and suits pipes and
// scripted sessions; FormPrompter renders terminal forms with
// charmbracelet/huh. NewPrompter picks between them.
package prompt
