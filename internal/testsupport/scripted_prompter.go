package testsupport

import (
	"fmt"
	"strings"

	"github.com/temirov/branchflow/internal/prompt"
)

const scriptExhaustedTemplateConstant = "no scripted answer for question %q"

// ScriptedPrompter answers questions from queued answers keyed by Question.Key.
// Questions without a queued answer receive their default.
type ScriptedPrompter struct {
	answers map[string][]string
	hooks   map[string]func()
	Asked   []prompt.Question
}

// NewScriptedPrompter constructs an empty script.
func NewScriptedPrompter() *ScriptedPrompter {
	return &ScriptedPrompter{answers: map[string][]string{}, hooks: map[string]func(){}}
}

// Answer queues answers for the question identified by key.
func (prompter *ScriptedPrompter) Answer(key string, answers ...string) *ScriptedPrompter {
	prompter.answers[key] = append(prompter.answers[key], answers...)
	return prompter
}

// OnAsk registers a callback run every time the keyed question is asked, before it is answered.
func (prompter *ScriptedPrompter) OnAsk(key string, hook func()) *ScriptedPrompter {
	prompter.hooks[key] = hook
	return prompter
}

// AskedKeys lists the keys of every question asked so far, in order.
func (prompter *ScriptedPrompter) AskedKeys() []string {
	keys := make([]string, 0, len(prompter.Asked))
	for _, question := range prompter.Asked {
		keys = append(keys, question.Key)
	}
	return keys
}

// Confirm implements prompt.Prompter.
func (prompter *ScriptedPrompter) Confirm(question prompt.Question) (bool, error) {
	answer, scripted := prompter.next(question)
	if !scripted {
		return question.DefaultYes, nil
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "true":
		return true, nil
	default:
		return false, nil
	}
}

// Input implements prompt.Prompter.
func (prompter *ScriptedPrompter) Input(question prompt.Question) (string, error) {
	answer, scripted := prompter.next(question)
	if scripted {
		return answer, nil
	}
	if len(question.DefaultValue) > 0 {
		return question.DefaultValue, nil
	}
	return "", fmt.Errorf(scriptExhaustedTemplateConstant, question.Key)
}

// Choose implements prompt.Prompter.
func (prompter *ScriptedPrompter) Choose(question prompt.Question) (string, error) {
	return prompter.Input(question)
}

func (prompter *ScriptedPrompter) next(question prompt.Question) (string, bool) {
	prompter.Asked = append(prompter.Asked, question)
	if hook, registered := prompter.hooks[question.Key]; registered && hook != nil {
		hook()
	}

	queued := prompter.answers[question.Key]
	if len(queued) == 0 {
		return "", false
	}
	prompter.answers[question.Key] = queued[1:]
	return queued[0], true
}
