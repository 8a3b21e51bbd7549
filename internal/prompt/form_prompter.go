package prompt

import "github.com/charmbracelet/huh"

const (
	affirmativeLabelConstant = "Yes"
	negativeLabelConstant    = "No"
)

// FormPrompter renders each question as a terminal form.
type FormPrompter struct{}

// NewFormPrompter constructs a FormPrompter.
func NewFormPrompter() *FormPrompter {
	return &FormPrompter{}
}

// Confirm renders a yes/no form preselected with the question default.
func (FormPrompter) Confirm(question Question) (bool, error) {
	answer := question.DefaultYes
	confirmError := huh.NewConfirm().
		Title(question.Text).
		Affirmative(affirmativeLabelConstant).
		Negative(negativeLabelConstant).
		Value(&answer).
		Run()
	if confirmError != nil {
		return false, confirmError
	}
	return answer, nil
}

// Input renders a text field prefilled with the default value.
func (FormPrompter) Input(question Question) (string, error) {
	answer := question.DefaultValue
	inputError := huh.NewInput().
		Title(question.Text).
		Value(&answer).
		Run()
	if inputError != nil {
		return "", inputError
	}
	return answer, nil
}

// Choose renders a single-selection list.
func (FormPrompter) Choose(question Question) (string, error) {
	answer := question.DefaultValue
	options := make([]huh.Option[string], 0, len(question.Options))
	for _, option := range question.Options {
		options = append(options, huh.NewOption(option.Label, option.Key))
	}

	selectError := huh.NewSelect[string]().
		Title(question.Text).
		Options(options...).
		Value(&answer).
		Run()
	if selectError != nil {
		return "", selectError
	}
	return answer, nil
}
