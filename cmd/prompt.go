package cmd

import (
	"github.com/manifoldco/promptui"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

// confirm asks a yes/no question on the terminal. autoApprove skips the prompt.
func confirm(label string, autoApprove bool) (bool, error) {
	if autoApprove {
		return true, nil
	}

	prompt := promptui.Select{
		Label: label,
		Items: []string{PromptYes, PromptNo},
	}
	_, answer, err := prompt.Run()
	if err != nil {
		return false, err
	}
	return answer == PromptYes, nil
}

// choose lets the user pick a subset of items one by one. Picking done ends
// the selection.
func choose(label, done string, items []string) ([]string, error) {
	picked := make([]string, 0, len(items))
	left := append([]string(nil), items...)

	for len(left) > 0 {
		prompt := promptui.Select{
			Label: label,
			Items: append([]string{done}, left...),
		}
		idx, selected, err := prompt.Run()
		if err != nil {
			return nil, err
		}
		if idx == 0 {
			break
		}
		picked = append(picked, selected)
		left = append(left[:idx-1], left[idx:]...)
	}
	return picked, nil
}

// ask reads a free-text answer. An empty answer is returned as is.
func ask(label string) (string, error) {
	prompt := promptui.Prompt{Label: label}
	return prompt.Run()
}
