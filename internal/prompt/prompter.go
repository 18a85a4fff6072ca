package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	cancelledMessageConstant                  = "cancelled"
	inputPromptTemplateConstant               = "%s: "
	inputDefaultPromptTemplateConstant        = "%s [%s]: "
	selectOptionTemplateConstant              = "  %d) %s\n"
	selectPromptTemplateConstant              = "%s [%d]: "
	selectHeaderTemplateConstant              = "%s\n"
	selectInvalidTemplateConstant             = "Please enter a number between 1 and %d.\n"
	confirmPromptTemplateConstant             = "%s [%s]: "
	confirmDefaultYesHintConstant             = "Y/n"
	confirmDefaultNoHintConstant              = "y/N"
	confirmInvalidMessageConstant             = "Please answer y or n.\n"
	noOptionsMessageConstant                  = "no options to choose from"
	readErrorTemplateConstant                 = "unable to read answer: %w"
	selectionAttemptsLimitConstant            = 3
	selectionAttemptsExceededTemplateConstant = "no valid selection after %d attempts"
	affirmativeShortAnswerConstant            = "y"
	affirmativeLongAnswerConstant             = "yes"
	negativeShortAnswerConstant               = "n"
	negativeLongAnswerConstant                = "no"
	firstSelectableOptionNumberConstant       = 1
)

var (
	// ErrCancelled indicates the user aborted a prompt.
	ErrCancelled = errors.New(cancelledMessageConstant)
	// ErrNoOptions indicates a selection was requested over an empty option list.
	ErrNoOptions = errors.New(noOptionsMessageConstant)
)

// Prompter gathers answers for interactive workflows.
type Prompter interface {
	Input(label string, defaultValue string) (string, error)
	Select(label string, options []string, defaultIndex int) (int, error)
	Confirm(label string, defaultValue bool) (bool, error)
}

// ConsolePrompter asks questions on an output writer and reads line answers from an input reader.
// End of input is treated as cancellation.
type ConsolePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewConsolePrompter constructs a prompter from the provided reader and writer.
func NewConsolePrompter(input io.Reader, output io.Writer) *ConsolePrompter {
	if output == nil {
		output = io.Discard
	}
	return &ConsolePrompter{reader: bufio.NewReader(input), writer: output}
}

// Input asks for free text. An empty answer yields defaultValue.
func (prompter *ConsolePrompter) Input(label string, defaultValue string) (string, error) {
	if len(defaultValue) > 0 {
		fmt.Fprintf(prompter.writer, inputDefaultPromptTemplateConstant, label, defaultValue)
	} else {
		fmt.Fprintf(prompter.writer, inputPromptTemplateConstant, label)
	}

	answer, readError := prompter.readLine()
	if readError != nil {
		return "", readError
	}
	if len(answer) == 0 {
		return defaultValue, nil
	}
	return answer, nil
}

// Select lists options numbered from one and returns the zero-based index of the chosen option.
func (prompter *ConsolePrompter) Select(label string, options []string, defaultIndex int) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}
	if defaultIndex < 0 || defaultIndex >= len(options) {
		defaultIndex = 0
	}

	fmt.Fprintf(prompter.writer, selectHeaderTemplateConstant, label)
	for optionIndex, option := range options {
		fmt.Fprintf(prompter.writer, selectOptionTemplateConstant, optionIndex+firstSelectableOptionNumberConstant, option)
	}

	for attempt := 0; attempt < selectionAttemptsLimitConstant; attempt++ {
		fmt.Fprintf(prompter.writer, selectPromptTemplateConstant, label, defaultIndex+firstSelectableOptionNumberConstant)
		answer, readError := prompter.readLine()
		if readError != nil {
			return 0, readError
		}
		if len(answer) == 0 {
			return defaultIndex, nil
		}
		selectedNumber, parseError := strconv.Atoi(answer)
		if parseError == nil && selectedNumber >= firstSelectableOptionNumberConstant && selectedNumber <= len(options) {
			return selectedNumber - firstSelectableOptionNumberConstant, nil
		}
		fmt.Fprintf(prompter.writer, selectInvalidTemplateConstant, len(options))
	}
	return 0, fmt.Errorf(selectionAttemptsExceededTemplateConstant, selectionAttemptsLimitConstant)
}

// Confirm asks a yes/no question. An empty answer yields defaultValue.
func (prompter *ConsolePrompter) Confirm(label string, defaultValue bool) (bool, error) {
	hint := confirmDefaultNoHintConstant
	if defaultValue {
		hint = confirmDefaultYesHintConstant
	}

	for attempt := 0; attempt < selectionAttemptsLimitConstant; attempt++ {
		fmt.Fprintf(prompter.writer, confirmPromptTemplateConstant, label, hint)
		answer, readError := prompter.readLine()
		if readError != nil {
			return false, readError
		}
		switch strings.ToLower(answer) {
		case "":
			return defaultValue, nil
		case affirmativeShortAnswerConstant, affirmativeLongAnswerConstant:
			return true, nil
		case negativeShortAnswerConstant, negativeLongAnswerConstant:
			return false, nil
		}
		fmt.Fprint(prompter.writer, confirmInvalidMessageConstant)
	}
	return defaultValue, nil
}

func (prompter *ConsolePrompter) readLine() (string, error) {
	line, readError := prompter.reader.ReadString('\n')
	if readError != nil {
		if errors.Is(readError, io.EOF) {
			if len(strings.TrimSpace(line)) > 0 {
				return strings.TrimSpace(line), nil
			}
			return "", ErrCancelled
		}
		return "", fmt.Errorf(readErrorTemplateConstant, readError)
	}
	return strings.TrimSpace(line), nil
}
