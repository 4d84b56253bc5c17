package prompt

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// ErrAborted is returned when the user aborts a prompt (Ctrl+C).
var ErrAborted = errors.New("aborted")

// ErrNotInteractive is returned when a prompt is needed but stdin is not a
// terminal.
var ErrNotInteractive = errors.New("stdin is not a terminal")

// IsAborted returns true if the error indicates the user aborted (Ctrl+C).
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, ErrAborted)
}

// Interactive reports whether prompts can be shown.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// wrapError converts promptui interrupt/abort errors to ErrAborted for consistent handling.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}

func run(p promptui.Prompt) (string, error) {
	if !Interactive() {
		return "", ErrNotInteractive
	}
	result, err := p.Run()
	return result, wrapError(err)
}

// Input prompts for text input.
func Input(label string, defaultValue string) (string, error) {
	return run(promptui.Prompt{
		Label:   label,
		Default: defaultValue,
	})
}

// InputOptional prompts for optional text input.
// Returns empty string if user just presses Enter.
func InputOptional(label, defaultValue string) (string, error) {
	return run(promptui.Prompt{
		Label:   label + " (optional)",
		Default: defaultValue,
	})
}

// InputInt prompts for an integer in [minValue, maxValue].
func InputInt(label string, defaultValue, minValue, maxValue int) (int, error) {
	result, err := run(promptui.Prompt{
		Label:    label,
		Default:  strconv.Itoa(defaultValue),
		Validate: intRange(minValue, maxValue),
	})
	if err != nil {
		return 0, err
	}

	value, _ := strconv.Atoi(result) // Already validated
	return value, nil
}

func intRange(minValue, maxValue int) promptui.ValidateFunc {
	return func(input string) error {
		v, err := strconv.Atoi(input)
		if err != nil {
			return fmt.Errorf("must be a valid integer")
		}
		if v < minValue || v > maxValue {
			return fmt.Errorf("must be between %d and %d", minValue, maxValue)
		}
		return nil
	}
}
