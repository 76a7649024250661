package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

type InputUtils struct {
	in  *bufio.Reader
	out io.Writer
}

// NewInputUtils reads answers from in and writes prompts to out. Nil values
// fall back to the process stdin and stdout.
func NewInputUtils(in io.Reader, out io.Writer) *InputUtils {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &InputUtils{in: bufio.NewReader(in), out: out}
}

// AskConfirmation asks user for yes/no confirmation
func (i *InputUtils) AskConfirmation(message string, force bool) bool {
	if force {
		return true
	}
	fmt.Fprintf(i.out, "%s (y/N): ", message)
	input, _ := i.in.ReadString('\n')
	response := strings.ToLower(strings.TrimSpace(input))
	return response == "y" || response == "yes"
}

// GetUserChoice prompts until the answer is one of validOptions. The first
// option is returned when forced or when input runs out.
func (i *InputUtils) GetUserChoice(validOptions []string, prompt string, force bool) string {
	if force {
		return validOptions[0]
	}

	for {
		fmt.Fprintf(i.out, "%s (%s): ", prompt, strings.Join(validOptions, "/"))
		input, err := i.in.ReadString('\n')
		choice := strings.TrimSpace(strings.ToLower(input))

		for _, option := range validOptions {
			if choice == option {
				return choice
			}
		}
		if err != nil {
			return validOptions[0]
		}
		fmt.Fprintf(i.out, "Invalid option. Please choose from: %s\n", strings.Join(validOptions, ", "))
	}
}
