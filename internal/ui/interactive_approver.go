package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vvka-141/twbmig/internal/tui"
	"github.com/vvka-141/twbmig/pkg/twbmig"
)

// InteractiveApprover implements the Approver interface for console-based
// interactive confirmation. The user confirms by typing the base name of the
// directory about to be removed.
type InteractiveApprover struct {
	verbose bool
	input   io.Reader
	output  io.Writer
}

// NewInteractiveApprover creates a new InteractiveApprover on stdin and stderr.
func NewInteractiveApprover(verbose bool) twbmig.Approver {
	return &InteractiveApprover{verbose: verbose, input: os.Stdin, output: os.Stderr}
}

// RequestApproval prompts the user to type the target's base name to confirm.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, target string) (bool, error) {
	name := filepath.Base(target)
	fmt.Fprintln(a.output)
	fmt.Fprintln(a.output, tui.WarningStyle.Render(fmt.Sprintf("%s WARNING: You are about to remove %s", tui.SymbolWarning, target)))
	fmt.Fprintln(a.output, "This will permanently delete the artifacts of the previous extraction!")
	fmt.Fprintf(a.output, "\nTo confirm, type '%s' and press Enter: ", name)

	// Read user input with context cancellation support
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		reader := bufio.NewReader(a.input)
		input, err := reader.ReadString('\n')
		if err != nil {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		if input == name {
			fmt.Fprintln(a.output, tui.SuccessStyle.Render(tui.SymbolCheck+" Confirmed. Removing previous output..."))
			return true, nil
		}
		fmt.Fprintf(a.output, "%s Input '%s' does not match '%s'. Operation cancelled.\n", tui.SymbolCross, input, name)
		return false, nil
	}
}

// Verify InteractiveApprover implements the Approver interface at compile time
var _ twbmig.Approver = (*InteractiveApprover)(nil)
