package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/twbmig/pkg/twbmig"
)

const outputDir = "/work/output/Sales_Overview"

func TestInteractiveApprover_TypedConfirmation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
		says  string
	}{
		{"directory base name", "Sales_Overview\n", true, "Confirmed. Removing previous output"},
		{"surrounding whitespace trimmed", "  Sales_Overview \r\n", true, "Confirmed"},
		{"full path is not the base name", outputDir + "\n", false, "does not match 'Sales_Overview'"},
		{"workbook display name with spaces", "Sales Overview\n", false, "does not match"},
		{"case matters", "sales_overview\n", false, "does not match"},
		{"empty answer", "\n", false, "Operation cancelled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			a := &InteractiveApprover{input: strings.NewReader(tt.input), output: &out}

			approved, err := a.RequestApproval(context.Background(), outputDir)

			require.NoError(t, err)
			assert.Equal(t, tt.want, approved)
			assert.Contains(t, out.String(), tt.says)
			assert.Contains(t, out.String(), "type 'Sales_Overview'")
			assert.Contains(t, out.String(), "You are about to remove "+outputDir)
		})
	}
}

func TestInteractiveApprover_InputClosedBeforeNewline(t *testing.T) {
	a := &InteractiveApprover{input: strings.NewReader("Sales_Overview"), output: io.Discard}

	approved, err := a.RequestApproval(context.Background(), outputDir)

	assert.False(t, approved)
	assert.ErrorIs(t, err, io.EOF)
}

func TestInteractiveApprover_CancelledWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	a := &InteractiveApprover{input: pr, output: io.Discard}
	approved, err := a.RequestApproval(ctx, outputDir)

	assert.False(t, approved)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestForcedApprover_CountdownThenApprove(t *testing.T) {
	var out bytes.Buffer
	var slept []time.Duration
	a := &ForcedApprover{output: &out, sleepFn: func(d time.Duration) { slept = append(slept, d) }}

	approved, err := a.RequestApproval(context.Background(), outputDir)

	require.NoError(t, err)
	assert.True(t, approved)
	seconds := int(twbmig.DefaultForceApprovalCountdown / time.Second)
	require.Len(t, slept, seconds)
	for _, d := range slept {
		assert.Equal(t, time.Second, d)
	}

	text := out.String()
	assert.Contains(t, text, "DANGER: removing "+outputDir+" and everything in it")
	assert.Contains(t, text, "Removing in: 3 seconds")
	assert.Contains(t, text, "Removing in: 1 seconds")
	assert.Contains(t, text, "Removing previous output...")
}

func TestForcedApprover_CancelledMidCountdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	a := &ForcedApprover{output: io.Discard, sleepFn: func(time.Duration) {
		calls++
		if calls == 2 {
			cancel()
		}
	}}

	approved, err := a.RequestApproval(ctx, outputDir)

	assert.False(t, approved)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls, "countdown stops once cancelled")
}

func TestForcedApprover_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &ForcedApprover{output: io.Discard, sleepFn: func(time.Duration) { t.Fatal("slept after cancellation") }}
	approved, err := a.RequestApproval(ctx, outputDir)

	assert.False(t, approved)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConstructors(t *testing.T) {
	forced, ok := NewForcedApprover(true).(*ForcedApprover)
	require.True(t, ok)
	assert.True(t, forced.verbose)
	assert.NotNil(t, forced.sleepFn)

	interactive, ok := NewInteractiveApprover(false).(*InteractiveApprover)
	require.True(t, ok)
	assert.NotNil(t, interactive.input)
	assert.NotNil(t, interactive.output)
}
