package twbmig

import "context"

// Approver confirms destructive operations, such as removing the artifacts
// of a previous extraction before writing new ones.
//
// Implementations:
//   - ForcedApprover: shows a countdown and approves
//   - InteractiveApprover: asks the user to type the target's name
type Approver interface {
	// RequestApproval asks whether target may be removed.
	// Returns false with a nil error when the user declines.
	RequestApproval(ctx context.Context, target string) (bool, error)
}
