// Package access implements the tool-access authorization contract: a user
// may invoke a tool only if a grant exists for the (user, tool) pair.
// Authentication itself happens upstream; this package only answers the
// has-access question and manages grants.
package access

import (
	"context"

	"github.com/google/uuid"
)

// Tool names known to the platform.
const (
	ToolTaxCalculator    = "tax_calculator"
	ToolCharacterCounter = "character_counter"
)

// Checker answers whether a user may use a tool.
type Checker interface {
	HasToolAccess(ctx context.Context, userID uuid.UUID, tool string) (bool, error)
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context, userID uuid.UUID, tool string) (bool, error)

// HasToolAccess implements Checker.
func (f CheckerFunc) HasToolAccess(ctx context.Context, userID uuid.UUID, tool string) (bool, error) {
	return f(ctx, userID, tool)
}

// AllowAll grants every user access to every tool. Used when no grant store
// is configured, e.g. local development without a database.
type AllowAll struct{}

// HasToolAccess implements Checker.
func (AllowAll) HasToolAccess(context.Context, uuid.UUID, string) (bool, error) {
	return true, nil
}
