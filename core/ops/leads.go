package ops

import "context"

// CycleRunner runs one review cycle against a chat, sending its own messages.
type CycleRunner interface {
	RunCycle(ctx context.Context, chatID int64)
}

// LeadsOp triggers a review cycle: fetch converted leads, filter expired
// ones, and present each with action buttons.
type LeadsOp struct {
	Runner CycleRunner
}

func (o *LeadsOp) Name() string        { return "leads" }
func (o *LeadsOp) Description() string { return "Get list of expired leads" }

func (o *LeadsOp) Execute(ctx context.Context, chatID int64, _ string) (string, error) {
	o.Runner.RunCycle(ctx, chatID)
	return "", nil
}
