package bot

import (
	"errors"
	"fmt"

	"photoprint-bot/internal/storage"
)

var (
	ErrStepMismatch = errors.New("conversation is not at the expected step")
	ErrNoPhotos     = errors.New("no photos uploaded")
)

// orderFlow is the fixed order of steps. A conversation only moves one step
// forward at a time, or back to idle.
var orderFlow = []storage.Step{
	storage.StepIdle,
	storage.StepAwaitingPhotos,
	storage.StepAwaitingFormat,
	storage.StepAwaitingDelivery,
	storage.StepAwaitingPhone,
	storage.StepAwaitingConfirmation,
}

func nextStep(step storage.Step) (storage.Step, bool) {
	for i, s := range orderFlow {
		if s == step && i+1 < len(orderFlow) {
			return orderFlow[i+1], true
		}
	}
	return "", false
}

// advance moves c from the step `from` to the following one.
func advance(c *storage.Conversation, from storage.Step) error {
	if c.Step != from {
		return fmt.Errorf("%w: at %q, want %q", ErrStepMismatch, c.Step, from)
	}
	next, ok := nextStep(from)
	if !ok {
		return fmt.Errorf("%w: %q is the last step", ErrStepMismatch, from)
	}
	c.Step = next
	return nil
}

// expectStep fails unless c is at step.
func expectStep(c *storage.Conversation, step storage.Step) error {
	if c.Step != step {
		return fmt.Errorf("%w: at %q, want %q", ErrStepMismatch, c.Step, step)
	}
	return nil
}
