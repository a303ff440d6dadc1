package sim

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrNoWorld indicates an entity was added without an owning world.
	ErrNoWorld = errors.New("sim: entity requires a world")

	// ErrUnknownWorld indicates the world was not created by this simulation.
	ErrUnknownWorld = errors.New("sim: world does not belong to this simulation")

	// ErrInvalidWorld indicates non-positive world dimensions.
	ErrInvalidWorld = errors.New("sim: world width and height must be positive")

	// ErrDuplicateWorld indicates a second world registered under the same name.
	ErrDuplicateWorld = errors.New("sim: duplicate world name")

	// ErrInvalidKind indicates an empty kind name or nil factory at registration.
	ErrInvalidKind = errors.New("sim: invalid kind registration")

	// ErrDuplicateKind indicates a kind registered twice.
	ErrDuplicateKind = errors.New("sim: kind already registered")

	// ErrStaleHandle indicates a handle whose slot has since been recycled.
	ErrStaleHandle = errors.New("sim: stale entity handle")

	// ErrNotLive indicates the entity is not in the live registry.
	ErrNotLive = errors.New("sim: entity is not live")

	// ErrUnsupportedColorMode indicates a drawable the renderer cannot paint.
	ErrUnsupportedColorMode = errors.New("sim: color mode not supported by renderer")

	// ErrHookNotImplemented is returned by extension hooks the host must supply.
	ErrHookNotImplemented = errors.New("sim: extension hook not implemented")
)

// FrameError wraps an error with the frame and entity it occurred on.
type FrameError struct {
	Frame    int
	EntityID uint64
	Wrapped  error
}

func (e *FrameError) Error() string {
	if e.EntityID == 0 {
		return fmt.Sprintf("frame %d: %v", e.Frame, e.Wrapped)
	}
	return fmt.Sprintf("frame %d, entity %d: %v", e.Frame, e.EntityID, e.Wrapped)
}

func (e *FrameError) Unwrap() error {
	return e.Wrapped
}
