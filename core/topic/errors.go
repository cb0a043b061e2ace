package topic

import "errors"

var (
	// ErrInvalidSlotSize is returned when the requested slot size is zero or
	// exceeds MaxSlotSize.
	ErrInvalidSlotSize = errors.New("slot size must be between 1 and MaxSlotSize")

	// ErrInvalidSlotCount is returned when the requested slot count is zero or
	// exceeds MaxSlotCount.
	ErrInvalidSlotCount = errors.New("slot count must be between 1 and MaxSlotCount")

	// ErrBusy is returned when configuration is changed while any handle is open.
	ErrBusy = errors.New("topic has open handles")

	// ErrNotConfigured is returned by Open before both slot size and slot count
	// have been set.
	ErrNotConfigured = errors.New("topic is not configured")

	// ErrOutOfMemory is returned by Open when the backing buffer cannot be
	// allocated. Configuration is preserved so the open can be retried.
	ErrOutOfMemory = errors.New("cannot allocate topic buffer")

	// ErrAccessDenied is returned when a handle is requested with a kind that
	// is not exactly one of Reader or Writer, or when an operation is invoked
	// on a handle of the wrong kind.
	ErrAccessDenied = errors.New("handle must be opened as reader xor writer")

	// ErrInvalidMessageSize is returned by Write when the payload length is
	// not a multiple of the slot size.
	ErrInvalidMessageSize = errors.New("payload is not a multiple of slot size")

	// ErrMessageTooLarge is returned by Write when the payload exceeds the
	// topic capacity.
	ErrMessageTooLarge = errors.New("payload exceeds topic capacity")

	// ErrWouldBlock is returned by non-blocking reads and writes that would
	// otherwise suspend.
	ErrWouldBlock = errors.New("operation would block")

	// ErrInterrupted is returned when a suspended read or write is cancelled
	// by its context. Topic state is left exactly as it was before the call.
	ErrInterrupted = errors.New("operation interrupted")

	// ErrClosed is returned when operating on a closed handle or a destroyed
	// topic.
	ErrClosed = errors.New("topic handle is closed")
)
