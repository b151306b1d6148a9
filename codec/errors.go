package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptPayload matches every decode failure caused by malformed input.
	ErrCorruptPayload = errors.New("corrupt payload")

	// ErrNotRepresentable is returned by Encode when a value cannot be stored
	// in the codec's element type.
	ErrNotRepresentable = errors.New("value not representable")
)

// CorruptPayloadError describes a blob that could not be decoded.
//
// It matches ErrCorruptPayload via errors.Is. The underlying error (if any)
// can be accessed via errors.Unwrap.
type CorruptPayloadError struct {
	Codec  string
	Length int
	Reason string
	cause  error
}

func (e *CorruptPayloadError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s codec: corrupt payload of %d bytes: %s: %v", e.Codec, e.Length, e.Reason, e.cause)
	}
	return fmt.Sprintf("%s codec: corrupt payload of %d bytes: %s", e.Codec, e.Length, e.Reason)
}

func (e *CorruptPayloadError) Unwrap() error { return e.cause }

// Is reports whether target is ErrCorruptPayload.
func (e *CorruptPayloadError) Is(target error) bool { return target == ErrCorruptPayload }

func corrupt(codec string, data []byte, reason string, cause error) error {
	return &CorruptPayloadError{Codec: codec, Length: len(data), Reason: reason, cause: cause}
}
