package logging

import (
	"go.uber.org/zap/zapcore"
)

// Strings logs a string slice as an array, e.g. checksum algorithms or tags.
type Strings []string

func (a Strings) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, s := range a {
		enc.AppendString(s)
	}
	return nil
}
