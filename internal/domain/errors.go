package domain

import "errors"

var (
	// ErrNoCredentials is returned when no credential slot holds a secret.
	ErrNoCredentials = errors.New("no backend credentials configured")

	// ErrCredentialsExhausted is returned once every credential in the pool
	// has been rate limited within one logical operation.
	ErrCredentialsExhausted = errors.New("all backend credentials exhausted")

	// ErrBackend wraps a permanent (non rate-limit) backend failure.
	ErrBackend = errors.New("backend request failed")

	// ErrExtraction is returned when a response holds no usable test code.
	ErrExtraction = errors.New("no usable test code in response")

	// ErrSourceRead wraps failures reading a source module or its test file.
	ErrSourceRead = errors.New("read failed")

	// ErrWrite wraps failures persisting a test file or its backup.
	ErrWrite = errors.New("write failed")

	// ErrFailedFiles is returned after the report is saved when at least one
	// module failed during the batch.
	ErrFailedFiles = errors.New("one or more files failed")

	// ErrVerify is returned when a written test file does not pass `zig test`.
	ErrVerify = errors.New("zig test failed")

	// ErrInvalidSettings wraps validation failures of Settings.
	ErrInvalidSettings = errors.New("invalid settings")
)
