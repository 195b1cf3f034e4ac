/*
 * Copyright 2024 The Bundler Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package errors provides the error taxonomy for the archive building
// subsystem
package errors

import (
	"errors"
	"fmt"
)

// ErrKNF represents the error "key not found in cache"
var ErrKNF = errors.New("key not found in cache")

// ErrResourceExhausted indicates the resource guard reported insufficient
// headroom to begin a build attempt
var ErrResourceExhausted = errors.New("insufficient system resources")

// ErrNilWriter is an error for a nil writer when a non-nil writer was expected
var ErrNilWriter = errors.New("nil writer")

// ErrEmptyName is an error for an entry registered with an empty name
var ErrEmptyName = errors.New("entry name is required")

// ErrBuilderClosed is an error for operations on a released builder
var ErrBuilderClosed = errors.New("builder is closed")

// ValidationError is an add-time limit violation. It is never retried; the
// caller must shrink or split the input set.
type ValidationError struct {
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for entry [%s]: %s", e.Name, e.Reason)
}

// IntegrityError indicates a freshly built or cached container failed its
// structural self-check. It is propagated immediately and never silently
// retried.
type IntegrityError struct {
	Detail string
	Err    error
}

func (e *IntegrityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("container integrity check failed: %s: %s", e.Detail, e.Err)
	}
	return fmt.Sprintf("container integrity check failed: %s", e.Detail)
}

func (e *IntegrityError) Unwrap() error {
	return e.Err
}

// RetryExhaustedError wraps the last underlying cause after all build
// attempts have failed. It is the only error type in the taxonomy that
// carries a prior error as context.
type RetryExhaustedError struct {
	Attempts int
	Err      error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("archive build failed after %d attempts: %s", e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}
