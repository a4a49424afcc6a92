// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput indicates empty or whitespace-only input; raised before
	// any upstream call is made and never retried.
	ErrEmptyInput = errors.New("input text is empty")

	// ErrTransient marks upstream failures worth retrying: timeouts, rate
	// limits, 5xx responses, network errors.
	ErrTransient = errors.New("transient upstream error")

	// ErrPermanent marks upstream failures that will not succeed on retry:
	// auth failures, model refusals, malformed responses after repair.
	ErrPermanent = errors.New("permanent upstream error")
)

// Transient wraps err as a retryable upstream failure.
func Transient(err error) error {
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// Permanent wraps err as a non-retryable upstream failure.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// IsRetryable reports whether err is worth retrying. Per-call timeouts are
// classified transient at the call site; a bare context error from the
// enclosing request never carries the transient wrapper and is not retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}
