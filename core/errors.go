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


package core

import "errors"

// Domain validation and lifecycle errors
var (
	// ErrEmptyContent indicates empty or whitespace-only input content.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidSourceType indicates an unrecognized SourceType value.
	ErrInvalidSourceType = errors.New("invalid source type")

	// ErrInvalidSession indicates a Session failed validation.
	ErrInvalidSession = errors.New("invalid session")

	// ErrNotDraft indicates a mutation was attempted outside the DRAFT state.
	ErrNotDraft = errors.New("cannot modify chunks in non-DRAFT status")

	// ErrForbidden indicates the acting role may not perform the operation.
	ErrForbidden = errors.New("operation forbidden for role")

	// ErrDuplicateChunkId indicates a chunk id collision within one session.
	ErrDuplicateChunkId = errors.New("duplicate chunk id in session")
)
