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

import (
	"fmt"
	"strings"
)

// ValidateSourceType checks that a SourceType is one of the known values.
func ValidateSourceType(t SourceType) error {
	switch t {
	case SourceTypeManual, SourceTypeWeb, SourceTypeWiki:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidSourceType, t)
	}
}

// ValidateSession validates a Session according to domain rules.
//
// Validation rules:
//   - Id and SourceId must not be empty
//   - SourceType must be valid
//   - Status must be DRAFT or PREVIEW (PUBLISHED sessions are removed)
//   - Chunk ids must be unique within the session
//
// NOT validated:
//   - Chunk text (empty text is permitted transiently in a draft and is
//     excluded at publish time)
//   - Content (a session may exist before chunk generation)
func ValidateSession(session *Session) error {
	if session == nil {
		return fmt.Errorf("%w: session is nil", ErrInvalidSession)
	}
	if session.Id == "" {
		return fmt.Errorf("%w: missing session id", ErrInvalidSession)
	}
	if session.SourceId == "" {
		return fmt.Errorf("%w: missing source id", ErrInvalidSession)
	}
	if err := ValidateSourceType(session.SourceType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	if session.Status != StatusDraft && session.Status != StatusPreview {
		return fmt.Errorf("%w: unexpected status %s", ErrInvalidSession, session.Status)
	}

	seen := make(map[uint32]struct{}, len(session.Chunks))
	for i := range session.Chunks {
		id := session.Chunks[i].Id
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: id %d", ErrDuplicateChunkId, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// IsBlank reports whether text is empty or whitespace-only after trimming.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
