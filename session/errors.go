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


package session

import "errors"

var (
	// ErrChunkNotFound indicates the addressed chunk id is absent.
	ErrChunkNotFound = errors.New("chunk not found")

	// ErrChunksNotFound indicates one or more merge targets are absent.
	ErrChunksNotFound = errors.New("some chunk IDs not found")

	// ErrMergeTooFew indicates a merge with fewer than two targets.
	ErrMergeTooFew = errors.New("merge requires at least two chunk IDs")

	// ErrSplitForbidden indicates the acting role may not split.
	ErrSplitForbidden = errors.New("split operation is not available in Simple Mode")

	// ErrSplitArguments indicates the split request supplied neither or
	// both of splitPoints and newTextBlocks.
	ErrSplitArguments = errors.New("exactly one of splitPoints or newTextBlocks must be provided")

	// ErrSplitEmpty indicates a split whose surviving blocks are all blank.
	ErrSplitEmpty = errors.New("split produced no non-empty blocks")

	// ErrChunksExist indicates chunk generation on a session that already
	// has chunks.
	ErrChunksExist = errors.New("session already has chunks")

	// ErrChunkerRequired indicates chunk generation without a configured
	// chunker.
	ErrChunkerRequired = errors.New("chunker required for generation")

	// ErrNotPreview indicates a reopen on a session that is not in PREVIEW.
	ErrNotPreview = errors.New("session is not in PREVIEW status")
)
