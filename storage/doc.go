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


// Package storage provides the draft-session storage abstraction for curator.
//
// This package defines the repository interface that decouples the storage
// implementation from the pipeline logic, so different backends (BadgerDB,
// in-memory, etc.) can be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the storage interface:
//
//	repo, err := badger.NewSessionRepository(backend, ttl)  // returns storage.SessionRepository
//
// This keeps consumers decoupled from BadgerDB specifics and lets tests
// substitute mock implementations without modification.
//
// # Sessions Are Ephemeral
//
// Sessions carry a TTL that the backend refreshes on every write. An expired
// session is indistinguishable from a deleted one: both surface ErrNotFound.
//
// # Thread Safety
//
// All repository implementations must be thread-safe. Concurrent updates to
// the same session are serialized through UpdateSession's read-mutate-commit
// loop; a writer that keeps losing the race gets ErrConflict.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support.
package storage
