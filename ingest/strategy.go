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


// Package ingest turns a source locator into a draft session: resolve the
// source through a per-type strategy, derive the deterministic source
// identity, optionally chunk the content, and persist the session.
package ingest

import (
	"context"

	"github.com/poiesic/curator/core"
)

// Result is what a strategy produces from a locator.
type Result struct {
	// Content is the normalized text used for chunking and identity.
	Content string
	// RawContent is the original input, kept for provenance.
	RawContent string
	Title      string
	// SourceURL is the canonical locator of the document.
	SourceURL string
	Metadata  map[string]string
}

// Strategy resolves one source type's locator into content. Web and wiki
// strategies live outside this module; the manual passthrough is built in.
// Strategy errors propagate unchanged into session creation failure,
// keeping their retryable/permanent classification.
type Strategy interface {
	// SourceType reports which source type this strategy handles.
	SourceType() core.SourceType

	// Ingest resolves the locator into content.
	Ingest(ctx context.Context, locator string) (*Result, error)
}

// ManualStrategy passes user-supplied text through unchanged. The locator
// is the content itself; the canonical URL is synthesized from the content
// hash so identical text always maps to the same source.
type ManualStrategy struct{}

var _ Strategy = ManualStrategy{}

// SourceType returns core.SourceTypeManual.
func (ManualStrategy) SourceType() core.SourceType {
	return core.SourceTypeManual
}

// Ingest treats the locator as the document text.
func (ManualStrategy) Ingest(ctx context.Context, locator string) (*Result, error) {
	normalized := core.NormalizeContent(locator)
	if core.IsBlank(normalized) {
		return nil, core.ErrEmptyContent
	}

	sourceId := core.SourceIDFromContent(normalized)
	return &Result{
		Content:    normalized,
		RawContent: locator,
		SourceURL:  core.ManualSourceURL(sourceId),
	}, nil
}
