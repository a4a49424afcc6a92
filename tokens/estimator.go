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


// Package tokens estimates the token cost of text for a target model family.
package tokens

import (
	"strings"
	"unicode"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator estimates how many tokens a model will spend on a text string.
// Implementations must be stateless and safe for concurrent use.
type Estimator interface {
	// Estimate returns the token count of text for the estimator's model.
	Estimate(text string) int
}

// TiktokenEstimator counts tokens using the BPE encoding of a model family.
type TiktokenEstimator struct {
	encoding *tiktoken.Tiktoken
}

var _ Estimator = (*TiktokenEstimator)(nil)

// NewEstimator creates an estimator for the given model name
// (e.g. "gpt-4o-mini"). Unknown models fall back to the cl100k_base encoding.
func NewEstimator(model string) (*TiktokenEstimator, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	return &TiktokenEstimator{encoding: encoding}, nil
}

// Estimate returns the exact BPE token count of text.
func (e *TiktokenEstimator) Estimate(text string) int {
	return len(e.encoding.Encode(text, nil, nil))
}

// HeuristicEstimator approximates token counts without a tokenizer:
// roughly one token per four latin characters, one per CJK rune.
// Used as a dependency-free stand-in where exact counts do not matter,
// and by tests that must not load BPE data.
type HeuristicEstimator struct{}

var _ Estimator = HeuristicEstimator{}

// Estimate approximates the token count of text.
func (HeuristicEstimator) Estimate(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	var latin, wide int
	for _, r := range text {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) {
			wide++
		} else {
			latin++
		}
	}

	count := latin/4 + wide
	if count < 1 {
		count = 1
	}
	return count
}
