package core

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// SourceType identifies where an ingested document came from.
type SourceType int

const (
	// SourceTypeManual represents text pasted or uploaded directly by a user.
	SourceTypeManual SourceType = iota + 1
	// SourceTypeWeb represents a fetched and extracted web page.
	SourceTypeWeb
	// SourceTypeWiki represents a page fetched through a wiki API.
	SourceTypeWiki
)

// String returns the canonical lowercase name of the source type.
func (t SourceType) String() string {
	switch t {
	case SourceTypeManual:
		return "manual"
	case SourceTypeWeb:
		return "web"
	case SourceTypeWiki:
		return "wiki"
	default:
		return "unknown"
	}
}

// Source is the identity of an ingested document.
type Source struct {
	Type SourceType
	// URL is the canonical locator. For manual input it is a URI built
	// from the content hash ("manual://<hash>").
	URL string
	// ID is the stable identity used for replace-on-republish. Identical
	// normalized input always yields the same ID.
	ID string
}

// NormalizeContent canonicalizes raw text before hashing or chunking.
// Line endings are unified and surrounding whitespace is trimmed so that
// re-ingesting the same logical document yields the same source identity.
func NormalizeContent(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

// contentHash generates a deterministic 64-bit digest using BLAKE2b.
func contentHash(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// SourceIDFromContent derives a stable source identity from normalized
// manual content. Identical content always produces the same identity.
func SourceIDFromContent(content string) string {
	return fmt.Sprintf("manual-%016x", contentHash(NormalizeContent(content)))
}

// SourceIDFromURL derives a stable source identity from a canonical URL.
func SourceIDFromURL(sourceType SourceType, url string) string {
	return fmt.Sprintf("%s-%016x", sourceType, contentHash(strings.TrimSpace(url)))
}

// ManualSourceURL builds the synthetic locator for manual content.
func ManualSourceURL(sourceID string) string {
	return "manual://" + sourceID
}

// SessionStatus is the lifecycle state of a draft session.
type SessionStatus int

const (
	// StatusDraft allows chunk mutation.
	StatusDraft SessionStatus = iota + 1
	// StatusPreview marks a session validated for publishing. Re-enterable.
	StatusPreview
	// StatusPublished is terminal and implicit: a published session is
	// removed from the store, so it is never observed in this state.
	StatusPublished
)

// String returns the uppercase wire name of the status.
func (s SessionStatus) String() string {
	switch s {
	case StatusDraft:
		return "DRAFT"
	case StatusPreview:
		return "PREVIEW"
	case StatusPublished:
		return "PUBLISHED"
	default:
		return "UNKNOWN"
	}
}

// ChunkType is the coarse semantic classification of a chunk.
type ChunkType int

const (
	ChunkTypeKnowledge ChunkType = iota + 1
	ChunkTypeNavigation
	ChunkTypeTableRow
	ChunkTypeCode
	ChunkTypeFAQ
	ChunkTypeGlossary
)

// String returns the wire name of the chunk type.
func (t ChunkType) String() string {
	switch t {
	case ChunkTypeKnowledge:
		return "knowledge"
	case ChunkTypeNavigation:
		return "navigation"
	case ChunkTypeTableRow:
		return "table_row"
	case ChunkTypeCode:
		return "code"
	case ChunkTypeFAQ:
		return "faq"
	case ChunkTypeGlossary:
		return "glossary"
	default:
		return "knowledge"
	}
}

// ChunkTypeFromString maps a wire name back to a ChunkType.
// Unknown names map to ChunkTypeKnowledge.
func ChunkTypeFromString(s string) ChunkType {
	switch s {
	case "navigation":
		return ChunkTypeNavigation
	case "table_row":
		return ChunkTypeTableRow
	case "code":
		return ChunkTypeCode
	case "faq":
		return ChunkTypeFAQ
	case "glossary":
		return ChunkTypeGlossary
	default:
		return ChunkTypeKnowledge
	}
}

// Chunk is a retrievable unit within a session. Its position in the
// session's chunk list is its order.
type Chunk struct {
	Id   uint32
	Text string
	// Dirty is true once the chunk was user-edited or produced by a
	// split/merge, distinguishing human-modified from machine-original text.
	Dirty       bool
	HeadingPath []string
	Type        ChunkType
	TokenCount  int
}

// ChunkCandidate is the chunker's output before attachment to a session.
type ChunkCandidate struct {
	Id          uint32
	Text        string
	HeadingPath []string
	Type        ChunkType
	TokenCount  int
}

// Session is the ephemeral draft workspace wrapping one source's chunk
// list between ingestion and publish. Owned exclusively by the draft store.
type Session struct {
	Id         string
	SourceId   string
	SourceType SourceType
	SourceURL  string
	UserId     string
	Status     SessionStatus
	// Content is the normalized raw text used for chunking.
	Content string
	// RawContent is the original input, kept for provenance.
	RawContent string
	Chunks     []Chunk
	// Version is an optimistic write stamp, bumped on every store update.
	Version   uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FindChunk returns the index of the chunk with the given id, or -1.
func (s *Session) FindChunk(id uint32) int {
	for i := range s.Chunks {
		if s.Chunks[i].Id == id {
			return i
		}
	}
	return -1
}

// NextChunkId returns an id one past the highest id currently in the
// session, keeping ids unique within the session across splits and merges.
func (s *Session) NextChunkId() uint32 {
	var max uint32
	for i := range s.Chunks {
		if s.Chunks[i].Id > max {
			max = s.Chunks[i].Id
		}
	}
	return max + 1
}

// Role is the opaque access level of the acting user. The pipeline performs
// a single role check: split is unavailable below RoleEditor.
type Role int

const (
	// RoleViewer is the restricted "Simple Mode" role.
	RoleViewer Role = iota + 1
	// RoleEditor may perform all chunk mutations including split.
	RoleEditor
)

// PointPayload is the retrievable metadata stored alongside a vector.
type PointPayload struct {
	Text           string
	HeadingPath    []string
	Type           ChunkType
	Tags           []string
	SourceType     SourceType
	SourceURL      string
	SourceId       string
	Revision       uint64
	LastModifiedBy string
	LastModifiedAt time.Time
}

// PublishedPoint is the unit stored in the vector index. Created and
// replaced only by the publish coordinator, never mutated in place.
type PublishedPoint struct {
	Id      string
	Vector  []float32
	Payload PointPayload
}

// PointID derives a stable point identity from the source identity,
// revision, and chunk position, so republishing a source produces a fresh,
// deterministic key set.
func PointID(sourceID string, revision uint64, index int) string {
	return fmt.Sprintf("%016x", contentHash(fmt.Sprintf("%s#%d#%d", sourceID, revision, index)))
}

// ScoredPoint is a similarity search hit.
type ScoredPoint struct {
	Point *PublishedPoint
	Score float32
}
