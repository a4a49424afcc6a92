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


package storage

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/curator/core"
)

// Hand-written MUS codecs for the stored types. Field order is the wire
// format; changing it breaks existing databases.

// MarshalSession serializes a Session to bytes.
func MarshalSession(session *core.Session) []byte {
	buf := make([]byte, sizeSession(session))
	marshalSession(session, buf)
	return buf
}

// UnmarshalSession deserializes a Session from bytes.
func UnmarshalSession(data []byte) (*core.Session, error) {
	session, _, err := unmarshalSession(data)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// MarshalPoint serializes a PublishedPoint to bytes.
func MarshalPoint(point *core.PublishedPoint) []byte {
	buf := make([]byte, sizePoint(point))
	marshalPoint(point, buf)
	return buf
}

// UnmarshalPoint deserializes a PublishedPoint from bytes.
func UnmarshalPoint(data []byte) (*core.PublishedPoint, error) {
	point, _, err := unmarshalPoint(data)
	if err != nil {
		return nil, err
	}
	return point, nil
}

// -- session --

func sizeSession(s *core.Session) int {
	size := ord.String.Size(s.Id)
	size += ord.String.Size(s.SourceId)
	size += varint.Int.Size(int(s.SourceType))
	size += ord.String.Size(s.SourceURL)
	size += ord.String.Size(s.UserId)
	size += varint.Int.Size(int(s.Status))
	size += ord.String.Size(s.Content)
	size += ord.String.Size(s.RawContent)
	size += varint.Int.Size(len(s.Chunks))
	for i := range s.Chunks {
		size += sizeChunk(&s.Chunks[i])
	}
	size += varint.Uint64.Size(s.Version)
	size += sizeTime(s.CreatedAt)
	size += sizeTime(s.UpdatedAt)
	return size
}

func marshalSession(s *core.Session, bs []byte) int {
	n := ord.String.Marshal(s.Id, bs)
	n += ord.String.Marshal(s.SourceId, bs[n:])
	n += varint.Int.Marshal(int(s.SourceType), bs[n:])
	n += ord.String.Marshal(s.SourceURL, bs[n:])
	n += ord.String.Marshal(s.UserId, bs[n:])
	n += varint.Int.Marshal(int(s.Status), bs[n:])
	n += ord.String.Marshal(s.Content, bs[n:])
	n += ord.String.Marshal(s.RawContent, bs[n:])
	n += varint.Int.Marshal(len(s.Chunks), bs[n:])
	for i := range s.Chunks {
		n += marshalChunk(&s.Chunks[i], bs[n:])
	}
	n += varint.Uint64.Marshal(s.Version, bs[n:])
	n += marshalTime(s.CreatedAt, bs[n:])
	n += marshalTime(s.UpdatedAt, bs[n:])
	return n
}

func unmarshalSession(bs []byte) (*core.Session, int, error) {
	var (
		s   core.Session
		n   int
		err error
	)
	if s.Id, n, err = ord.String.Unmarshal(bs); err != nil {
		return nil, n, err
	}
	var n1 int
	if s.SourceId, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	var sourceType int
	if sourceType, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	s.SourceType = core.SourceType(sourceType)
	if s.SourceURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if s.UserId, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	var status int
	if status, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	s.Status = core.SessionStatus(status)
	if s.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if s.RawContent, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	var count int
	if count, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if count < 0 {
		return nil, n, ErrTruncatedData
	}
	if count > 0 {
		s.Chunks = make([]core.Chunk, count)
		for i := 0; i < count; i++ {
			if n1, err = unmarshalChunk(&s.Chunks[i], bs[n:]); err != nil {
				return nil, n + n1, err
			}
			n += n1
		}
	}
	if s.Version, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if s.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if s.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	return &s, n, nil
}

// -- chunk --

func sizeChunk(c *core.Chunk) int {
	size := varint.Uint32.Size(c.Id)
	size += ord.String.Size(c.Text)
	size += ord.Bool.Size(c.Dirty)
	size += sizeStringSlice(c.HeadingPath)
	size += varint.Int.Size(int(c.Type))
	size += varint.Int.Size(c.TokenCount)
	return size
}

func marshalChunk(c *core.Chunk, bs []byte) int {
	n := varint.Uint32.Marshal(c.Id, bs)
	n += ord.String.Marshal(c.Text, bs[n:])
	n += ord.Bool.Marshal(c.Dirty, bs[n:])
	n += marshalStringSlice(c.HeadingPath, bs[n:])
	n += varint.Int.Marshal(int(c.Type), bs[n:])
	n += varint.Int.Marshal(c.TokenCount, bs[n:])
	return n
}

func unmarshalChunk(c *core.Chunk, bs []byte) (int, error) {
	var (
		n   int
		err error
	)
	if c.Id, n, err = varint.Uint32.Unmarshal(bs); err != nil {
		return n, err
	}
	var n1 int
	if c.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if c.Dirty, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if c.HeadingPath, n1, err = unmarshalStringSlice(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	var chunkType int
	if chunkType, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	c.Type = core.ChunkType(chunkType)
	if c.TokenCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	return n, nil
}

// -- published point --

func sizePoint(p *core.PublishedPoint) int {
	size := ord.String.Size(p.Id)
	size += varint.Int.Size(len(p.Vector))
	size += len(p.Vector) * raw.Float32.Size(0)
	size += sizePayload(&p.Payload)
	return size
}

func marshalPoint(p *core.PublishedPoint, bs []byte) int {
	n := ord.String.Marshal(p.Id, bs)
	n += varint.Int.Marshal(len(p.Vector), bs[n:])
	for _, v := range p.Vector {
		n += raw.Float32.Marshal(v, bs[n:])
	}
	n += marshalPayload(&p.Payload, bs[n:])
	return n
}

func unmarshalPoint(bs []byte) (*core.PublishedPoint, int, error) {
	var (
		p   core.PublishedPoint
		n   int
		err error
	)
	if p.Id, n, err = ord.String.Unmarshal(bs); err != nil {
		return nil, n, err
	}
	var n1 int
	var dim int
	if dim, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	if dim < 0 {
		return nil, n, ErrTruncatedData
	}
	if dim > 0 {
		p.Vector = make([]float32, dim)
		for i := 0; i < dim; i++ {
			if p.Vector[i], n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
				return nil, n + n1, err
			}
			n += n1
		}
	}
	if n1, err = unmarshalPayload(&p.Payload, bs[n:]); err != nil {
		return nil, n + n1, err
	}
	n += n1
	return &p, n, nil
}

func sizePayload(p *core.PointPayload) int {
	size := ord.String.Size(p.Text)
	size += sizeStringSlice(p.HeadingPath)
	size += varint.Int.Size(int(p.Type))
	size += sizeStringSlice(p.Tags)
	size += varint.Int.Size(int(p.SourceType))
	size += ord.String.Size(p.SourceURL)
	size += ord.String.Size(p.SourceId)
	size += varint.Uint64.Size(p.Revision)
	size += ord.String.Size(p.LastModifiedBy)
	size += sizeTime(p.LastModifiedAt)
	return size
}

func marshalPayload(p *core.PointPayload, bs []byte) int {
	n := ord.String.Marshal(p.Text, bs)
	n += marshalStringSlice(p.HeadingPath, bs[n:])
	n += varint.Int.Marshal(int(p.Type), bs[n:])
	n += marshalStringSlice(p.Tags, bs[n:])
	n += varint.Int.Marshal(int(p.SourceType), bs[n:])
	n += ord.String.Marshal(p.SourceURL, bs[n:])
	n += ord.String.Marshal(p.SourceId, bs[n:])
	n += varint.Uint64.Marshal(p.Revision, bs[n:])
	n += ord.String.Marshal(p.LastModifiedBy, bs[n:])
	n += marshalTime(p.LastModifiedAt, bs[n:])
	return n
}

func unmarshalPayload(p *core.PointPayload, bs []byte) (int, error) {
	var (
		n   int
		err error
	)
	if p.Text, n, err = ord.String.Unmarshal(bs); err != nil {
		return n, err
	}
	var n1 int
	if p.HeadingPath, n1, err = unmarshalStringSlice(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	var chunkType int
	if chunkType, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	p.Type = core.ChunkType(chunkType)
	if p.Tags, n1, err = unmarshalStringSlice(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	var sourceType int
	if sourceType, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	p.SourceType = core.SourceType(sourceType)
	if p.SourceURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if p.SourceId, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if p.Revision, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if p.LastModifiedBy, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if p.LastModifiedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	return n, nil
}

// -- primitives --

func sizeStringSlice(v []string) int {
	size := varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}

func marshalStringSlice(v []string, bs []byte) int {
	n := varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStringSlice(bs []byte) ([]string, int, error) {
	count, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if count < 0 {
		return nil, n, ErrTruncatedData
	}
	if count == 0 {
		return nil, n, nil
	}
	v := make([]string, count)
	for i := 0; i < count; i++ {
		var n1 int
		if v[i], n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return nil, n + n1, err
		}
		n += n1
	}
	return v, n, nil
}

// Timestamps are stored as microseconds since the Unix epoch; location and
// monotonic clock readings do not survive the round trip.
func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}
