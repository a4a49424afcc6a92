package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/curator/core"
)

func TestMarshalUnmarshalSession(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name    string
		session *core.Session
	}{
		{
			name: "full session",
			session: &core.Session{
				Id:         "6f1aa0a4-1111-4222-8333-944444444444",
				SourceId:   "manual-00000000deadbeef",
				SourceType: core.SourceTypeManual,
				SourceURL:  "manual://manual-00000000deadbeef",
				UserId:     "user-7",
				Status:     core.StatusDraft,
				Content:    "# Title\n\nBody text.",
				RawContent: "# Title\r\n\r\nBody text.\r\n",
				Chunks: []core.Chunk{
					{
						Id:          1,
						Text:        "Body text.",
						Dirty:       true,
						HeadingPath: []string{"Title", "Intro"},
						Type:        core.ChunkTypeKnowledge,
						TokenCount:  3,
					},
					{
						Id:         4,
						Text:       "Basic | $10",
						Type:       core.ChunkTypeTableRow,
						TokenCount: 4,
					},
				},
				Version:   7,
				CreatedAt: now.Add(-time.Hour),
				UpdatedAt: now,
			},
		},
		{
			name: "minimal session without chunks",
			session: &core.Session{
				Id:         "s1",
				SourceId:   "manual-0000000000000001",
				SourceType: core.SourceTypeManual,
				Status:     core.StatusDraft,
				CreatedAt:  now,
				UpdatedAt:  now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalSession(tt.session)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalSession(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.session.Id, decoded.Id)
			assert.Equal(t, tt.session.SourceId, decoded.SourceId)
			assert.Equal(t, tt.session.SourceType, decoded.SourceType)
			assert.Equal(t, tt.session.SourceURL, decoded.SourceURL)
			assert.Equal(t, tt.session.UserId, decoded.UserId)
			assert.Equal(t, tt.session.Status, decoded.Status)
			assert.Equal(t, tt.session.Content, decoded.Content)
			assert.Equal(t, tt.session.RawContent, decoded.RawContent)
			assert.Equal(t, tt.session.Version, decoded.Version)
			assert.True(t, tt.session.CreatedAt.Equal(decoded.CreatedAt))
			assert.True(t, tt.session.UpdatedAt.Equal(decoded.UpdatedAt))
			if len(tt.session.Chunks) == 0 {
				assert.Empty(t, decoded.Chunks)
			} else {
				assert.Equal(t, tt.session.Chunks, decoded.Chunks)
			}
		})
	}
}

func TestUnmarshalSession_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"truncated data", MarshalSession(&core.Session{Id: "abc", Content: "some content"})[:4]},
		{"garbage", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalSession(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestMarshalUnmarshalPoint(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	point := &core.PublishedPoint{
		Id:     core.PointID("manual-00000000deadbeef", 3, 0),
		Vector: []float32{0.25, -0.5, 0.125, 1.0},
		Payload: core.PointPayload{
			Text:           "Refunds are processed within five business days.",
			HeadingPath:    []string{"Billing", "Refunds"},
			Type:           core.ChunkTypeKnowledge,
			Tags:           []string{"billing"},
			SourceType:     core.SourceTypeManual,
			SourceURL:      "manual://manual-00000000deadbeef",
			SourceId:       "manual-00000000deadbeef",
			Revision:       3,
			LastModifiedBy: "user-7",
			LastModifiedAt: now,
		},
	}

	data := MarshalPoint(point)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalPoint(data)
	require.NoError(t, err)
	require.NotNil(t, decoded)

	assert.Equal(t, point.Id, decoded.Id)
	assert.Equal(t, point.Vector, decoded.Vector)
	assert.Equal(t, point.Payload.Text, decoded.Payload.Text)
	assert.Equal(t, point.Payload.HeadingPath, decoded.Payload.HeadingPath)
	assert.Equal(t, point.Payload.Type, decoded.Payload.Type)
	assert.Equal(t, point.Payload.Tags, decoded.Payload.Tags)
	assert.Equal(t, point.Payload.SourceType, decoded.Payload.SourceType)
	assert.Equal(t, point.Payload.SourceURL, decoded.Payload.SourceURL)
	assert.Equal(t, point.Payload.SourceId, decoded.Payload.SourceId)
	assert.Equal(t, point.Payload.Revision, decoded.Payload.Revision)
	assert.Equal(t, point.Payload.LastModifiedBy, decoded.Payload.LastModifiedBy)
	assert.True(t, point.Payload.LastModifiedAt.Equal(decoded.Payload.LastModifiedAt))
}

func TestMarshalUnmarshalPoint_EmptyVector(t *testing.T) {
	point := &core.PublishedPoint{
		Id:      "pt",
		Payload: core.PointPayload{Text: "t", LastModifiedAt: time.Unix(0, 0).UTC()},
	}

	decoded, err := UnmarshalPoint(MarshalPoint(point))
	require.NoError(t, err)
	assert.Equal(t, point.Id, decoded.Id)
	assert.Empty(t, decoded.Vector)
	assert.Equal(t, "t", decoded.Payload.Text)
}
