package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockS3Client records PutObject/GetObject calls for testing.
type mockS3Client struct {
	putCalls []putCall
	objects  map[string][]byte
	putErr   error
}

type putCall struct {
	bucket      string
	key         string
	contentType string
	body        []byte
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	body, _ := io.ReadAll(input.Body)
	m.putCalls = append(m.putCalls, putCall{
		bucket:      *input.Bucket,
		key:         *input.Key,
		contentType: *input.ContentType,
		body:        body,
	})
	m.objects[*input.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func newTestStore(client S3API) *Store {
	s := NewStore(client, "voice-bucket", nil)
	s.now = func() time.Time { return time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestStore_Disabled(t *testing.T) {
	s := NewStore(nil, "", nil)
	assert.False(t, s.Enabled())

	key, err := s.ArchiveVoice(context.Background(), VoiceNote{MessageID: "m1", Data: []byte("x")})
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestStore_ArchiveVoice(t *testing.T) {
	client := newMockS3()
	s := newTestStore(client)

	key, err := s.ArchiveVoice(context.Background(), VoiceNote{
		SenderID:   "962790000000",
		MessageID:  "wamid.ABC=",
		MimeType:   "audio/ogg; codecs=opus",
		Data:       []byte("OggS"),
		Transcript: "بدي احجز",
		ReceivedAt: time.Date(2025, 6, 2, 18, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "voice-notes/v1/by-date/2025/06/02/"))
	assert.True(t, strings.HasSuffix(key, "/wamid.ABC_.ogg"))
	assert.NotContains(t, key, "962790000000")

	require.Len(t, client.putCalls, 2)
	assert.Equal(t, "voice-bucket", client.putCalls[0].bucket)
	assert.Equal(t, "audio/ogg; codecs=opus", client.putCalls[0].contentType)
	assert.Equal(t, []byte("OggS"), client.putCalls[0].body)

	manifest := client.objects["voice-notes/v1/manifests/2025-06.jsonl"]
	require.NotEmpty(t, manifest)
	var entry ManifestEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(manifest), &entry))
	assert.Equal(t, "wamid.ABC=", entry.MessageID)
	assert.Equal(t, key, entry.S3Key)
	assert.Equal(t, "بدي احجز", entry.Transcript)
	assert.Equal(t, 4, entry.Bytes)
}

func TestStore_AppendManifestKeepsExistingLines(t *testing.T) {
	client := newMockS3()
	client.objects["voice-notes/v1/manifests/2025-06.jsonl"] = []byte(`{"message_id":"old"}`)
	s := newTestStore(client)

	require.NoError(t, s.AppendManifest(context.Background(), ManifestEntry{MessageID: "new"}))

	lines := strings.Split(strings.TrimSpace(string(client.objects["voice-notes/v1/manifests/2025-06.jsonl"])), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "old")
	assert.Contains(t, lines[1], "new")
}

func TestStore_PutFailure(t *testing.T) {
	client := newMockS3()
	client.putErr = errors.New("access denied")
	s := newTestStore(client)

	_, err := s.ArchiveVoice(context.Background(), VoiceNote{MessageID: "m1", Data: []byte("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
