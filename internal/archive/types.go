package archive

import "time"

// VoiceNote is one inbound voice message to archive.
type VoiceNote struct {
	SenderID   string
	MessageID  string
	MimeType   string
	Data       []byte
	Transcript string
	ReceivedAt time.Time
}

// ManifestEntry is one JSONL line in the monthly manifest file.
type ManifestEntry struct {
	MessageID  string `json:"message_id"`
	SenderHash string `json:"sender_hash"`
	S3Key      string `json:"s3_key"`
	MimeType   string `json:"mime_type"`
	Bytes      int    `json:"bytes"`
	Transcript string `json:"transcript,omitempty"`
	ArchivedAt string `json:"archived_at"`
}
