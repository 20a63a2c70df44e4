package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactPatterns(t *testing.T) {
	r := NewRedactor()

	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "password assignment",
			message: "login failed: password=hunter2",
			want:    "login failed: [REDACTED]",
		},
		{
			name:    "token assignment",
			message: "failed with token=abc123xyz",
			want:    "failed with [REDACTED]",
		},
		{
			name:    "api_key keeps precedence over key",
			message: "api_key=deadbeef rejected",
			want:    "[REDACTED] rejected",
		},
		{
			name:    "bare key assignment",
			message: "key=v1 expired",
			want:    "[REDACTED] expired",
		},
		{
			name:    "secret assignment",
			message: "secret=s3cr3t rotated",
			want:    "[REDACTED] rotated",
		},
		{
			name:    "provider key shape",
			message: "request with sk-ABCdef123 denied",
			want:    "request with [REDACTED] denied",
		},
		{
			name:    "case insensitive",
			message: "PASSWORD=Hunter2",
			want:    "[REDACTED]",
		},
		{
			name:    "spaces around equals",
			message: "token = abc123",
			want:    "[REDACTED]",
		},
		{
			name:    "multiple secrets in one message",
			message: "token=aaa and password=bbb",
			want:    "[REDACTED] and [REDACTED]",
		},
		{
			name:    "no match passes through",
			message: "database unreachable on host db-3",
			want:    "database unreachable on host db-3",
		},
		{
			name:    "empty message",
			message: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Redact(tt.message))
		})
	}
}

func TestRedactMetadataDropsDenylistedKeys(t *testing.T) {
	r := NewRedactor()

	got := r.RedactMetadata(map[string]string{
		"apiKey":   "sk-12345",
		"API_KEY":  "sk-67890",
		"Password": "hunter2",
		"Token":    "abc",
		"secret":   "s3cr3t",
		"KEY":      "v1",
		"region":   "eu-west-1",
		"host":     "db-3",
	})

	assert.Equal(t, map[string]string{
		"region": "eu-west-1",
		"host":   "db-3",
	}, got)
}

func TestRedactMetadataNilPassesThrough(t *testing.T) {
	r := NewRedactor()
	assert.Nil(t, r.RedactMetadata(nil))
}

func TestRedactMetadataDoesNotMutateInput(t *testing.T) {
	r := NewRedactor()

	in := map[string]string{"token": "abc", "region": "eu-west-1"}
	_ = r.RedactMetadata(in)

	assert.Equal(t, map[string]string{"token": "abc", "region": "eu-west-1"}, in)
}
