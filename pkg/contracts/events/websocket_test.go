package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReply(t *testing.T) {
	tests := []struct {
		name    string
		text    bool
		payload []byte
		want    string
	}{
		{"text", true, []byte("hello"), "reply: hello"},
		{"empty text", true, []byte{}, "reply: "},
		{"unicode", true, []byte("héllo ✓"), "reply: héllo ✓"},
		{"binary", false, []byte("hello"), NotTextReply},
		{"invalid utf8 text", true, []byte{0xff, 0xfe}, NotTextReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reply(tt.text, tt.payload))
		})
	}
}
