package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"call-coach-go/internal/types"
)

func TestSpeakerMapping(t *testing.T) {
	assert.Equal(t, types.SpeakerRep, types.TranscriptEntry{Role: "user"}.Speaker())
	assert.Equal(t, types.SpeakerProspect, types.TranscriptEntry{Role: "agent"}.Speaker())

	// Unknown roles default to the rep side rather than being dropped.
	assert.Equal(t, types.SpeakerRep, types.TranscriptEntry{Role: "system"}.Speaker())
	assert.Equal(t, types.SpeakerRep, types.TranscriptEntry{}.Speaker())
}
