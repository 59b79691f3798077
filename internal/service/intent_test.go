package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldGenerateDocument(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Can I get a summary?", true},
		{"Let's discuss scope", false},
		{"", false},
		{"   \n\t", false},
		{"please prepare a summary document", true},
		{"SEND ME THE REPORT", true},
		{"Where can I Download it?", true},
		{"share a link please", true},
		{"Generate the SRS now", true},
		{"no document needed", true},
		{"documentation would be nice", true},
		{"summarized already", false},
		{"The users are clinic receptionists", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldGenerateDocument(tt.text))
		})
	}
}
