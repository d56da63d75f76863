package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterContent(t *testing.T) {
	ms := NewModerationService(nil)

	tests := []struct {
		name       string
		text       string
		wantOK     bool
		wantReason string
	}{
		{"clean japanese", "今日は疲れたけど頑張った", true, ""},
		{"clean english", "had a rough day but made it through", true, ""},
		{"empty", "", true, ""},
		{"banned english word", "this is bullshit honestly", false, "inappropriate_language"},
		{"banned word case insensitive", "FUCK this", false, "inappropriate_language"},
		{"banned japanese word", "おまえなんか死ね", false, "inappropriate_language"},
		{"word boundary respected", "I live in Scunthorpe", true, ""},
		{"http url", "check this out https://example.com/x", false, "url_not_allowed"},
		{"www url", "visit www.example.com now", false, "url_not_allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := ms.FilterContent(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestGetRejectionMessage(t *testing.T) {
	ms := NewModerationService(nil)

	assert.Equal(t, "投稿に不適切な表現が含まれています", ms.GetRejectionMessage("inappropriate_language"))
	assert.Equal(t, "URLを含む投稿はできません", ms.GetRejectionMessage("url_not_allowed"))
	assert.Equal(t, "投稿がコミュニティガイドラインに適合していません", ms.GetRejectionMessage("something_else"))
}
