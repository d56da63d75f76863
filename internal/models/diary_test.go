package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmotion(t *testing.T) {
	for _, e := range Emotions {
		assert.True(t, ValidEmotion(e), "emotion %q should be valid", e)
	}

	assert.False(t, ValidEmotion("euphoria"))
	assert.False(t, ValidEmotion(""))
	assert.False(t, ValidEmotion("JOY"))
}

func TestEmotionLabelsCoverAllEmotions(t *testing.T) {
	assert.Len(t, Emotions, 12)
	for _, e := range Emotions {
		label, ok := EmotionLabels[e]
		assert.True(t, ok, "emotion %q has no label", e)
		assert.NotEmpty(t, label)
	}
}
