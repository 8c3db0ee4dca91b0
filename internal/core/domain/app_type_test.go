package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppType(t *testing.T) {
	tests := []struct {
		input string
		want  AppType
	}{
		{"claude", AppClaude},
		{"Claude", AppClaude},
		{" CODEX ", AppCodex},
		{"gemini", AppGemini},
		{"ProxyCast", AppProxyCast},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAppType(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAppType_Invalid(t *testing.T) {
	_, err := ParseAppType("cursor")
	assert.ErrorIs(t, err, ErrUnsupportedApp)
	assert.Contains(t, err.Error(), "cursor")
}

func TestAppType_HasLiveConfig(t *testing.T) {
	assert.True(t, AppClaude.HasLiveConfig())
	assert.True(t, AppCodex.HasLiveConfig())
	assert.True(t, AppGemini.HasLiveConfig())
	assert.False(t, AppProxyCast.HasLiveConfig())
	assert.False(t, AppType("other").HasLiveConfig())
}

func TestAppType_PromptFileName(t *testing.T) {
	assert.Equal(t, "CLAUDE.md", AppClaude.PromptFileName())
	assert.Equal(t, "AGENTS.md", AppCodex.PromptFileName())
	assert.Equal(t, "GEMINI.md", AppGemini.PromptFileName())
	assert.Empty(t, AppProxyCast.PromptFileName())
}

func TestAllAppTypes_AreValid(t *testing.T) {
	apps := AllAppTypes()
	assert.Len(t, apps, 4)
	for _, app := range apps {
		assert.True(t, app.IsValid(), app.String())
	}
}
