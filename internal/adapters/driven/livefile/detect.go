package livefile

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/cfgswitch/internal/core/domain"
)

// Provider families reported by DetectProvider.
const (
	FamilyClaudeOAuth = "claude_oauth"
	FamilyClaude      = "claude"
	FamilyCodex       = "codex"
	FamilyGemini      = "gemini"
)

// credentialFields lists, per scope, the settings paths that decide which
// endpoint an application talks to.
var credentialFields = map[domain.AppType][]string{
	domain.AppClaude: {"env.ANTHROPIC_AUTH_TOKEN", "env.ANTHROPIC_API_KEY", "env.ANTHROPIC_BASE_URL"},
	domain.AppCodex:  {"auth.access_token", "auth.OPENAI_API_KEY"},
	domain.AppGemini: {"env.GOOGLE_API_KEY", "env.GEMINI_API_KEY", "env.GOOGLE_GEMINI_BASE_URL"},
}

// DetectProvider attributes settings to a provider family from the
// credentials they carry. It returns domain.UnknownProvider when nothing
// recognisable is present.
func DetectProvider(app domain.AppType, settings map[string]any) string {
	switch app {
	case domain.AppClaude:
		if lookupString(settings, "env.ANTHROPIC_AUTH_TOKEN") != "" {
			return FamilyClaudeOAuth
		}
		if lookupString(settings, "env.ANTHROPIC_API_KEY") != "" {
			return FamilyClaude
		}
	case domain.AppCodex:
		if lookupString(settings, "auth.access_token") != "" || lookupString(settings, "auth.OPENAI_API_KEY") != "" {
			return FamilyCodex
		}
	case domain.AppGemini:
		if lookupString(settings, "env.GOOGLE_API_KEY") != "" || lookupString(settings, "env.GEMINI_API_KEY") != "" {
			return FamilyGemini
		}
	}
	return domain.UnknownProvider
}

// DiffCredentials compares the credential fields of local and external
// settings. Secret values are masked in the result.
func DiffCredentials(app domain.AppType, local, external map[string]any) []domain.ConfigConflict {
	var out []domain.ConfigConflict
	for _, field := range credentialFields[app] {
		l := lookupString(local, field)
		e := lookupString(external, field)
		if l == e {
			continue
		}
		if isSecretField(field) {
			l, e = MaskSecret(l), MaskSecret(e)
		}
		out = append(out, domain.ConfigConflict{Field: field, LocalValue: l, ExternalValue: e})
	}
	return out
}

// MaskSecret hides all but the ends of a credential.
func MaskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + "****" + s[len(s)-4:]
	}
}

func isSecretField(field string) bool {
	upper := strings.ToUpper(field)
	return strings.Contains(upper, "KEY") || strings.Contains(upper, "TOKEN")
}

// lookupString follows a dotted path through nested maps and renders the
// leaf as a string. Missing paths yield "".
func lookupString(settings map[string]any, path string) string {
	var node any = settings
	for _, part := range strings.Split(path, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return ""
		}
		node, ok = m[part]
		if !ok {
			return ""
		}
	}
	switch v := node.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
