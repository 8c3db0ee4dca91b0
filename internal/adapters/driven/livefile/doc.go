// Package livefile reads and writes the configuration files that Claude Code,
// the Codex CLI and the Gemini CLI load at startup.
//
// Layout under the home directory:
//
//	~/.claude/settings.json         Claude env block (merged, other keys kept)
//	~/.codex/auth.json              Codex credentials
//	~/.codex/config.toml            Codex config (validated before writing)
//	~/.gemini/.env                  Gemini env block
//	~/.gemini/settings.json         Gemini config block (merged)
//	~/CLAUDE.md, AGENTS.md, GEMINI.md   prompt files
//
// Writes go through a temp file and rename, keep a .bak of the previous
// content and hold an advisory lock in the application directory.
package livefile
