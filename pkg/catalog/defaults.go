package catalog

import "github.com/sdejongh/aisync/pkg/models"

var defaultMappings = []models.FileMapping{
	// Claude Code
	{RelativePath: ".claude.json", KeepMode: models.KeepBoth, Description: "Claude config"},
	{RelativePath: ".claude/CLAUDE.md", KeepMode: models.KeepPreferWindows, Description: "Claude instructions"},
	{RelativePath: ".claude/agents/", KeepMode: models.KeepPreferWindows, IsDirectory: true, Description: "Claude agents"},

	// Gemini CLI
	{RelativePath: ".gemini/settings.json", KeepMode: models.KeepBoth, Description: "Gemini settings"},
	{RelativePath: ".gemini/GEMINI.md", KeepMode: models.KeepPreferWindows, Description: "Gemini instructions"},

	// Codex
	{RelativePath: ".codex/config.toml", KeepMode: models.KeepBoth, Description: "Codex config"},
	{RelativePath: ".codex/AGENTS.md", KeepMode: models.KeepPreferWindows, Description: "Codex agents"},

	// Cline keeps its files under different parents on Windows
	{
		RelativePath:        ".vscode-server/data/User/globalStorage/saoudrizwan.claude-dev/settings/cline_mcp_settings.json",
		WindowsRelativePath: "AppData/Roaming/Code/User/globalStorage/saoudrizwan.claude-dev/settings/cline_mcp_settings.json",
		KeepMode:            models.KeepBoth,
		Description:         "Cline MCP settings",
	},
	{
		RelativePath:        "Cline/Rules/",
		WindowsRelativePath: "Documents/Cline/Rules/",
		KeepMode:            models.KeepPreferWindows,
		IsDirectory:         true,
		Description:         "Cline rules",
	},
}
