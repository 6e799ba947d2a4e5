package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifest_EveryReferencedFileIsEmbedded(t *testing.T) {
	m, err := Load()
	require.NoError(t, err)

	for _, lang := range []string{"en", "zh-CN"} {
		for _, w := range m.Workflows {
			for _, c := range w.Commands {
				_, err := ReadFile(CommandPath(lang, c))
				assert.NoError(t, err, "%s command %s (%s)", w.ID, c, lang)
			}
			for _, a := range w.Agents {
				_, err := ReadFile(AgentPath(lang, a))
				assert.NoError(t, err, "%s agent %s (%s)", w.ID, a, lang)
			}
		}
		for _, id := range m.CustomStyleIDs() {
			_, err := ReadFile(OutputStylePath(lang, id))
			assert.NoError(t, err, "style %s (%s)", id, lang)
		}
	}
	_, err = ReadFile(SettingsPath)
	assert.NoError(t, err)
}

func TestManifest_Lookups(t *testing.T) {
	m := MustLoad()

	assert.Equal(t, []string{"commonTools", "sixStepsWorkflow", "featPlanUx", "gitWorkflow", "bmadWorkflow"}, m.WorkflowIDs())
	assert.Equal(t, "engineer-professional", m.DefaultStyleID())
	assert.Equal(t, []string{"engineer-professional", "nekomata-engineer", "laowang-engineer", "ojousama-engineer"}, m.CustomStyleIDs())
	assert.Len(t, m.StyleIDs(), 7)
	assert.NotContains(t, m.KeylessMCPServiceIDs(), "exa")
	assert.Contains(t, m.KeylessMCPServiceIDs(), "context7")

	exa, ok := m.MCPService("exa")
	require.True(t, ok)
	assert.True(t, exa.RequiresAPIKey)
	assert.Equal(t, "EXA_API_KEY", exa.APIKeyEnvVar)
	assert.Equal(t, "YOUR_EXA_API_KEY", exa.Server.Env["EXA_API_KEY"])
}

func TestLocalized_Get(t *testing.T) {
	l := Localized{"en": "Hello", "zh-CN": "你好"}
	assert.Equal(t, "你好", l.Get("zh-CN"))
	assert.Equal(t, "Hello", l.Get("fr"))
}

func TestStripFrontMatter(t *testing.T) {
	assert.Equal(t, "# Body\n", StripFrontMatter("---\nname: x\n---\n\n# Body\n"))
	assert.Equal(t, "# No front matter\n", StripFrontMatter("# No front matter\n"))
	assert.Equal(t, "---\nunterminated", StripFrontMatter("---\nunterminated"))
}

func TestReplaceBlock(t *testing.T) {
	assert.Equal(t, BlockStart+"\nx\n"+BlockEnd+"\n", ReplaceBlock("", "x"))
	in := "a\n" + BlockStart + "\nold\n" + BlockEnd + "\nb\n"
	assert.Equal(t, "a\n"+BlockStart+"\nnew\n"+BlockEnd+"\nb\n", ReplaceBlock(in, "new"))

	truncated := "a\n" + BlockStart + "\nold\n"
	out := ReplaceBlock(truncated, "new")
	assert.Equal(t, "a\n"+BlockStart+"\nnew\n"+BlockEnd, out)
	assert.Equal(t, 1, strings.Count(out, BlockStart))
	assert.Equal(t, out, ReplaceBlock(out, "new"))
}

func TestBlock(t *testing.T) {
	assert.Equal(t, "", Block("plain"))
	assert.Equal(t, "x", Block(BlockStart+"\nx\n"+BlockEnd+"\ntrailer"))
	assert.Equal(t, "x", Block("a\n"+BlockStart+"\nx\n"))
	assert.Equal(t, "", Block(BlockEnd+"\n"+BlockStart))
}

func TestMCPService_Launch(t *testing.T) {
	m := MustLoad()
	exa, ok := m.MCPService("exa")
	require.True(t, ok)

	srv := exa.Launch("k-1", "linux")
	assert.Equal(t, "npx", srv.Command)
	assert.Equal(t, "k-1", srv.Env["EXA_API_KEY"])
	assert.Equal(t, "YOUR_EXA_API_KEY", exa.Server.Env["EXA_API_KEY"], "manifest is not modified")

	win := exa.Launch("k-1", "windows")
	assert.Equal(t, "cmd", win.Command)
	assert.Equal(t, []string{"/c", "npx", "-y", "exa-mcp-server"}, win.Args)

	serena, _ := m.MCPService("serena")
	assert.Equal(t, "uvx", serena.Launch("", "windows").Command)
}

func TestLanguageDirective(t *testing.T) {
	assert.Equal(t, "Always respond in Chinese-simplified", LanguageDirective("zh-CN"))
	assert.Equal(t, "Always respond in English", LanguageDirective("en"))
	assert.Equal(t, "Always respond in Deutsch", LanguageDirective("Deutsch"))
}
