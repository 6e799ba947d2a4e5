package i18n

import (
	"path"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func keys(t *testing.T, lang string) []string {
	t.Helper()
	raw, err := localeFS.ReadFile(path.Join("locales", lang+".yaml"))
	require.NoError(t, err)
	msgs := map[string]string{}
	require.NoError(t, yaml.Unmarshal(raw, &msgs))
	out := make([]string, 0, len(msgs))
	for k := range msgs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func TestCatalogsLoadAndAgree(t *testing.T) {
	require.NoError(t, LoadError())
	assert.Equal(t, keys(t, LangEn), keys(t, LangZhCN))
}

func TestTL(t *testing.T) {
	assert.Equal(t, "Installed workflow: git", TL(LangEn, "workflow.installed", "git"))
	assert.Equal(t, "已安装工作流：git", TL(LangZhCN, "workflow.installed", "git"))
	assert.Equal(t, "no.such.key", TL(LangZhCN, "no.such.key"))
	assert.Equal(t, TL(LangEn, "menu.quit"), TL("fr", "menu.quit"), "unknown languages read the en catalog")
}

func TestSetLanguage(t *testing.T) {
	defer SetLanguage(Language())

	SetLanguage(LangZhCN)
	assert.Equal(t, LangZhCN, Language())
	assert.Equal(t, "退出", T("menu.quit"))

	SetLanguage("klingon")
	assert.Equal(t, LangEn, Language())
	assert.Equal(t, "Quit", T("menu.quit"))
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("zh-CN"))
	assert.True(t, IsSupported("en"))
	assert.False(t, IsSupported("zh"))
}
