package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	t.Setenv("CHATWIDGET_HOME", t.TempDir())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
}

func TestSnippetCommandRequiresAPIKey(t *testing.T) {
	home := t.TempDir()
	t.Setenv("CHATWIDGET_HOME", home)
	t.Setenv("CHATBOT_API_KEY", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"snippet"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key")
}

func TestSnippetCommandPrintsScriptTag(t *testing.T) {
	t.Setenv("CHATWIDGET_HOME", t.TempDir())
	t.Setenv("CHATBOT_API_KEY", "org_sk_test")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"snippet"})
	require.NoError(t, cmd.Execute())
}
