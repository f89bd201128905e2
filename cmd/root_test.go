package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentdesk/internal/config"
	"studentdesk/internal/settings"
)

func setupTestConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STUDENTDESK_CONFIG_DIR", filepath.Join(dir, "config"))
	t.Setenv("STUDENTDESK_STATE_DIR", filepath.Join(dir, "state"))
	t.Setenv("STUDENTDESK_CONFIG_PATH", filepath.Join(dir, "missing.toml"))
	config.Load()
}

func TestHelpTextListsCommands(t *testing.T) {
	out := helpText(rootCmd)
	for _, name := range []string{"serve", "seed", "watch", "follow", "submit", "push", "settings", "version"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "studentdesk v"+Version)
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "studentdesk v0.1.0\n", buf.String())
}

func TestSettingsShowCommand(t *testing.T) {
	setupTestConfig(t)
	var buf bytes.Buffer
	settingsShowCmd.SetOut(&buf)
	require.NoError(t, settingsShowCmd.RunE(settingsShowCmd, nil))
	assert.Contains(t, buf.String(), "pollIntervalSec")
	assert.Contains(t, buf.String(), "notifyHomework")
}

func TestSettingsResetCommand(t *testing.T) {
	setupTestConfig(t)
	require.NoError(t, settings.Save(settings.DefaultSettings()))
	path := settings.Path()
	_, err := os.Stat(path)
	require.NoError(t, err)

	settingsResetForce = true
	defer func() { settingsResetForce = false }()
	var buf bytes.Buffer
	settingsResetCmd.SetOut(&buf)
	require.NoError(t, settingsResetCmd.RunE(settingsResetCmd, nil))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestPushCommandValidatesFlags(t *testing.T) {
	setupTestConfig(t)
	pushProgram, pushTitle = "", ""
	err := pushCmd.RunE(pushCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--program and --title")
}

func TestFollowCommandValidatesFlags(t *testing.T) {
	setupTestConfig(t)
	followName, followPassword = "", ""
	err := followCmd.RunE(followCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--name and --password")
}
