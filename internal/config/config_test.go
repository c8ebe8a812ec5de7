package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChannelConfigDefaults(t *testing.T) {
	c := NewChannelConfig(WithName("ch0"))
	assert.Equal(t, "ch0", c.Name)
	assert.Equal(t, uint32(2), c.AckTimerS)
	assert.Equal(t, uint32(4), c.AckLimit)
	assert.NoError(t, c.Validate())
}

func TestChannelConfigValidateRejectsMissingName(t *testing.T) {
	c := NewChannelConfig()
	err := c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestChannelConfigValidateRejectsZeroLimits(t *testing.T) {
	c := NewChannelConfig(WithName("ch0"), WithAckLimit(0))
	assert.Error(t, c.Validate())
}

func TestGlobalConfigValidateRequiresChannel(t *testing.T) {
	g := NewGlobalConfig(WithLocalEID(1))
	err := g.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one channel")
}

func TestGlobalConfigValidateRejectsDuplicateChannelNames(t *testing.T) {
	g := NewGlobalConfig(
		WithChannels(
			NewChannelConfig(WithName("ch0")),
			NewChannelConfig(WithName("ch0")),
		),
	)
	err := g.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate channel")
}

func TestGlobalConfigValidateRejectsBadCRCBudget(t *testing.T) {
	g := NewGlobalConfig(
		WithCRCBytesPerWakeup(100),
		WithChannels(NewChannelConfig(WithName("ch0"))),
	)
	err := g.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1024")
}

func TestGlobalConfigValidateAcceptsDefaults(t *testing.T) {
	g := NewGlobalConfig(WithChannels(NewChannelConfig(WithName("ch0"))))
	assert.NoError(t, g.Validate())
}

func TestLoadFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfdp.yaml")
	content := `
local_eid: 42
ticks_per_second: 1
rx_crc_calc_bytes_per_wakeup: 2048
tmp_dir: /tmp/cfdp
channels:
  - name: ch0
    ack_timer_s: 5
    nak_timer_s: 5
    inactivity_timer_s: 60
    ack_limit: 3
    nak_limit: 3
    rx_max_messages_per_wakeup: 10
    max_outgoing_messages_per_wakeup: 0
    chunk_list_capacity: 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cfg.LocalEID)
	require.Len(t, cfg.Channels, 1)
	assert.Equal(t, "ch0", cfg.Channels[0].Name)
	assert.Equal(t, uint32(3), cfg.Channels[0].AckLimit)
	assert.Equal(t, 50, cfg.Channels[0].ChunkListCapacity)
}

func TestLoadFileRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("local_eid: 1\n"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadFileMissingFile(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/cfdp.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
