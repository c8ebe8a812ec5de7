package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// fileFormat is the on-disk YAML shape for a channel table, the Go-native
// analogue of the original source's compiled CF_ConfigTable_t: an
// operator-editable list instead of a flashed binary table.
type fileFormat struct {
	LocalEID          uint64         `yaml:"local_eid"`
	TicksPerSecond    uint32         `yaml:"ticks_per_second"`
	CRCBytesPerWakeup int64          `yaml:"rx_crc_calc_bytes_per_wakeup"`
	TmpDir            string         `yaml:"tmp_dir"`
	Channels          []fileChannel  `yaml:"channels"`
}

type fileChannel struct {
	Name                         string `yaml:"name"`
	AckTimerS                    uint32 `yaml:"ack_timer_s"`
	NakTimerS                    uint32 `yaml:"nak_timer_s"`
	InactivityTimerS             uint32 `yaml:"inactivity_timer_s"`
	AckLimit                     uint32 `yaml:"ack_limit"`
	NakLimit                     uint32 `yaml:"nak_limit"`
	RxMaxMessagesPerWakeup       uint32 `yaml:"rx_max_messages_per_wakeup"`
	MaxOutgoingMessagesPerWakeup uint32 `yaml:"max_outgoing_messages_per_wakeup"`
	ChunkListCapacity            int    `yaml:"chunk_list_capacity"`
}

// LoadFile reads a GlobalConfig from a YAML channel table and validates
// it before returning.
func LoadFile(path string) (GlobalConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return GlobalConfig{}, errors.Wrapf(ErrInvalidConfig, "reading %s: %v", path, err)
	}
	var ff fileFormat
	if err := yaml.Unmarshal(raw, &ff); err != nil {
		return GlobalConfig{}, errors.Wrapf(ErrInvalidConfig, "parsing %s: %v", path, err)
	}

	gopts := []GlobalOption{
		WithLocalEID(ff.LocalEID),
		WithTicksPerSecond(ff.TicksPerSecond),
		WithCRCBytesPerWakeup(ff.CRCBytesPerWakeup),
		WithTmpDir(ff.TmpDir),
	}
	for _, fc := range ff.Channels {
		gopts = append(gopts, WithChannels(NewChannelConfig(
			WithName(fc.Name),
			WithAckTimer(fc.AckTimerS),
			WithNakTimer(fc.NakTimerS),
			WithInactivityTimer(fc.InactivityTimerS),
			WithAckLimit(fc.AckLimit),
			WithNakLimit(fc.NakLimit),
			WithRxMaxMessagesPerWakeup(fc.RxMaxMessagesPerWakeup),
			WithMaxOutgoingMessagesPerWakeup(fc.MaxOutgoingMessagesPerWakeup),
			WithChunkListCapacity(fc.ChunkListCapacity),
		)))
	}

	cfg := GlobalConfig{}
	for _, opt := range gopts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return GlobalConfig{}, err
	}
	return cfg, nil
}
