// Package config defines the receiver's tunables, grounded on the field
// names of the original source's CF_ConfigTable_t / CF_ChannelConfig_t
// (original_source/fsw/inc/cf_tbldefs.h), built with the functional-options
// constructor idiom the teacher uses for lib/pacer (see
// backend/seafile/pacer.go's pacer.NewDefault(pacer.MinSleep(...), ...)).
//
// Fields belonging to features out of scope per spec §1 Non-goals —
// polling directories (CF_PollDir_t, dequeue_enabled) and post-completion
// file relocation (move_dir) — are intentionally not carried over.
package config

import "github.com/pkg/errors"

// ErrInvalidConfig is wrapped with a specific reason by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// GlobalConfig holds the engine-wide tunables shared by every channel.
type GlobalConfig struct {
	// LocalEID is this entity's own CFDP entity ID.
	LocalEID uint64
	// TicksPerSecond converts the per-channel timer reloads, given in
	// seconds, into the tick counts the Timer package counts down.
	TicksPerSecond uint32
	// CRCBytesPerWakeup bounds the background CRC pass (crc.Pass.Advance)
	// run per channel wakeup; must be a positive multiple of 1024.
	CRCBytesPerWakeup int64
	// TmpDir is where file data landing before its Metadata PDU is
	// buffered (filesink.OpenAtTemp).
	TmpDir string

	Channels []ChannelConfig
}

// GlobalOption configures a GlobalConfig.
type GlobalOption func(*GlobalConfig)

// WithLocalEID sets the local entity ID.
func WithLocalEID(eid uint64) GlobalOption {
	return func(c *GlobalConfig) { c.LocalEID = eid }
}

// WithTicksPerSecond sets the tick rate used to translate timer seconds.
func WithTicksPerSecond(n uint32) GlobalOption {
	return func(c *GlobalConfig) { c.TicksPerSecond = n }
}

// WithCRCBytesPerWakeup sets the background CRC pass's per-wakeup budget.
func WithCRCBytesPerWakeup(n int64) GlobalOption {
	return func(c *GlobalConfig) { c.CRCBytesPerWakeup = n }
}

// WithTmpDir sets the directory used for metadata-pending temp files.
func WithTmpDir(dir string) GlobalOption {
	return func(c *GlobalConfig) { c.TmpDir = dir }
}

// WithChannels appends channel configurations.
func WithChannels(chans ...ChannelConfig) GlobalOption {
	return func(c *GlobalConfig) { c.Channels = append(c.Channels, chans...) }
}

// defaultGlobalConfig mirrors the original source's compiled-in defaults
// for a single-channel, Earth-ground-station-scale deployment.
func defaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		TicksPerSecond:    1,
		CRCBytesPerWakeup: 1024 * 16,
		TmpDir:            "/tmp/cfdp",
	}
}

// NewGlobalConfig builds a GlobalConfig from sane defaults plus opts, in
// order.
func NewGlobalConfig(opts ...GlobalOption) GlobalConfig {
	c := defaultGlobalConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ChannelConfig holds the per-channel tunables: timer reload values,
// retry limits, and queue-draining quotas. Field names follow
// CF_ChannelConfig_t.
type ChannelConfig struct {
	Name string

	// AckTimerS, NakTimerS, InactivityTimerS are timer reload values in
	// seconds, converted to ticks via GlobalConfig.TicksPerSecond.
	AckTimerS        uint32
	NakTimerS        uint32
	InactivityTimerS uint32

	// AckLimit and NakLimit bound how many times each timer may expire
	// and retrigger its directive before the transaction is cancelled
	// with CheckLimitReached.
	AckLimit uint32
	NakLimit uint32

	// RxMaxMessagesPerWakeup bounds how many inbound PDUs a channel will
	// drain from its queue in one wakeup.
	RxMaxMessagesPerWakeup uint32
	// MaxOutgoingMessagesPerWakeup bounds how many PDUs (ACK/NAK/FIN) a
	// channel will emit in one wakeup; 0 means unlimited.
	MaxOutgoingMessagesPerWakeup uint32

	// ChunkListCapacity bounds the number of intervals a transaction's
	// ranges.ChunkList may hold before it starts evicting (spec's Open
	// Question (a)). Not named in the original source, which used a
	// fixed compiled-in array size; here it is configurable per channel.
	ChunkListCapacity int
}

// ChannelOption configures a ChannelConfig.
type ChannelOption func(*ChannelConfig)

func WithName(name string) ChannelOption {
	return func(c *ChannelConfig) { c.Name = name }
}

func WithAckTimer(seconds uint32) ChannelOption {
	return func(c *ChannelConfig) { c.AckTimerS = seconds }
}

func WithNakTimer(seconds uint32) ChannelOption {
	return func(c *ChannelConfig) { c.NakTimerS = seconds }
}

func WithInactivityTimer(seconds uint32) ChannelOption {
	return func(c *ChannelConfig) { c.InactivityTimerS = seconds }
}

func WithAckLimit(n uint32) ChannelOption {
	return func(c *ChannelConfig) { c.AckLimit = n }
}

func WithNakLimit(n uint32) ChannelOption {
	return func(c *ChannelConfig) { c.NakLimit = n }
}

func WithRxMaxMessagesPerWakeup(n uint32) ChannelOption {
	return func(c *ChannelConfig) { c.RxMaxMessagesPerWakeup = n }
}

func WithMaxOutgoingMessagesPerWakeup(n uint32) ChannelOption {
	return func(c *ChannelConfig) { c.MaxOutgoingMessagesPerWakeup = n }
}

func WithChunkListCapacity(n int) ChannelOption {
	return func(c *ChannelConfig) { c.ChunkListCapacity = n }
}

func defaultChannelConfig() ChannelConfig {
	return ChannelConfig{
		AckTimerS:              2,
		NakTimerS:              2,
		InactivityTimerS:       30,
		AckLimit:               4,
		NakLimit:               4,
		RxMaxMessagesPerWakeup: 5,
		ChunkListCapacity:      100,
	}
}

// NewChannelConfig builds a ChannelConfig from sane defaults plus opts.
func NewChannelConfig(opts ...ChannelOption) ChannelConfig {
	c := defaultChannelConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Validate reports the first configuration error found, wrapped in
// ErrInvalidConfig.
func (c GlobalConfig) Validate() error {
	if c.TicksPerSecond == 0 {
		return errors.Wrap(ErrInvalidConfig, "ticks_per_second must be > 0")
	}
	if c.CRCBytesPerWakeup <= 0 || c.CRCBytesPerWakeup%1024 != 0 {
		return errors.Wrap(ErrInvalidConfig, "rx_crc_calc_bytes_per_wakeup must be a positive multiple of 1024")
	}
	if c.TmpDir == "" {
		return errors.Wrap(ErrInvalidConfig, "tmp_dir must be set")
	}
	if len(c.Channels) == 0 {
		return errors.Wrap(ErrInvalidConfig, "at least one channel must be configured")
	}
	seen := make(map[string]bool, len(c.Channels))
	for _, ch := range c.Channels {
		if err := ch.Validate(); err != nil {
			return err
		}
		if seen[ch.Name] {
			return errors.Wrapf(ErrInvalidConfig, "duplicate channel name %q", ch.Name)
		}
		seen[ch.Name] = true
	}
	return nil
}

// Validate reports the first configuration error found in a single
// channel, wrapped in ErrInvalidConfig.
func (c ChannelConfig) Validate() error {
	if c.Name == "" {
		return errors.Wrap(ErrInvalidConfig, "channel name must be set")
	}
	if c.AckLimit == 0 {
		return errors.Wrapf(ErrInvalidConfig, "channel %q: ack_limit must be > 0", c.Name)
	}
	if c.NakLimit == 0 {
		return errors.Wrapf(ErrInvalidConfig, "channel %q: nak_limit must be > 0", c.Name)
	}
	if c.RxMaxMessagesPerWakeup == 0 {
		return errors.Wrapf(ErrInvalidConfig, "channel %q: rx_max_messages_per_wakeup must be > 0", c.Name)
	}
	if c.ChunkListCapacity <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "channel %q: chunk_list_capacity must be > 0", c.Name)
	}
	return nil
}
