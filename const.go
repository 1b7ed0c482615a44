package ads7953

// Mode control frames. Bits 15:12 select the operating mode, the lower bits
// carry the range and reference settings.
const (
	CmdAuto1       = 0x2000
	CmdRangeSelect = 0x4000
	CmdExtRef      = 0x1000
	Cmd2xGain      = 0x0800

	// CmdContinue keeps the current mode and triggers the next conversion.
	CmdContinue = 0x0000
)

const (
	// MaxChannels is the number of analog inputs of the ADS7953.
	MaxChannels = 16
	// MaxValue is the largest 12-bit conversion result.
	MaxValue = 0x0FFF

	dataMask    = 0x0FFF
	addrMask    = 0xF000
	addrShift   = 12
	defaultName = "ads7953"
)

// Reference defaults.
const (
	DefaultChannels = MaxChannels
	DefaultDepth    = 4
)
