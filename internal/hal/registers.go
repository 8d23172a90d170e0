package hal

// Codec control-interface register map.
const (
	RegMode       uint8 = 0x00
	RegStatus     uint8 = 0x01
	RegBass       uint8 = 0x02
	RegClockF     uint8 = 0x03
	RegDecodeTime uint8 = 0x04
	RegAudata     uint8 = 0x05
	RegWRAM       uint8 = 0x06
	RegWRAMAddr   uint8 = 0x07
	RegHDAT0      uint8 = 0x08 // encoder sample output
	RegHDAT1      uint8 = 0x09 // encoder words-waiting count
	RegAIAddr     uint8 = 0x0A // application execution address
	RegVol        uint8 = 0x0B
	RegAICtrl0    uint8 = 0x0C // recording level (manual)
	RegAICtrl1    uint8 = 0x0D // recording gain
	RegAICtrl2    uint8 = 0x0E // AGC ceiling, 0 disables
	RegAICtrl3    uint8 = 0x0F // encoder control/status
)

// RegMode bits.
const (
	ModeDifferential uint16 = 1 << 0
	ModeReset        uint16 = 1 << 2
	ModeCancel       uint16 = 1 << 3
	ModeNative       uint16 = 1 << 11
	ModeEncode       uint16 = 1 << 12
	ModeLine1        uint16 = 1 << 14 // line input instead of microphone
)

// RegAICtrl3 bits used by the recording overlay.
const (
	// Ctrl3StopRequest asks the encoder to end the stream.
	Ctrl3StopRequest uint16 = 1 << 0
	// Ctrl3Stopped is set once the encoder has stopped capturing.
	Ctrl3Stopped uint16 = 1 << 1
	// Ctrl3InvalidLastByte signals that the low byte of the final
	// word is padding rather than a valid sample byte.
	Ctrl3InvalidLastByte uint16 = 1 << 2
)

const (
	// ClockRecording is the high-throughput clock multiplier required
	// while the encoder overlay runs.
	ClockRecording uint16 = 0xC000

	// IntEnableAddr is the WRAM address of the interrupt-enable word;
	// IntEnableControl leaves only the control-interface interrupt on.
	IntEnableAddr    uint16 = 0xC01A
	IntEnableControl uint16 = 0x0002

	// EncoderEntry is the overlay entry point written to RegAIAddr to
	// activate the on-chip encoder.
	EncoderEntry uint16 = 0x0034
)

// RecordBlockWords is the drain-loop block threshold: full 256-word
// blocks while recording, any remainder once draining.
const RecordBlockWords = 256
