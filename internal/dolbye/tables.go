package dolbye

// Fixed decision tables reproduced from the original decoder's
// dolbye_parser.h display-table declarations, kept here purely as data.
// The original's pretty-print strings are not part of this repository.

// NProgramConfigs is the number of valid program_config values.
const NProgramConfigs = 24

// NFrameRates is the number of valid frame_rate_code / original_frame_rate_code values.
const NFrameRates = 8

// MaxPrograms bounds the per-frame program count.
const MaxPrograms = 8

// MaxChannels bounds the per-frame channel count.
const MaxChannels = 8

// MaxBlocks bounds the per-channel block count (BRIDGE/SHORT layouts).
const MaxBlocks = 9

// MaxAddBSIBytes bounds the AC-3 additional-BSI byte array length.
const MaxAddBSIBytes = 64

// MaxDescTextLen bounds a program description buffer.
const MaxDescTextLen = 34

// nProgramsTable maps program_config to n_programs.
var nProgramsTable = [NProgramConfigs]int{
	2, 3, 2, 3, 4, 5, 4, 5, 6, 7, 8, 1, 2, 3, 3, 4, 5, 6, 1, 2, 3, 4, 1, 1,
}

// nChannelsTable maps program_config to n_channels.
var nChannelsTable = [NProgramConfigs]int{
	8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 6, 6, 6, 6, 6, 6, 6, 4, 4, 4, 4, 8, 8,
}

// lfeChannelTable maps program_config to lfe_channel_index, -1 meaning no LFE.
var lfeChannelTable = [NProgramConfigs]int{
	5, 5, -1, -1, -1, -1, -1, -1, -1, -1, -1, 4, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, 5, 5,
}

// ProgramConfigInfo bundles the three derived fields for a program_config value.
type ProgramConfigInfo struct {
	NPrograms       int
	NChannels       int
	LFEChannelIndex int
}

// LookupProgramConfig validates cfg and returns its derived fields.
func LookupProgramConfig(cfg int) (ProgramConfigInfo, error) {
	if cfg < 0 || cfg >= NProgramConfigs {
		return ProgramConfigInfo{}, ErrInvalidProgramConfig
	}
	return ProgramConfigInfo{
		NPrograms:       nProgramsTable[cfg],
		NChannels:       nChannelsTable[cfg],
		LFEChannelIndex: lfeChannelTable[cfg],
	}, nil
}

// FrameRates lists the eight nominal frame rates in fps, indexed by
// frame_rate_code-1.
var FrameRates = [NFrameRates]float64{23.98, 24, 25, 29.97, 30, 50, 59.94, 60}

// SamplesPerFrame lists the 48kHz sample counts for the five low frame
// rates, indexed by frame_rate_code-1; only meaningful for codes 1..5.
var SamplesPerFrame = [5]int{2002, 2000, 1920, 1602, 1600}

// LastFrameTable lists the frame-number modulus (24 means frame numbers
// 0..23) for the five low frame rates, indexed by frame_rate_code-1.
var LastFrameTable = [5]int{24, 24, 25, 30, 30}

// DropFrameTable flags which of the five low frame rates apply drop-frame
// correction, indexed by frame_rate_code-1.
var DropFrameTable = [5]bool{true, false, false, true, false}

// IsLowFrameRate reports whether code enables the metadata-extension and
// audio-extension segments.
func IsLowFrameRate(code int) bool {
	return code >= 1 && code <= 5
}

// ValidateFrameRateCode checks code is in [1,8].
func ValidateFrameRateCode(code int) error {
	if code < 1 || code > NFrameRates {
		return ErrInvalidFrameRate
	}
	return nil
}

// Bit depths and their sync/preamble constants, from dolbye_parser.h.
const (
	BitDepth16 = 16
	BitDepth20 = 20
	BitDepth24 = 24
)

// BitDepths lists the three supported payload word sizes in ascending
// index order matching the original's maskSync/preambleSyncA/B tables.
var BitDepths = [3]int{BitDepth16, BitDepth20, BitDepth24}

// syncWord lists the top-(wordSize-1)-bit sync constant per bit depth
// (index 0=16, 1=20, 2=24), used by the sync segment.
var syncWord = [3]uint32{0x078e, 0x0788e, 0x07888e}

// SyncWordFor returns the expected sync constant for wordSize (16/20/24).
func SyncWordFor(wordSize int) (uint32, bool) {
	switch wordSize {
	case BitDepth16:
		return syncWord[0], true
	case BitDepth20:
		return syncWord[1], true
	case BitDepth24:
		return syncWord[2], true
	default:
		return 0, false
	}
}

// preambleSyncMask/A/B/Mode are the burst-preamble constants from
// dolbye_parser.h, indexed the same way as BitDepths.
var preambleSyncMask = [3]uint32{0x0ffff00, 0x0fffff0, 0x0ffffff}
var preambleSyncA = [3]uint32{0x0f87200, 0x06f8720, 0x096f872}
var preambleSyncB = [3]uint32{0x04e1f00, 0x054e1f0, 0x0a54e1f}
var preambleMode = [3]uint32{0x0000000, 0x0002000, 0x0004000}

const (
	preambleMaskStrmNum = 0x0e00000
	preambleMaskErr     = 0x0008000
	preambleMaskMode    = 0x0006000
	preambleMaskType    = 0x0001f00
	preambleTypeDolbyE  = 0x0001c00
	preambleNoErr       = 0x0000000
	preambleStrm0       = 0x0000000
)

// GroupType enumerates the three channel-subsegment layouts.
type GroupType int

const (
	GroupTypeLong GroupType = iota
	GroupTypeShort
	GroupTypeBridge
)
