// Package dolbyegen builds deterministic, byte-exact Dolby E elementary
// stream fixtures for tests, the way the teacher's examples/internal/samples
// package builds a deterministic Chapter-10 capture: pack fields with a bit
// writer instead of hand-computing raw bytes, so a fixture's shape tracks
// the parser's field layout as it evolves.
package dolbyegen

import (
	"example.com/dolbyectl/internal/dolbye/bitio"
)

// Config parameterizes a synthetic single-program, LFE-free frame —
// deliberately the simplest legal shape (program_config 18: one program,
// four channels, no LFE) so tests can focus on one field at a time. Setting
// FrameRateCode to one of the five low-frame-rate codes (1-5) also emits the
// metadata-extension and audio-extension segments; setting Keyed scrambles
// every keyable segment the way a production Dolby E encoder would.
type Config struct {
	WordSize      int
	ProgramConfig int
	FrameRateCode int
	FrameCount    int
	Timecode      [8]byte
	Description   string

	// Keyed, if set, scrambles the metadata/audio/extension/meter segments with
	// a fixed test key the same way DolbyEFile::BitUnkey descrambles a
	// keyed production stream, exercising Reader.Unkey.
	Keyed bool
}

// testKey is an arbitrary, fixed non-zero key value used whenever a
// fixture is built with Config.Keyed set, masked to wordSize bits.
func testKey(wordSize int) uint32 {
	return 0xa5a5 & ((1 << uint(wordSize)) - 1)
}

// lowFrameRateCode reports whether code is one of the five rates that
// carry the metadata-extension and audio-extension segments, mirroring
// dolbye.IsLowFrameRate without importing the dolbye package (dolbyegen
// must stay usable from dolbye's own black-box tests).
func lowFrameRateCode(code int) bool {
	return code >= 1 && code <= 5
}

// DefaultConfig returns the baseline single-program four-channel fixture
// configuration used across the package's own tests.
func DefaultConfig() Config {
	return Config{
		WordSize:      16,
		ProgramConfig: 18,
		FrameRateCode: 8,
		FrameCount:    0,
		Description:   "TEST",
	}
}

const (
	blockCount0    = 1
	regionCount0   = 2
	bandCount0     = 50
	nChannelsFixed = 4
	nProgramsFixed = 1
)

// channelBitsFor returns the bit width of a single LONG, non-LFE,
// bandwidth-code-0 channel subsegment: group_type_code+bw(3)+exp(4+250)+
// mask(6)+bitalloc(9)+gaq(1). group_type_code is 2 bits wide for
// low-frame-rate channels and 1 bit otherwise, per parseChannelSubsegment.
func channelBitsFor(lfr bool) int {
	groupTypeBits := 1
	if lfr {
		groupTypeBits = 2
	}
	return groupTypeBits + 3 + regionCount0*2 + bandCount0*5 + 6 + 9 + 1
}

// BuildFrame packs one complete Dolby E burst (four-word preamble plus
// payload) for cfg, returning the raw bytes ready to be written to a
// stream a Sequencer can read.
func BuildFrame(cfg Config) []byte {
	wordSize := cfg.WordSize
	if wordSize == 0 {
		wordSize = 16
	}
	lfr := lowFrameRateCode(cfg.FrameRateCode)

	body := bitio.NewWriter(wordSize)
	packSync(body, wordSize, cfg.Keyed)
	metadataWords := packMetadata(body, cfg)
	audioWords := packAudio(body, wordSize, cfg.Keyed, lfr)

	words := 1 + metadataWords + audioWords
	if lfr {
		words += packMetadataExtensionSegment(body, wordSize, cfg.Keyed)
		words += packAudioExtensionSegment(body, wordSize, cfg.Keyed)
	}
	words += packMeter(body, wordSize, cfg.Keyed)

	payload := body.Bytes()
	preamble := buildPreamble(wordSize, words)

	out := make([]byte, 0, len(preamble)+len(payload))
	out = append(out, preamble...)
	out = append(out, payload...)
	return out
}

// BuildStream concatenates n frames, incrementing frame_count in each.
func BuildStream(cfg Config, n int) []byte {
	var out []byte
	for i := 0; i < n; i++ {
		c := cfg
		c.FrameCount = cfg.FrameCount + i
		out = append(out, BuildFrame(c)...)
	}
	return out
}

func buildPreamble(wordSize, payloadWords int) []byte {
	idx := depthIndex(wordSize)
	values := [4]uint32{
		syncA(idx),
		syncB(idx),
		0x001c00 | modeFor(idx),
		uint32(payloadWords*wordSize) << uint(24-wordSize),
	}
	out := make([]byte, 16)
	for i, v := range values {
		w := v << 8
		out[i*4] = byte(w >> 24)
		out[i*4+1] = byte(w >> 16)
		out[i*4+2] = byte(w >> 8)
		out[i*4+3] = byte(w)
	}
	return out
}

func depthIndex(wordSize int) int {
	switch wordSize {
	case 16:
		return 0
	case 20:
		return 1
	default:
		return 2
	}
}

// syncA/syncB/modeFor mirror the constants in internal/dolbye/tables.go;
// duplicated here (rather than imported) because dolbyegen must stay usable
// from black-box tests of the dolbye package itself without an import cycle.
func syncA(idx int) uint32 {
	return [3]uint32{0x0f87200, 0x06f8720, 0x096f872}[idx]
}
func syncB(idx int) uint32 {
	return [3]uint32{0x04e1f00, 0x054e1f0, 0x0a54e1f}[idx]
}
func modeFor(idx int) uint32 {
	return [3]uint32{0x0000000, 0x0002000, 0x0004000}[idx]
}

func packSync(w *bitio.Writer, wordSize int, keyed bool) {
	syncWordFull := [3]uint32{0x078e, 0x0788e, 0x07888e}[depthIndex(wordSize)]
	w.Pack1(syncWordFull>>1, wordSize-1)
	if keyed {
		w.Pack1(1, 1)
	} else {
		w.Pack1(0, 1)
	}
}

// metaExtWords is the fixed size (in words) this package declares for the
// low-frame-rate metadata-extension segment's body: just enough for an
// empty subsegment loop (id==0) plus padding out to a full word.
const metaExtWords = 1

// metadataBodyBits is the exact number of bits in program_config through
// the ac3-metadata-subsegment terminator, for the fixed one-program,
// four-channel shape this package builds.
func metadataBodyBits(lfr bool) int {
	bits := 6 + 4 + 4 + 16 + 64 + 8 + nChannelsFixed*10 + 8 + nProgramsFixed*10 + nChannelsFixed*25 + 4
	if lfr {
		bits += 8 // metadata_extension_size
	}
	return bits
}

func packMetadata(w *bitio.Writer, cfg Config) int {
	wordSize := cfg.WordSize
	lfr := lowFrameRateCode(cfg.FrameRateCode)

	var key uint32
	var keyWordStart int
	if cfg.Keyed {
		key = testKey(wordSize)
		w.Pack1(key, wordSize)
		wi, bo := w.Pos()
		keyWordStart = wi
		if bo != 0 {
			keyWordStart++
		}
	}

	totalHeaderBits := 14 + metadataBodyBits(lfr)
	segSizeWords := (totalHeaderBits + wordSize - 1) / wordSize
	unused := segSizeWords*wordSize - totalHeaderBits

	w.Pack1(0, 4) // metadata_revision_id
	w.Pack1(uint32(segSizeWords), 10)

	var headerXorStart int
	if cfg.Keyed {
		wi, bo := w.Pos()
		headerXorStart = wi
		if bo != 0 {
			headerXorStart++
		}
	}

	w.Pack1(uint32(cfg.ProgramConfig), 6)
	w.Pack1(uint32(cfg.FrameRateCode), 4)
	w.Pack1(uint32(cfg.FrameRateCode), 4) // original_frame_rate_code == frame_rate_code
	w.Pack1(uint32(cfg.FrameCount), 16)
	w.PackBytes(cfg.Timecode[:])
	w.Pack1(0, 8) // metadata_reserved_bits

	for ch := 0; ch < nChannelsFixed; ch++ {
		w.Pack1(uint32(channelWords(wordSize, lfr)), 10)
	}
	if lfr {
		w.Pack1(uint32(metaExtWords), 8)
	}
	w.Pack1(uint32(meterWords(wordSize)), 8)

	descByte := byte('T')
	if len(cfg.Description) > 0 {
		descByte = cfg.Description[0]
	}
	for pgm := 0; pgm < nProgramsFixed; pgm++ {
		w.Pack1(uint32(descByte), 8)
		w.Pack1(0, 2) // bandwidth_id
	}
	for ch := 0; ch < nChannelsFixed; ch++ {
		w.Pack1(0, 4)  // revision_id
		w.Pack1(0, 1)  // bitpool_type
		w.Pack1(0, 10) // begin_gain
		w.Pack1(0, 10) // end_gain
	}
	w.Pack1(0, 4) // subsegment terminator: no ac3 metadata subsegments

	if unused > 0 {
		packZeroBits(w, unused)
	}
	w.Pack1(0, wordSize) // metadata_crc

	if cfg.Keyed {
		w.XorWordsAt(keyWordStart, 1, key)
		w.XorWordsAt(headerXorStart, segSizeWords, key)
	}

	words := segSizeWords + 1
	if cfg.Keyed {
		words++
	}
	return words
}

func packZeroBits(w *bitio.Writer, n int) {
	for n >= 32 {
		w.Pack1(0, 32)
		n -= 32
	}
	if n > 0 {
		w.Pack1(0, n)
	}
}

func channelWords(wordSize int, lfr bool) int {
	return (channelBitsFor(lfr) + wordSize - 1) / wordSize
}

func meterWords(wordSize int) int {
	bits := nChannelsFixed * 10 * 2
	return (bits + wordSize - 1) / wordSize
}

func packAudio(w *bitio.Writer, wordSize int, keyed, lfr bool) int {
	half0 := packChannelHalf(w, wordSize, 0, 2, keyed, lfr)
	w.Pack1(0, wordSize) // audio_subsegment0_crc
	half1 := packChannelHalf(w, wordSize, 2, 4, keyed, lfr)
	w.Pack1(0, wordSize) // audio_subsegment1_crc
	return half0 + half1 + 2
}

// packAudioExtensionSegment mirrors packAudio for the low-frame-rate
// extension segment: same two-half key/CRC structure, each channel's
// group_type_code widened to 2 bits per parseChannelSubsegment.
func packAudioExtensionSegment(w *bitio.Writer, wordSize int, keyed bool) int {
	half0 := packChannelHalf(w, wordSize, 0, 2, keyed, true)
	w.Pack1(0, wordSize) // audio_ext_subsegment0_crc
	half1 := packChannelHalf(w, wordSize, 2, 4, keyed, true)
	w.Pack1(0, wordSize) // audio_ext_subsegment1_crc
	return half0 + half1 + 2
}

// packChannelHalf keys the [lo,hi) channel range the same way audioHalf
// does before parsing it: the key field itself, then keycount = 1 plus
// every channel's word count, matching DolbyEFile::BitUnkey's start/extent
// exactly so a later Reader.Unkey call descrambles precisely this range.
func packChannelHalf(w *bitio.Writer, wordSize, lo, hi int, keyed, lfr bool) int {
	var key uint32
	var xorStart, keycount, words int
	if keyed {
		key = testKey(wordSize)
		w.Pack1(key, wordSize)
		wi, bo := w.Pos()
		xorStart = wi
		if bo != 0 {
			xorStart++
		}
		keycount = 1
		words = 1
	}

	for ch := lo; ch < hi; ch++ {
		packChannelSubsegment(w, wordSize, lfr)
		n := channelWords(wordSize, lfr)
		words += n
		keycount += n
	}

	if keyed {
		// keycount reaches one word past the channel loop, into the
		// per-half CRC word the caller writes next — matching audioHalf's
		// own Unkey(key, keycount) call exactly. That CRC word is already
		// counted by the caller, so it is not added to words here.
		w.XorWordsAt(xorStart, keycount, key)
	}
	return words
}

// packChannelSubsegment writes a single LONG, non-LFE, bandwidth-code-0
// channel: group_type_code=0, bandwidth_code=0, block 0's forced
// exponent/masking data all zeroed, no delta bit info, no GAQ bands, then
// pads to the declared channel_subseg_size. group_type_code is 2 bits wide
// for low-frame-rate channels and 1 bit otherwise.
func packChannelSubsegment(w *bitio.Writer, wordSize int, lfr bool) {
	groupTypeBits := 1
	if lfr {
		groupTypeBits = 2
	}
	w.Pack1(0, groupTypeBits) // group_type_code (LONG)
	w.Pack1(0, 3)             // bandwidth_code

	for i := 0; i < regionCount0; i++ {
		w.Pack1(0, 2) // master_exponent
	}
	for i := 0; i < bandCount0; i++ {
		w.Pack1(0, 5) // biased_exponent
	}

	w.Pack1(0, 2) // fast_gain_spectrum
	w.Pack1(0, 3) // fast_gain_offset
	w.Pack1(0, 1) // mask_model

	w.Pack1(0, 1) // delta_bit_info_exists
	w.Pack1(0, 8) // snr_offset

	w.Pack1(0, 1) // gaq_info_exists

	padBits := channelWords(wordSize, lfr)*wordSize - channelBitsFor(lfr)
	if padBits > 0 {
		packZeroBits(w, padBits)
	}
}

// packMetadataExtensionSegment writes the low-frame-rate metadata-extension
// segment: an optional key, an empty AC-3-extension-subsegment loop
// (terminated immediately by id==0), zero padding out to the declared
// metaExtWords, and a trailing CRC.
func packMetadataExtensionSegment(w *bitio.Writer, wordSize int, keyed bool) int {
	var key uint32
	var xorStart int
	if keyed {
		key = testKey(wordSize)
		w.Pack1(key, wordSize)
		wi, bo := w.Pos()
		xorStart = wi
		if bo != 0 {
			xorStart++
		}
	}

	w.Pack1(0, 4) // subsegment terminator: no ac3 extension subsegments
	bodyBits := metaExtWords*wordSize - 4
	if bodyBits > 0 {
		packZeroBits(w, bodyBits)
	}

	w.Pack1(0, wordSize) // metadata_extension_crc

	if keyed {
		// keycount = metaExtWords+1, matching parseMetadataExtensionSegment's
		// Unkey(key, fi.MetaExtSize+1) exactly.
		w.XorWordsAt(xorStart, metaExtWords+1, key)
	}

	words := metaExtWords + 1
	if keyed {
		words++
	}
	return words
}

func packMeter(w *bitio.Writer, wordSize int, keyed bool) int {
	var key uint32
	var xorStart int
	if keyed {
		key = testKey(wordSize)
		w.Pack1(key, wordSize)
		xorStart, _ = w.Pos() // the meter segment always starts on a word boundary
	}
	for ch := 0; ch < nChannelsFixed; ch++ {
		w.Pack1(0, 10) // peak_meter
	}
	for ch := 0; ch < nChannelsFixed; ch++ {
		w.Pack1(0, 10) // rms_meter
	}
	bodyBits := nChannelsFixed * 10 * 2
	padBits := meterWords(wordSize)*wordSize - bodyBits
	if padBits > 0 {
		packZeroBits(w, padBits)
	}
	w.Pack1(0, wordSize) // meter_crc
	words := meterWords(wordSize) + 1
	if keyed {
		// keycount = meterWords+1, matching parseMeterSegment's
		// Unkey(key, fi.MeterSize+1) exactly.
		w.XorWordsAt(xorStart, words, key)
		words++
	}
	return words
}
