package dolbye

// SyncSegment holds the fields read by the sync segment step.
type SyncSegment struct {
	SyncWord   uint32
	KeyPresent bool
}

// MetadataSegment holds the fields read directly by the metadata segment,
// mirroring MetadataSegmentStruct in ddeinfo.h.
type MetadataSegment struct {
	MetadataKey             uint32
	MetadataRevisionID      int
	MetadataSegmentSize     int
	ProgramConfig           int
	FrameRateCode           int
	OriginalFrameRateCode   int
	FrameCount              int
	Timecode                [8]byte
	MetadataReservedBits    int
	ChannelSubsegSize       [MaxChannels]int
	MetadataExtensionSize   int
	MeterSegmentSize        int
	BandwidthID             [MaxPrograms]int
	ChannelRevisionID       [MaxChannels]int
	ChannelBitpoolType      [MaxChannels]int
	ChannelBeginGain        [MaxChannels]int
	ChannelEndGain          [MaxChannels]int
	UnusedMetadataBits      int
	UnusedSubsegmentBits    [MaxNumSegs]int
	MetadataCRC             uint32
}

// MaxNumSegs bounds the number of metadata subsegments walked per frame
// (the loop exits on subseg_id == 0 well before this in practice).
const MaxNumSegs = 3

// AC3ProgramMetadata mirrors the per-program prologue and common suffix of
// AC3MetadataSegmentStruct in ddeinfo.h.
type AC3ProgramMetadata struct {
	DataRate    int
	BSMod       int
	AcMod       int
	CMixLevel   int
	SurMixLevel int
	DSurMod     int
	LFEOn       bool
	DialNorm    int
	LangCode    int
	LangCod     int
	AudProdIE   bool
	MixLevel    int
	RoomTyp     int
	CopyrightB  bool
	OrigBS      bool

	// XBSI variant (subseg_id == 1)
	XBSI1Exists     bool
	DMixMod         int
	LtRtCMixLevel   int
	LtRtSurMixLevel int
	LoRoCMixLevel   int
	LoRoSurMixLevel int
	XBSI2Exists     bool
	DSurExMod       int
	DHeadphonMod    int
	AdConvTyp       int
	XBSI2           int
	EncInfo         bool

	// non-XBSI variant
	Timecod1Exists bool
	Timecod1       int
	Timecod2Exists bool
	Timecod2       int

	HPFOn        bool
	BWLPFOn      bool
	LFELPFOn     bool
	Sur90On      bool
	SurAttOn     bool
	RFPremphOn   bool
	CompreExists bool
	Compr1       int
	DynRngExists bool
	DynRng       [4]int

	AddBSIExists bool
	AddBSILength int
	AddBSI       []byte
}

// AC3MetadataSegment holds the per-program AC-3 re-encoding metadata for
// one metadata subsegment (subseg_id 1 or 2).
type AC3MetadataSegment struct {
	SubsegID int
	Program  [MaxPrograms]AC3ProgramMetadata
}

// AC3ExtensionProgramMetadata mirrors AC3MetadataExtSegmentStruct's
// per-program fields in ddeinfo.h.
type AC3ExtensionProgramMetadata struct {
	Compr2  int
	DynRng5 int
	DynRng6 int
	DynRng7 int
	DynRng8 int
}

// AC3MetadataExtension holds the per-program fields read from the
// metadata-extension segment's AC-3 subsegment.
type AC3MetadataExtension struct {
	Program [MaxPrograms]AC3ExtensionProgramMetadata
}

// MeterSegment holds the peak/RMS meter codes for every channel.
type MeterSegment struct {
	PeakMeter [MaxChannels]int
	RMSMeter  [MaxChannels]int
	MeterCRC  uint32
}

// ChannelSubsegInfo is the transient per-channel-subsegment state used by
// the Channel Subsegment Walker.
type ChannelSubsegInfo struct {
	LowFrameRate       bool
	PriExtFlag         bool
	LFEFlag            bool
	GroupTypeCode      GroupType
	BandwidthCode      int
	PrevGroupTypeCode  GroupType
	HasPrevGroupType   bool

	BlockCount   int
	RegionCount  [MaxBlocks]int
	BandCount    [MaxBlocks]int
}

// FrameInfo is the top-level record produced by parsing one Dolby E frame.
type FrameInfo struct {
	FrameLength int
	WordSize    int
	KeyPresent  bool

	ProgramConfig     int
	NPrograms         int
	NChannels         int
	LFEChannelIndex   int

	FrameRateCode         int
	OriginalFrameRateCode int
	LowFrameRate          bool

	FrameCount int
	Timecode   [8]byte

	ChannelSubsegSize [MaxChannels]int
	MetaExtSize       int
	MeterSize         int

	Sync            SyncSegment
	Metadata        MetadataSegment
	AC3Metadata     [MaxNumSegs]AC3MetadataSegment
	NAC3Metadata    int
	MetadataExt     AC3MetadataExtension
	HasMetadataExt  bool
	Meter           MeterSegment

	PrevGroupTypeCode [MaxChannels]GroupType
	HasPrevGroupType  [MaxChannels]bool

	DescriptionText [MaxPrograms]byte
	BandwidthID     [MaxPrograms]int

	Diagnostics []Diagnostic
}

// ProgramDescriptionBuffer accumulates a program's description text across
// frames, owned by the Sequencer per §4.5.
type ProgramDescriptionBuffer struct {
	Buf      [MaxDescTextLen]byte
	Cursor   int
	Received bool
}

// String returns the collected text up to the cursor.
func (b *ProgramDescriptionBuffer) String() string {
	return string(b.Buf[:b.Cursor])
}
