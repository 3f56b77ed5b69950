// Package sadm projects a parsed Dolby E frame sequence into a Serial ADM
// (ITU-R BS.2076/BS.2125) XML document. It never re-derives audio samples;
// every field it emits comes from a dolbye.FrameInfo or the caller's
// description text, except flowId, which is a fresh random UUID.
package sadm

import (
	"encoding/xml"
	"fmt"

	"github.com/google/uuid"

	"example.com/dolbyectl/internal/dolbye"
)

// Document is the root <frame> element of one Serial ADM document.
type Document struct {
	XMLName     xml.Name `xml:"frame"`
	FlowID      string   `xml:"flowId"`
	FrameHeader FrameHeader `xml:"frameHeader"`
	AudioFormatExtended AudioFormatExtended `xml:"audioFormatExtended"`
	DBMD        *DBMD    `xml:"dbmd,omitempty"`
}

// FrameHeader carries the S-ADM frame timing fields.
type FrameHeader struct {
	FrameFormat FrameFormat `xml:"frameFormat"`
}

// FrameFormat mirrors BS.2125's frameFormat element.
type FrameFormat struct {
	FrameID        string `xml:"frameId,attr"`
	Start          string `xml:"start,attr"`
	Duration       string `xml:"duration,attr"`
	Type           string `xml:"type,attr"`
	ChannelLayout  string `xml:"channelLayout,attr,omitempty"`
}

// AudioFormatExtended holds the ADM object model elements.
type AudioFormatExtended struct {
	Programmes     []AudioProgramme     `xml:"audioProgramme"`
	Contents       []AudioContent       `xml:"audioContent"`
	Objects        []AudioObject        `xml:"audioObject"`
	TrackFormats   []AudioTrackFormat   `xml:"audioTrackFormat"`
	ChannelFormats []AudioChannelFormat `xml:"audioChannelFormat"`
}

type AudioProgramme struct {
	ID       string `xml:"audioProgrammeID,attr"`
	Name     string `xml:"audioProgrammeName,attr"`
	ContentIDRef string `xml:"audioContentIDRef"`
}

type AudioContent struct {
	ID          string `xml:"audioContentID,attr"`
	Name        string `xml:"audioContentName,attr"`
	ObjectIDRef string `xml:"audioObjectIDRef"`
}

type AudioObject struct {
	ID              string `xml:"audioObjectID,attr"`
	Name            string `xml:"audioObjectName,attr"`
	TrackFormatIDRef []string `xml:"audioTrackFormatIDRef"`
}

type AudioTrackFormat struct {
	ID                string `xml:"audioTrackFormatID,attr"`
	Name              string `xml:"audioTrackFormatName,attr"`
	ChannelFormatIDRef string `xml:"audioChannelFormatIDRef"`
}

type AudioChannelFormat struct {
	ID   string `xml:"audioChannelFormatID,attr"`
	Name string `xml:"audioChannelFormatName,attr"`
	Type string `xml:"typeLabel,attr"`
}

// DBMD is the non-standard extension element carrying Dolby E metadata
// that has no first-class ADM representation.
type DBMD struct {
	ProgramConfig     int                `xml:"program_config,attr"`
	FrameRateCode     int                `xml:"frame_rate_code,attr"`
	ChannelSubsegSize []int              `xml:"channel_subseg_size"`
	AC3Programs       []DBMDAC3Program   `xml:"ac3_program,omitempty"`
	Meters            *DBMDMeters        `xml:"meters,omitempty"`
}

// DBMDAC3Program carries one program's AC-3 re-encoding parameters, from
// either metadata subsegment variant. The metadata-extension segment's
// fields (compr2, dynrng5..8) are not carried.
type DBMDAC3Program struct {
	Program     int    `xml:"program,attr"`
	DataRate    int    `xml:"data_rate,attr"`
	BSMod       int    `xml:"bsmod,attr"`
	AcMod       int    `xml:"acmod,attr"`
	DialNorm    int    `xml:"dialnorm,attr"`
	ComprDB     string `xml:"compr_db,attr,omitempty"`
}

// DBMDMeters carries per-channel peak/RMS meter readings converted to dB,
// grounded on display_meter_segment.
type DBMDMeters struct {
	Channels []DBMDMeterChannel `xml:"channel"`
}

type DBMDMeterChannel struct {
	Index   int    `xml:"index,attr"`
	PeakDB  string `xml:"peak_db,attr"`
	RMSDB   string `xml:"rms_db,attr"`
}

// Options controls optional projector behavior.
type Options struct {
	IncludeMeters bool
}

// Project builds a Document from one parsed frame plus the per-program
// description text the Sequencer has accumulated.
func Project(fi *dolbye.FrameInfo, descriptions [dolbye.MaxPrograms]string, frameIndex int, opts Options) Document {
	flowID := uuid.New().String()

	rateIdx := fi.FrameRateCode - 1
	var duration string
	if rateIdx >= 0 && rateIdx < len(dolbye.SamplesPerFrame) {
		duration = fmt.Sprintf("%d/48000", dolbye.SamplesPerFrame[rateIdx])
	} else {
		duration = "0/48000"
	}

	layout := channelLayoutLabel(fi)

	doc := Document{
		FlowID: flowID,
		FrameHeader: FrameHeader{
			FrameFormat: FrameFormat{
				FrameID:       fmt.Sprintf("FF_%08d", frameIndex),
				Start:         fmt.Sprintf("%02x%02x%02x%02x%02x%02x%02x%02x", fi.Timecode[0], fi.Timecode[1], fi.Timecode[2], fi.Timecode[3], fi.Timecode[4], fi.Timecode[5], fi.Timecode[6], fi.Timecode[7]),
				Duration:      duration,
				Type:          "full",
				ChannelLayout: layout,
			},
		},
	}

	afe := &doc.AudioFormatExtended
	for pgm := 0; pgm < fi.NPrograms; pgm++ {
		name := descriptions[pgm]
		if name == "" {
			name = fmt.Sprintf("Programme %d", pgm+1)
		}
		progID := fmt.Sprintf("APR_%04d", pgm+1)
		contentID := fmt.Sprintf("ACO_%04d", pgm+1)
		objectID := fmt.Sprintf("AO_%04d", pgm+1)

		afe.Programmes = append(afe.Programmes, AudioProgramme{ID: progID, Name: name, ContentIDRef: contentID})
		afe.Contents = append(afe.Contents, AudioContent{ID: contentID, Name: name, ObjectIDRef: objectID})
		afe.Objects = append(afe.Objects, AudioObject{ID: objectID, Name: name})
	}

	for ch := 0; ch < fi.NChannels; ch++ {
		trackID := fmt.Sprintf("ATF_%04d", ch+1)
		chanID := fmt.Sprintf("ACF_%04d", ch+1)
		typeLabel := "0001" // DirectSpeakers
		name := fmt.Sprintf("Channel %d", ch+1)
		if ch == fi.LFEChannelIndex {
			typeLabel = "0001_LFE"
			name = "LFE"
		}
		afe.TrackFormats = append(afe.TrackFormats, AudioTrackFormat{ID: trackID, Name: name, ChannelFormatIDRef: chanID})
		afe.ChannelFormats = append(afe.ChannelFormats, AudioChannelFormat{ID: chanID, Name: name, Type: typeLabel})
	}

	dbmd := &DBMD{
		ProgramConfig: fi.ProgramConfig,
		FrameRateCode: fi.FrameRateCode,
	}
	for ch := 0; ch < fi.NChannels; ch++ {
		dbmd.ChannelSubsegSize = append(dbmd.ChannelSubsegSize, fi.ChannelSubsegSize[ch])
	}
	for i := 0; i < fi.NAC3Metadata; i++ {
		seg := fi.AC3Metadata[i]
		for pgm := 0; pgm < fi.NPrograms; pgm++ {
			p := seg.Program[pgm]
			ac3 := DBMDAC3Program{
				Program:  pgm,
				DataRate: p.DataRate,
				BSMod:    p.BSMod,
				AcMod:    p.AcMod,
				DialNorm: p.DialNorm,
			}
			if p.CompreExists {
				ac3.ComprDB = fmt.Sprintf("%.2f", dolbye.ComprDB(p.Compr1))
			}
			dbmd.AC3Programs = append(dbmd.AC3Programs, ac3)
		}
	}

	if opts.IncludeMeters {
		dbmd.Meters = projectMeters(fi)
	}
	doc.DBMD = dbmd

	return doc
}

func channelLayoutLabel(fi *dolbye.FrameInfo) string {
	if fi.LFEChannelIndex >= 0 {
		return fmt.Sprintf("%d.1", fi.NChannels-1)
	}
	return fmt.Sprintf("%d.0", fi.NChannels)
}

func projectMeters(fi *dolbye.FrameInfo) *DBMDMeters {
	m := &DBMDMeters{}
	for ch := 0; ch < fi.NChannels; ch++ {
		m.Channels = append(m.Channels, DBMDMeterChannel{
			Index:  ch,
			PeakDB: meterLabel(fi.Meter.PeakMeter[ch]),
			RMSDB:  meterLabel(fi.Meter.RMSMeter[ch]),
		})
	}
	return m
}

func meterLabel(raw int) string {
	if dolbye.PeakMeterIsSilent(raw) {
		return "-inf"
	}
	if clipping, unspecified := dolbye.PeakMeterIsClipping(raw); clipping {
		if unspecified {
			return "clipping:unspecified"
		}
		return fmt.Sprintf("clipping:+%.2fdB", dolbye.PeakMeterDB(raw))
	}
	return fmt.Sprintf("%.2f", dolbye.PeakMeterDB(raw))
}
