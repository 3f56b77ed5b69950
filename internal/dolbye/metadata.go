package dolbye

import (
	"fmt"

	"example.com/dolbyectl/internal/dolbye/bitio"
)

func parseSyncSegment(r *bitio.Reader, fi *FrameInfo) error {
	syncBits, err := r.Unpack1(fi.WordSize - 1)
	if err != nil {
		return err
	}
	syncWord := syncBits << 1

	expect, ok := SyncWordFor(fi.WordSize)
	if !ok {
		return fmt.Errorf("dolbye: %w: unsupported word size %d", ErrBadSync, fi.WordSize)
	}
	if syncWord != expect {
		return ErrBadSync
	}

	keyBit, err := r.Unpack1(1)
	if err != nil {
		return err
	}
	fi.KeyPresent = keyBit != 0
	if fi.KeyPresent {
		syncWord++
	}
	fi.Sync = SyncSegment{SyncWord: syncWord, KeyPresent: fi.KeyPresent}
	return nil
}

func parseMetadataSegment(r *bitio.Reader, fi *FrameInfo) error {
	md := &fi.Metadata

	if fi.KeyPresent {
		key, err := r.Unpack1(fi.WordSize)
		if err != nil {
			return err
		}
		md.MetadataKey = key
		if err := r.Unkey(key, 1); err != nil {
			return err
		}
	}

	revID, err := r.Unpack1(4)
	if err != nil {
		return err
	}
	md.MetadataRevisionID = int(revID)

	segSize, err := r.Unpack1(10)
	if err != nil {
		return err
	}
	md.MetadataSegmentSize = int(segSize)
	r.SetDnCntr(0, fi.WordSize*md.MetadataSegmentSize-14)

	if fi.KeyPresent {
		if err := r.Unkey(md.MetadataKey, md.MetadataSegmentSize); err != nil {
			return err
		}
	}

	cfg, err := r.Unpack1(6)
	if err != nil {
		return err
	}
	md.ProgramConfig = int(cfg)
	info, err := LookupProgramConfig(md.ProgramConfig)
	if err != nil {
		return err
	}
	fi.ProgramConfig = md.ProgramConfig
	fi.NPrograms = info.NPrograms
	fi.NChannels = info.NChannels
	fi.LFEChannelIndex = info.LFEChannelIndex

	rate, err := r.Unpack1(4)
	if err != nil {
		return err
	}
	md.FrameRateCode = int(rate)
	if err := ValidateFrameRateCode(md.FrameRateCode); err != nil {
		return err
	}
	fi.FrameRateCode = md.FrameRateCode
	fi.LowFrameRate = IsLowFrameRate(fi.FrameRateCode)

	origRate, err := r.Unpack1(4)
	if err != nil {
		return err
	}
	md.OriginalFrameRateCode = int(origRate)
	if err := ValidateFrameRateCode(md.OriginalFrameRateCode); err != nil {
		return err
	}
	fi.OriginalFrameRateCode = md.OriginalFrameRateCode

	count, err := r.Unpack1(16)
	if err != nil {
		return err
	}
	md.FrameCount = int(count)
	fi.FrameCount = md.FrameCount

	var tcWords [8]uint32
	if err := r.UnpackRJ(tcWords[:], 8, 8); err != nil {
		return err
	}
	for i, w := range tcWords {
		md.Timecode[i] = byte(w)
		fi.Timecode[i] = byte(w)
	}

	reserved, err := r.Unpack1(8)
	if err != nil {
		return err
	}
	md.MetadataReservedBits = int(reserved)

	var chanSizes [MaxChannels]uint32
	if err := r.UnpackRJ(chanSizes[:fi.NChannels], fi.NChannels, 10); err != nil {
		return err
	}
	for i := 0; i < fi.NChannels; i++ {
		md.ChannelSubsegSize[i] = int(chanSizes[i])
		fi.ChannelSubsegSize[i] = int(chanSizes[i])
	}

	if fi.LowFrameRate {
		extSize, err := r.Unpack1(8)
		if err != nil {
			return err
		}
		md.MetadataExtensionSize = int(extSize)
		fi.MetaExtSize = md.MetadataExtensionSize
	}

	meterSize, err := r.Unpack1(8)
	if err != nil {
		return err
	}
	md.MeterSegmentSize = int(meterSize)
	fi.MeterSize = md.MeterSegmentSize

	for pgm := 0; pgm < fi.NPrograms; pgm++ {
		ch, err := r.Unpack1(8)
		if err != nil {
			return err
		}
		fi.DescriptionText[pgm] = byte(ch)

		bw, err := r.Unpack1(2)
		if err != nil {
			return err
		}
		md.BandwidthID[pgm] = int(bw)
		fi.BandwidthID[pgm] = int(bw)
	}

	for ch := 0; ch < fi.NChannels; ch++ {
		rev, err := r.Unpack1(4)
		if err != nil {
			return err
		}
		md.ChannelRevisionID[ch] = int(rev)

		pool, err := r.Unpack1(1)
		if err != nil {
			return err
		}
		md.ChannelBitpoolType[ch] = int(pool)

		begin, err := r.Unpack1(10)
		if err != nil {
			return err
		}
		md.ChannelBeginGain[ch] = int(begin)

		end, err := r.Unpack1(10)
		if err != nil {
			return err
		}
		md.ChannelEndGain[ch] = int(end)
	}

	seg := 0
	for {
		id, err := r.Unpack1(4)
		if err != nil {
			return err
		}
		if id == 0 {
			break
		}
		if id >= 3 {
			return ErrReservedSubseg
		}
		if seg >= MaxNumSegs {
			return fmt.Errorf("dolbye: too many metadata subsegments in one frame")
		}
		length, err := r.Unpack1(12)
		if err != nil {
			return err
		}
		r.SetDnCntr(1, int(length))
		sub, err := parseAC3MetadataSubsegment(r, fi, int(id))
		if err != nil {
			return err
		}
		fi.AC3Metadata[seg] = sub
		fi.NAC3Metadata = seg + 1
		md.UnusedSubsegmentBits[seg] = r.GetDnCntr(1)
		if err := r.Skip(md.UnusedSubsegmentBits[seg]); err != nil {
			return err
		}
		seg++
	}

	md.UnusedMetadataBits = r.GetDnCntr(0)
	if err := r.Skip(md.UnusedMetadataBits); err != nil {
		return err
	}

	crc, err := r.Unpack1(fi.WordSize)
	if err != nil {
		return err
	}
	md.MetadataCRC = crc
	return nil
}
