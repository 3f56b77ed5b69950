package dolbye

import "example.com/dolbyectl/internal/dolbye/bitio"

// parseAudioSegment walks the audio segment's two halves (channels
// [0,nChannels/2) and [nChannels/2,nChannels)), each independently keyed
// and CRC'd, delegating every channel to the Channel Subsegment Walker.
func parseAudioSegment(r *bitio.Reader, fi *FrameInfo) error {
	info := &ChannelSubsegInfo{LowFrameRate: fi.LowFrameRate, PriExtFlag: false}

	half := fi.NChannels / 2
	if err := audioHalf(r, fi, info, 0, half); err != nil {
		return err
	}
	if _, err := r.Unpack1(fi.WordSize); err != nil {
		return err
	}
	if err := audioHalf(r, fi, info, half, fi.NChannels); err != nil {
		return err
	}
	_, err := r.Unpack1(fi.WordSize)
	return err
}

// audioHalf keys the [lo,hi) channel range (if keying is active) and walks
// each channel subsegment in turn, recording the group_type_code each
// channel ended with so the extension segment can check continuity.
func audioHalf(r *bitio.Reader, fi *FrameInfo, info *ChannelSubsegInfo, lo, hi int) error {
	if fi.KeyPresent {
		key, err := r.Unpack1(fi.WordSize)
		if err != nil {
			return err
		}
		keycount := 1
		for ch := lo; ch < hi; ch++ {
			keycount += fi.ChannelSubsegSize[ch]
		}
		if err := r.Unkey(key, keycount); err != nil {
			return err
		}
	}

	for ch := lo; ch < hi; ch++ {
		info.LFEFlag = ch == fi.LFEChannelIndex
		r.SetDnCntr(0, fi.ChannelSubsegSize[ch]*fi.WordSize)
		if err := parseChannelSubsegment(r, fi, info); err != nil {
			return err
		}
		fi.PrevGroupTypeCode[ch] = info.GroupTypeCode
		fi.HasPrevGroupType[ch] = true
		if err := r.Skip(r.GetDnCntr(0)); err != nil {
			return err
		}
	}
	return nil
}

// parseAudioExtensionSegment mirrors parseAudioSegment for the low-frame-rate
// extension segment: same two-half key/CRC structure, but each channel
// carries forward the primary segment's group_type_code as
// prevGroupTypeCode so the walker can enforce continuity.
func parseAudioExtensionSegment(r *bitio.Reader, fi *FrameInfo) error {
	info := &ChannelSubsegInfo{LowFrameRate: fi.LowFrameRate, PriExtFlag: true}

	half := fi.NChannels / 2
	if err := audioExtensionHalf(r, fi, info, 0, half); err != nil {
		return err
	}
	if _, err := r.Unpack1(fi.WordSize); err != nil {
		return err
	}
	if err := audioExtensionHalf(r, fi, info, half, fi.NChannels); err != nil {
		return err
	}
	_, err := r.Unpack1(fi.WordSize)
	return err
}

func audioExtensionHalf(r *bitio.Reader, fi *FrameInfo, info *ChannelSubsegInfo, lo, hi int) error {
	if fi.KeyPresent {
		key, err := r.Unpack1(fi.WordSize)
		if err != nil {
			return err
		}
		keycount := 1
		for ch := lo; ch < hi; ch++ {
			keycount += fi.ChannelSubsegSize[ch]
		}
		if err := r.Unkey(key, keycount); err != nil {
			return err
		}
	}

	for ch := lo; ch < hi; ch++ {
		info.LFEFlag = ch == fi.LFEChannelIndex
		info.PrevGroupTypeCode = fi.PrevGroupTypeCode[ch]
		info.HasPrevGroupType = fi.HasPrevGroupType[ch]
		r.SetDnCntr(0, fi.ChannelSubsegSize[ch]*fi.WordSize)
		if err := parseChannelSubsegment(r, fi, info); err != nil {
			return err
		}
		if err := r.Skip(r.GetDnCntr(0)); err != nil {
			return err
		}
	}
	return nil
}

// parseMetadataExtensionSegment reads the low-frame-rate metadata extension
// segment: an optional key, a down-counter-bounded subsegment loop (ids 1
// and 2 are both read as the AC-3 extension subsegment; ids 3 and above are
// rejected as reserved), and a trailing CRC.
func parseMetadataExtensionSegment(r *bitio.Reader, fi *FrameInfo) error {
	if fi.KeyPresent {
		key, err := r.Unpack1(fi.WordSize)
		if err != nil {
			return err
		}
		fi.Metadata.MetadataKey = key
		if err := r.Unkey(key, fi.MetaExtSize+1); err != nil {
			return err
		}
	}

	r.SetDnCntr(0, fi.MetaExtSize*fi.WordSize)

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
		length, err := r.Unpack1(12)
		if err != nil {
			return err
		}
		r.SetDnCntr(1, int(length))

		ext, err := parseAC3MetadataExtensionSubsegment(r, fi)
		if err != nil {
			return err
		}
		fi.MetadataExt = ext
		fi.HasMetadataExt = true

		if err := r.Skip(r.GetDnCntr(1)); err != nil {
			return err
		}
	}

	if err := r.Skip(r.GetDnCntr(0)); err != nil {
		return err
	}

	_, err := r.Unpack1(fi.WordSize)
	return err
}
