package dolbye

import "example.com/dolbyectl/internal/dolbye/bitio"

// noGroupType marks the group_type_code/bandwidth_code of an LFE channel,
// which carries neither field.
const noGroupType GroupType = -1

// parseChannelSubsegment walks one channel's exponent, masking-model,
// bit-allocation, and gain-adaptive-quantization fields without decoding
// any audio sample. LFE channels skip the group structure entirely; all
// other channels read group_type_code and bandwidth_code first, and an
// extension subsegment must agree with the primary subsegment on whether
// the channel is SHORT.
func parseChannelSubsegment(r *bitio.Reader, fi *FrameInfo, info *ChannelSubsegInfo) error {
	if info.LFEFlag {
		info.GroupTypeCode = noGroupType
		info.BandwidthCode = -1
	} else {
		width := 1
		if info.LowFrameRate {
			width = 2
		}
		v, err := r.Unpack1(width)
		if err != nil {
			return err
		}
		info.GroupTypeCode = GroupType(v)

		bw, err := r.Unpack1(3)
		if err != nil {
			return err
		}
		info.BandwidthCode = int(bw)
	}

	if info.PriExtFlag && info.HasPrevGroupType {
		prevShort := info.PrevGroupTypeCode == GroupTypeShort
		curShort := info.GroupTypeCode == GroupTypeShort
		if prevShort != curShort {
			return ErrIllegalGroupTransition
		}
	}

	if err := initChannelSubsegInfo(info); err != nil {
		return err
	}

	var expStrat [MaxBlocks]int
	for blk := 0; blk < info.BlockCount; blk++ {
		var strat uint32
		var err error
		switch {
		case blk == 0:
			strat = 1
		case info.BandCount[blk] != info.BandCount[blk-1]:
			strat = 1
		default:
			strat, err = r.Unpack1(1)
			if err != nil {
				return err
			}
		}
		expStrat[blk] = int(strat)

		if strat != 0 {
			for reg := 0; reg < info.RegionCount[blk]; reg++ {
				if _, err := r.Unpack1(2); err != nil {
					return err
				}
			}
			for bnd := 0; bnd < info.BandCount[blk]; bnd++ {
				if _, err := r.Unpack1(5); err != nil {
					return err
				}
			}
		}
	}

	for blk := 0; blk < info.BlockCount; blk++ {
		var exists uint32
		var err error
		if blk == 0 {
			exists = 1
		} else {
			exists, err = r.Unpack1(1)
			if err != nil {
				return err
			}
		}
		if exists != 0 {
			if _, err := r.Unpack1(2); err != nil {
				return err
			}
			if _, err := r.Unpack1(3); err != nil {
				return err
			}
			if _, err := r.Unpack1(1); err != nil {
				return err
			}
		}
	}

	if _, err := r.Unpack1(1); err != nil {
		return err
	}
	if _, err := r.Unpack1(8); err != nil {
		return err
	}

	for blk := 0; blk < info.BlockCount; blk++ {
		exists, err := r.Unpack1(1)
		if err != nil {
			return err
		}
		if exists != 1 {
			continue
		}
		first, err := r.Unpack1(6)
		if err != nil {
			return err
		}
		if first == 63 {
			continue
		}
		start := int(first)
		if start >= info.BandCount[blk] {
			start = info.BandCount[blk]
		}
		for bnd := start; bnd < info.BandCount[blk]; bnd++ {
			if _, err := r.Unpack1(2); err != nil {
				return err
			}
		}
	}

	return nil
}

// initChannelSubsegInfo fills in blockCount/regionCount/bandCount for the
// channel currently being walked, by frame rate class, primary/extension
// subsegment, LFE flag, and group_type_code, then trims every band count
// by bandwidth_code.
func initChannelSubsegInfo(info *ChannelSubsegInfo) error {
	switch {
	case !info.LowFrameRate:
		if info.LFEFlag {
			setUniformBlocks(info, 1, 1, 21)
			break
		}
		switch info.GroupTypeCode {
		case GroupTypeLong:
			setUniformBlocks(info, 1, 2, 50)
		case GroupTypeShort:
			setUniformBlocks(info, 9, 2, 38)
		default:
			return ErrInvalidFrameRate
		}

	case !info.PriExtFlag:
		if info.LFEFlag {
			setUniformBlocks(info, 1, 1, 21)
			break
		}
		switch info.GroupTypeCode {
		case GroupTypeLong:
			setUniformBlocks(info, 1, 2, 50)
		case GroupTypeShort:
			setUniformBlocks(info, 8, 2, 38)
		case GroupTypeBridge:
			setUniformBlocks(info, 7, 2, 38)
			info.RegionCount[6] = 2
			info.BandCount[6] = 44
		default:
			return ErrInvalidFrameRate
		}

	default:
		if info.LFEFlag {
			setUniformBlocks(info, 1, 1, 21)
			break
		}
		switch info.GroupTypeCode {
		case GroupTypeLong:
			setUniformBlocks(info, 1, 2, 50)
		case GroupTypeShort:
			setUniformBlocks(info, 8, 2, 38)
		case GroupTypeBridge:
			info.BlockCount = 7
			info.RegionCount[0] = 2
			info.BandCount[0] = 44
			for blk := 1; blk < 7; blk++ {
				info.RegionCount[blk] = 2
				info.BandCount[blk] = 38
			}
		default:
			return ErrInvalidFrameRate
		}
	}

	if !info.LFEFlag {
		for blk := 0; blk < info.BlockCount; blk++ {
			info.BandCount[blk] -= info.BandwidthCode
		}
	}
	return nil
}

func setUniformBlocks(info *ChannelSubsegInfo, blocks, regions, bands int) {
	info.BlockCount = blocks
	for blk := 0; blk < blocks; blk++ {
		info.RegionCount[blk] = regions
		info.BandCount[blk] = bands
	}
}
