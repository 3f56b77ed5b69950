package dolbye

import "example.com/dolbyectl/internal/dolbye/bitio"

// parseAC3MetadataSubsegment reads one ac3_metadata_subsegment (subsegID 1
// or 2) across all n_programs programs. The two variants share a fixed
// prologue and filter/compression/dynamic-range suffix; they differ only in
// the block between origbs and the filter flags: subsegID 1
// carries the XBSI1/XBSI2 blocks there, the other subsegID carries the
// timecode pair. Every prologue and suffix field is read unconditionally;
// the various "exists" bits (langcode, audprodie, xbsi1e, xbsi2e, timecod1e,
// timecod2e, compre, dynrnge) are themselves fixed-width data fields, not
// gates — only addbsie gates the additional-BSI bytes that follow it, and
// those are read in their own pass after every program's core fields.
func parseAC3MetadataSubsegment(r *bitio.Reader, fi *FrameInfo, subsegID int) (AC3MetadataSegment, error) {
	seg := AC3MetadataSegment{SubsegID: subsegID}

	for pgm := 0; pgm < fi.NPrograms; pgm++ {
		p := &seg.Program[pgm]

		v, err := r.Unpack1(5)
		if err != nil {
			return seg, err
		}
		p.DataRate = int(v)

		v, err = r.Unpack1(3)
		if err != nil {
			return seg, err
		}
		p.BSMod = int(v)

		v, err = r.Unpack1(3)
		if err != nil {
			return seg, err
		}
		p.AcMod = int(v)

		v, err = r.Unpack1(2)
		if err != nil {
			return seg, err
		}
		p.CMixLevel = int(v)

		v, err = r.Unpack1(2)
		if err != nil {
			return seg, err
		}
		p.SurMixLevel = int(v)

		v, err = r.Unpack1(2)
		if err != nil {
			return seg, err
		}
		p.DSurMod = int(v)

		lfe, err := r.Unpack1(1)
		if err != nil {
			return seg, err
		}
		p.LFEOn = lfe != 0

		v, err = r.Unpack1(5)
		if err != nil {
			return seg, err
		}
		p.DialNorm = int(v)

		v, err = r.Unpack1(1)
		if err != nil {
			return seg, err
		}
		p.LangCode = int(v)

		v, err = r.Unpack1(8)
		if err != nil {
			return seg, err
		}
		p.LangCod = int(v)

		aud, err := r.Unpack1(1)
		if err != nil {
			return seg, err
		}
		p.AudProdIE = aud != 0

		v, err = r.Unpack1(5)
		if err != nil {
			return seg, err
		}
		p.MixLevel = int(v)

		v, err = r.Unpack1(2)
		if err != nil {
			return seg, err
		}
		p.RoomTyp = int(v)

		cb, err := r.Unpack1(1)
		if err != nil {
			return seg, err
		}
		p.CopyrightB = cb != 0

		ob, err := r.Unpack1(1)
		if err != nil {
			return seg, err
		}
		p.OrigBS = ob != 0

		if subsegID == 1 {
			if err := parseXBSI(r, p); err != nil {
				return seg, err
			}
		} else {
			e1, err := r.Unpack1(1)
			if err != nil {
				return seg, err
			}
			p.Timecod1Exists = e1 != 0
			v, err = r.Unpack1(14)
			if err != nil {
				return seg, err
			}
			p.Timecod1 = int(v)

			e2, err := r.Unpack1(1)
			if err != nil {
				return seg, err
			}
			p.Timecod2Exists = e2 != 0
			v, err = r.Unpack1(14)
			if err != nil {
				return seg, err
			}
			p.Timecod2 = int(v)
		}

		flags, err := r.Unpack1(6)
		if err != nil {
			return seg, err
		}
		p.HPFOn = flags&0x20 != 0
		p.BWLPFOn = flags&0x10 != 0
		p.LFELPFOn = flags&0x08 != 0
		p.Sur90On = flags&0x04 != 0
		p.SurAttOn = flags&0x02 != 0
		p.RFPremphOn = flags&0x01 != 0

		ce, err := r.Unpack1(1)
		if err != nil {
			return seg, err
		}
		p.CompreExists = ce != 0
		v, err = r.Unpack1(8)
		if err != nil {
			return seg, err
		}
		p.Compr1 = int(v)

		de, err := r.Unpack1(1)
		if err != nil {
			return seg, err
		}
		p.DynRngExists = de != 0
		for i := 0; i < 4; i++ {
			v, err = r.Unpack1(8)
			if err != nil {
				return seg, err
			}
			p.DynRng[i] = int(v)
		}
	}

	for pgm := 0; pgm < fi.NPrograms; pgm++ {
		p := &seg.Program[pgm]

		ae, err := r.Unpack1(1)
		if err != nil {
			return seg, err
		}
		p.AddBSIExists = ae != 0
		if p.AddBSIExists {
			v, err := r.Unpack1(6)
			if err != nil {
				return seg, err
			}
			p.AddBSILength = int(v) + 1
			buf := make([]byte, p.AddBSILength)
			for i := range buf {
				b, err := r.Unpack1(8)
				if err != nil {
					return seg, err
				}
				buf[i] = byte(b)
			}
			p.AddBSI = buf
		}
	}

	return seg, nil
}

// parseXBSI reads the XBSI1/XBSI2 blocks that only appear in subsegID 1.
// Every field is unconditional; xbsi1e and xbsi2e are themselves data
// fields, not gates.
func parseXBSI(r *bitio.Reader, p *AC3ProgramMetadata) error {
	e1, err := r.Unpack1(1)
	if err != nil {
		return err
	}
	p.XBSI1Exists = e1 != 0

	v, err := r.Unpack1(2)
	if err != nil {
		return err
	}
	p.DMixMod = int(v)
	v, err = r.Unpack1(3)
	if err != nil {
		return err
	}
	p.LtRtCMixLevel = int(v)
	v, err = r.Unpack1(3)
	if err != nil {
		return err
	}
	p.LtRtSurMixLevel = int(v)
	v, err = r.Unpack1(3)
	if err != nil {
		return err
	}
	p.LoRoCMixLevel = int(v)
	v, err = r.Unpack1(3)
	if err != nil {
		return err
	}
	p.LoRoSurMixLevel = int(v)

	e2, err := r.Unpack1(1)
	if err != nil {
		return err
	}
	p.XBSI2Exists = e2 != 0

	v, err = r.Unpack1(2)
	if err != nil {
		return err
	}
	p.DSurExMod = int(v)
	v, err = r.Unpack1(2)
	if err != nil {
		return err
	}
	p.DHeadphonMod = int(v)
	v, err = r.Unpack1(1)
	if err != nil {
		return err
	}
	p.AdConvTyp = int(v)
	v, err = r.Unpack1(8)
	if err != nil {
		return err
	}
	p.XBSI2 = int(v)
	enc, err := r.Unpack1(1)
	if err != nil {
		return err
	}
	p.EncInfo = enc != 0
	return nil
}

// parseAC3MetadataExtensionSubsegment reads the metadata-extension
// segment's simpler five-field-per-program AC-3 extension block.
func parseAC3MetadataExtensionSubsegment(r *bitio.Reader, fi *FrameInfo) (AC3MetadataExtension, error) {
	var ext AC3MetadataExtension
	for pgm := 0; pgm < fi.NPrograms; pgm++ {
		p := &ext.Program[pgm]
		v, err := r.Unpack1(8)
		if err != nil {
			return ext, err
		}
		p.Compr2 = int(v)
		v, err = r.Unpack1(8)
		if err != nil {
			return ext, err
		}
		p.DynRng5 = int(v)
		v, err = r.Unpack1(8)
		if err != nil {
			return ext, err
		}
		p.DynRng6 = int(v)
		v, err = r.Unpack1(8)
		if err != nil {
			return ext, err
		}
		p.DynRng7 = int(v)
		v, err = r.Unpack1(8)
		if err != nil {
			return ext, err
		}
		p.DynRng8 = int(v)
	}
	return ext, nil
}
