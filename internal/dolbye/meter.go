package dolbye

import (
	"math"

	"example.com/dolbyectl/internal/dolbye/bitio"
)

// parseMeterSegment reads the peak-meter loop followed by the RMS-meter
// loop, one 10-bit code per channel each, skips the trailing padding, and
// consumes the segment CRC.
func parseMeterSegment(r *bitio.Reader, fi *FrameInfo) error {
	if fi.KeyPresent {
		key, err := r.Unpack1(fi.WordSize)
		if err != nil {
			return err
		}
		fi.Metadata.MetadataKey = key
		if err := r.Unkey(key, fi.MeterSize+1); err != nil {
			return err
		}
	}

	r.SetDnCntr(0, fi.MeterSize*fi.WordSize)

	for ch := 0; ch < fi.NChannels; ch++ {
		v, err := r.Unpack1(10)
		if err != nil {
			return err
		}
		fi.Meter.PeakMeter[ch] = int(v)
	}
	for ch := 0; ch < fi.NChannels; ch++ {
		v, err := r.Unpack1(10)
		if err != nil {
			return err
		}
		fi.Meter.RMSMeter[ch] = int(v)
	}

	if err := r.Skip(r.GetDnCntr(0)); err != nil {
		return err
	}

	crc, err := r.Unpack1(fi.WordSize)
	if err != nil {
		return err
	}
	fi.Meter.MeterCRC = crc
	return nil
}

// PeakMeterDB converts a raw 10-bit peak meter code into its displayed dB
// value. raw==0 has no numeric dB value (represents silence); the caller
// distinguishes that case via PeakMeterIsSilent.
func PeakMeterDB(raw int) float64 {
	return -1 * (float64(0x3c0-raw) * 0.094)
}

// PeakMeterIsSilent reports whether raw is the meter's reserved
// minus-infinity code.
func PeakMeterIsSilent(raw int) bool { return raw == 0 }

// PeakMeterIsClipping reports whether raw is at or beyond the meter's
// clipping threshold, and whether its exact value is unspecified.
func PeakMeterIsClipping(raw int) (clipping bool, unspecified bool) {
	if raw == 0x3ff {
		return true, true
	}
	return raw > 0x3c0, false
}

// ComprDB reproduces GetComprDB's fixed-point-to-dB conversion, used to
// display AC-3 compression gain words in reports.
func ComprDB(value int) float64 {
	mant := value & 0x1f
	gainval := (float64(mant) + 32) / 64
	exp := (value & 0x01e0) >> 5
	if exp >= 8 {
		exp -= 16
	}
	exp++
	if exp > 0 {
		for ; exp > 0; exp-- {
			gainval *= 2.0
		}
	} else if exp < 0 {
		for ; exp < 0; exp++ {
			gainval *= 0.5
		}
	}
	return 20 * math.Log10(gainval)
}
