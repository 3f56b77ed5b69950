package dolbye

import (
	"errors"
	"fmt"
	"io"

	"example.com/dolbyectl/internal/dolbye/bitio"
)

const preambleWords = 4

// locatePreamble implements the sliding-window preamble scan from
// findPreambleSync in dolbye.cpp: read four container words as 24-bit
// right-justified values, test each of the three payload word sizes'
// sync-A/B masks against the first two words, validate the burst-info
// word, then read the payload-length word and reinitialize the reader at
// the discovered payload word size. On a mismatch the window slides by one
// container word and the scan continues until EOF.
//
// diag receives warnings for plausible-but-wrong preambles (wrong type,
// mode mismatch, non-zero error flag, non-zero stream number); none of
// these abort the scan, matching the original's tolerate-and-keep-scanning
// behavior.
func locatePreamble(r *bitio.Reader, diag func(Diagnostic)) (wordSize, frameLength int, err error) {
	if err := r.InitStream(BitDepth24); err != nil {
		return 0, 0, err
	}
	if err := r.Refill(preambleWords); err != nil {
		return 0, 0, err
	}
	window := make([]uint32, preambleWords)
	if err := r.UnpackRJ(window, preambleWords, BitDepth24); err != nil {
		return 0, 0, err
	}

	for {
		for i := 0; i < len(BitDepths); i++ {
			if (window[0]&preambleSyncMask[i]) != preambleSyncA[i] ||
				(window[1]&preambleSyncMask[i]) != preambleSyncB[i] {
				continue
			}
			if (window[2] & preambleMaskType) != preambleTypeDolbyE {
				diag(Diagnostic{Code: "PreambleNotDolbyE", Severity: SeverityWarn, Message: "preamble matched but stream is not tagged Dolby E"})
				continue
			}
			if (window[2] & preambleMaskMode) != preambleMode[i] {
				diag(Diagnostic{Code: "PreambleModeMismatch", Severity: SeverityWarn, Message: "preamble mode field inconsistent with matched bit depth"})
				continue
			}
			if (window[2] & preambleMaskErr) != preambleNoErr {
				diag(Diagnostic{Code: "PreambleErrorFlag", Severity: SeverityWarn, Message: "preamble error flag set"})
				continue
			}
			if (window[2] & preambleMaskStrmNum) != preambleStrm0 {
				diag(Diagnostic{Code: "PreambleStreamNumber", Severity: SeverityWarn, Message: "only stream #0 is supported"})
				continue
			}

			depth := BitDepths[i]
			payloadBits := window[3] >> uint(BitDepth24-depth)
			if int(payloadBits)%depth != 0 {
				return 0, 0, ErrInconsistentPreamble
			}
			payloadWords := int(payloadBits) / depth
			if err := r.InitStream(depth); err != nil {
				return 0, 0, err
			}
			if err := r.Refill(payloadWords); err != nil {
				return 0, 0, err
			}
			return depth, payloadWords, nil
		}

		copy(window, window[1:])
		if err := r.InitStream(BitDepth24); err != nil {
			return 0, 0, err
		}
		if err := r.Refill(1); err != nil {
			if errors.Is(err, io.EOF) {
				return 0, 0, fmt.Errorf("%w: %v", ErrNoPreamble, err)
			}
			return 0, 0, err
		}
		if err := r.UnpackRJ(window[preambleWords-1:], 1, BitDepth24); err != nil {
			return 0, 0, err
		}
	}
}
