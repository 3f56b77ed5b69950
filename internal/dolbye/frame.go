package dolbye

import "example.com/dolbyectl/internal/dolbye/bitio"

// ParseFrame parses one Dolby E frame from r, which must already be
// positioned at the start of a payload previously discovered by
// locatePreamble (wordSize/frameLength already applied via InitStream and
// Refill). It runs the sync, metadata, audio, optional
// metadata-extension/audio-extension, and meter segments in order. The
// segment parsers raise no diagnostics of their own; diag is not called.
func ParseFrame(r *bitio.Reader, wordSize int, diag func(Diagnostic)) (*FrameInfo, error) {
	fi := &FrameInfo{WordSize: wordSize}

	if err := parseSyncSegment(r, fi); err != nil {
		return nil, err
	}
	if err := parseMetadataSegment(r, fi); err != nil {
		return nil, err
	}
	if err := parseAudioSegment(r, fi); err != nil {
		return nil, err
	}

	if fi.LowFrameRate {
		if err := parseMetadataExtensionSegment(r, fi); err != nil {
			return nil, err
		}
		if err := parseAudioExtensionSegment(r, fi); err != nil {
			return nil, err
		}
	}

	if err := parseMeterSegment(r, fi); err != nil {
		return nil, err
	}

	return fi, nil
}

// ParseNextFrame locates the next preamble on r and parses the frame it
// introduces, returning the frame's word size alongside the parsed
// FrameInfo so callers (the Sequencer) can track word-size changes across
// a stream.
func ParseNextFrame(r *bitio.Reader, diag func(Diagnostic)) (*FrameInfo, int, error) {
	wordSize, frameLength, err := locatePreamble(r, diag)
	if err != nil {
		return nil, 0, err
	}
	fi, err := ParseFrame(r, wordSize, diag)
	if err != nil {
		return nil, wordSize, err
	}
	fi.FrameLength = frameLength
	return fi, wordSize, nil
}
