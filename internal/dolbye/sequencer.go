package dolbye

import (
	"errors"
	"fmt"
	"io"

	"example.com/dolbyectl/internal/dolbye/bitio"
)

// ErrSeekBeyondEnd is returned by Sequencer.Seek when frame_no cannot be
// reached because the stream ends first.
var ErrSeekBeyondEnd = errors.New("dolbye: seek target beyond end of stream")

// Sequencer drives a Dolby E elementary stream frame by frame. The frame
// parser itself is stateless and only reports each frame's raw
// description_text byte; the Sequencer owns the per-program
// ProgramDescriptionBuffer state machine across frames, since a program's
// name can span many frames' worth of STX/printable/ETX bytes.
type Sequencer struct {
	r    *bitio.Reader
	desc [MaxPrograms]ProgramDescriptionBuffer

	current int
	diag    func(Diagnostic)

	haveLast      bool
	lastFrameInfo *FrameInfo
}

// NewSequencer wraps r for frame-by-frame traversal. diag may be nil.
func NewSequencer(r *bitio.Reader, diag func(Diagnostic)) *Sequencer {
	if diag == nil {
		diag = func(Diagnostic) {}
	}
	return &Sequencer{r: r, diag: diag}
}

// GetNextFrame locates and parses the next frame in the stream, folding its
// description_text bytes into the per-program buffers before returning it.
// io.EOF signals a clean end of stream.
func (s *Sequencer) GetNextFrame() (*FrameInfo, error) {
	fi, _, err := ParseNextFrame(s.r, func(d Diagnostic) {
		d.FrameIndex = s.current
		s.diag(d)
	})
	if err != nil {
		return nil, err
	}
	s.applyDescriptionText(fi)
	s.checkSuccession(fi)
	s.current++
	return fi, nil
}

// checkSuccession compares fi against the previously parsed frame, raising
// the non-sequential-frame-count and non-sequential-timecode diagnostics
// the original decoder's compare_frameinfo/check_time_code emit between
// consecutive frames.
func (s *Sequencer) checkSuccession(fi *FrameInfo) {
	if s.haveLast {
		last := s.lastFrameInfo
		if fi.FrameCount != (last.FrameCount+1)&0xffff {
			s.diag(Diagnostic{
				FrameIndex: s.current,
				Code:       "NonSequentialFrameCount",
				Severity:   SeverityWarn,
				Message:    fmt.Sprintf("frame count jumped from %d to %d", last.FrameCount, fi.FrameCount),
			})
		}
		if checkTimeCode(fi.Timecode, last.Timecode, fi.FrameRateCode) {
			s.diag(Diagnostic{
				FrameIndex: s.current,
				Code:       "NonSequentialTimecode",
				Severity:   SeverityWarn,
				Message:    "timecode did not advance by exactly one frame",
			})
		}
	}
	s.lastFrameInfo = fi
	s.haveLast = true
}

// applyDescriptionText runs the STX(0x02)/ETX(0x03)/NUL(0x00)/printable
// state machine against each program's description_text byte for this
// frame, exactly as the metadata segment does inline, but scoped to the
// Sequencer so the buffer persists across frames. A program already marked
// received is skipped entirely: its name is final for the stream, and
// later frames' bytes (garbage or otherwise) must not disturb it.
func (s *Sequencer) applyDescriptionText(fi *FrameInfo) {
	for pgm := 0; pgm < fi.NPrograms; pgm++ {
		buf := &s.desc[pgm]
		if buf.Received {
			continue
		}
		b := fi.DescriptionText[pgm]
		switch {
		case b == 0x00:
			s.diag(Diagnostic{FrameIndex: s.current, Program: pgm, Code: "DescNullChar", Severity: SeverityWarn, Message: "null description_text byte"})
		case b == 0x02:
			buf.Cursor = 0
		case b == 0x03:
			if buf.Cursor > 0 {
				buf.Received = true
			}
		case b < 0x20 || b > 0x7e:
			s.diag(Diagnostic{FrameIndex: s.current, Program: pgm, Code: "DescNonPrintable", Severity: SeverityWarn, Message: fmt.Sprintf("non-printable description_text byte 0x%02x", b)})
		default:
			if buf.Cursor >= MaxDescTextLen-1 {
				s.diag(Diagnostic{FrameIndex: s.current, Program: pgm, Code: "DescOverflow", Severity: SeverityWarn, Message: "description text exceeded buffer length, truncating"})
				continue
			}
			buf.Buf[buf.Cursor] = b
			buf.Cursor++
		}
	}
}

// Description returns program pgm's description text once an ETX has marked
// it received, and "" before that.
func (s *Sequencer) Description(pgm int) string {
	if pgm < 0 || pgm >= MaxPrograms || !s.desc[pgm].Received {
		return ""
	}
	return s.desc[pgm].String()
}

// CountFrames seeks to the start of the stream, counts preambles up to
// EOF, and restores the position the Sequencer was at beforehand, matching
// the original decoder's GetNumberFrames (save position, rewind, scan,
// fseek back). It only locates preambles rather than running the full
// Frame Parser, so it leaves description-text accumulation untouched.
func (s *Sequencer) CountFrames() (int, error) {
	savedPos, err := s.r.Tell()
	if err != nil {
		return 0, err
	}
	if err := s.r.SeekTo(0); err != nil {
		return 0, err
	}

	n := 0
	for {
		_, _, err := locatePreamble(s.r, func(Diagnostic) {})
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, ErrNoPreamble) {
				return n, err
			}
			break
		}
		n++
	}

	if err := s.r.SeekTo(savedPos); err != nil {
		return n, err
	}
	return n, nil
}

// maxDescriptionFrames bounds how many frames CollectDescriptions walks
// looking for complete program names, mirroring the original decoder's
// practice of sampling the first stretch of a long recording rather than
// scanning it in full.
const maxDescriptionFrames = 70

// CollectDescriptions seeks to the start of the stream, walks up to
// min(frameCount, 70) frames accumulating description text into the
// Sequencer's own per-program buffers, restores the position the
// Sequencer was at beforehand, and returns the resulting per-program
// strings — matching the original decoder's GetProgrammeDescriptionText
// (save position, rewind, parse up to 70 frames, fseek back). Sampling
// from the start is guaranteed to observe every program's next STX
// regardless of where in its description-text cycle the stream happened
// to begin.
func (s *Sequencer) CollectDescriptions(frameCount int) ([MaxPrograms]string, error) {
	limit := frameCount
	if limit > maxDescriptionFrames || limit <= 0 {
		limit = maxDescriptionFrames
	}

	savedPos, err := s.r.Tell()
	if err != nil {
		return [MaxPrograms]string{}, err
	}
	savedCurrent, savedHaveLast, savedLast := s.current, s.haveLast, s.lastFrameInfo

	if err := s.r.SeekTo(0); err != nil {
		return [MaxPrograms]string{}, err
	}
	s.current, s.haveLast, s.lastFrameInfo = 0, false, nil
	s.desc = [MaxPrograms]ProgramDescriptionBuffer{}

	for i := 0; i < limit; i++ {
		if _, err := s.GetNextFrame(); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, ErrNoPreamble) {
				return [MaxPrograms]string{}, err
			}
			break
		}
	}

	var out [MaxPrograms]string
	for pgm := 0; pgm < MaxPrograms; pgm++ {
		out[pgm] = s.Description(pgm)
	}

	if err := s.r.SeekTo(savedPos); err != nil {
		return out, err
	}
	s.current, s.haveLast, s.lastFrameInfo = savedCurrent, savedHaveLast, savedLast
	return out, nil
}

// Seek moves to frameNo. If frameNo lies before the current position, the
// stream is first rewound to its start; either way, the Preamble Locator
// is then invoked exactly frameNo-current times before the target frame is
// parsed, matching the original decoder's DolbyEParser::Seek
// (`if (frameNo < frameCount) { fseek(...,SEEK_SET); }`). An earlier
// revision skipped |frameNo-current| preambles forward on every seek,
// which returned the wrong frame and left s.current desynchronized on a
// backward seek.
func (s *Sequencer) Seek(frameNo int) (*FrameInfo, error) {
	if frameNo < s.current {
		if err := s.r.SeekTo(0); err != nil {
			return nil, err
		}
		s.current = 0
	}

	offset := frameNo - s.current
	for i := 0; i < offset; i++ {
		if _, _, err := locatePreamble(s.r, func(Diagnostic) {}); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrNoPreamble) {
				return nil, ErrSeekBeyondEnd
			}
			return nil, err
		}
	}

	s.current = frameNo
	s.haveLast = false
	return s.GetNextFrame()
}
