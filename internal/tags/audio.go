package tags

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2/flac"
	"github.com/llehouerou/go-m4a"
	"github.com/llehouerou/go-mp3"
	"go.senan.xyz/taglib"
)

// ReadProperties reads the stream properties shown in a track summary.
// taglib provides length, sample rate and bitrate for every format; the
// codec and bit depth come from the container.
func ReadProperties(path string) (Properties, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsMusicFile(path) {
		return Properties{}, fmt.Errorf("unsupported format: %s", ext)
	}

	var p Properties
	tp, err := taglib.ReadProperties(path)
	if err == nil {
		p = Properties{Length: tp.Length, SampleRate: int(tp.SampleRate), Bitrate: int(tp.Bitrate)}
	}

	var codecErr error
	switch ext {
	case ExtMP3:
		codecErr = mp3Properties(path, &p, err != nil)
	case ExtFLAC:
		codecErr = flacProperties(path, &p)
	case ExtM4A, ExtMP4:
		codecErr = m4aProperties(path, &p)
	case ExtOPUS, ExtOGG, ExtOGA:
		p.Codec, p.BitDepth = "OPUS", 16
		codecErr = err
	}
	if codecErr != nil && p.Length == 0 {
		return Properties{}, codecErr
	}
	return p, nil
}

// mp3Properties decodes the frame headers when taglib could not read the
// file. MP3 always decodes to 16 bit.
func mp3Properties(path string, p *Properties, needLength bool) error {
	p.Codec, p.BitDepth = "MP3", 16
	if !needLength {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	d, err := mp3.NewDecoder(f)
	if err != nil {
		return err
	}
	if d.SampleRate() == 0 {
		return errors.New("mp3: invalid sample rate")
	}
	p.SampleRate = d.SampleRate()
	p.Length = samplesDuration(max(d.SampleCount(), 0), p.SampleRate)
	return nil
}

func flacProperties(path string, p *Properties) error {
	p.Codec = "FLAC"
	f, _, err := parseFLACWithID3Support(path)
	if err == nil {
		info, infoErr := f.GetStreamInfo()
		if infoErr == nil {
			p.BitDepth = info.BitDepth
			if p.Length == 0 {
				p.SampleRate = info.SampleRate
				p.Length = samplesDuration(info.SampleCount, info.SampleRate)
			}
			return nil
		}
	}
	return flacDecoderProperties(path, p)
}

// flacDecoderProperties opens the stream with beep when the metadata
// blocks could not be parsed.
func flacDecoderProperties(path string, p *Properties) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := skipID3v2(f); err != nil {
		return err
	}
	streamer, format, err := flac.Decode(f)
	if err != nil {
		return err
	}
	defer streamer.Close()

	p.BitDepth = format.Precision * 8
	if p.Length == 0 {
		p.SampleRate = int(format.SampleRate)
		p.Length = format.SampleRate.D(streamer.Len())
	}
	return nil
}

func m4aProperties(path string, p *Properties) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	c, err := m4a.Open(f)
	if err != nil {
		return err
	}

	p.BitDepth = 16
	switch c.Codec() {
	case m4a.CodecAAC:
		p.Codec = "AAC"
	case m4a.CodecALAC:
		p.Codec = "ALAC"
		if c.SampleSize() == 24 {
			p.BitDepth = 24
		}
	default:
		p.Codec = "M4A"
	}
	if p.Length == 0 {
		p.Length = c.Duration()
		p.SampleRate = int(c.SampleRate())
	}
	return nil
}

func samplesDuration(samples int64, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(float64(samples) / float64(rate) * float64(time.Second))
}

// skipID3v2 positions r after a leading ID3v2 tag, or at the start.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	if _, err := io.ReadFull(r, header); err != nil || string(header[:3]) != id3Magic {
		_, seekErr := r.Seek(0, io.SeekStart)
		return seekErr
	}
	size := int64(header[6]&0x7f)<<21 | int64(header[7]&0x7f)<<14 | int64(header[8]&0x7f)<<7 | int64(header[9]&0x7f)
	_, err := r.Seek(10+size, io.SeekStart)
	return err
}
