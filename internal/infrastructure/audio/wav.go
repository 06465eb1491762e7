// Package audio 提供叙述音频合成后端与 WAV 编解码
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"journey-narrator/internal/domain/entity"
	"journey-narrator/internal/domain/service"
)

// ContentTypeWAV 合成音频的 MIME 类型
const ContentTypeWAV = "audio/wav"

// PCMFormat PCM 参数
type PCMFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// EncodeWAV 将交错 PCM 采样编码为 WAV
func EncodeWAV(samples []int, f PCMFormat) ([]byte, error) {
	ws := &memWriteSeeker{}
	enc := wav.NewEncoder(ws, f.SampleRate, f.BitDepth, f.Channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: f.Channels, SampleRate: f.SampleRate},
		Data:           samples,
		SourceBitDepth: f.BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close wav encoder: %w", err)
	}
	return ws.Bytes(), nil
}

// DecodeWAV 校验 WAV 数据并提取采样率、声道与时长
func DecodeWAV(data []byte) (*entity.AudioBuffer, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrMalformedAudio, err)
	}
	if d.SampleRate == 0 || d.NumChans == 0 || pcm == nil {
		return nil, fmt.Errorf("%w: missing format chunk", service.ErrMalformedAudio)
	}

	frames := len(pcm.Data) / int(d.NumChans)
	if frames == 0 {
		return nil, fmt.Errorf("%w: no pcm frames", service.ErrMalformedAudio)
	}
	return &entity.AudioBuffer{
		ContentType: ContentTypeWAV,
		Data:        data,
		SampleRate:  int(d.SampleRate),
		Channels:    int(d.NumChans),
		Duration:    time.Duration(frames) * time.Second / time.Duration(d.SampleRate),
	}, nil
}

// memWriteSeeker wav.Encoder 需要回写文件头，bytes.Buffer 不支持 Seek
type memWriteSeeker struct {
	buf []byte
	pos int
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		if end > cap(m.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, m.buf)
			m.buf = grown
		} else {
			m.buf = m.buf[:end]
		}
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = int64(m.pos) + offset
	case io.SeekEnd:
		next = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("memWriteSeeker: invalid whence")
	}
	if next < 0 {
		return 0, errors.New("memWriteSeeker: negative position")
	}
	m.pos = int(next)
	return next, nil
}

func (m *memWriteSeeker) Bytes() []byte {
	return m.buf
}
