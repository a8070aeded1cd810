package msf

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// 本文件提供 16-bit PCM 单声道 WAV 的读写，
// 用于录下接收模块的音频输出，事后离线回放重新解码。

// WavReader 简单的 WAV 文件读取器 (仅支持 16-bit PCM 单声道)
type WavReader struct {
	file       *os.File
	SampleRate int
}

// NewWavReader 打开 WAV 文件并解析头部
func NewWavReader(filename string) (*WavReader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	riff := make([]byte, 12)
	if _, err := io.ReadFull(f, riff); err != nil {
		f.Close()
		return nil, err
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		f.Close()
		return nil, fmt.Errorf("not a wav file: %s", filename)
	}

	// 逐块扫描，找到 fmt 和 data
	var sampleRate, channels, bits int
	for {
		hdr := make([]byte, 8)
		if _, err := io.ReadFull(f, hdr); err != nil {
			f.Close()
			return nil, fmt.Errorf("wav missing data chunk: %v", err)
		}
		chunkID := string(hdr[0:4])
		chunkSize := int64(binary.LittleEndian.Uint32(hdr[4:8]))
		padded := chunkSize + chunkSize%2 // 奇数块补齐一字节

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				f.Close()
				return nil, fmt.Errorf("fmt chunk too small")
			}
			fmtData := make([]byte, chunkSize)
			if _, err := io.ReadFull(f, fmtData); err != nil {
				f.Close()
				return nil, err
			}
			channels = int(binary.LittleEndian.Uint16(fmtData[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(fmtData[4:8]))
			bits = int(binary.LittleEndian.Uint16(fmtData[14:16]))
			if padded > chunkSize {
				f.Seek(1, io.SeekCurrent)
			}
		case "data":
			if channels != 1 || bits != 16 {
				f.Close()
				return nil, fmt.Errorf("only 16-bit mono wav supported, got %d-bit %dch", bits, channels)
			}
			// 文件指针已停在数据起点
			return &WavReader{file: f, SampleRate: sampleRate}, nil
		default:
			if _, err := f.Seek(padded, io.SeekCurrent); err != nil {
				f.Close()
				return nil, err
			}
		}
	}
}

// ReadSamples 读取至多 count 个采样点并归一化为 float32 (-1.0 ~ 1.0)。
// 数据耗尽时返回 io.EOF。
func (r *WavReader) ReadSamples(count int) ([]float32, error) {
	buf := make([]byte, count*2)
	n, err := r.file.Read(buf)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if n < 2 {
		return nil, io.EOF
	}

	out := make([]float32, n/2)
	for i := range out {
		val := int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
		out[i] = float32(val) / 32768.0
	}
	return out, nil
}

// Close 关闭文件
func (r *WavReader) Close() error {
	return r.file.Close()
}

// WavWriter 简单的 WAV 文件写入器 (16-bit PCM 单声道)
type WavWriter struct {
	file       *os.File
	sampleRate int
	dataSize   int
}

// NewWavWriter 创建写入器，真实头部在 Close 时回写
func NewWavWriter(filename string, sampleRate int) (*WavWriter, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	// 先写 44 字节占位头
	if _, err := f.Write(make([]byte, 44)); err != nil {
		f.Close()
		return nil, err
	}
	return &WavWriter{file: f, sampleRate: sampleRate}, nil
}

// WriteSamples 写入 float32 采样 (限幅后转 int16)
func (w *WavWriter) WriteSamples(samples []float32) error {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(s*32767)))
	}
	n, err := w.file.Write(buf)
	w.dataSize += n
	return err
}

// Close 回写 WAV 头并关闭文件
func (w *WavWriter) Close() error {
	header := make([]byte, 44)
	copy(header[0:], "RIFF")
	binary.LittleEndian.PutUint32(header[4:], uint32(36+w.dataSize))
	copy(header[8:], "WAVE")

	copy(header[12:], "fmt ")
	binary.LittleEndian.PutUint32(header[16:], 16)                       // PCM 子块大小
	binary.LittleEndian.PutUint16(header[20:], 1)                        // PCM
	binary.LittleEndian.PutUint16(header[22:], 1)                        // 单声道
	binary.LittleEndian.PutUint32(header[24:], uint32(w.sampleRate))     // 采样率
	binary.LittleEndian.PutUint32(header[28:], uint32(w.sampleRate*2))   // 字节率
	binary.LittleEndian.PutUint16(header[32:], 2)                        // 块对齐
	binary.LittleEndian.PutUint16(header[34:], 16)                       // 位深

	copy(header[36:], "data")
	binary.LittleEndian.PutUint32(header[40:], uint32(w.dataSize))

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := w.file.Write(header); err != nil {
		return err
	}
	return w.file.Close()
}
