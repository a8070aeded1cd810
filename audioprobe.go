package msf

import (
	"log"
	"sync/atomic"

	"msf/Filters"
)

// AudioProbe 把音频流转换为 CarrierSource：
// 采样块 -> (可选录音) -> 启动校准锁频 -> Goertzel 能量 -> 载波门限 -> 布尔状态。
// ProcessSamples 在音频回调协程里执行，CarrierPresent 在解码循环里读取，
// 两边只通过一个原子布尔交接，探测永远读到最近一次已判定的状态。
type AudioProbe struct {
	cfg      *Config
	detector *ToneDetector
	gate     *Filters.CarrierGate
	analyzer *SpectrumAnalyzer

	state atomic.Bool

	calibrated bool
	calibBuf   []float32
	pending    []float32

	recorder *WavWriter
}

// NewAudioProbe 创建音频探头。
// cfg.Audio.TargetFreq 非零时直接锁定该频率，零则先收集样本做 FFT 校准。
func NewAudioProbe(cfg *Config) *AudioProbe {
	p := &AudioProbe{
		cfg:      cfg,
		detector: NewToneDetector(float64(cfg.Audio.SampleRate), cfg.Audio.TargetFreq),
		gate:     Filters.NewCarrierGate(cfg.Audio.GateDecay, cfg.Audio.GateSquelch),
	}
	if cfg.Audio.TargetFreq > 0 {
		p.calibrated = true
		log.Printf("[MSF] 音调频率固定为 %.1f Hz (跳过校准)", cfg.Audio.TargetFreq)
	} else {
		p.analyzer = NewSpectrumAnalyzer(float64(cfg.Audio.SampleRate), cfg.Audio.FFTSize)
	}
	return p
}

// SetRecorder 设置录音输出，nil 关闭录音
func (p *AudioProbe) SetRecorder(w *WavWriter) {
	p.recorder = w
}

// CarrierPresent 实现 CarrierSource，返回最近判定的载波状态
func (p *AudioProbe) CarrierPresent() bool {
	return p.state.Load()
}

// Calibrated 返回是否已锁定音调频率
func (p *AudioProbe) Calibrated() bool {
	return p.calibrated
}

// ProcessSamples 消化一段音频采样，由采集回调或回放循环驱动
func (p *AudioProbe) ProcessSamples(samples []float32) {
	if p.recorder != nil {
		_ = p.recorder.WriteSamples(samples)
	}

	if !p.calibrated {
		p.calibrate(samples)
		return
	}

	// 按固定块大小喂 Goertzel，余量留到下一批
	p.pending = append(p.pending, samples...)
	blockSize := p.cfg.Audio.BlockSize
	for len(p.pending) >= blockSize {
		mag := p.detector.Magnitude(p.pending[:blockSize])
		p.state.Store(p.gate.Feed(mag))
		p.pending = p.pending[blockSize:]
	}
}

// calibrate 收集够一个 FFT 窗口后寻找主频并锁定检测器。
// 信号太弱时认为是底噪，丢弃缓冲继续等待。
func (p *AudioProbe) calibrate(samples []float32) {
	p.calibBuf = append(p.calibBuf, samples...)
	if len(p.calibBuf) < p.cfg.Audio.FFTSize {
		return
	}

	freq, mag := p.analyzer.DominantTone(p.calibBuf, p.cfg.Audio.MinFreq, p.cfg.Audio.MaxFreq)
	if mag > p.cfg.Audio.MinMagnitude {
		p.detector.Retarget(freq)
		p.calibrated = true
		p.calibBuf = nil
		log.Printf("[MSF] 校准锁定: %.1f Hz, 幅度 %.4f", freq, mag)
	} else {
		p.calibBuf = p.calibBuf[:0]
	}
}
