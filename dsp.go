package msf

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// SpectrumAnalyzer 做一次性的频谱扫描，用于启动校准：
// 不同接收模块/声卡链路输出的音调频率不一样，
// 先找出主频再把 Goertzel 检测器锁上去。
type SpectrumAnalyzer struct {
	SampleRate float64
	FFTSize    int
	window     []float64
}

// NewSpectrumAnalyzer 创建分析器并预计算汉宁窗
// 公式: 0.5 * (1 - cos(2*PI*n / (N-1)))
func NewSpectrumAnalyzer(sampleRate float64, fftSize int) *SpectrumAnalyzer {
	window := make([]float64, fftSize)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}
	return &SpectrumAnalyzer{
		SampleRate: sampleRate,
		FFTSize:    fftSize,
		window:     window,
	}
}

// DominantTone 在 [minFreq, maxFreq] 范围内寻找幅度最大的频率分量。
// 返回主频 (Hz) 和归一化幅度 (满幅正弦约 1.0)；样本不足时返回 (0, 0)。
func (sa *SpectrumAnalyzer) DominantTone(samples []float32, minFreq, maxFreq float64) (float64, float64) {
	if len(samples) < sa.FFTSize {
		return 0, 0
	}

	// 加窗
	input := make([]complex128, sa.FFTSize)
	for i := 0; i < sa.FFTSize; i++ {
		input[i] = complex(float64(samples[i])*sa.window[i], 0)
	}

	spectrum := fft.FFT(input)

	binWidth := sa.SampleRate / float64(sa.FFTSize)
	startBin := int(minFreq / binWidth)
	endBin := int(maxFreq / binWidth)
	if startBin < 0 {
		startBin = 0
	}
	if endBin > len(spectrum)/2 {
		endBin = len(spectrum) / 2
	}

	// 保留幅度谱供插值使用
	mags := make([]float64, len(spectrum)/2+1)
	maxMag := 0.0
	maxBin := 0
	for i := startBin; i < endBin; i++ {
		mag := cmplx.Abs(spectrum[i])
		mags[i] = mag
		if mag > maxMag {
			maxMag = mag
			maxBin = i
		}
	}

	// 抛物线插值：用峰值及左右相邻点估算真实峰位
	// p = 0.5 * (alpha - gamma) / (alpha - 2*beta + gamma)
	freq := float64(maxBin) * binWidth
	if maxBin > 0 && maxBin < len(mags)-1 {
		alpha, beta, gamma := mags[maxBin-1], mags[maxBin], mags[maxBin+1]
		denom := alpha - 2*beta + gamma
		if denom != 0 {
			p := 0.5 * (alpha - gamma) / denom
			freq = (float64(maxBin) + p) * binWidth
		}
	}

	// 归一化 FFT 幅度
	return freq, maxMag * 2.0 / float64(sa.FFTSize)
}
