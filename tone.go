package msf

import "math"

// ToneDetector 用 Goertzel 算法检测单一频率的能量。
// 接收模块把解调包络输出成固定频率的音频音调，载波存在时音调有能量，
// 静默时没有。相比整段 FFT，Goertzel 只算一个频点，
// 每个小块 O(N) 就能出结果，适合按块连续检测。
type ToneDetector struct {
	sampleRate float64
	targetFreq float64
	coeff      float64
}

// NewToneDetector 创建检测器并锁定目标频率
func NewToneDetector(sampleRate, targetFreq float64) *ToneDetector {
	d := &ToneDetector{sampleRate: sampleRate}
	d.Retarget(targetFreq)
	return d
}

// Retarget 重新锁定目标频率 (校准完成后调用)
// coeff = 2 * cos(2 * PI * targetFreq / sampleRate)
func (d *ToneDetector) Retarget(targetFreq float64) {
	d.targetFreq = targetFreq
	d.coeff = 2.0 * math.Cos(2.0*math.Pi*targetFreq/d.sampleRate)
}

// TargetFreq 返回当前锁定的频率
func (d *ToneDetector) TargetFreq() float64 {
	return d.targetFreq
}

// Magnitude 计算一个音频块内目标频率的归一化幅度。
// 每个块独立计算，内部状态不跨块保留。
// 返回值与输入幅度同量级 (满幅正弦约 0.5)，便于和固定阈值比较。
func (d *ToneDetector) Magnitude(block []float32) float64 {
	if len(block) == 0 {
		return 0
	}

	var q1, q2 float64
	for _, s := range block {
		q0 := d.coeff*q1 - q2 + float64(s)
		q2 = q1
		q1 = q0
	}

	// magnitude^2 = q1^2 + q2^2 - q1*q2*coeff
	magSquared := q1*q1 + q2*q2 - q1*q2*d.coeff
	if magSquared < 0 {
		return 0
	}
	// 按块长归一化，消除块大小对幅度的影响
	return math.Sqrt(magSquared) / float64(len(block))
}
