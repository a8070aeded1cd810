package msf

import (
	"math"
	"testing"
)

// 生成正弦波辅助函数
func sineWave(freq float64, sampleRate, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		out[i] = float32(math.Sin(2 * math.Pi * freq * t))
	}
	return out
}

func TestToneDetector_DetectsTargetTone(t *testing.T) {
	// 1125Hz 恰好落在 256 点块的整数 bin 上 (48000/256*6)，幅度稳定
	d := NewToneDetector(48000, 1125)

	block := sineWave(1125, 48000, 256)
	mag := d.Magnitude(block)
	if mag < 0.3 {
		t.Fatalf("on-target tone magnitude %.4f, want >= 0.3", mag)
	}

	// 一个倍频程之外的音调能量应该很低
	off := sineWave(2250, 48000, 256)
	if offMag := d.Magnitude(off); offMag > 0.05 {
		t.Fatalf("off-target magnitude %.4f, want < 0.05", offMag)
	}
}

func TestToneDetector_SilenceIsQuiet(t *testing.T) {
	d := NewToneDetector(48000, 1125)
	if mag := d.Magnitude(make([]float32, 256)); mag > 1e-9 {
		t.Fatalf("silence magnitude %.6f, want ~0", mag)
	}
	if mag := d.Magnitude(nil); mag != 0 {
		t.Fatalf("empty block magnitude %.6f, want 0", mag)
	}
}

func TestToneDetector_Retarget(t *testing.T) {
	d := NewToneDetector(48000, 2250)
	block := sineWave(1125, 48000, 256)

	before := d.Magnitude(block)
	d.Retarget(1125)
	after := d.Magnitude(block)

	if d.TargetFreq() != 1125 {
		t.Fatalf("TargetFreq = %v after Retarget", d.TargetFreq())
	}
	if after <= before*2 {
		t.Fatalf("retargeting should raise magnitude: before %.4f, after %.4f", before, after)
	}
}

func TestSpectrumAnalyzer_FindsDominantTone(t *testing.T) {
	sa := NewSpectrumAnalyzer(48000, 4096)

	// 1125Hz = 96 * (48000/4096)，正好在 bin 中心
	input := sineWave(1125, 48000, 4096)
	freq, mag := sa.DominantTone(input, 500, 2000)
	if math.Abs(freq-1125) > 2 {
		t.Fatalf("DominantTone freq = %.2f, want ~1125", freq)
	}
	if mag < 0.3 {
		t.Fatalf("DominantTone magnitude %.4f, want >= 0.3", mag)
	}

	// 搜索范围外的音调不应被选中
	freq, _ = sa.DominantTone(input, 1500, 2000)
	if math.Abs(freq-1125) < 2 {
		t.Fatal("tone outside the search band must not be picked")
	}

	// 样本不足
	if f, m := sa.DominantTone(input[:100], 500, 2000); f != 0 || m != 0 {
		t.Fatal("short input should return (0, 0)")
	}
}
