package msf

import (
	"math/rand"
	"testing"
)

func TestNewMarkerScanner_DerivedWidths(t *testing.T) {
	s, err := NewMarkerScanner(10, 1500, 700, 500)
	if err != nil {
		t.Fatalf("NewMarkerScanner failed: %v", err)
	}
	if s.Capacity() != 150 {
		t.Errorf("Capacity = %d, want 150", s.Capacity())
	}
	if s.MaxScore() != 120 {
		t.Errorf("MaxScore = %d, want 120 (70 carrier + 50 silence)", s.MaxScore())
	}
}

func TestNewMarkerScanner_RejectsBadGeometry(t *testing.T) {
	// 采样间隔无法整除窗口时长
	if _, err := NewMarkerScanner(7, 1500, 700, 500); err == nil {
		t.Error("expected error for indivisible sample rate 7ms")
	}
	if _, err := NewMarkerScanner(0, 1500, 700, 500); err == nil {
		t.Error("expected error for zero sample rate")
	}
	// 缓冲区装不下载波+静默窗口
	if _, err := NewMarkerScanner(10, 1000, 700, 500); err == nil {
		t.Error("expected error for ring window smaller than both windows")
	}
	// 合法的更粗采样间隔
	if _, err := NewMarkerScanner(20, 1500, 700, 500); err != nil {
		t.Errorf("20ms should be accepted: %v", err)
	}
}

// 滚动分数不变量：任何采样序列后，增量维护的计数必须与
// 对最近 capacity 个样本的暴力重算完全一致
func TestMarkerScanner_ScoreMatchesBruteForce(t *testing.T) {
	s, err := NewMarkerScanner(10, 1500, 700, 500)
	if err != nil {
		t.Fatal(err)
	}
	const carrierWidth, silenceWidth = 70, 50

	rng := rand.New(rand.NewSource(42))
	capacity := s.Capacity()

	// 影子缓冲区，与扫描器同样预填载波
	history := make([]bool, capacity)
	for i := range history {
		history[i] = true
	}
	head := 0

	for step := 0; step < 2000; step++ {
		v := rng.Intn(2) == 0
		got := s.Push(v)

		history[head] = v
		head = (head + 1) % capacity

		// 暴力重算：最近 silenceWidth 个样本是静默窗口，
		// 再往前 carrierWidth 个是载波窗口
		want := 0
		for k := 1; k <= silenceWidth; k++ {
			if !history[(head-k+2*capacity)%capacity] {
				want++
			}
		}
		for k := silenceWidth + 1; k <= silenceWidth+carrierWidth; k++ {
			if history[(head-k+2*capacity)%capacity] {
				want++
			}
		}

		if got != want {
			t.Fatalf("step %d: incremental score %d != brute force %d", step, got, want)
		}
	}
}

// 完美的分钟标记波形必须拿到满分，且满分恰好出现在静默段末尾
func TestMarkerScanner_PerfectMarkerScoresFull(t *testing.T) {
	s, err := NewMarkerScanner(10, 1500, 700, 500)
	if err != nil {
		t.Fatal(err)
	}

	// 700ms 载波
	score := 0
	for i := 0; i < 70; i++ {
		score = s.Push(true)
	}
	// 500ms 静默，最后一个样本推入时应达到满分
	for i := 0; i < 49; i++ {
		score = s.Push(false)
	}
	if score >= s.MaxScore() {
		t.Fatalf("score %d reached max before silence window filled", score)
	}
	score = s.Push(false)
	if score != s.MaxScore() {
		t.Fatalf("score at marker = %d, want %d", score, s.MaxScore())
	}

	// 跳变过去之后分数应回落
	for i := 0; i < 30; i++ {
		score = s.Push(true)
	}
	if score >= s.MaxScore() {
		t.Errorf("score %d should decay after the marker passes", score)
	}
}

func TestMarkerScanner_ResetRestoresInitialState(t *testing.T) {
	s, err := NewMarkerScanner(10, 1500, 700, 500)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 500; i++ {
		s.Push(i%3 == 0)
	}
	s.Reset()
	// 预填全载波：载波计数 = 载波窗口宽度，静默计数 = 0
	if s.Score() != 70 {
		t.Fatalf("score after Reset = %d, want 70", s.Score())
	}
	// 复位后再推入载波样本，分数保持不变
	if got := s.Push(true); got != 70 {
		t.Fatalf("score after pushing carrier into reset ring = %d, want 70", got)
	}
}
