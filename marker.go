package msf

import "fmt"

// MarkerScanner 维护一个环形采样缓冲区和 O(1) 的滚动置信度分数，
// 用于在连续采样流中定位分钟标记的 载波->静默 跳变。
//
// 理想的分钟标记长这样:
//
//	|<- 700ms 载波 ->|<- 500ms 静默 ->|
//
// 缓冲区覆盖 RingWindowMs 的历史，新样本从右侧推入:
//
//	|<- 载波窗口 ->|<- 静默窗口 ->|<- 未监控区 ->|
//
// 我们统计载波窗口里实际为载波的样本数，和静默窗口里实际为静默的样本数，
// 两者之和就是当前时刻正好处于分钟标记跳变的置信度分数。
// 每推入一个样本只做常数次计数器增减，从不整窗重算：设备需要以
// 亚秒粒度连续采样 65 秒，不能漏采。
type MarkerScanner struct {
	capacity     int // 环形缓冲区样本容量
	carrierWidth int // 载波窗口宽度 (样本数)
	silenceWidth int // 静默窗口宽度 (样本数)

	ring *BitField
	head int

	carrierScore int // 载波窗口内为载波的样本计数
	silenceScore int // 静默窗口内为静默的样本计数
}

// NewMarkerScanner 按采样间隔推导各窗口宽度。
// 所有时长必须能被 sampleRateMs 整除，否则窗口宽度不精确，直接报错。
func NewMarkerScanner(sampleRateMs, ringWindowMs, carrierMs, silenceMs int) (*MarkerScanner, error) {
	if sampleRateMs <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %dms", sampleRateMs)
	}
	for _, w := range []int{ringWindowMs, carrierMs, silenceMs} {
		if w%sampleRateMs != 0 {
			return nil, fmt.Errorf("window %dms is not divisible by sample rate %dms", w, sampleRateMs)
		}
	}

	capacity := ringWindowMs / sampleRateMs
	carrierWidth := carrierMs / sampleRateMs
	silenceWidth := silenceMs / sampleRateMs
	if carrierWidth+silenceWidth > capacity {
		return nil, fmt.Errorf("ring window %dms too small for %dms carrier + %dms silence",
			ringWindowMs, carrierMs, silenceMs)
	}

	s := &MarkerScanner{
		capacity:     capacity,
		carrierWidth: carrierWidth,
		silenceWidth: silenceWidth,
		ring:         NewBitField(capacity),
	}
	s.Reset()
	return s, nil
}

// Reset 复位缓冲区和计数器，准备下一次同步尝试。
// 缓冲区预填为全载波，所以载波计数初始即为载波窗口宽度，静默计数为 0。
func (s *MarkerScanner) Reset() {
	s.ring.Fill(true)
	s.head = 0
	s.carrierScore = s.carrierWidth
	s.silenceScore = 0
}

// wrap 把 head 回退 offset 个位置，结果保证落在 [0, capacity)
func (s *MarkerScanner) wrap(offset int) int {
	idx := s.head - offset
	if idx < 0 {
		idx += s.capacity
	}
	return idx
}

// Push 推入一个新样本 (true=载波, false=静默)，返回当前置信度分数。
// 分数越高说明当前时刻越像刚好处于分钟标记的静默段末尾。
func (s *MarkerScanner) Push(carrier bool) int {
	// 先找出两个即将跨越窗口边界的旧样本，必须在覆盖 head 之前读取
	leavingSilence := s.ring.Get(s.wrap(s.silenceWidth))                  // 从静默窗口移入载波窗口的样本
	leavingCarrier := s.ring.Get(s.wrap(s.silenceWidth + s.carrierWidth)) // 从载波窗口滑出监控范围的样本

	// 载波窗口更新：进入的是载波则加分，滑出的是载波则减分
	if leavingSilence {
		s.carrierScore++
	}
	if leavingCarrier {
		s.carrierScore--
	}

	// 静默窗口更新：新样本是静默则加分，离开静默窗口的是静默则减分
	if !carrier {
		s.silenceScore++
	}
	if !leavingSilence {
		s.silenceScore--
	}

	// 旧样本的出账已经完成，现在才能覆盖 head 位置
	s.ring.Set(s.head, carrier)
	s.head++
	if s.head >= s.capacity {
		s.head = 0
	}

	return s.carrierScore + s.silenceScore
}

// Score 返回当前分数 (不推入新样本)
func (s *MarkerScanner) Score() int {
	return s.carrierScore + s.silenceScore
}

// MaxScore 返回理论满分 (载波窗口宽度 + 静默窗口宽度)
func (s *MarkerScanner) MaxScore() int {
	return s.carrierWidth + s.silenceWidth
}

// Capacity 返回环形缓冲区的样本容量
func (s *MarkerScanner) Capacity() int {
	return s.capacity
}
