package msf

import "time"

// 本文件是测试公共设施：虚拟时钟 + MSF 调制信号模拟器。
// 真跑一次取时要两分多钟，虚拟时钟让 Sleep 直接推进时间，
// 信号模拟器按当前虚拟时刻算出载波状态，整条流水线毫秒级跑完。

// fakeClock 虚拟时钟，Sleep 把时间向前拨而不真正等待
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	if d > 0 {
		c.now = c.now.Add(d)
	}
}

// signalSim 按 MSF 调制规则生成载波状态：
//   - 每分钟第 0 秒: 500ms 静默 (分钟标记)
//   - 其余各秒: 固定 100ms 静默，随后 100-200ms 段携带 A 比特，
//     200-300ms 段携带 B 比特 (比特为 1 时该段静默)，其余时间载波
type signalSim struct {
	clock *fakeClock
	base  time.Time // 分钟对齐的信号起点
	// frameFor 返回第 minute 分钟发送的 A/B 数据段
	frameFor func(minute int) (*BitField, *BitField)
}

func (s *signalSim) CarrierPresent() bool {
	d := s.clock.now.Sub(s.base)
	if d < 0 {
		return true
	}
	minute := int(d / time.Minute)
	rem := d % time.Minute
	sec := int(rem / time.Second)
	ms := int(rem % time.Second / time.Millisecond)

	fieldA, fieldB := s.frameFor(minute)

	if sec == 0 {
		return ms >= 500 // 分钟标记
	}
	switch {
	case ms < 100:
		return false // 每秒固定静默段
	case ms < 200:
		return !fieldA.Get(sec)
	case ms < 300:
		return !fieldB.Get(sec)
	default:
		return true
	}
}

// steadySim 构造一个每分钟都发送同一数据帧的模拟器
func steadySim(clock *fakeClock, base time.Time, fieldA, fieldB *BitField) *signalSim {
	return &signalSim{
		clock: clock,
		base:  base,
		frameFor: func(int) (*BitField, *BitField) {
			return fieldA, fieldB
		},
	}
}

// testConfig 返回关闭随机抖动的配置，保证测试时间线确定
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Sync.JitterMinMs = 0
	cfg.Sync.JitterMaxMs = 0
	return cfg
}

// encodeBCD 按权重表贪心编码，是 decodeBCD 的逆操作 (测试用)
func encodeBCD(f *BitField, start int, weights []int, value int) {
	for i, w := range weights {
		if value >= w {
			f.Set(start+i, true)
			value -= w
		}
	}
}

// setOddParity 设置 B 段校验位，使范围内置位总数为奇数
func setOddParity(fieldA, fieldB *BitField, start, count, parityBit int) {
	ones := 0
	for i := 0; i < count; i++ {
		if fieldA.Get(start + i) {
			ones++
		}
	}
	fieldB.Set(parityBit, ones%2 == 0)
}

// encodeFrame 构造一个奇偶校验正确的完整数据帧
func encodeFrame(year, month, day, dow, hour, minute int) (*BitField, *BitField) {
	fieldA := NewBitField(60)
	fieldB := NewBitField(60)

	encodeBCD(fieldA, 17, yearWeights, year%100)
	encodeBCD(fieldA, 25, monthWeights, month)
	encodeBCD(fieldA, 30, dayWeights, day)
	encodeBCD(fieldA, 36, dowWeights, dow)
	encodeBCD(fieldA, 39, hourWeights, hour)
	encodeBCD(fieldA, 45, minuteWeights, minute)

	setOddParity(fieldA, fieldB, 17, 8, 54)
	setOddParity(fieldA, fieldB, 25, 11, 55)
	setOddParity(fieldA, fieldB, 36, 3, 56)
	setOddParity(fieldA, fieldB, 39, 13, 57)

	return fieldA, fieldB
}
