package msf

import (
	"log"
	"time"
)

// SecondReport 是一秒结束后产出的诊断快照，通过回调交给调用方。
// 回调只在秒边界触发，永远不在比特窗口内部执行，
// 保证慢速的诊断输出不会扰动采样节奏。
type SecondReport struct {
	Second   int  // 分钟内的秒序号 (0-59)
	BitA     bool // 本秒提交的 A 比特
	BitB     bool // 本秒提交的 B 比特
	PercentA int  // A 窗口高电平采样比例 (0-100)
	PercentB int  // B 窗口高电平采样比例 (0-100)
	Noisy    bool // 比例落在可疑区间 (诊断用，不影响提交值)
}

// Acquirer 负责在分钟边界对齐后，逐秒采样两个比特窗口并多数投票。
type Acquirer struct {
	cfg    *Config
	source CarrierSource
	clock  Clock

	// OnSecond 每秒结束时回调一次，可为 nil
	OnSecond func(SecondReport)
}

// NewAcquirer 创建比特采集器
func NewAcquirer(cfg *Config, source CarrierSource, clock Clock) *Acquirer {
	return &Acquirer{cfg: cfg, source: source, clock: clock}
}

// vote 把窗口内的采样计数折算成比例和提交值。
// 窗口内多次采样再按比例投票，单个噪声样本就不会翻转比特；
// 阈值取 60% 而不是 50%，把模棱两可的窗口一律判成 0。
func (a *Acquirer) vote(high, total int) (value bool, percent int) {
	if total > 0 {
		percent = high * 100 / total
	}
	return percent > a.cfg.Acquire.VotePercent, percent
}

// AcquireMinute 等到 marker 之后的下一个整分钟时刻，然后连续采集 60 秒，
// 返回两个 60 位的数据段 (A / B)。阻塞约 60 秒以上。
func (a *Acquirer) AcquireMinute(marker time.Time) (*BitField, *BitField) {
	// 同步扫描耗时超过 60 秒，marker 可能落在一分多钟之前，
	// 按 60 秒取模算出当前分钟周期已经走了多远，等到下一个整周期
	elapsed := a.clock.Now().Sub(marker)
	wait := time.Minute - elapsed%time.Minute

	log.Printf("[MSF] 同步完成，等待 %v 对齐下一个分钟边界...", wait)
	a.clock.Sleep(wait)
	start := a.clock.Now()

	fieldA := NewBitField(60)
	fieldB := NewBitField(60)

	interval := time.Duration(a.cfg.Sync.SampleRateMs) * time.Millisecond
	nextBoundary := time.Second

	var highA, totalA, highB, totalB int
	second := 0

	for second < 60 {
		now := a.clock.Now()
		sinceStart := now.Sub(start)
		msInSecond := int(sinceStart.Milliseconds() % 1000)

		// MSF 规范里载波存在编码二进制 0，载波缺失 (静默) 编码二进制 1，
		// 这里取反成逻辑电平，1 表示该窗口携带的数据位为 1
		logicHigh := !a.source.CarrierPresent()

		// 两个窗口互不相交，且都避开秒边界附近的抖动区
		switch {
		case msInSecond >= a.cfg.Acquire.BitAStartMs && msInSecond <= a.cfg.Acquire.BitAEndMs:
			totalA++
			if logicHigh {
				highA++
			}
		case msInSecond >= a.cfg.Acquire.BitBStartMs && msInSecond <= a.cfg.Acquire.BitBEndMs:
			totalB++
			if logicHigh {
				highB++
			}
		}

		// 跨过 1000ms 边界时结算这一秒
		if sinceStart >= nextBoundary {
			valA, pctA := a.vote(highA, totalA)
			valB, pctB := a.vote(highB, totalB)
			fieldA.Set(second, valA)
			fieldB.Set(second, valB)

			if a.OnSecond != nil {
				a.OnSecond(SecondReport{
					Second:   second,
					BitA:     valA,
					BitB:     valB,
					PercentA: pctA,
					PercentB: pctB,
					Noisy: pctA > a.cfg.Acquire.NoisyLowPercent &&
						pctA < a.cfg.Acquire.NoisyHighPercent,
				})
			}

			second++
			nextBoundary += time.Second
			highA, totalA, highB, totalB = 0, 0, 0, 0
		}

		a.clock.Sleep(interval)
	}

	return fieldA, fieldB
}
