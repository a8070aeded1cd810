package msf

import (
	"log"
	"math/rand"
	"time"
)

// Synchronizer 负责定位分钟标记：在固定扫描预算内连续采样，
// 把每个样本喂给 MarkerScanner，记录分数峰值出现的时刻。
type Synchronizer struct {
	cfg     *Config
	source  CarrierSource
	clock   Clock
	scanner *MarkerScanner
}

// NewSynchronizer 创建同步器，采样间隔无法整除窗口时长时报错
func NewSynchronizer(cfg *Config, source CarrierSource, clock Clock) (*Synchronizer, error) {
	scanner, err := NewMarkerScanner(cfg.Sync.SampleRateMs, cfg.Sync.RingWindowMs,
		cfg.Sync.MarkerCarrierMs, cfg.Sync.MarkerSilenceMs)
	if err != nil {
		return nil, err
	}
	return &Synchronizer{
		cfg:     cfg,
		source:  source,
		clock:   clock,
		scanner: scanner,
	}, nil
}

// sleepJitter 在扫描前随机等待一段时间。
// 如果这次刚好擦肩错过分钟标记，下次重试不能再从同一相位开始扫，
// 否则会一直以同样的方式错过。
func (s *Synchronizer) sleepJitter() {
	min, max := s.cfg.Sync.JitterMinMs, s.cfg.Sync.JitterMaxMs
	if max <= min {
		if min > 0 {
			s.clock.Sleep(time.Duration(min) * time.Millisecond)
		}
		return
	}
	d := time.Duration(min+rand.Intn(max-min)) * time.Millisecond
	log.Printf("[MSF] 扫描前随机等待 %v，避免每次都在同一相位同步", d)
	s.clock.Sleep(d)
}

// Synchronize 阻塞扫描一个完整的预算窗口，返回分钟边界的最佳估计时刻。
// 本函数没有失败路径：即使整个窗口里根本没有出现分钟标记 (严重噪声)，
// 也会返回一个峰值时刻，它的正确性只能由下游的校验和来检验。
func (s *Synchronizer) Synchronize() time.Time {
	s.sleepJitter()

	s.scanner.Reset()

	interval := time.Duration(s.cfg.Sync.SampleRateMs) * time.Millisecond
	budget := time.Duration(s.cfg.Sync.ScanWindowMs) * time.Millisecond
	warmup := time.Duration(s.cfg.Sync.WarmupMs) * time.Millisecond

	log.Printf("[MSF] 开始同步，扫描 %v 寻找分钟标记...", budget)

	start := s.clock.Now()
	bestScore := 0
	bestAt := start

	for {
		now := s.clock.Now()
		elapsed := now.Sub(start)
		if elapsed >= budget {
			break
		}

		score := s.scanner.Push(s.source.CarrierPresent())
		if elapsed >= warmup && score > bestScore {
			bestScore = score
			bestAt = now
		}

		s.clock.Sleep(interval)
	}

	log.Printf("[MSF] 扫描结束，峰值分数 %d / %d", bestScore, s.scanner.MaxScore())

	// 静默窗口在 载波->静默 跳变之后 MarkerOffsetMs 结束，
	// 而那个跳变本身才是分钟的起点，所以峰值时刻要往回退
	return bestAt.Add(-time.Duration(s.cfg.Sync.MarkerOffsetMs) * time.Millisecond)
}
