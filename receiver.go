package msf

import (
	"fmt"
	"log"
)

// CarrierSource 是接收机唯一的输入边界：一个无参数的载波探测能力。
// true 表示载波存在，false 表示静默，极性由实现方归一化。
// 核心从不直接碰硬件，测试时注入模拟信号源即可替换。
type CarrierSource interface {
	CarrierPresent() bool
}

// CarrierFunc 让普通闭包也能充当 CarrierSource
type CarrierFunc func() bool

// CarrierPresent 实现 CarrierSource
func (f CarrierFunc) CarrierPresent() bool {
	return f()
}

// Receiver 把 同步 -> 采集 -> 解码 串成一次完整的取时操作。
// 整个流水线单线程顺序阻塞执行，没有内部并发，
// 唯一的可变状态都是尝试级的，每次尝试开始前整体复位。
type Receiver struct {
	cfg   *Config
	clock Clock
	sync  *Synchronizer
	acq   *Acquirer

	// OnSecond 采集阶段每秒结束时回调，可为 nil
	OnSecond func(SecondReport)
	// OnAttempt 每次完整尝试结束时回调 (无论校验是否通过)，可为 nil
	OnAttempt func(TimeFrame)
}

// NewReceiver 创建接收机，cfg 为 nil 时使用默认配置
func NewReceiver(source CarrierSource, cfg *Config) (*Receiver, error) {
	return newReceiver(source, cfg, SystemClock())
}

// newReceiver 允许注入时钟，测试用
func newReceiver(source CarrierSource, cfg *Config, clock Clock) (*Receiver, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := validateAcquireWindows(cfg); err != nil {
		return nil, err
	}

	sync, err := NewSynchronizer(cfg, source, clock)
	if err != nil {
		return nil, err
	}

	return &Receiver{
		cfg:   cfg,
		clock: clock,
		sync:  sync,
		acq:   NewAcquirer(cfg, source, clock),
	}, nil
}

// validateAcquireWindows 保证两个比特窗口合法且互不相交
func validateAcquireWindows(cfg *Config) error {
	a := cfg.Acquire
	if a.BitAStartMs > a.BitAEndMs || a.BitBStartMs > a.BitBEndMs {
		return fmt.Errorf("bit window bounds reversed: A %d-%d, B %d-%d",
			a.BitAStartMs, a.BitAEndMs, a.BitBStartMs, a.BitBEndMs)
	}
	if a.BitAEndMs >= a.BitBStartMs {
		return fmt.Errorf("bit windows must not overlap: A ends %dms, B starts %dms",
			a.BitAEndMs, a.BitBStartMs)
	}
	if a.BitBEndMs >= 1000 {
		return fmt.Errorf("bit B window %dms runs past the second boundary", a.BitBEndMs)
	}
	if a.VotePercent < 0 || a.VotePercent > 100 {
		return fmt.Errorf("vote threshold %d%% out of range", a.VotePercent)
	}
	return nil
}

// ReadTime 执行一次完整的取时尝试并返回解码结果。
// 阻塞约两分多钟 (同步扫描 65 秒 + 对齐等待 + 采集 60 秒)。
// 结果是否可信看 ChecksumPassed，同步猜错分钟边界不会被直接发现，
// 只会在这里表现为校验失败。
func (r *Receiver) ReadTime() TimeFrame {
	marker := r.sync.Synchronize()

	r.acq.OnSecond = r.OnSecond
	fieldA, fieldB := r.acq.AcquireMinute(marker)

	frame := DecodeFrame(fieldA, fieldB)
	if r.OnAttempt != nil {
		r.OnAttempt(frame)
	}
	return frame
}

// ReadTimeWithRetry 反复执行完整流水线直到校验通过，无限阻塞。
// 不设重试上限是刻意的设计：瞬时噪声和罕见的闰秒异常分钟
// 在下一分钟都会自行消失，有效信号终会出现。
// 除了同步阶段自带的随机抖动外没有额外退避。
func (r *Receiver) ReadTimeWithRetry() TimeFrame {
	for {
		log.Printf("[MSF] 开始尝试获取授时信号...")
		frame := r.ReadTime()

		if frame.ChecksumPassed {
			log.Printf("[MSF] 成功：%v", frame)
			return frame
		}
		log.Printf("[MSF] 校验失败 (%v)，整分钟数据丢弃，重试...", frame)
	}
}
