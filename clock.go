package msf

import "time"

// Clock 定义接收机用到的时钟操作接口，方便测试 Mock。
// 同步和采集都是长时间阻塞的墙钟循环，真跑一次要两分多钟，
// 测试里用虚拟时钟让 Sleep 直接推进时间。
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// systemClock 直接转发给 time 包
type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock 返回真实墙钟
func SystemClock() Clock {
	return systemClock{}
}
