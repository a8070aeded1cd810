package msf

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/tarm/serial"
)

// SerialPort 定义串口操作接口，方便测试 Mock
type SerialPort interface {
	Read(p []byte) (int, error)
	Close() error
}

// SerialProbe 对接把载波引脚状态转发到 USB 串口的解调模块。
// 模块固件以固定节拍持续输出 '1' (载波) / '0' (静默) 字节流，
// 后台协程持续读取并保留最新状态，CarrierPresent 即时返回。
// 这里只消费状态流，极性归一化 (true=载波) 由固件侧约定。
type SerialProbe struct {
	Port string
	Baud int

	conn  SerialPort
	state atomic.Bool
}

// NewSerialProbe 创建串口探头
func NewSerialProbe(port string, baud int) *SerialProbe {
	return &SerialProbe{Port: port, Baud: baud}
}

// Open 打开串口并启动后台读取
func (p *SerialProbe) Open() error {
	config := &serial.Config{
		Name:        p.Port,
		Baud:        p.Baud,
		ReadTimeout: time.Millisecond * 500,
	}
	s, err := serial.OpenPort(config)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %v", p.Port, err)
	}
	p.conn = s
	go p.run()
	return nil
}

// run 持续读取字节流直到端口出错或关闭。
// 一次 Read 可能带回多个状态字节，只有最后一个有效字节代表当前状态。
func (p *SerialProbe) run() {
	buf := make([]byte, 256)
	for {
		n, err := p.conn.Read(buf)
		if n > 0 {
			p.consume(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// consume 解析一段状态字节，未知字节 (换行、调试输出) 直接忽略
func (p *SerialProbe) consume(data []byte) {
	for _, b := range data {
		switch b {
		case '1':
			p.state.Store(true)
		case '0':
			p.state.Store(false)
		}
	}
}

// CarrierPresent 实现 CarrierSource，返回最近上报的载波状态
func (p *SerialProbe) CarrierPresent() bool {
	return p.state.Load()
}

// Close 关闭串口，后台读取随之退出
func (p *SerialProbe) Close() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
