package msf

import (
	"fmt"
	"os"
	"time"
)

// ReceiverSystem 管理整个 MSF 授时接收系统的生命周期：
// 选择信号来源 (声卡 / WAV 回放 / 串口模块)，组装探头链，
// 创建接收机并转发回调。
type ReceiverSystem struct {
	// 配置
	cfg *Config

	// 组件
	audioCapture *AudioCapture
	audioProbe   *AudioProbe
	serialProbe  *SerialProbe
	wavReader    *WavReader
	wavWriter    *WavWriter
	receiver     *Receiver

	// 模式
	replayFile string
	recordFile string
	useSerial  bool

	// 回调
	OnSecond  func(SecondReport) // 采集阶段每秒诊断
	OnAttempt func(TimeFrame)    // 每次完整尝试的结果
}

// NewReceiverSystem 创建系统实例，cfg 为 nil 时使用默认配置
func NewReceiverSystem(cfg *Config) *ReceiverSystem {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &ReceiverSystem{cfg: cfg}
}

// EnableRecording 开启录音 (仅音频模式有效)
func (s *ReceiverSystem) EnableRecording(filename string) {
	s.recordFile = filename
}

// SetReplayFile 设置回放文件 (设置后进入回放模式)
func (s *ReceiverSystem) SetReplayFile(filename string) {
	s.replayFile = filename
}

// UseSerial 切换到串口探头模式
func (s *ReceiverSystem) UseSerial(port string, baud int) {
	s.useSerial = true
	s.cfg.Serial.Port = port
	s.cfg.Serial.Baud = baud
}

// Start 组装信号链并启动信号来源。
// 返回后探头开始持续更新载波状态，解码由之后的 Run 驱动。
func (s *ReceiverSystem) Start() error {
	var source CarrierSource

	switch {
	case s.useSerial:
		// 串口模式：解调模块直接上报引脚状态
		s.serialProbe = NewSerialProbe(s.cfg.Serial.Port, s.cfg.Serial.Baud)
		fmt.Printf("Connecting to demodulator on %s...\n", s.cfg.Serial.Port)
		if err := s.serialProbe.Open(); err != nil {
			return err
		}
		fmt.Println("Serial probe ready.")
		source = s.serialProbe

	case s.replayFile != "":
		// 回放模式：从文件读取采样率，按实时速度喂给音频探头
		var err error
		s.wavReader, err = NewWavReader(s.replayFile)
		if err != nil {
			return fmt.Errorf("failed to open replay file: %v", err)
		}
		s.cfg.Audio.SampleRate = s.wavReader.SampleRate
		fmt.Printf("Mode: REPLAY (%s, %dHz)\n", s.replayFile, s.wavReader.SampleRate)

		s.audioProbe = NewAudioProbe(s.cfg)
		source = s.audioProbe
		go s.runReplayLoop()

	default:
		// 实时模式：声卡采集
		s.audioProbe = NewAudioProbe(s.cfg)
		if s.recordFile != "" {
			var err error
			s.wavWriter, err = NewWavWriter(s.recordFile, s.cfg.Audio.SampleRate)
			if err != nil {
				return fmt.Errorf("failed to create wav file: %v", err)
			}
			s.audioProbe.SetRecorder(s.wavWriter)
			fmt.Printf("Recording audio to %s\n", s.recordFile)
		}

		var err error
		s.audioCapture, err = NewAudioCapture(s.cfg.Audio.SampleRate, s.cfg.Audio.DeviceName,
			s.audioProbe.ProcessSamples)
		if err != nil {
			return fmt.Errorf("failed to init audio capture: %v", err)
		}
		if err := s.audioCapture.Start(); err != nil {
			return err
		}
		source = s.audioProbe
	}

	receiver, err := NewReceiver(source, s.cfg)
	if err != nil {
		return err
	}
	receiver.OnSecond = s.OnSecond
	receiver.OnAttempt = s.OnAttempt
	s.receiver = receiver
	return nil
}

// Run 阻塞执行取时流水线直到拿到校验通过的时间帧。
// 必须在 Start 成功之后调用。
func (s *ReceiverSystem) Run() TimeFrame {
	return s.receiver.ReadTimeWithRetry()
}

// Stop 停止系统并释放资源
func (s *ReceiverSystem) Stop() {
	if s.audioCapture != nil {
		s.audioCapture.Stop()
	}
	if s.wavWriter != nil {
		fmt.Println("\nSaving recording...")
		_ = s.wavWriter.Close()
		fmt.Println("Recording saved.")
	}
	if s.wavReader != nil {
		_ = s.wavReader.Close()
	}
	if s.serialProbe != nil {
		_ = s.serialProbe.Close()
	}
}

// runReplayLoop 按实时速度回放 WAV 文件。
// 回放必须保持实时节奏，因为同步和采集都是按墙钟采样的。
func (s *ReceiverSystem) runReplayLoop() {
	chunkSize := 1024
	interval := time.Second * time.Duration(chunkSize) / time.Duration(s.cfg.Audio.SampleRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fmt.Println("Replay started...")
	for range ticker.C {
		samples, err := s.wavReader.ReadSamples(chunkSize)
		if err != nil {
			fmt.Println("\nEnd of replay file.")
			os.Exit(0) // 回放结束后解码不可能再推进，直接退出程序
		}
		s.audioProbe.ProcessSamples(samples)
	}
}

// DiagnosticPrinter 返回一个按原始调试日志风格打印每秒结果的回调，
// 可直接赋给 OnSecond。回调在秒边界执行，不会扰动采样窗口。
func DiagnosticPrinter() func(SecondReport) {
	header := false
	return func(r SecondReport) {
		if !header {
			fmt.Println("[MSF] ------------------------------------------------")
			fmt.Println("[MSF] SEC |   BIT A (135-165ms)   |   BIT B (235-265ms)")
			fmt.Println("[MSF] ------------------------------------------------")
			header = true
		}
		note := ""
		if r.Noisy {
			note = " <--- NOISY"
		}
		fmt.Printf("[MSF] Sec %02d | A:%s [%d%%] | B:%s [%d%%]%s\n",
			r.Second, boolBit(r.BitA), r.PercentA, boolBit(r.BitB), r.PercentB, note)
		if r.Second == 59 {
			header = false
		}
	}
}

func boolBit(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
