package main

import (
	"flag"
	"fmt"
	"log"

	"msf"
)

func main() {
	// 1. 解析命令行参数
	device := flag.String("device", "", "Audio capture device name (substring match)")
	tone := flag.Float64("tone", 0, "Carrier tone frequency in Hz (0 = auto calibrate)")
	serialPort := flag.String("serial", "", "Read pin states from a serial demodulator instead of audio")
	baud := flag.Int("baud", 115200, "Serial baud rate")
	replayFile := flag.String("file", "", "Input wav file for replay decoding")
	recordAudio := flag.Bool("record", false, "Record audio to capture.wav")
	rate := flag.Int("rate", 10, "Carrier sampling interval in milliseconds")
	verbose := flag.Bool("v", false, "Print per-second bit diagnostics")
	flag.Parse()

	// 2. 组装配置
	cfg := msf.DefaultConfig()
	cfg.Sync.SampleRateMs = *rate
	cfg.Audio.DeviceName = *device
	cfg.Audio.TargetFreq = *tone

	// 3. 初始化系统
	system := msf.NewReceiverSystem(cfg)
	if *serialPort != "" {
		system.UseSerial(*serialPort, *baud)
	}
	if *replayFile != "" {
		system.SetReplayFile(*replayFile)
	}
	if *recordAudio {
		system.EnableRecording("capture.wav")
	}
	if *verbose {
		system.OnSecond = msf.DiagnosticPrinter()
	}
	system.OnAttempt = func(frame msf.TimeFrame) {
		if !frame.ChecksumPassed {
			fmt.Printf("Attempt failed: %v\n", frame)
		}
	}

	// 4. 启动并阻塞取时
	if err := system.Start(); err != nil {
		log.Fatalf("System start failed: %v", err)
	}
	defer system.Stop()

	frame := system.Run()
	fmt.Printf("\nDecoded time: %v\n", frame)
}
