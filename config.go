package msf

// Config 结构体用于集中管理接收机的所有可调参数和阈值
type Config struct {
	// --- 分钟标记同步 (Synchronizer) ---
	// 负责在连续采样流中定位 700ms 载波 + 500ms 静默的分钟标记
	Sync struct {
		SampleRateMs    int // 采样间隔 (毫秒)。决定环形缓冲区容量和窗口宽度，必须能整除下面的各窗口时长
		RingWindowMs    int // 环形缓冲区覆盖的时间跨度 (例如 1500ms)，需大于等于载波+静默窗口之和
		MarkerCarrierMs int // 分钟标记的载波段时长 (MSF 规范: 700ms)
		MarkerSilenceMs int // 分钟标记的静默段时长 (MSF 规范: 500ms)
		MarkerOffsetMs  int // 峰值时刻回退量 (毫秒)。静默窗口在分钟边界后 500ms 结束，所以峰值时刻减去 500ms 才是边界
		ScanWindowMs    int // 扫描预算 (例如 65000ms)，保证至少覆盖一个完整的分钟标记
		JitterMinMs     int // 扫描前随机等待下限 (毫秒)，避免每次失败后都在同一相位重新采样
		JitterMaxMs     int // 扫描前随机等待上限 (毫秒)
		WarmupMs        int // 启动抑制时长 (毫秒)。在此时间内不记录峰值候选，0 表示关闭
	}

	// --- 比特采集 (Acquirer) ---
	// 负责在每一秒内的两个固定窗口采样并投票出 A / B 两个比特
	Acquire struct {
		BitAStartMs      int // Bit A 窗口起点 (秒内毫秒偏移，MSF 规范: 135)
		BitAEndMs        int // Bit A 窗口终点 (含，165)
		BitBStartMs      int // Bit B 窗口起点 (235)
		BitBEndMs        int // Bit B 窗口终点 (含，265)
		VotePercent      int // 投票阈值 (百分比)。窗口内高电平采样比例严格大于此值才判为 1，取 60 而不是 50 以拒绝边缘样本
		NoisyLowPercent  int // 噪声诊断下限。比例落在 (low, high) 开区间视为可疑采样，仅用于诊断输出
		NoisyHighPercent int // 噪声诊断上限
	}

	// --- 音频探头 (AudioProbe) ---
	// 负责把接收模块输出的音频音调转换为载波有/无的布尔状态
	Audio struct {
		SampleRate   int     // 音频采样率 (Hz)
		DeviceName   string  // 采集设备名称的子串匹配，空表示默认设备
		TargetFreq   float64 // 载波音调频率 (Hz)。0 表示启动时用 FFT 自动校准
		FFTSize      int     // 校准用 FFT 点数 (例如 4096)，决定频率分辨率
		MinFreq      float64 // 校准搜索下限 (Hz)，屏蔽低频底噪
		MaxFreq      float64 // 校准搜索上限 (Hz)
		MinMagnitude float64 // 校准锁定所需的最小归一化幅度，低于此视为噪声继续等待
		BlockSize    int     // Goertzel 能量检测的块大小 (采样点数)。块时长应明显小于采样间隔
		GateDecay    float64 // 载波门限追踪的衰减系数 (按块计算，例如 0.995)
		GateSquelch  float64 // 静噪动态范围下限。包络动态范围小于此值时强制输出无载波
	}

	// --- 串口探头 (SerialProbe) ---
	// 解调模块通过 USB 串口持续上报引脚状态 ('1'/'0' 字节流)
	Serial struct {
		Port string // 串口设备路径
		Baud int    // 波特率
	}
}

// DefaultConfig 返回一个符合 MSF 规范时序的默认配置
func DefaultConfig() *Config {
	cfg := &Config{}

	// --- 分钟标记同步 ---
	cfg.Sync.SampleRateMs = 10
	cfg.Sync.RingWindowMs = 1500
	cfg.Sync.MarkerCarrierMs = 700
	cfg.Sync.MarkerSilenceMs = 500
	cfg.Sync.MarkerOffsetMs = 500
	cfg.Sync.ScanWindowMs = 65000
	cfg.Sync.JitterMinMs = 1000
	cfg.Sync.JitterMaxMs = 5000
	cfg.Sync.WarmupMs = 0 // 缓冲区预填载波后早期分数不会虚高，默认关闭

	// --- 比特采集 ---
	cfg.Acquire.BitAStartMs = 135
	cfg.Acquire.BitAEndMs = 165
	cfg.Acquire.BitBStartMs = 235
	cfg.Acquire.BitBEndMs = 265
	cfg.Acquire.VotePercent = 60
	cfg.Acquire.NoisyLowPercent = 10
	cfg.Acquire.NoisyHighPercent = 90

	// --- 音频探头 ---
	cfg.Audio.SampleRate = 48000
	cfg.Audio.DeviceName = ""
	cfg.Audio.TargetFreq = 0 // 默认自动校准
	cfg.Audio.FFTSize = 4096
	cfg.Audio.MinFreq = 500.0
	cfg.Audio.MaxFreq = 2000.0
	cfg.Audio.MinMagnitude = 0.01
	cfg.Audio.BlockSize = 256
	cfg.Audio.GateDecay = 0.995
	cfg.Audio.GateSquelch = 0.05

	// --- 串口探头 ---
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Serial.Baud = 115200

	return cfg
}
