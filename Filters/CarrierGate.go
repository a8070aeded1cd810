package Filters

// CarrierGate 把音调能量序列转换为载波有/无的布尔状态。
// 内部做双路包络追踪生成动态迟滞阈值，可以抵抗信号衰落，
// 动态范围塌缩时自动静噪，强制输出无载波。
type CarrierGate struct {
	// 包络追踪状态
	maxLevel float64 // 追踪信号顶部 (Fast Attack, Slow Decay)
	minLevel float64 // 追踪底噪基准 (Fast Attack Down, Slow Recovery Up)

	// 配置参数
	decayRate float64 // 衰减系数 (0.0 ~ 1.0)，控制 max 下降和 min 上升的速度
	minRange  float64 // 最小动态范围，小于此值视为静噪开启

	state bool // 当前施密特输出
}

// NewCarrierGate 创建门限器
// decayRate: 按块节拍衰减，块率 ~200Hz 时推荐 0.995
// minRange: 静噪下限，视探测器输出幅度量级而定
func NewCarrierGate(decayRate, minRange float64) *CarrierGate {
	return &CarrierGate{
		decayRate: decayRate,
		minRange:  minRange,
	}
}

// Feed 输入一个能量样本，返回更新后的载波状态。
func (g *CarrierGate) Feed(magnitude float64) bool {
	// 峰值追踪：样本高于峰值立即跟上 (捕捉上升沿)，否则按系数缓慢衰减
	if magnitude > g.maxLevel {
		g.maxLevel = magnitude
	} else {
		g.maxLevel *= g.decayRate
	}

	// 底噪追踪：样本低于基准立即压下去，否则缓慢向峰值漂浮
	if magnitude < g.minLevel {
		g.minLevel = magnitude
	} else {
		g.minLevel += (g.maxLevel - g.minLevel) * (1.0 - g.decayRate)
	}

	// 防止浮点漂移导致的异常交叉
	if g.minLevel > g.maxLevel {
		g.minLevel = g.maxLevel
	}

	// 静噪：动态范围太小说明没有有效信号，全是底噪
	dynRange := g.maxLevel - g.minLevel
	if dynRange < g.minRange {
		g.state = false
		return g.state
	}

	// 迟滞阈值：中点上下各留动态范围 5% 的缓冲区
	center := g.minLevel + dynRange*0.5
	hysteresis := dynRange * 0.05

	if g.state {
		if magnitude < center-hysteresis {
			g.state = false
		}
	} else {
		if magnitude > center+hysteresis {
			g.state = true
		}
	}

	return g.state
}

// State 返回当前载波状态 (不更新追踪器)
func (g *CarrierGate) State() bool {
	return g.state
}
