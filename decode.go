package msf

import "fmt"

// 各日历字段的 BCD 权重表。
// MSF 码流里每个字段占据 A 段中一段连续的比特，置位比特按位置权重求和
// 即可还原整数，例如年份的 8 位覆盖 00-99 两个十进制位。
// 进程级只读常量表，程序生命周期内不变。
var (
	yearWeights   = []int{80, 40, 20, 10, 8, 4, 2, 1} // A 段 17-24 位
	monthWeights  = []int{10, 8, 4, 2, 1}             // A 段 25-29 位
	dayWeights    = []int{20, 10, 8, 4, 2, 1}         // A 段 30-35 位
	dowWeights    = []int{4, 2, 1}                    // A 段 36-38 位
	hourWeights   = []int{20, 10, 8, 4, 2, 1}         // A 段 39-44 位
	minuteWeights = []int{40, 20, 10, 8, 4, 2, 1}     // A 段 45-51 位
)

// TimeFrame 是一次解码尝试的产物，构造后不再修改
type TimeFrame struct {
	Year      int // 绝对年份 (码流传 00-99，约定加 2000)
	Month     int // 1-12
	Day       int // 1-31
	Hour      int // 0-23
	Minute    int // 0-59
	Second    int // 恒为 0：采集窗口本身就定义在分钟边界起点
	DayOfWeek int // 码流值 + 1，1=周日 ... 7=周六
	// ChecksumPassed 四项奇校验和日历合法性检查全部通过才为 true
	ChecksumPassed bool
}

var weekdayNames = [...]string{"", "Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// String 输出人类可读的时间，例如 "2024-06-15 12:34:00 Sat [OK]"
func (t TimeFrame) String() string {
	name := "?"
	if t.DayOfWeek >= 1 && t.DayOfWeek < len(weekdayNames) {
		name = weekdayNames[t.DayOfWeek]
	}
	status := "FAIL"
	if t.ChecksumPassed {
		status = "OK"
	}
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d %s [%s]",
		t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second, name, status)
}

// decodeBCD 从 A 段 start 位开始按权重表求和。
// 越界索引 (>= 60) 直接跳过，不算错误。
func decodeBCD(fieldA *BitField, start int, weights []int) int {
	val := 0
	for i, w := range weights {
		if start+i >= fieldA.Size() {
			break
		}
		if fieldA.Get(start + i) {
			val += w
		}
	}
	return val
}

// checkOddParity 统计 A 段 [start, start+count) 范围加上 B 段指定校验位
// 的置位总数，总数为奇数则校验通过
func checkOddParity(fieldA, fieldB *BitField, start, count, parityBit int) bool {
	ones := 0
	for i := 0; i < count; i++ {
		if fieldA.Get(start + i) {
			ones++
		}
	}
	if fieldB.Get(parityBit) {
		ones++
	}
	return ones%2 != 0
}

// DecodeFrame 从两个 60 位数据段解码日历字段并做完整性校验。
// 没有错误路径：任何失败 (奇偶不符、字段越界) 都只体现在
// ChecksumPassed 标志上，由重试驱动统一处理。
func DecodeFrame(fieldA, fieldB *BitField) TimeFrame {
	frame := TimeFrame{
		Year:      2000 + decodeBCD(fieldA, 17, yearWeights),
		Month:     decodeBCD(fieldA, 25, monthWeights),
		Day:       decodeBCD(fieldA, 30, dayWeights),
		DayOfWeek: decodeBCD(fieldA, 36, dowWeights) + 1,
		Hour:      decodeBCD(fieldA, 39, hourWeights),
		Minute:    decodeBCD(fieldA, 45, minuteWeights),
	}

	// 四项独立奇校验，各覆盖一段 A 位加一个 B 段校验位
	parityYear := checkOddParity(fieldA, fieldB, 17, 8, 54)  // 年份
	parityDate := checkOddParity(fieldA, fieldB, 25, 11, 55) // 月/日
	parityDOW := checkOddParity(fieldA, fieldB, 36, 3, 56)   // 星期
	parityTime := checkOddParity(fieldA, fieldB, 39, 13, 57) // 时/分

	// 日历合法性检查只做范围判断，不做闰年/大小月交叉验证
	sane := frame.Month >= 1 && frame.Month <= 12 &&
		frame.Day >= 1 && frame.Day <= 31 &&
		frame.Hour >= 0 && frame.Hour <= 23 &&
		frame.Minute >= 0 && frame.Minute <= 59

	frame.ChecksumPassed = parityYear && parityDate && parityDOW && parityTime && sane

	return frame
}
