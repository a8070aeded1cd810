package msf

import "testing"

// BCD 往返：字段位宽内所有可表示的值，编码再解码必须还原
func TestDecodeBCD_RoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		start   int
		weights []int
		max     int
	}{
		{"year", 17, yearWeights, 99},
		{"month", 25, monthWeights, 19},
		{"day", 30, dayWeights, 39},
		{"dow", 36, dowWeights, 7},
		{"hour", 39, hourWeights, 39},
		{"minute", 45, minuteWeights, 79},
	}
	for _, tc := range cases {
		for v := 0; v <= tc.max; v++ {
			f := NewBitField(60)
			encodeBCD(f, tc.start, tc.weights, v)
			if got := decodeBCD(f, tc.start, tc.weights); got != v {
				t.Fatalf("%s: round trip %d -> %d", tc.name, v, got)
			}
		}
	}
}

// 越界权重位 (>= 60) 直接跳过，不计入求和
func TestDecodeBCD_SkipsOutOfRangeBits(t *testing.T) {
	f := NewBitField(60)
	for i := 55; i < 60; i++ {
		f.Set(i, true)
	}
	// 8 位权重表从 55 开始只有前 5 位落在界内: 80+40+20+10+8
	if got := decodeBCD(f, 55, yearWeights); got != 158 {
		t.Fatalf("decodeBCD near boundary = %d, want 158", got)
	}
}

// 奇校验：范围内翻转任意一位必须翻转校验结果，再翻一位恢复
func TestCheckOddParity_BitFlips(t *testing.T) {
	fieldA, fieldB := encodeFrame(2024, 6, 15, 6, 12, 34)

	checks := []struct {
		name      string
		start     int
		count     int
		parityBit int
	}{
		{"year", 17, 8, 54},
		{"date", 25, 11, 55},
		{"dow", 36, 3, 56},
		{"time", 39, 13, 57},
	}

	for _, c := range checks {
		if !checkOddParity(fieldA, fieldB, c.start, c.count, c.parityBit) {
			t.Fatalf("%s parity should pass on a clean frame", c.name)
		}
		for i := 0; i < c.count; i++ {
			idx := c.start + i
			fieldA.Set(idx, !fieldA.Get(idx))
			if checkOddParity(fieldA, fieldB, c.start, c.count, c.parityBit) {
				t.Fatalf("%s parity should fail after flipping bit %d", c.name, idx)
			}
			// 同范围再翻一位，结果恢复
			other := c.start + (i+1)%c.count
			fieldA.Set(other, !fieldA.Get(other))
			if !checkOddParity(fieldA, fieldB, c.start, c.count, c.parityBit) {
				t.Fatalf("%s parity should recover after a second flip", c.name)
			}
			// 还原
			fieldA.Set(idx, !fieldA.Get(idx))
			fieldA.Set(other, !fieldA.Get(other))
		}
		// 校验位本身翻转也必须被发现
		fieldB.Set(c.parityBit, !fieldB.Get(c.parityBit))
		if checkOddParity(fieldA, fieldB, c.start, c.count, c.parityBit) {
			t.Fatalf("%s parity should fail after flipping the parity bit", c.name)
		}
		fieldB.Set(c.parityBit, !fieldB.Get(c.parityBit))
	}
}

func TestDecodeFrame_ValidFrame(t *testing.T) {
	// 2024-06-15 是周六，码流星期值 6
	fieldA, fieldB := encodeFrame(2024, 6, 15, 6, 12, 34)
	frame := DecodeFrame(fieldA, fieldB)

	want := TimeFrame{
		Year: 2024, Month: 6, Day: 15,
		Hour: 12, Minute: 34, Second: 0,
		DayOfWeek:      7, // 码流值 + 1
		ChecksumPassed: true,
	}
	if frame != want {
		t.Fatalf("DecodeFrame = %+v, want %+v", frame, want)
	}
}

func TestDecodeFrame_RejectsCorruptedParity(t *testing.T) {
	fieldA, fieldB := encodeFrame(2024, 6, 15, 6, 12, 34)
	fieldB.Set(54, !fieldB.Get(54))
	frame := DecodeFrame(fieldA, fieldB)
	if frame.ChecksumPassed {
		t.Fatal("frame with corrupted year parity must not pass")
	}
	// 字段本身仍按位解码，只是标记为不可信
	if frame.Year != 2024 {
		t.Errorf("Year = %d, want 2024", frame.Year)
	}
}

// 奇偶校验全对但日历字段越界，同样折算进 ChecksumPassed
func TestDecodeFrame_RejectsOutOfRangeCalendar(t *testing.T) {
	fieldA, fieldB := encodeFrame(2024, 13, 15, 6, 12, 34)
	frame := DecodeFrame(fieldA, fieldB)
	if frame.Month != 13 {
		t.Fatalf("Month = %d, want raw 13", frame.Month)
	}
	if frame.ChecksumPassed {
		t.Fatal("month 13 must fail the sanity check")
	}
}

func TestTimeFrameString(t *testing.T) {
	frame := TimeFrame{Year: 2024, Month: 6, Day: 15, Hour: 12, Minute: 34,
		DayOfWeek: 7, ChecksumPassed: true}
	if got := frame.String(); got != "2024-06-15 12:34:00 Sat [OK]" {
		t.Fatalf("String() = %q", got)
	}
}
