package msf

// BitField 固定容量的位压缩数组。
// bool 类型每个值占一整个字节，这里把 8 个布尔采样压进一个字节，
// 环形缓冲区和 60 位的 A/B 数据段都用它做底层存储。
// 注意：容量在创建后固定，越界索引由调用方保证不会发生。
type BitField struct {
	data []byte
	size int
}

// NewBitField 创建一个容量为 size 位的压缩数组，初始全为 0
func NewBitField(size int) *BitField {
	return &BitField{
		data: make([]byte, (size+7)/8),
		size: size,
	}
}

// Size 返回位容量
func (f *BitField) Size() int {
	return f.size
}

// Set 写入第 index 位 (0-based)
func (f *BitField) Set(index int, value bool) {
	if value {
		f.data[index/8] |= 1 << (index % 8)
	} else {
		f.data[index/8] &^= 1 << (index % 8)
	}
}

// Get 读取第 index 位 (0-based)
func (f *BitField) Get(index int) bool {
	return (f.data[index/8]>>(index%8))&1 == 1
}

// Fill 把所有位设为同一个值，用于每次同步尝试前的整体复位
func (f *BitField) Fill(value bool) {
	b := byte(0x00)
	if value {
		b = 0xFF
	}
	for i := range f.data {
		f.data[i] = b
	}
}
