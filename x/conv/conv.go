// Package conv formats integers into caller-owned buffers so hot paths such as
// the header strip and storage diagnostics avoid fmt and strconv on the MCU.
package conv

// Utoa writes n in base 10 at the tail of buf and returns that tail.
// A 20-byte buffer fits any uint64; shorter buffers keep the low digits.
func Utoa(buf []byte, n uint64) []byte {
	i := len(buf)
	if i == 0 {
		return buf
	}
	for {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
		if n == 0 || i == 0 {
			return buf[i:]
		}
	}
}

// Itoa is Utoa with a leading minus for negative n.
func Itoa(buf []byte, n int64) []byte {
	if n >= 0 {
		return Utoa(buf, uint64(n))
	}
	if len(buf) < 2 {
		return buf[:0]
	}
	d := Utoa(buf[1:], uint64(-n))
	i := len(buf) - len(d) - 1
	buf[i] = '-'
	return buf[i:]
}

// U32Hex writes n as eight upper-case hex digits. buf must hold eight bytes.
func U32Hex(buf []byte, n uint32) []byte {
	if len(buf) < 8 {
		return buf[:0]
	}
	const digits = "0123456789ABCDEF"
	out := buf[len(buf)-8:]
	for i := 7; i >= 0; i-- {
		out[i] = digits[n&0xF]
		n >>= 4
	}
	return out
}
