package storage

import (
	"encoding/binary"
	"hash/crc32"

	"badgecode-go/errcode"
	"badgecode-go/types"
	"badgecode-go/x/conv"
)

// Record layout (little-endian):
//
//	0  magic "BDG1"
//	4  version
//	5  image index
//	6  wifi seen (u16)
//	8  flags (bit0 weather valid)
//	9  weather deci-°C (i16)
//	11 weather code
//	12 weather fetched-at unix seconds (i64)
//	20 CRC-32 (IEEE) over bytes 0..19
const (
	recordVersion = 1
	RecordSize    = 24
	// BufferSize is the scratch buffer used for encode/decode.
	BufferSize = 128

	flagWeather = 1 << 0
)

var magic = [4]byte{'B', 'D', 'G', '1'}

// Encode writes p into buf and returns the used prefix.
func Encode(p types.PersistedState, buf []byte) ([]byte, error) {
	if len(buf) < RecordSize {
		return nil, errcode.New(errcode.BufferTooSmall, "storage.encode", "need 24 bytes")
	}
	b := buf[:RecordSize]
	copy(b[0:4], magic[:])
	b[4] = recordVersion
	b[5] = p.ImageIndex
	binary.LittleEndian.PutUint16(b[6:8], p.WifiSeen)
	b[8] = 0
	if p.WeatherValid {
		b[8] |= flagWeather
	}
	binary.LittleEndian.PutUint16(b[9:11], uint16(p.Weather.DeciC))
	b[11] = p.Weather.Code
	binary.LittleEndian.PutUint64(b[12:20], uint64(p.Weather.FetchedAt))
	binary.LittleEndian.PutUint32(b[20:24], crc32.ChecksumIEEE(b[:20]))
	return b, nil
}

// Decode parses a record. Erased flash (all 0xFF), a foreign magic, a version
// mismatch or a bad checksum all report errcode.NotFound.
func Decode(b []byte) (types.PersistedState, error) {
	var p types.PersistedState
	if len(b) < RecordSize {
		return p, errcode.New(errcode.NotFound, "storage.decode", "short record")
	}
	if [4]byte(b[0:4]) != magic || b[4] != recordVersion {
		return p, errcode.New(errcode.NotFound, "storage.decode", "no record")
	}
	if sum := binary.LittleEndian.Uint32(b[20:24]); sum != crc32.ChecksumIEEE(b[:20]) {
		var hex [8]byte
		return p, errcode.New(errcode.NotFound, "storage.decode", "checksum mismatch "+string(conv.U32Hex(hex[:], sum)))
	}
	p.ImageIndex = b[5]
	p.WifiSeen = binary.LittleEndian.Uint16(b[6:8])
	p.WeatherValid = b[8]&flagWeather != 0
	p.Weather.DeciC = int16(binary.LittleEndian.Uint16(b[9:11]))
	p.Weather.Code = b[11]
	p.Weather.FetchedAt = int64(binary.LittleEndian.Uint64(b[12:20]))
	return p, nil
}
