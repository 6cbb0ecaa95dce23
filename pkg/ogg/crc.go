package ogg

// Ogg uses CRC-32 with polynomial 0x04C11DB7, no reflection, zero initial
// value and no final xor. hash/crc32 only offers the reflected form.
var crcTable [256]uint32

func init() {
	const poly = uint32(0x04C11DB7)
	for i := range crcTable {
		crc := uint32(i) << 24
		for range 8 {
			if crc&0x80000000 != 0 {
				crc = crc<<1 ^ poly
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

func crcUpdate(crc uint32, data []byte) uint32 {
	for _, b := range data {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}

// Checksum returns the CRC of a page given its header and body bytes. The
// checksum field of header is treated as zero.
func Checksum(header, body []byte) uint32 {
	if len(header) < 26 {
		return crcUpdate(crcUpdate(0, header), body)
	}
	crc := crcUpdate(0, header[:22])
	crc = crcUpdate(crc, []byte{0, 0, 0, 0})
	crc = crcUpdate(crc, header[26:])
	return crcUpdate(crc, body)
}
