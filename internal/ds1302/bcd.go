package ds1302

// DecToBCD packs a decimal value into binary-coded decimal.
// Valid for decimal values in [0,99]; the chip registers only ever
// hold [0,59] (seconds/minutes) or [0,23] (hours).
func DecToBCD(dec int) byte {
	return byte((dec/10)<<4 | dec%10)
}

// BCDToDec unpacks a binary-coded-decimal byte into its decimal value.
func BCDToDec(bcd byte) int {
	return int(bcd>>4)*10 + int(bcd&0x0F)
}
