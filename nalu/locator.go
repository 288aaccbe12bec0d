package nalu

// Status reports the outcome of a single Locate call.
type Status int

const (
	// StatusOK indicates a complete NAL unit was found.
	StatusOK Status = iota
	// StatusNeedMore indicates there was not enough data in buf to
	// determine NAL boundaries; the caller should append more bytes
	// and retry from the same starting point.
	StatusNeedMore
)

// Locate finds the next NAL unit in buf.
//
// If lengthSize is non-zero, buf is treated as AVCC-framed: the first
// lengthSize bytes are a big-endian length N, and the NAL spans the N
// bytes that follow. If fewer than lengthSize+N bytes are available,
// Locate reports StatusNeedMore.
//
// If lengthSize is zero, buf is treated as an Annex B byte stream: Locate
// scans for a start code (any number of 0x00 bytes followed by 00 00 01),
// then scans forward for the next start code to determine where the
// current NAL ends. If no further start code is found and isLastBlock is
// true, the NAL is taken to extend to the end of buf; otherwise Locate
// reports StatusNeedMore so the caller can retry once more bytes have
// arrived.
//
// On StatusOK, next is the offset into buf at which the next Locate call
// should begin scanning: for AVCC framing this is just past the consumed
// NAL; for Annex B it is the first byte following the current NAL's
// payload, which is where the following unit's start code begins (the
// reference implementation's callers resume from Start()+Length(), not
// from partway through the next start code).
func Locate(buf []byte, lengthSize int, isLastBlock bool) (unit Unit, next int, status Status) {
	if lengthSize > 0 {
		return locateLengthPrefixed(buf, lengthSize)
	}
	return locateAnnexB(buf, isLastBlock)
}

func locateLengthPrefixed(buf []byte, lengthSize int) (Unit, int, Status) {
	if lengthSize > len(buf) {
		return Unit{}, 0, StatusNeedMore
	}
	n := 0
	for i := 0; i < lengthSize; i++ {
		n = (n << 8) | int(buf[i])
	}
	if n+lengthSize > len(buf) {
		return Unit{}, 0, StatusNeedMore
	}
	data := buf[lengthSize : lengthSize+n]
	return Unit{Data: data}, lengthSize + n, StatusOK
}

func locateAnnexB(buf []byte, isLastBlock bool) (Unit, int, Status) {
	begin1, start1, ok := findStartCode(buf, 0)
	if !ok {
		return Unit{}, 0, StatusNeedMore
	}

	begin2, _, ok := findStartCode(buf, start1)
	if ok {
		unit := Unit{
			Data:      buf[start1:begin2],
			StartCode: buf[begin1:start1],
		}
		return unit, begin2, StatusOK
	}

	if isLastBlock {
		unit := Unit{
			Data:      buf[start1:],
			StartCode: buf[begin1:start1],
		}
		return unit, len(buf), StatusOK
	}

	return Unit{}, 0, StatusNeedMore
}

// findStartCode scans buf starting at from for a start code: any run of
// 0x00 bytes followed by 00 00 01. begin is the offset of the first 0x00
// of that run; start is the offset of the byte immediately following the
// terminating 0x01 (the first byte of NAL data). A non-zero byte that is
// not the 0x01 terminator resets the run — a zero run is only ever
// extended or reset, never truncated by further zeros.
func findStartCode(buf []byte, from int) (begin, start int, found bool) {
	begin = -1
	n := len(buf)
	for i := from; i <= n-4; i++ {
		if buf[i] == 0 {
			if begin == -1 {
				begin = i
			}
			if buf[i+1] == 0 && buf[i+2] == 1 {
				return begin, i + 3, true
			}
		} else {
			begin = -1
		}
	}
	return -1, 0, false
}

// LocateAll scans a complete, in-memory buffer and returns every NAL unit
// it contains, in order. It is a convenience wrapper around repeated
// Locate calls with isLastBlock fixed to true, suitable for fully
// buffered inputs such as an avcC SPS/PPS payload or a test fixture.
func LocateAll(buf []byte, lengthSize int) []Unit {
	var units []Unit
	offset := 0
	for offset < len(buf) {
		unit, next, status := Locate(buf[offset:], lengthSize, true)
		if status != StatusOK {
			break
		}
		units = append(units, unit)
		if next <= 0 {
			break
		}
		offset += next
	}
	return units
}
