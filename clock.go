package ads7953

import "time"

// Clock is a millisecond time source. The value may wrap around at 32 bits;
// elapsed times are computed with unsigned subtraction.
type Clock interface {
	Millis() uint32
}

type systemClock struct {
	epoch time.Time
}

// SystemClock returns a Clock counting milliseconds since it was created.
func SystemClock() Clock {
	return &systemClock{epoch: time.Now()}
}

func (c *systemClock) Millis() uint32 {
	return uint32(time.Since(c.epoch).Milliseconds())
}

// elapsed returns the milliseconds from start to now, tolerating a single
// wrap of the counter.
func elapsed(now, start uint32) uint32 {
	return now - start
}
