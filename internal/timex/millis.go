package timex

import (
	"bytes"
	"encoding/json"
	"time"
)

// Millis is a point in time encoded on the wire as Unix milliseconds.
type Millis struct {
	time.Time
}

// NewMillis truncates t to millisecond precision so values survive a round
// trip through JSON and the local store unchanged. The zero time stays zero.
func NewMillis(t time.Time) Millis {
	if t.IsZero() {
		return Millis{}
	}
	return Millis{Time: time.UnixMilli(t.UnixMilli())}
}

func (m Millis) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(m.UnixMilli())
}

func (m *Millis) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		m.Time = time.Time{}
		return nil
	}
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	m.Time = time.UnixMilli(ms)
	return nil
}

// Ms returns m as Unix milliseconds, or 0 for the zero time.
func (m Millis) Ms() int64 {
	if m.IsZero() {
		return 0
	}
	return m.UnixMilli()
}

// FromMs is the inverse of Ms.
func FromMs(ms int64) Millis {
	if ms == 0 {
		return Millis{}
	}
	return Millis{Time: time.UnixMilli(ms)}
}
