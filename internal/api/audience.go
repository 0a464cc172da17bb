package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TargetAudience is the public an event is meant for.
type TargetAudience int

const (
	AudienceAll TargetAudience = iota
	AudienceChildren
	AudienceTeenager
)

var audienceNames = map[TargetAudience]string{
	AudienceAll:      "all",
	AudienceChildren: "children",
	AudienceTeenager: "teenager",
}

func (t TargetAudience) Valid() bool {
	_, ok := audienceNames[t]
	return ok
}

func (t TargetAudience) String() string {
	if n, ok := audienceNames[t]; ok {
		return n
	}
	return fmt.Sprintf("audience(%d)", int(t))
}

// ParseAudience accepts a name ("teenager") or a wire code ("2").
func ParseAudience(s string) (TargetAudience, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, v := range audienceNames {
		if v == s {
			return k, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && TargetAudience(n).Valid() {
		return TargetAudience(n), nil
	}
	return 0, fmt.Errorf("unknown target audience %q", s)
}

func (t TargetAudience) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid target audience %d", int(t))
	}
	return json.Marshal(strconv.Itoa(int(t)))
}

func (t *TargetAudience) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n int
		if err2 := json.Unmarshal(b, &n); err2 != nil {
			return fmt.Errorf("target audience: %w", err)
		}
		s = strconv.Itoa(n)
	}
	n, err := strconv.Atoi(s)
	if err != nil || !TargetAudience(n).Valid() {
		return fmt.Errorf("invalid target audience %q", s)
	}
	*t = TargetAudience(n)
	return nil
}
