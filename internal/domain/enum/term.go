package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Term is the academic term a payment covers
type Term int

const (
	TermInvalid Term = -1
	TermUnset   Term = 0
	TermFirst   Term = 1
	TermSecond  Term = 2
	TermThird   Term = 3
)

var termNames = [...]string{"First Term", "Second Term", "Third Term"}

// ParseTerm resolves a display name such as "Second Term"
func ParseTerm(name string) (Term, bool) {
	for i, n := range termNames {
		if n == name {
			return Term(i + 1), true
		}
	}
	return TermInvalid, false
}

func (t Term) IsValid() bool {
	return t >= TermFirst && t <= TermThird
}

func (Term) Options() []string {
	return termNames[:]
}

func (t Term) String() string {
	if !t.IsValid() {
		return ""
	}
	return termNames[t-1]
}

func (t Term) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Term) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = Term(i)
		if !t.IsValid() {
			*t = TermInvalid
		}
		return nil
	}
	if str == "" {
		*t = TermUnset
		return nil
	}
	*t, _ = ParseTerm(str)
	return nil
}

func (t Term) Value() (driver.Value, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid term %d", int(t))
	}
	return int64(t), nil
}

func (t *Term) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = TermUnset
	case int64:
		*t = Term(v)
	case int32:
		*t = Term(v)
	case int:
		*t = Term(v)
	default:
		return fmt.Errorf("cannot scan %T into Term", value)
	}
	return nil
}
