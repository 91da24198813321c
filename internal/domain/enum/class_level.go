package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ClassLevel is the class a student is enrolled in
type ClassLevel int

// ClassLevelUnset is the zero value; ClassLevelInvalid marks a name that
// was supplied but matches no class.
const (
	ClassLevelInvalid ClassLevel = -1
	ClassLevelUnset   ClassLevel = 0
)

const (
	ClassLevelPrimary1 ClassLevel = iota + 1
	ClassLevelPrimary2
	ClassLevelPrimary3
	ClassLevelPrimary4
	ClassLevelPrimary5
	ClassLevelPrimary6
	ClassLevelJSS1
	ClassLevelJSS2
	ClassLevelJSS3
	ClassLevelSS1
	ClassLevelSS2
	ClassLevelSS3
)

var classLevelNames = [...]string{
	"Primary 1", "Primary 2", "Primary 3", "Primary 4", "Primary 5", "Primary 6",
	"JSS1", "JSS2", "JSS3",
	"SS1", "SS2", "SS3",
}

// ParseClassLevel resolves a display name such as "JSS2"
func ParseClassLevel(name string) (ClassLevel, bool) {
	for i, n := range classLevelNames {
		if n == name {
			return ClassLevel(i + 1), true
		}
	}
	return ClassLevelInvalid, false
}

// IsValid reports whether c is one of the known classes
func (c ClassLevel) IsValid() bool {
	return c >= ClassLevelPrimary1 && c <= ClassLevelSS3
}

// Options lists every class in display order
func (ClassLevel) Options() []string {
	return classLevelNames[:]
}

func (c ClassLevel) String() string {
	if !c.IsValid() {
		return ""
	}
	return classLevelNames[c-1]
}

func (c ClassLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClassLevel) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*c = ClassLevel(i)
		if !c.IsValid() {
			*c = ClassLevelInvalid
		}
		return nil
	}
	if str == "" {
		*c = ClassLevelUnset
		return nil
	}
	*c, _ = ParseClassLevel(str)
	return nil
}

func (c ClassLevel) Value() (driver.Value, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("invalid class level %d", int(c))
	}
	return int64(c), nil
}

func (c *ClassLevel) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*c = ClassLevelUnset
	case int64:
		*c = ClassLevel(v)
	case int32:
		*c = ClassLevel(v)
	case int:
		*c = ClassLevel(v)
	default:
		return fmt.Errorf("cannot scan %T into ClassLevel", value)
	}
	return nil
}
