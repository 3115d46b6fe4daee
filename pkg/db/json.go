package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONValue stores an arbitrary JSON document in a text column while keeping
// the raw bytes intact, so API responses return exactly what was stored.
type JSONValue json.RawMessage

func (j JSONValue) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSONValue) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = JSONValue(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONValue", value)
	}
	return nil
}

func (j JSONValue) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSONValue) UnmarshalJSON(data []byte) error {
	*j = append((*j)[:0], data...)
	return nil
}

// ChatTurn is a single message in a rehearsal conversation.
type ChatTurn struct {
	Role      string    `json:"role"` // user or assistant
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatTurns is stored as a JSON array in a text column.
type ChatTurns []ChatTurn

func (t ChatTurns) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *ChatTurns) Scan(value interface{}) error {
	if value == nil {
		*t = ChatTurns{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ChatTurns", value)
	}
	if len(b) == 0 {
		*t = ChatTurns{}
		return nil
	}
	return json.Unmarshal(b, t)
}
