package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringArray is a string slice stored as a JSON array
type StringArray []string

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface. A bare string (legacy rows) becomes a one element array.
func (a *StringArray) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*a = StringArray{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StringArray", value)
	}

	if len(raw) == 0 {
		*a = StringArray{}
		return nil
	}
	if raw[0] != '[' {
		*a = StringArray{string(raw)}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(a))
}

// UnmarshalJSON accepts an array of strings or a single string.
func (a *StringArray) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*a = StringArray{}
		} else {
			*a = StringArray{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	if many == nil {
		many = []string{}
	}
	*a = StringArray(many)
	return nil
}

// DateLayout is the layout of entry_date columns and date path parameters.
const DateLayout = "2006-01-02"

// DietEntry is one logged meal. Numeric fields are nullable since estimates can be partial.
type DietEntry struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;index:idx_diet_user_created,priority:1" json:"user_id"`
	Food      string    `gorm:"type:text;not null" json:"food"`
	Calories  *float64  `json:"calories"`
	Protein   *float64  `json:"protein"`
	Carbs     *float64  `json:"carbs"`
	Fats      *float64  `json:"fats"`
	EntryDate string    `gorm:"size:10;not null" json:"date"`
	CreatedAt time.Time `gorm:"not null;index:idx_diet_user_created,priority:2" json:"created_at"`
}

func (e *DietEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	stampDate(&e.CreatedAt, &e.EntryDate)
	return nil
}

// WorkoutEntry is one logged workout session.
type WorkoutEntry struct {
	ID            uuid.UUID   `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID        uuid.UUID   `gorm:"type:varchar(36);not null;index:idx_workout_user_created,priority:1" json:"user_id"`
	Workout       string      `gorm:"type:text;not null" json:"workout"`
	Calories      *float64    `json:"calories"`
	MuscleTrained StringArray `gorm:"type:text;not null;default:'[]'" json:"muscle_trained"`
	EntryDate     string      `gorm:"size:10;not null" json:"date"`
	CreatedAt     time.Time   `gorm:"not null;index:idx_workout_user_created,priority:2" json:"created_at"`
}

func (e *WorkoutEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	stampDate(&e.CreatedAt, &e.EntryDate)
	return nil
}

// stampDate normalises created_at to UTC and derives the entry date from it.
func stampDate(createdAt *time.Time, entryDate *string) {
	if createdAt.IsZero() {
		*createdAt = time.Now()
	}
	*createdAt = createdAt.UTC()
	if *entryDate == "" {
		*entryDate = createdAt.Format(DateLayout)
	}
}
