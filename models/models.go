package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Reservation is one committed slot. The five coordinate columns form the
// unique key space; a row is created only by a successful reserve and is
// never updated in place or deleted by normal operation.
type Reservation struct {
	BaseModel
	Period     string `json:"period" gorm:"size:10;not null;index;uniqueIndex:idx_slot_coordinate"`
	Date       string `json:"date" gorm:"size:10;not null;uniqueIndex:idx_slot_coordinate"`
	Time       string `json:"time" gorm:"size:11;not null;uniqueIndex:idx_slot_coordinate"`
	Subject    string `json:"subject" gorm:"size:20;not null;uniqueIndex:idx_slot_coordinate"`
	Location   string `json:"location" gorm:"size:20;not null;uniqueIndex:idx_slot_coordinate"`
	OccupiedBy string `json:"occupied_by" gorm:"size:200;not null"`
	BookingID  string `json:"booking_id" gorm:"size:36"`
}

// RegistryEntry backs the open-ended per-location lists (teacher names and
// course-content presets). Kind is "teacher" or "content".
type RegistryEntry struct {
	BaseModel
	Kind     string `json:"kind" gorm:"size:20;not null;uniqueIndex:idx_registry_value;type:enum('teacher','content')"`
	Location string `json:"location" gorm:"size:20;not null;uniqueIndex:idx_registry_value"`
	Value    string `json:"value" gorm:"size:100;not null;uniqueIndex:idx_registry_value"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	StationID  string `json:"station_id" gorm:"size:100"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`
}

// SheetArchive tracks period workbooks exported and uploaded to S3
type SheetArchive struct {
	BaseModel
	Period   string `json:"period" gorm:"size:10;not null"`
	Location string `json:"location" gorm:"size:20;not null"`
	FileName string `json:"file_name" gorm:"size:255;not null"`
	S3Key    string `json:"s3_key" gorm:"size:500;not null"`
	RowCount int    `json:"row_count" gorm:"not null"`
	FileSize int64  `json:"file_size" gorm:"not null"`
	Status   string `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"` // pending, completed, failed
	Error    string `json:"error" gorm:"type:text"`
}
