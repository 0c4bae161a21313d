package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting is a runtime-tunable key/value row managed by admins.
type Setting struct {
	Key       string         `json:"key" gorm:"primaryKey;type:varchar(100)"`
	Value     datatypes.JSON `json:"value"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
