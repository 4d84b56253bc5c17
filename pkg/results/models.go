package results

import (
	"errors"
	"time"
)

// ErrRunNotFound is returned when no run matches the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Run is one persisted browse of a target.
type Run struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Host       string    `gorm:"index;not null;size:255" json:"host"`
	Locator    string    `gorm:"not null;size:1024" json:"locator"`
	User       string    `gorm:"size:512" json:"user"`
	MaxDepth   int       `json:"max_depth"`
	Code       int       `gorm:"index" json:"code"`
	Outcome    string    `gorm:"size:32" json:"outcome"`
	Message    string    `gorm:"type:text" json:"message,omitempty"`
	Succeeds   int       `json:"succeeds"`
	Fails      int       `json:"fails"`
	StartedAt  time.Time `gorm:"index" json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Objects []Object `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"objects,omitempty"`
}

// TableName returns the table name for Run.
func (Run) TableName() string {
	return "runs"
}

// Object is one entry visited by a Run, in traversal order.
type Object struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	RunID       string `gorm:"index;not null;size:36" json:"run_id"`
	Seq         int    `gorm:"not null" json:"seq"`
	Share       string `gorm:"size:255" json:"share"`
	Path        string `gorm:"type:text" json:"path"`
	Category    string `gorm:"size:32" json:"category"`
	TypeCode    uint32 `json:"type_code"`
	ACL         uint32 `json:"acl"`
	Permissions string `gorm:"type:text" json:"permissions"`
	Hidden      bool   `json:"hidden"`
	Depth       int    `json:"depth"`
	Error       string `gorm:"type:text" json:"error,omitempty"`
}

// TableName returns the table name for Object.
func (Object) TableName() string {
	return "objects"
}

// AllModels returns the models AutoMigrate creates tables for.
func AllModels() []any {
	return []any{&Run{}, &Object{}}
}
