// models/pipeline_config.go
package models

import (
	"time"
)

// PipelineConfigID is the fixed primary key of the single config row.
const PipelineConfigID = 1

// PipelineConfig is the single-row run-level control state. It is loaded once
// at the start of every pipeline run, passed explicitly through the run, and
// written back once at the end of the score-fetch step regardless of outcome.
type PipelineConfig struct {
	ID      uint `json:"id" gorm:"primaryKey"`
	Enabled bool `json:"enabled" gorm:"default:true"`

	// Target game date (informational — shown on the admin surface)
	GameDate *time.Time `json:"game_date,omitempty"`

	// Last observed external game state
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	LastStatus    string     `json:"last_status,omitempty"`
	LastPeriod    int        `json:"last_period"`

	// Terminal flag — once set, scheduled runs short-circuit unless forced
	GameFinished bool `json:"game_finished" gorm:"default:false"`

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
