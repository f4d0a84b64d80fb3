package models

import "time"

type Profile struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	SourceLang  string    `json:"source_lang"`
	TargetLang  string    `json:"target_lang"`
	Proficiency string    `json:"proficiency"`
	CreatedAt   time.Time `json:"created_at"`
}
