package models

// Newsletter represents one uploaded monthly school newsletter
type Newsletter struct {
	ID        int64  `json:"id" db:"id"`
	UserID    int64  `json:"user_id" db:"user_id"`
	Month     string `json:"month" db:"month"`
	Year      int    `json:"year" db:"year"`
	FilePath  string `json:"file_path" db:"file_path"`
	CreatedAt string `json:"created_at" db:"created_at"`
}
