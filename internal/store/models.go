package store

import "time"

type Category struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"` // Nullable
}

type News struct {
	ID           int64     `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Summary      *string   `db:"summary" json:"summary"` // Nullable
	Content      string    `db:"content" json:"content"`
	CategoryID   int64     `db:"category_id" json:"category_id"`
	PublishedAt  time.Time `db:"published_at" json:"published_at"`
	ImageURL     *string   `db:"image_url" json:"image_url"` // Nullable
	CategoryName string    `db:"category_name" json:"category_name"`
}

// NewsInput holds the caller-supplied fields of a new article.
type NewsInput struct {
	Title      string  `json:"title"`
	Summary    *string `json:"summary,omitempty"`
	Content    string  `json:"content"`
	CategoryID int64   `json:"category_id"`
	ImageURL   *string `json:"image_url,omitempty"`
}

// NewsPatch is a partial update. A nil field is left unchanged.
type NewsPatch struct {
	Title      *string `json:"title,omitempty"`
	Summary    *string `json:"summary,omitempty"`
	Content    *string `json:"content,omitempty"`
	CategoryID *int64  `json:"category_id,omitempty"`
	ImageURL   *string `json:"image_url,omitempty"`
}

type NewsFilter struct {
	CategoryID *int64
	Limit      int // <= 0 means no cap
}

type Tip struct {
	ID         int64     `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	Content    string    `db:"content" json:"content"`
	Difficulty *string   `db:"difficulty" json:"difficulty"` // Nullable
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type TipInput struct {
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Difficulty *string `json:"difficulty,omitempty"`
}

// TipPatch is a partial update. A nil field is left unchanged.
type TipPatch struct {
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	Difficulty *string `json:"difficulty,omitempty"`
}

type TipFilter struct {
	Difficulty string
	Limit      int
}

const DefaultRole = "user"

type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"` // Do not expose this in JSON responses
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type UserInput struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string // empty means DefaultRole
}

type ChatLogEntry struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	UserMessage string    `db:"user_message" json:"user_message"`
	BotResponse string    `db:"bot_response" json:"bot_response"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type SearchHistoryEntry struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Query     string    `db:"query" json:"query"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Favorite struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	NewsID    int64     `db:"news_id" json:"news_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FavoriteNews is a favorited article together with when it was favorited.
type FavoriteNews struct {
	News
	FavoritedAt time.Time `db:"favorited_at" json:"favorited_at"`
}
