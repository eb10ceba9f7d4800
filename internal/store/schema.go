package store

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name VARCHAR(255) NOT NULL,
        email VARCHAR(255) UNIQUE NOT NULL,
        password_hash VARCHAR(255) NOT NULL,
        role VARCHAR(50) NOT NULL DEFAULT 'user',
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );`,
	`CREATE TABLE IF NOT EXISTS tips (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        title VARCHAR(255) NOT NULL,
        content TEXT NOT NULL,
        difficulty VARCHAR(50),
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );`,
	`CREATE TABLE IF NOT EXISTS news_categories (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name VARCHAR(255) NOT NULL,
        description VARCHAR(500)
    );`,
	`CREATE TABLE IF NOT EXISTS news (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        title VARCHAR(255) NOT NULL,
        summary VARCHAR(500),
        content TEXT NOT NULL,
        category_id INTEGER NOT NULL,
        published_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        image_url VARCHAR(500),
        FOREIGN KEY (category_id) REFERENCES news_categories (id)
    );`,
	`CREATE TABLE IF NOT EXISTS search_history (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL,
        query VARCHAR(255) NOT NULL,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );`,
	`CREATE TABLE IF NOT EXISTS chat_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL,
        user_message TEXT NOT NULL,
        bot_response TEXT NOT NULL,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );`,
	`CREATE TABLE IF NOT EXISTS favorite_news (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL,
        news_id INTEGER NOT NULL,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id),
        FOREIGN KEY (news_id) REFERENCES news (id),
        UNIQUE (user_id, news_id)
    );`,
	`CREATE INDEX IF NOT EXISTS idx_news_category ON news (category_id);`,
	`CREATE INDEX IF NOT EXISTS idx_search_user ON search_history (user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_chat_user ON chat_log (user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_fav_user ON favorite_news (user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_fav_news ON favorite_news (news_id);`,
}

// EnsureSchema creates any missing tables and indexes. It never alters
// existing tables.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	return s.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		for i, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return storageFault(fmt.Sprintf("execute schema statement %d", i+1), err)
			}
		}
		return nil
	})
}

var sampleCategories = []Category{
	{Name: "Tarım Haberleri", Description: strPtr("Genel tarım haberleri ve gelişmeler")},
	{Name: "Teknoloji", Description: strPtr("Tarım teknolojileri ve yenilikler")},
	{Name: "Pazar", Description: strPtr("Tarım ürünleri fiyatları ve pazar haberleri")},
	{Name: "İklim", Description: strPtr("Hava durumu ve iklim değişiklikleri")},
}

var sampleTips = []TipInput{
	{
		Title:      "Domates Yetiştirme",
		Content:    "Domates bitkileri için düzenli sulama ve güneş ışığı çok önemlidir. Toprağın nemli kalmasına dikkat edin.",
		Difficulty: strPtr("Kolay"),
	},
	{
		Title:      "Gübreleme Zamanı",
		Content:    "Bitkileriniz için en iyi gübreleme zamanı ilkbahar başlangıcıdır. Organik gübre kullanmayı tercih edin.",
		Difficulty: strPtr("Orta"),
	},
}

// SeedSampleData inserts the starter categories and tips into an empty
// database. Tables that already hold rows are left alone.
func (s *SQLiteStore) SeedSampleData(ctx context.Context) error {
	return s.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM news_categories"); err != nil {
			return classify("count categories", err)
		}
		if n == 0 {
			for _, c := range sampleCategories {
				if _, err := insert(ctx, tx, "seed category", "INSERT INTO news_categories (name, description) VALUES (?, ?)", c.Name, c.Description); err != nil {
					return err
				}
			}
			log.Printf("Seeded %d news categories", len(sampleCategories))
		}

		if err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM tips"); err != nil {
			return classify("count tips", err)
		}
		if n == 0 {
			for _, t := range sampleTips {
				if _, err := insert(ctx, tx, "seed tip", "INSERT INTO tips (title, content, difficulty) VALUES (?, ?, ?)", t.Title, t.Content, t.Difficulty); err != nil {
					return err
				}
			}
			log.Printf("Seeded %d tips", len(sampleTips))
		}
		return nil
	})
}

func strPtr(s string) *string { return &s }
