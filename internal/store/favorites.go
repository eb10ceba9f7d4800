package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// AddFavorite marks newsID as a favorite of userID. When the pair already
// exists it returns created=false and a nil error; the existing row is kept.
// Unknown users or articles fail with ErrReferentialConstraint.
func (s *SQLiteStore) AddFavorite(ctx context.Context, userID, newsID int64) (id int64, created bool, err error) {
	err = s.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, "INSERT INTO favorite_news (user_id, news_id) VALUES (?, ?)", userID, newsID)
		if err != nil {
			if isUniqueViolation(err) {
				return nil // Already a favorite
			}
			return classify("insert favorite", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return classify("insert favorite", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return id, created, nil
}

func (s *SQLiteStore) RemoveFavorite(ctx context.Context, userID, newsID int64) (bool, error) {
	var removed bool
	err := s.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM favorite_news WHERE user_id = ? AND news_id = ?", userID, newsID)
		if err != nil {
			return classify("delete favorite", err)
		}
		removed, err = affected(res)
		return classifyIfErr("delete favorite", err)
	})
	return removed, err
}

func (s *SQLiteStore) IsFavorited(ctx context.Context, userID, newsID int64) (bool, error) {
	var n int
	err := s.WithReadTransaction(ctx, func(tx *sqlx.Tx) error {
		return classifyIfErr("check favorite", tx.GetContext(ctx, &n,
			"SELECT COUNT(*) FROM favorite_news WHERE user_id = ? AND news_id = ?", userID, newsID))
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListUserFavorites returns the user's favorite articles, most recently
// favorited first.
func (s *SQLiteStore) ListUserFavorites(ctx context.Context, userID int64) ([]FavoriteNews, error) {
	const query = `
        SELECT n.id, n.title, n.summary, n.content, n.category_id, n.published_at, n.image_url,
               COALESCE(nc.name, '') AS category_name, fn.created_at AS favorited_at
        FROM favorite_news fn
        JOIN news n ON fn.news_id = n.id
        LEFT JOIN news_categories nc ON n.category_id = nc.id
        WHERE fn.user_id = ?
        ORDER BY fn.created_at DESC, fn.id DESC`

	var favorites []FavoriteNews
	err := s.WithReadTransaction(ctx, func(tx *sqlx.Tx) error {
		return classifyIfErr("list favorites", tx.SelectContext(ctx, &favorites, query, userID))
	})
	if err != nil {
		return nil, err
	}
	return favorites, nil
}
