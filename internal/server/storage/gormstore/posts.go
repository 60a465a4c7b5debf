package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/inkwell-cms/inkwell/internal/models"
	"github.com/inkwell-cms/inkwell/internal/server/storage"
)

// CreatePost inserts a post with its tag associations.
func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetPostByID retrieves a post with author and tags preloaded.
func (s *Store) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// GetPostBySlug retrieves a post by its public slug.
func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		First(&post, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// ListPosts returns a page of posts matching the filter plus the total
// match count. Drafts sort by creation time, published posts by publish
// time, newest first.
func (s *Store) ListPosts(ctx context.Context, filter storage.PostFilter) ([]models.Post, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Post{})

	if filter.PublishedOnly {
		q = q.Where("posts.published = ?", true)
	}
	if filter.AuthorID != "" {
		q = q.Where("posts.author_id = ?", filter.AuthorID)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("LOWER(posts.title) LIKE ? OR LOWER(posts.summary) LIKE ?", like, like)
	}
	if filter.TagSlug != "" {
		q = q.Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.slug = ?", filter.TagSlug)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	page := filter.Page.Normalize()
	var posts []models.Post
	err := q.Preload("Author").
		Preload("Tags").
		Order("posts.published_at DESC NULLS LAST, posts.created_at DESC").
		Limit(page.Size).
		Offset(filter.Page.Offset()).
		Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}

	return posts, total, nil
}

// UpdatePost saves the post's scalar columns. Tag associations are handled
// separately by ReplacePostTags.
func (s *Store) UpdatePost(ctx context.Context, post *models.Post) error {
	res := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Select("Slug", "Title", "Summary", "Body", "Published", "PublishedAt").
		Updates(post)
	if res.Error != nil {
		return fmt.Errorf("failed to update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ReplacePostTags swaps the post's tag set for the given one.
func (s *Store) ReplacePostTags(ctx context.Context, post *models.Post, tags []models.Tag) error {
	if err := s.db.WithContext(ctx).Model(post).Association("Tags").Replace(tags); err != nil {
		return fmt.Errorf("failed to replace post tags: %w", err)
	}
	post.Tags = tags
	return nil
}

// DeletePost removes a post and its comments and tag associations.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete post comments: %w", err)
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete post tag links: %w", err)
		}
		res := tx.Delete(&models.Post{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete post: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}
