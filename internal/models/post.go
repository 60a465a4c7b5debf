package models

import "time"

// Post represents a blog post. Slug is the public identifier used by the
// reader site; it is unique across all posts, published or not.
type Post struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	Slug        string     `json:"slug" gorm:"uniqueIndex:uni_posts_slug;size:255;not null"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Summary     string     `json:"summary" gorm:"size:1024"`
	Body        string     `json:"body" gorm:"type:text;not null"`
	Published   bool       `json:"published" gorm:"index;not null;default:false"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	AuthorID    string     `json:"author_id" gorm:"index;size:36;not null"`
	Author      *User      `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Tags        []Tag      `json:"tags" gorm:"many2many:post_tags"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Tag labels posts for filtered listing.
type Tag struct {
	ID   string `json:"id" gorm:"primaryKey;size:36"`
	Name string `json:"name" gorm:"uniqueIndex:uni_tags_name;size:64;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex:uni_tags_slug;size:64;not null"`
}

// Comment belongs to exactly one post. Comments are submitted by readers
// and carry no account reference.
type Comment struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	PostID      string    `json:"post_id" gorm:"index;size:36;not null"`
	AuthorName  string    `json:"author_name" gorm:"size:255;not null"`
	AuthorEmail string    `json:"author_email" gorm:"size:255"`
	Body        string    `json:"body" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at"`
}
