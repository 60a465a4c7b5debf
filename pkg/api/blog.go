package api

// CreatePostRequest is the payload for POST /api/v1/posts.
type CreatePostRequest struct {
	Title   string   `json:"title"`
	Slug    string   `json:"slug"`
	Summary string   `json:"summary"`
	Body    string   `json:"body"`
	Tags    []string `json:"tags"`
	Publish bool     `json:"publish"`
}

// UpdatePostRequest is the payload for PUT /api/v1/posts/{id}.
// Nil fields are left unchanged.
type UpdatePostRequest struct {
	Title   *string  `json:"title,omitempty"`
	Slug    *string  `json:"slug,omitempty"`
	Summary *string  `json:"summary,omitempty"`
	Body    *string  `json:"body,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// Post is the wire representation of a post.
type Post struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Body        string   `json:"body,omitempty"`
	Published   bool     `json:"published"`
	PublishedAt string   `json:"publishedAt,omitempty"`
	Author      User     `json:"author"`
	Tags        []Tag    `json:"tags"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// PostList is the paginated response for GET /api/v1/posts.
type PostList struct {
	Posts      []Post `json:"posts"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Total      int64  `json:"total"`
	TotalPages int    `json:"totalPages"`
}

// CreateTagRequest is the payload for POST /api/v1/tags.
type CreateTagRequest struct {
	Name string `json:"name"`
}

// Tag is the wire representation of a tag.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CreateCommentRequest is the payload for POST /api/v1/posts/{slug}/comments.
type CreateCommentRequest struct {
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail"`
	Body        string `json:"body"`
}

// Comment is the wire representation of a comment.
type Comment struct {
	ID          string `json:"id"`
	PostID      string `json:"postId"`
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail,omitempty"`
	Body        string `json:"body"`
	CreatedAt   string `json:"createdAt"`
}

// CreateUserRequest is the payload for the admin-only POST /api/v1/users.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}
