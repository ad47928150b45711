package models

import (
	"context"
	"strings"
	"time"
)

// PostData is a post row with its author embedded under author.
type PostData struct {
	PostID  int64   `json:"post_id"`
	TopicID int64   `json:"topic_id"`
	Title   *string `json:"title"`
	Body    string  `json:"body"`
	// BodyHTML is Body rendered from BBCode. Filled on reads, never persisted.
	BodyHTML   string     `json:"body_html,omitempty"`
	Created    time.Time  `json:"created"`
	LastEdited *time.Time `json:"last_edited"`
	Deleted    *time.Time `json:"deleted"`
	Author     UserData   `json:"author"`
}

// PostInput is the payload for creating a post.
type PostInput struct {
	TopicID int64   `json:"topic_id"`
	Title   *string `json:"title"`
	Body    string  `json:"body"`
}

// PostPatch carries the post fields the author may change. A null title
// clears it; body is required, so a null body counts as absent.
type PostPatch struct {
	Title Optional[string] `json:"title"`
	Body  *string          `json:"body"`
}

// PostChanges is the merged set of mutable post columns to persist.
type PostChanges struct {
	Title *string `json:"title"`
	Body  string  `json:"body"`
}

// Columns maps the changes onto posts table columns.
func (c PostChanges) Columns() map[string]any {
	return map[string]any{
		"title": c.Title,
		"body":  c.Body,
	}
}

// PostFetcher loads a non-deleted post row by id.
type PostFetcher func(ctx context.Context, id int64) (*PostData, error)

// Post is the post entity.
type Post struct {
	data   PostData
	author *User
}

// NewPost builds a post. A nil author is rebuilt from data.Author.
func NewPost(data PostData, author *User) *Post {
	if author == nil {
		author = NewUser(data.Author)
	}
	return &Post{data: data, author: author}
}

// PostFromDB loads a post by id and hydrates its author.
func PostFromDB(ctx context.Context, id int64, fetch PostFetcher) (*Post, error) {
	data, err := fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrPostNotFound
	}
	return NewPost(*data, UserFromIdentity(data.Author)), nil
}

func (p *Post) ID() int64      { return p.data.PostID }
func (p *Post) TopicID() int64 { return p.data.TopicID }
func (p *Post) Author() *User  { return p.author }

// EditorHasPermission allows only the author. Role capabilities are not
// consulted for posts.
func (p *Post) EditorHasPermission(editor *User, action Action) bool {
	if editor == nil {
		return false
	}
	switch action {
	case ActionUpdate, ActionDelete:
		return editor.ID() == p.author.ID()
	}
	return false
}

// Update merges patch into the post after the authorization check and
// returns the mutable columns to persist. On error the post is unchanged.
func (p *Post) Update(patch PostPatch, editor *User) (PostChanges, error) {
	if !p.EditorHasPermission(editor, ActionUpdate) {
		return PostChanges{}, ErrForbidden
	}
	if patch.Body != nil && strings.TrimSpace(*patch.Body) == "" {
		return PostChanges{}, InvalidInputf("body cannot be empty")
	}
	if patch.Title.Value != nil {
		if err := ValidateTitle(*patch.Title.Value); err != nil {
			return PostChanges{}, err
		}
	}

	p.data.Title = patch.Title.Apply(p.data.Title)
	if patch.Body != nil {
		p.data.Body = *patch.Body
	}
	return PostChanges{Title: p.data.Title, Body: p.data.Body}, nil
}

// ToData returns the serializable view with the author converted by its own ToData.
func (p *Post) ToData() PostData {
	data := p.data
	data.Author = p.author.ToData()
	return data
}
