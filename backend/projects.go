package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/opencampus/vitrine/users"
)

const (
	defaultPageLimit = 12
	maxPageLimit     = 100
)

// Project is a showcased student project.
type Project struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	RepoURL     string        `json:"repo_url,omitempty"`
	DemoURL     string        `json:"demo_url,omitempty"`
	CoverImage  string        `json:"cover_image,omitempty"`
	Author      users.Profile `json:"author,omitempty"`
	Category    string        `json:"category,omitempty"`
	Course      string        `json:"course,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	Likes       int           `json:"likes"`
	Views       int           `json:"views"`
	LikedByMe   bool          `json:"liked_by_me,omitempty"`
	CreatedAt   time.Time     `json:"created_at,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at,omitempty"`
}

// ProjectInput is the create/update payload. Optional fields are pointers so
// a partial update can tell "leave unchanged" (nil) apart from "clear" (empty
// string).
type ProjectInput struct {
	Title       string   `json:"title"`
	Description *string  `json:"description,omitempty"`
	RepoURL     *string  `json:"repo_url,omitempty"`
	DemoURL     *string  `json:"demo_url,omitempty"`
	CoverImage  *string  `json:"cover_image,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Course      *string  `json:"course,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ListOptions carries pagination and filtering for project listings.
type ListOptions struct {
	Page     int
	Limit    int
	Search   string
	Category string
	Course   string
	Tag      string
	AuthorID string
	Sort     string // e.g. "newest", "likes", "views"
}

// Query renders the options as URL parameters, clamping pagination to sane
// bounds so a bad caller cannot ask the backend for page -3 of ten thousand.
func (o ListOptions) Query() url.Values {
	page := o.Page
	if page < 1 {
		page = 1
	}
	limit := o.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	for key, value := range map[string]string{
		"search":   o.Search,
		"category": o.Category,
		"course":   o.Course,
		"tag":      o.Tag,
		"author":   o.AuthorID,
		"sort":     o.Sort,
	} {
		if value != "" {
			q.Set(key, value)
		}
	}
	return q
}

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// Projects lists projects with pagination and filters.
func (c *Client) Projects(ctx context.Context, opts ListOptions, accessToken string) (Page[Project], error) {
	var page Page[Project]
	if err := c.do(ctx, http.MethodGet, "/projects", opts.Query(), nil, accessToken, &page); err != nil {
		return Page[Project]{}, errors.Wrap(err, "[Client.Projects]")
	}
	return page, nil
}

// Project fetches a single project.
func (c *Client) Project(ctx context.Context, id, accessToken string) (*Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(id), nil, nil, accessToken, &project); err != nil {
		return nil, errors.Wrap(err, "[Client.Project]")
	}
	return &project, nil
}

// CreateProject creates a project owned by the calling user.
func (c *Client) CreateProject(ctx context.Context, input ProjectInput, accessToken string) (*Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodPost, "/projects", nil, input, accessToken, &project); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateProject]")
	}
	return &project, nil
}

// UpdateProject updates an existing project.
func (c *Client) UpdateProject(ctx context.Context, id string, input ProjectInput, accessToken string) (*Project, error) {
	var project Project
	if err := c.do(ctx, http.MethodPut, "/projects/"+url.PathEscape(id), nil, input, accessToken, &project); err != nil {
		return nil, errors.Wrap(err, "[Client.UpdateProject]")
	}
	return &project, nil
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id, accessToken string) error {
	if err := c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id), nil, nil, accessToken, nil); err != nil {
		return errors.Wrap(err, "[Client.DeleteProject]")
	}
	return nil
}

// LikeProject records a like from the calling user.
func (c *Client) LikeProject(ctx context.Context, id, accessToken string) error {
	if err := c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(id)+"/like", nil, nil, accessToken, nil); err != nil {
		return errors.Wrap(err, "[Client.LikeProject]")
	}
	return nil
}

// UnlikeProject withdraws a like.
func (c *Client) UnlikeProject(ctx context.Context, id, accessToken string) error {
	if err := c.do(ctx, http.MethodDelete, "/projects/"+url.PathEscape(id)+"/like", nil, nil, accessToken, nil); err != nil {
		return errors.Wrap(err, "[Client.UnlikeProject]")
	}
	return nil
}

// RecordView bumps the project's view counter. Views are best-effort; callers
// typically ignore the error.
func (c *Client) RecordView(ctx context.Context, id, accessToken string) error {
	if err := c.do(ctx, http.MethodPost, "/projects/"+url.PathEscape(id)+"/view", nil, nil, accessToken, nil); err != nil {
		return errors.Wrap(err, "[Client.RecordView]")
	}
	return nil
}
