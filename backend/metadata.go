package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// Category groups projects by discipline.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Course ties projects to the course they were built for.
type Course struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// Tag is a free-form project label.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, "", &out); err != nil {
		return nil, errors.Wrap(err, "[Client.Categories]")
	}
	return out, nil
}

// CreateCategory is admin-only; the backend enforces the role.
func (c *Client) CreateCategory(ctx context.Context, name, icon, accessToken string) (*Category, error) {
	var out Category
	body := map[string]string{"name": name, "icon": icon}
	if err := c.do(ctx, http.MethodPost, "/categories", nil, body, accessToken, &out); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateCategory]")
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id, accessToken string) error {
	if err := c.do(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil, accessToken, nil); err != nil {
		return errors.Wrap(err, "[Client.DeleteCategory]")
	}
	return nil
}

func (c *Client) Courses(ctx context.Context) ([]Course, error) {
	var out []Course
	if err := c.do(ctx, http.MethodGet, "/courses", nil, nil, "", &out); err != nil {
		return nil, errors.Wrap(err, "[Client.Courses]")
	}
	return out, nil
}

func (c *Client) CreateCourse(ctx context.Context, name, code, accessToken string) (*Course, error) {
	var out Course
	body := map[string]string{"name": name, "code": code}
	if err := c.do(ctx, http.MethodPost, "/courses", nil, body, accessToken, &out); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateCourse]")
	}
	return &out, nil
}

func (c *Client) DeleteCourse(ctx context.Context, id, accessToken string) error {
	if err := c.do(ctx, http.MethodDelete, "/courses/"+url.PathEscape(id), nil, nil, accessToken, nil); err != nil {
		return errors.Wrap(err, "[Client.DeleteCourse]")
	}
	return nil
}

func (c *Client) Tags(ctx context.Context) ([]Tag, error) {
	var out []Tag
	if err := c.do(ctx, http.MethodGet, "/tags", nil, nil, "", &out); err != nil {
		return nil, errors.Wrap(err, "[Client.Tags]")
	}
	return out, nil
}

func (c *Client) CreateTag(ctx context.Context, name, accessToken string) (*Tag, error) {
	var out Tag
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/tags", nil, body, accessToken, &out); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateTag]")
	}
	return &out, nil
}

func (c *Client) DeleteTag(ctx context.Context, id, accessToken string) error {
	if err := c.do(ctx, http.MethodDelete, "/tags/"+url.PathEscape(id), nil, nil, accessToken, nil); err != nil {
		return errors.Wrap(err, "[Client.DeleteTag]")
	}
	return nil
}
