package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"storefront/internal/models"
	"storefront/internal/session"
)

// Credentials sign a staff member in
type Credentials struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// Role is a role attached to a staff account
type Role struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// LoginResponse is returned by POST /auth/login/staff
type LoginResponse struct {
	Token  string         `json:"token"`
	User   models.User    `json:"user"`
	Vendor *models.Vendor `json:"vendor,omitempty"`
	Branch *models.Branch `json:"branch,omitempty"`
	Roles  []Role         `json:"roles,omitempty"`
}

// Profile is returned by GET /auth/me
type Profile struct {
	models.User
	Roles  []Role         `json:"roles"`
	Vendor *models.Vendor `json:"vendor,omitempty"`
	Branch *models.Branch `json:"branch,omitempty"`
}

// PrimaryRole is the lower-cased name of the first role, empty when none
func (p *Profile) PrimaryRole() string {
	return primaryRole(p.Roles)
}

// Session builds the persisted session for the profile
func (p *Profile) Session(token string) *session.Session {
	return &session.Session{
		Token: token,
		Staff: session.Staff{
			ID:        p.ID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
			Phone:     p.Phone,
			AvatarURL: p.AvatarURL,
			Role:      p.PrimaryRole(),
			Vendor:    p.Vendor,
			Branch:    p.Branch,
		},
	}
}

// Session builds the persisted session from a login
func (r *LoginResponse) Session() *session.Session {
	p := Profile{User: r.User, Roles: r.Roles, Vendor: r.Vendor, Branch: r.Branch}
	return p.Session(r.Token)
}

func primaryRole(roles []Role) string {
	if len(roles) == 0 {
		return ""
	}
	return strings.ToLower(roles[0].Name)
}

// UserQuery searches customers by phone or free text
type UserQuery struct {
	Phone  string
	Search string
	Per    int
}

func (c *Client) SearchUsers(ctx context.Context, q UserQuery) (*models.Page[models.User], error) {
	params := ListParams{Search: q.Search, Per: q.Per, Extra: url.Values{}}
	if q.Phone != "" {
		params.Extra.Set("phone", q.Phone)
	}
	return list[models.User](ctx, c, "users", params)
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var user models.User
	if err := c.post(ctx, "auth/register", req, nil, &user); err != nil {
		return nil, fmt.Errorf("failed to register customer: %w", err)
	}
	return &user, nil
}

func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.get(ctx, "auth/me", nil, &p); err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &p, nil
}

// LoginStaff signs in and starts sending the returned token
func (c *Client) LoginStaff(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.post(ctx, "auth/login/staff", creds, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	if resp.Token == "" {
		return nil, &Error{StatusCode: 401, Message: "login returned no token"}
	}
	c.SetToken(resp.Token)
	return &resp, nil
}
