// Package client is the pull-based facade used by the desktop and command
// line front ends. It signs in against the scheduling server, keeps a local
// snapshot of the account, and refreshes that snapshot after every mutation.
package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/brendan-liang/softdev-sat/internal/models"
	"github.com/brendan-liang/softdev-sat/internal/validation"
)

// Client talks to the scheduling server on behalf of one signed-in user.
type Client struct {
	api         *api
	session     *Session
	sessionPath string
}

// New loads the stored session (if any) and returns a client bound to the
// given server base URL.
func New(baseURL, sessionPath string) (*Client, error) {
	session, err := LoadSession(sessionPath)
	if err != nil {
		return nil, err
	}
	return &Client{
		api:         newAPI(baseURL),
		session:     session,
		sessionPath: sessionPath,
	}, nil
}

// HashPassword digests a plain-text password the way the server stores it.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// SignedIn reports whether a session is active locally. It does not contact
// the server; use Pull to verify the credentials still hold.
func (c *Client) SignedIn() bool {
	return c.session.LoggedIn
}

// CurrentUser returns the last pulled account snapshot, or nil when signed
// out or never pulled.
func (c *Client) CurrentUser() *models.User {
	return c.session.User
}

// Username returns the signed-in account name, or "" when signed out.
func (c *Client) Username() string {
	return c.session.Username
}

// SignUp validates the fields locally, registers the account, and signs in.
func (c *Client) SignUp(ctx context.Context, username, displayName, password, school string) error {
	if err := validation.Username(username); err != nil {
		return err
	}
	if err := validation.DisplayName(displayName); err != nil {
		return err
	}
	if err := validation.Password(password); err != nil {
		return err
	}
	if err := validation.School(school); err != nil {
		return err
	}
	account := models.User{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: HashPassword(password),
		School:       school,
		Groups:       map[string]bool{},
		Events:       map[string]models.Event{},
	}
	if err := c.api.post(ctx, "/users/signup", account, nil); err != nil {
		return err
	}
	return c.SignIn(ctx, username, password)
}

// SignIn authenticates against the server and stores the session locally.
func (c *Client) SignIn(ctx context.Context, username, password string) error {
	passwordHash := HashPassword(password)
	var user models.User
	err := c.api.post(ctx, "/users/signin", models.User{
		Username:     username,
		PasswordHash: passwordHash,
	}, &user)
	if err != nil {
		return err
	}
	c.session.LoggedIn = true
	c.session.Username = username
	c.session.PasswordHash = passwordHash
	c.session.User = &user
	return c.session.Save(c.sessionPath)
}

// SignOut discards the local session. The server keeps no session state.
func (c *Client) SignOut() error {
	c.session = &Session{}
	return c.session.Save(c.sessionPath)
}

// CheckSignIn verifies the cached credentials still work by pulling. A
// definitive rejection (the account is gone or the password changed on another
// device) discards the local session; transport failures keep it, since the
// credentials may still be valid.
func (c *Client) CheckSignIn(ctx context.Context) (bool, error) {
	if !c.session.LoggedIn {
		return false, nil
	}
	err := c.Pull(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrNotFound) {
		if serr := c.SignOut(); serr != nil {
			return false, serr
		}
		return false, nil
	}
	return false, err
}

// Pull re-authenticates with the cached credentials and replaces the local
// snapshot with the server's current account state. On any failure the cached
// snapshot is left untouched.
func (c *Client) Pull(ctx context.Context) error {
	if !c.session.LoggedIn {
		return fmt.Errorf("client: not signed in")
	}
	var user models.User
	err := c.api.post(ctx, "/users/signin", models.User{
		Username:     c.session.Username,
		PasswordHash: c.session.PasswordHash,
	}, &user)
	if err != nil {
		return err
	}
	c.session.User = &user
	return c.session.Save(c.sessionPath)
}

// UpdateAccount pushes changed profile fields and pulls the result. Empty
// fields keep their stored values.
func (c *Client) UpdateAccount(ctx context.Context, displayName, password, school string) error {
	account := models.User{Username: c.session.Username}
	if displayName != "" {
		if err := validation.DisplayName(displayName); err != nil {
			return err
		}
		account.DisplayName = displayName
	}
	if password != "" {
		if err := validation.Password(password); err != nil {
			return err
		}
		account.PasswordHash = HashPassword(password)
	}
	if school != "" {
		if err := validation.School(school); err != nil {
			return err
		}
		account.School = school
	}
	if err := c.api.post(ctx, "/users/update", account, nil); err != nil {
		return err
	}
	if password != "" {
		// The cached digest would be stale after a password change.
		c.session.PasswordHash = account.PasswordHash
	}
	return c.Pull(ctx)
}

// CreateEvent creates an event for the signed-in user and pulls the result.
func (c *Client) CreateEvent(ctx context.Context, event models.Event) (string, error) {
	var resp struct {
		EventID string `json:"event_id"`
	}
	err := c.api.post(ctx, "/users/"+c.session.Username+"/events/create", event, &resp)
	if err != nil {
		return "", err
	}
	if err := c.Pull(ctx); err != nil {
		return "", err
	}
	return resp.EventID, nil
}

// EditEvent replaces an event's editable fields and pulls the result. The
// event's ID field selects which stored event to rewrite.
func (c *Client) EditEvent(ctx context.Context, event models.Event) error {
	err := c.api.post(ctx, "/users/"+c.session.Username+"/events/edit", event, nil)
	if err != nil {
		return err
	}
	return c.Pull(ctx)
}

// DeleteEvent removes one of the signed-in user's events and pulls the result.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	err := c.api.get(ctx, "/users/"+c.session.Username+"/events/delete/"+eventID, nil)
	if err != nil {
		return err
	}
	return c.Pull(ctx)
}

// CreateGroup creates a class group owned by the signed-in user.
func (c *Client) CreateGroup(ctx context.Context, name, description, colour string) (string, error) {
	user := c.session.User
	if user == nil {
		return "", fmt.Errorf("client: not signed in")
	}
	group := models.Group{
		Name:        name,
		Description: description,
		School:      user.School,
		Members:     []string{c.session.Username},
		Events:      map[string]models.GroupEvent{},
		Colour:      colour,
		Owner:       c.session.Username,
	}
	var resp struct {
		GroupID string `json:"group_id"`
	}
	if err := c.api.post(ctx, "/groups/create", group, &resp); err != nil {
		return "", err
	}
	if err := c.Pull(ctx); err != nil {
		return "", err
	}
	return resp.GroupID, nil
}

// Group fetches one group by id.
func (c *Client) Group(ctx context.Context, groupID string) (*models.Group, error) {
	var group models.Group
	if err := c.api.get(ctx, "/groups/"+groupID, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// Groups fetches the full group table keyed by group id.
func (c *Client) Groups(ctx context.Context) (map[string]models.Group, error) {
	var groups map[string]models.Group
	if err := c.api.get(ctx, "/groups", &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// JoinGroup adds the signed-in user to a group and pulls the result.
func (c *Client) JoinGroup(ctx context.Context, groupID string) error {
	err := c.api.post(ctx, "/groups/"+groupID+"/join", models.User{Username: c.session.Username}, nil)
	if err != nil {
		return err
	}
	return c.Pull(ctx)
}

// LeaveGroup removes the signed-in user from a group and pulls the result.
func (c *Client) LeaveGroup(ctx context.Context, groupID string) error {
	err := c.api.post(ctx, "/groups/"+groupID+"/leave", models.User{Username: c.session.Username}, nil)
	if err != nil {
		return err
	}
	return c.Pull(ctx)
}

// DeleteGroup removes a group and everything mirrored from it, then pulls.
func (c *Client) DeleteGroup(ctx context.Context, groupID string) error {
	if err := c.api.get(ctx, "/groups/"+groupID+"/delete", nil); err != nil {
		return err
	}
	return c.Pull(ctx)
}

// DeleteGroupEvent removes a shared event from a group and from every
// member's calendar, then pulls.
func (c *Client) DeleteGroupEvent(ctx context.Context, groupID, eventID string) error {
	err := c.api.get(ctx, "/groups/"+groupID+"/events/delete/"+eventID, nil)
	if err != nil {
		return err
	}
	return c.Pull(ctx)
}

// Subjects fetches the server's subject reference list.
func (c *Client) Subjects(ctx context.Context) ([]string, error) {
	var resp struct {
		Subjects []string `json:"subjects"`
	}
	if err := c.api.get(ctx, "/subjects", &resp); err != nil {
		return nil, err
	}
	return resp.Subjects, nil
}

// Schools fetches the server's school reference list.
func (c *Client) Schools(ctx context.Context) ([]string, error) {
	var resp struct {
		Schools []string `json:"schools"`
	}
	if err := c.api.get(ctx, "/schools", &resp); err != nil {
		return nil, err
	}
	return resp.Schools, nil
}
