package authentik

import "context"

// IDirectory is the read side of an identity provider: every group and every
// user that carries an email address.
type IDirectory interface {
	Groups(ctx context.Context) ([]*Group, error)
	Users(ctx context.Context) ([]*User, error)
}

type EndpointParameters struct {
	Url   string `koanf:"url" validate:"required,url"`
	Token string `koanf:"token" validate:"required"`
}

type Pagination struct {
	Next       int `json:"next"`
	Previous   int `json:"previous"`
	Count      int `json:"count"`
	Current    int `json:"current"`
	TotalPages int `json:"total_pages"`
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

type page[T any] struct {
	Pagination Pagination `json:"pagination"`
	Results    []T        `json:"results"`
}

type Group struct {
	Pk          string         `json:"pk"`
	Name        string         `json:"name"`
	IsSuperuser bool           `json:"is_superuser"`
	ParentName  string         `json:"parent_name,omitempty"`
	Users       []int64        `json:"users"`
	UsersObj    []*User        `json:"users_obj"`
	Attributes  map[string]any `json:"attributes"`
}

type User struct {
	Pk       int64  `json:"pk"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}
