package catalog

import (
	"fmt"
	"strings"

	"keepersecurity.com/ksm-catalog-sync/authentik"
)

// MappingError reports a directory record that cannot become a catalog entity.
type MappingError struct {
	Pk     string
	Reason string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("%s for group: %s", e.Reason, e.Pk)
}

// Mapper turns directory records into catalog entities. baseUrl is the
// directory API root used for the location annotations and links.
type Mapper struct {
	baseUrl string
}

func NewMapper(baseUrl string) *Mapper {
	return &Mapper{baseUrl: strings.TrimRight(baseUrl, "/")}
}

func (m *Mapper) groupLocation(pk string) string {
	return fmt.Sprintf("url:%s/groups/%s/", m.baseUrl, pk)
}

func (m *Mapper) userLocation(pk int64) string {
	return fmt.Sprintf("url:%s/users/%d/", m.baseUrl, pk)
}

func (m *Mapper) GroupToEntity(group *authentik.Group) (entity *Entity, err error) {
	if group == nil {
		err = &MappingError{Reason: "Group record is empty"}
		return
	}
	if len(group.Name) == 0 {
		err = &MappingError{Pk: group.Pk, Reason: "Group name is missing"}
		return
	}

	var location = m.groupLocation(group.Pk)
	var spec = &GroupSpec{
		Type: "team",
		Profile: Profile{
			DisplayName: group.Name,
		},
		Children: []string{},
	}
	if picture, ok := toString(group.Attributes["picture"]); ok && len(picture) > 0 {
		spec.Profile.Picture = picture
	}
	if len(group.ParentName) > 0 {
		spec.Parent = GroupRef(group.ParentName)
	}

	entity = &Entity{
		ApiVersion: ApiVersion,
		Kind:       KindGroup,
		Metadata: Metadata{
			Name:  Slug(group.Name),
			Title: group.Name,
			Annotations: map[string]string{
				AnnotationLocation:       location,
				AnnotationOriginLocation: location,
			},
		},
		Spec: spec,
	}
	return
}

// UserToEntity maps a user and resolves its memberOf list: every group that
// embeds a user summary with the same username, in group order.
func (m *Mapper) UserToEntity(user *authentik.User, groups []*authentik.Group) (entity *Entity) {
	var location = m.userLocation(user.Pk)
	var memberOf = make([]string, 0)
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, gu := range g.UsersObj {
			if gu != nil && gu.Username == user.Username {
				memberOf = append(memberOf, GroupRef(g.Name))
				break
			}
		}
	}

	entity = &Entity{
		ApiVersion: ApiVersion,
		Kind:       KindUser,
		Metadata: Metadata{
			Name:  user.Username,
			Title: user.Name,
			Annotations: map[string]string{
				AnnotationLocation:       location,
				AnnotationOriginLocation: location,
			},
			Links: []Link{{
				Url:   location,
				Title: "Authentik",
				Icon:  "message",
			}},
		},
		Spec: &UserSpec{
			Profile: Profile{
				DisplayName: user.Name,
				Email:       user.Email,
				Picture:     user.Avatar,
			},
			MemberOf: memberOf,
		},
	}
	return
}
