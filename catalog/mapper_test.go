package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keepersecurity.com/ksm-catalog-sync/authentik"
)

const testBaseUrl = "https://auth.example.com/api/v3/core"

func TestGroupToEntity(t *testing.T) {
	m := NewMapper(testBaseUrl + "/")

	entity, err := m.GroupToEntity(&authentik.Group{
		Pk:         "8f2c",
		Name:       "Platform Team",
		ParentName: "Engineering Org",
		Attributes: map[string]any{"picture": "https://img/platform.png"},
	})
	require.NoError(t, err)

	assert.Equal(t, ApiVersion, entity.ApiVersion)
	assert.Equal(t, KindGroup, entity.Kind)
	assert.Equal(t, "platform-team", entity.Metadata.Name)
	assert.Equal(t, "Platform Team", entity.Metadata.Title)
	assert.Equal(t, map[string]string{
		AnnotationLocation:       "url:https://auth.example.com/api/v3/core/groups/8f2c/",
		AnnotationOriginLocation: "url:https://auth.example.com/api/v3/core/groups/8f2c/",
	}, entity.Metadata.Annotations)
	assert.Empty(t, entity.Metadata.Links)

	spec, ok := entity.GroupSpec()
	require.True(t, ok)
	assert.Equal(t, "team", spec.Type)
	assert.Equal(t, "Platform Team", spec.Profile.DisplayName)
	assert.Equal(t, "https://img/platform.png", spec.Profile.Picture)
	assert.Equal(t, "group:default/engineering-org", spec.Parent)
	assert.NotNil(t, spec.Children)
	assert.Empty(t, spec.Children)
}

func TestGroupToEntity_OptionalFields(t *testing.T) {
	m := NewMapper(testBaseUrl)

	tests := []struct {
		name       string
		attributes map[string]any
	}{
		{name: "nil attributes", attributes: nil},
		{name: "no picture", attributes: map[string]any{"notes": "x"}},
		{name: "empty picture", attributes: map[string]any{"picture": ""}},
		{name: "non-string picture", attributes: map[string]any{"picture": 42.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity, err := m.GroupToEntity(&authentik.Group{Pk: "1", Name: "Solo", Attributes: tt.attributes})
			require.NoError(t, err)

			spec, ok := entity.GroupSpec()
			require.True(t, ok)
			assert.Empty(t, spec.Profile.Picture)
			assert.Empty(t, spec.Parent)
			assert.Equal(t, []string{}, spec.Children)
		})
	}
}

func TestGroupToEntity_MissingName(t *testing.T) {
	m := NewMapper(testBaseUrl)

	for _, g := range []*authentik.Group{
		{Pk: "42"},
		{Pk: "43", Name: "", ParentName: "Parent", IsSuperuser: true, UsersObj: []*authentik.User{{Username: "alice"}}},
	} {
		entity, err := m.GroupToEntity(g)
		assert.Nil(t, entity)

		var mappingErr *MappingError
		require.True(t, errors.As(err, &mappingErr))
		assert.Equal(t, g.Pk, mappingErr.Pk)
		assert.Equal(t, "Group name is missing for group: "+g.Pk, err.Error())
	}

	_, err := m.GroupToEntity(nil)
	var mappingErr *MappingError
	assert.True(t, errors.As(err, &mappingErr))
}

func TestUserToEntity(t *testing.T) {
	m := NewMapper(testBaseUrl)
	groups := []*authentik.Group{
		{Pk: "a", Name: "Team A", Users: []int64{7}, UsersObj: []*authentik.User{{Pk: 7, Username: "alice"}}},
		{Pk: "b", Name: "Team B"},
		{Pk: "c", Name: "On Call", UsersObj: []*authentik.User{{Pk: 9, Username: "bob"}, {Pk: 7, Username: "alice"}}},
	}

	entity := m.UserToEntity(&authentik.User{
		Pk:       7,
		Username: "alice",
		Name:     "Alice Liddell",
		Email:    "a@x.com",
		Avatar:   "https://img/alice.png",
	}, groups)

	assert.Equal(t, KindUser, entity.Kind)
	assert.Equal(t, ApiVersion, entity.ApiVersion)
	assert.Equal(t, "alice", entity.Metadata.Name)
	assert.Equal(t, "Alice Liddell", entity.Metadata.Title)
	assert.Equal(t, "url:https://auth.example.com/api/v3/core/users/7/", entity.Metadata.Annotations[AnnotationLocation])
	assert.Equal(t, "url:https://auth.example.com/api/v3/core/users/7/", entity.Metadata.Annotations[AnnotationOriginLocation])
	assert.Equal(t, []Link{{Url: "url:https://auth.example.com/api/v3/core/users/7/", Title: "Authentik", Icon: "message"}},
		entity.Metadata.Links)

	spec, ok := entity.UserSpec()
	require.True(t, ok)
	assert.Equal(t, Profile{DisplayName: "Alice Liddell", Email: "a@x.com", Picture: "https://img/alice.png"}, spec.Profile)
	assert.Equal(t, []string{"group:default/team-a", "group:default/on-call"}, spec.MemberOf)
}

func TestUserToEntity_UsernameIsVerbatim(t *testing.T) {
	entity := NewMapper(testBaseUrl).UserToEntity(&authentik.User{Pk: 1, Username: "Alice.Smith", Email: "a@x.com"}, nil)
	assert.Equal(t, "Alice.Smith", entity.Metadata.Name)

	spec, _ := entity.UserSpec()
	assert.Equal(t, []string{}, spec.MemberOf)
}

// Membership is resolved from the embedded user summaries by username only.
func TestUserToEntity_MembershipMatchesUsernameNotId(t *testing.T) {
	m := NewMapper(testBaseUrl)
	groups := []*authentik.Group{
		// id listed, but no embedded summary: not a member
		{Pk: "a", Name: "Ids Only", Users: []int64{7}},
		// summary with a different case: not a member
		{Pk: "b", Name: "Case", UsersObj: []*authentik.User{{Pk: 7, Username: "Alice"}}},
		// same username, different id: member
		{Pk: "c", Name: "Renamed", UsersObj: []*authentik.User{{Pk: 99, Username: "alice"}}},
	}

	spec, _ := m.UserToEntity(&authentik.User{Pk: 7, Username: "alice", Email: "a@x.com"}, groups).UserSpec()
	assert.Equal(t, []string{"group:default/renamed"}, spec.MemberOf)
}
