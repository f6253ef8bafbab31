package catalog

const (
	ApiVersion = "backstage.io/v1alpha1"

	KindGroup = "Group"
	KindUser  = "User"

	AnnotationLocation       = "backstage.io/managed-by-location"
	AnnotationOriginLocation = "backstage.io/managed-by-origin-location"

	// DefaultNamespace prefixes every group reference: group:default/<slug>
	DefaultNamespace = "default"
)

type Entity struct {
	ApiVersion string   `json:"apiVersion" yaml:"apiVersion"`
	Kind       string   `json:"kind" yaml:"kind"`
	Metadata   Metadata `json:"metadata" yaml:"metadata"`
	// Spec is *GroupSpec or *UserSpec depending on Kind.
	Spec any `json:"spec" yaml:"spec"`
}

type Metadata struct {
	Name        string            `json:"name" yaml:"name"`
	Title       string            `json:"title,omitempty" yaml:"title,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Links       []Link            `json:"links,omitempty" yaml:"links,omitempty"`
}

type Link struct {
	Url   string `json:"url" yaml:"url"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Icon  string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

type Profile struct {
	DisplayName string `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	Picture     string `json:"picture,omitempty" yaml:"picture,omitempty"`
}

type GroupSpec struct {
	Type     string   `json:"type" yaml:"type"`
	Profile  Profile  `json:"profile" yaml:"profile"`
	Parent   string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Children []string `json:"children" yaml:"children"`
}

type UserSpec struct {
	Profile  Profile  `json:"profile" yaml:"profile"`
	MemberOf []string `json:"memberOf" yaml:"memberOf"`
}

func (e *Entity) GroupSpec() (spec *GroupSpec, ok bool) {
	spec, ok = e.Spec.(*GroupSpec)
	return
}

func (e *Entity) UserSpec() (spec *UserSpec, ok bool) {
	spec, ok = e.Spec.(*UserSpec)
	return
}

// GroupRef builds the entity reference used in spec.parent and spec.memberOf.
func GroupRef(name string) string {
	return "group:" + DefaultNamespace + "/" + Slug(name)
}
