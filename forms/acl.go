package forms

const (
	PermissionView = "view"
	PermissionEdit = "edit"
)

// ACL decides whether any of roles is denied permission on resource.
type ACL interface {
	IsDenied(roles []string, resource, permission string) bool
}

type ACLFunc func(roles []string, resource, permission string) bool

func (f ACLFunc) IsDenied(roles []string, resource, permission string) bool {
	return f(roles, resource, permission)
}

// SetResource names the ACL resource guarding a field; by default a field is
// its own resource.
func (f *Form) SetResource(name, resource string) {
	if f.resources == nil {
		f.resources = make(map[string]string)
	}
	f.resources[ValueKey(name)] = resource
}

func (f *Form) Resource(name string) string {
	if r := f.resources[ValueKey(name)]; r != "" {
		return r
	}
	return ValueKey(name)
}

// ApplyACL removes the fields roles may not view and locks the ones they may
// not edit.
func (f *Form) ApplyACL(acl ACL, roles []string) {
	for _, e := range f.Fields() {
		resource := f.Resource(e.Name())
		if acl.IsDenied(roles, resource, PermissionView) {
			f.RemoveField(e.Name())
		} else if acl.IsDenied(roles, resource, PermissionEdit) {
			e.SetReadonly(true)
		}
	}
	f.invalidate()
}
