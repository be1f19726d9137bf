package signature

const (
	allVisibilities uint8 = 1<<Public | 1<<Protected | 1<<Package | 1<<Private
	allRoles        uint8 = 1<<RoleMethod | 1<<RoleGetterOrSetter | 1<<RoleConstructor | 1<<RoleStatic
)

// OperationMask selects operation signatures. A new mask covers every
// signature; the builder methods narrow it. Masks are mutable and should not
// be modified once shared between goroutines.
type OperationMask struct {
	visibilities   uint8
	roles          uint8
	forbidAbstract bool
}

func NewOperationMask() *OperationMask {
	return &OperationMask{visibilities: allVisibilities, roles: allRoles}
}

// RestrictVisibilitiesTo keeps only the given visibilities.
func (m *OperationMask) RestrictVisibilitiesTo(vs ...Visibility) *OperationMask {
	m.visibilities = 0
	for _, v := range vs {
		m.visibilities |= 1 << v
	}
	return m
}

func (m *OperationMask) RemoveVisibilities(vs ...Visibility) *OperationMask {
	for _, v := range vs {
		m.visibilities &^= 1 << v
	}
	return m
}

// RestrictRolesTo keeps only the given roles.
func (m *OperationMask) RestrictRolesTo(rs ...Role) *OperationMask {
	m.roles = 0
	for _, r := range rs {
		m.roles |= 1 << r
	}
	return m
}

func (m *OperationMask) RemoveRoles(rs ...Role) *OperationMask {
	for _, r := range rs {
		m.roles &^= 1 << r
	}
	return m
}

func (m *OperationMask) ForbidAbstract() *OperationMask {
	m.forbidAbstract = true
	return m
}

func (m *OperationMask) Covers(sig OperationSignature) bool {
	if m == nil {
		return true
	}
	if m.visibilities&(1<<sig.Visibility) == 0 || m.roles&(1<<sig.Role) == 0 {
		return false
	}
	return !(m.forbidAbstract && sig.Abstract)
}

// FieldMask selects field signatures, starting from all of them.
type FieldMask struct {
	visibilities uint8
	forbidStatic bool
	forbidFinal  bool
}

func NewFieldMask() *FieldMask {
	return &FieldMask{visibilities: allVisibilities}
}

func (m *FieldMask) RestrictVisibilitiesTo(vs ...Visibility) *FieldMask {
	m.visibilities = 0
	for _, v := range vs {
		m.visibilities |= 1 << v
	}
	return m
}

func (m *FieldMask) ForbidStatic() *FieldMask {
	m.forbidStatic = true
	return m
}

func (m *FieldMask) ForbidFinal() *FieldMask {
	m.forbidFinal = true
	return m
}

func (m *FieldMask) Covers(sig FieldSignature) bool {
	if m == nil {
		return true
	}
	if m.visibilities&(1<<sig.Visibility) == 0 {
		return false
	}
	if m.forbidStatic && sig.Static {
		return false
	}
	return !(m.forbidFinal && sig.Final)
}
