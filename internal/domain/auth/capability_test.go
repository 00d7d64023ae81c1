package auth

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminUser() *User {
	return &User{
		ID:          1,
		Permissions: PermissionList{"ver-estado-cuenta", "Ver-calles"},
		Roles: []Role{
			{Name: "Admin", Permissions: PermissionList{"Ver-calles", "Crear-calles"}},
			{Name: "Tesorero", Permissions: PermissionList{"Crear-pagos", "Ver-calles"}},
		},
	}
}

func TestCompute_NilUser(t *testing.T) {
	set := Compute(nil)
	assert.Equal(t, 0, set.Len())
}

func TestCompute_UnionDeduplicated(t *testing.T) {
	set := Compute(adminUser())
	assert.Equal(t, []Permission{"Crear-calles", "Crear-pagos", "Ver-calles", "ver-estado-cuenta"}, set.Sorted())
}

func TestCompute_DoesNotMutateUser(t *testing.T) {
	u := adminUser()
	before, err := json.Marshal(u)
	require.NoError(t, err)

	_ = Compute(u)
	_ = Compute(u)

	after, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestCompute_DirectOnlyAndRoleOnly(t *testing.T) {
	direct := &User{Permissions: PermissionList{"A"}}
	roleOnly := &User{Roles: []Role{{Permissions: PermissionList{"B"}}}}

	assert.Equal(t, []Permission{"A"}, Compute(direct).Sorted())
	assert.Equal(t, []Permission{"B"}, Compute(roleOnly).Sorted())
}

func TestCompute_FromMixedWirePayload(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{
		"permissions": ["A", {"name": "B"}, 5, {"label": "C"}],
		"roles": [{"name": "r", "permissions": [{"name": "A"}, {"name": "D"}, false]}]
	}`), &u))

	assert.Equal(t, []Permission{"A", "B", "D"}, Compute(&u).Sorted())
}

func TestCan(t *testing.T) {
	u := adminUser()

	tests := []struct {
		name     string
		user     *User
		required []Permission
		want     bool
	}{
		{name: "single held", user: u, required: []Permission{"Crear-pagos"}, want: true},
		{name: "single missing", user: u, required: []Permission{"Eliminar-pagos"}, want: false},
		{name: "any of sequence", user: u, required: []Permission{"Eliminar-pagos", "Crear-calles"}, want: true},
		{name: "none of sequence", user: u, required: []Permission{"X", "Y"}, want: false},
		{name: "case sensitive", user: u, required: []Permission{"ver-calles"}, want: false},
		{name: "empty request", user: u, required: nil, want: false},
		{name: "nil user", user: nil, required: []Permission{"Ver-calles"}, want: false},
		{name: "nil user sequence", user: nil, required: []Permission{"Ver-calles", "Crear-pagos"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.user, tt.required...))
		})
	}
}

func TestCan_AnyOfMatchesIndividualChecks(t *testing.T) {
	u := adminUser()
	seqs := [][]Permission{
		{"Crear-pagos"},
		{"X", "Crear-pagos"},
		{"X", "Y", "Z"},
		{"Ver-calles", "ver-estado-cuenta"},
	}
	for _, seq := range seqs {
		want := false
		for _, p := range seq {
			want = want || Can(u, p)
		}
		assert.Equal(t, want, Can(u, seq...), "%v", seq)
	}
}

func TestRequirement(t *testing.T) {
	set := Compute(adminUser())

	assert.True(t, Requirement{}.Open())
	assert.True(t, Requirement{}.Satisfied(CapabilitySet{}))
	assert.True(t, AnyOf("Nope", "Crear-calles").Satisfied(set))
	assert.False(t, AnyOf("Nope").Satisfied(set))
}

func TestResolver_MemoizesPerUser(t *testing.T) {
	var r Resolver
	u := adminUser()

	first := r.For(u)
	u.Roles = append(u.Roles, Role{Permissions: PermissionList{"late"}})
	assert.False(t, r.For(u).Has("late"), "same user reference reuses the cached set")
	assert.Equal(t, first.Len(), r.For(u).Len())

	refreshed := adminUser()
	refreshed.Permissions = append(refreshed.Permissions, "late")
	assert.True(t, r.Can(refreshed, "late"))
	assert.False(t, r.Can(nil, "late"))
	assert.Equal(t, 0, r.For(nil).Len())
}

func TestResolver_ForReturnsACopy(t *testing.T) {
	var r Resolver
	u := adminUser()

	set := r.For(u)
	set["Injected"] = struct{}{}
	for p := range set {
		delete(set, p)
	}

	assert.False(t, r.Can(u, "Injected"))
	assert.True(t, r.Can(u, "Crear-calles"))
	assert.Positive(t, r.For(u).Len())
}

func TestResolver_ConcurrentUse(t *testing.T) {
	var r Resolver
	users := []*User{adminUser(), adminUser(), {Permissions: PermissionList{"only"}}}

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(u *User) {
			defer wg.Done()
			_ = r.Can(u, "Crear-pagos", "only")
		}(users[i%len(users)])
	}
	wg.Wait()

	assert.True(t, r.Can(users[2], "only"))
}
