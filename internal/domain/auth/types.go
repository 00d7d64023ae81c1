package auth

// Package auth contains the client-side identity model: the signed-in user as
// returned by the backend, the permissions derived from it, and the persisted
// session record. It is pure and free of transport and storage concerns.

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Permission is an opaque capability name such as "Crear-pagos".
// Comparison is exact and case-sensitive.
type Permission string

// PermissionList is a list of permission names as delivered by the backend.
// Each entry on the wire is either a JSON string or an object with a string
// "name" field; any other shape is dropped while decoding.
type PermissionList []Permission

// UnmarshalJSON accepts a mixed array of strings and {"name": ...} objects.
// A JSON null decodes to an empty list.
func (p *PermissionList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(PermissionList, 0, len(raw))
	for _, item := range raw {
		if name, ok := permissionName(item); ok {
			out = append(out, name)
		}
	}
	*p = out
	return nil
}

func permissionName(item json.RawMessage) (Permission, bool) {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return Permission(s), true
	}
	var obj struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(item, &obj); err == nil && obj.Name != nil {
		return Permission(*obj.Name), true
	}
	return "", false
}

// Role is a named bundle of permissions.
type Role struct {
	ID          ID             `json:"id"`
	Name        string         `json:"name"`
	Permissions PermissionList `json:"permissions,omitempty"`
}

// ID is a backend identifier. The API emits numbers but some endpoints return
// them quoted, so both forms decode.
type ID int64

// UnmarshalJSON accepts a JSON number or a numeric string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || string(data) == "null" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}
	*id = ID(n)
	return nil
}

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// User is the signed-in resident or administrator as returned by the
// current-user endpoint. It is either fully populated or absent (nil).
type User struct {
	ID               ID             `json:"id"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	Phone            *string        `json:"phone,omitempty"`
	ProfilePhotoPath *string        `json:"profile_photo_path,omitempty"`
	Comments         *string        `json:"comments,omitempty"`
	DeletedAt        *time.Time     `json:"deleted_at,omitempty"`
	Roles            []Role         `json:"roles,omitempty"`
	Permissions      PermissionList `json:"permissions,omitempty"`
}

// Deleted reports whether the user carries a soft-delete marker.
func (u *User) Deleted() bool { return u != nil && u.DeletedAt != nil }

// RoleNames returns the user's role names in backend order.
func (u *User) RoleNames() []string {
	if u == nil {
		return nil
	}
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
