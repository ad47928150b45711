package models

import "context"

// Action is an operation an editor attempts on an entity.
type Action string

const (
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// UserData is the persisted view of a user without credentials.
// It doubles as the verified caller identity and as the owner sub-record
// embedded in topic and post reads.
type UserData struct {
	UserID    int64   `db:"user_id" json:"user_id"`
	Username  string  `db:"username" json:"username"`
	Role      Role    `db:"role" json:"role"`
	Signature *string `db:"signature" json:"signature"`
	Avatar    *string `db:"avatar" json:"avatar"`
}

// UserInput is the registration payload.
type UserInput struct {
	Username string `json:"username"`
}

// UserPatch carries the user fields an editor may change. An explicit null
// clears the column.
type UserPatch struct {
	Signature Optional[string] `json:"signature"`
	Avatar    Optional[string] `json:"avatar"`
}

// UserChanges is the merged set of mutable user columns to persist.
type UserChanges struct {
	Signature *string `json:"signature"`
	Avatar    *string `json:"avatar"`
}

// Columns maps the changes onto users table columns.
func (c UserChanges) Columns() map[string]any {
	return map[string]any{
		"signature": c.Signature,
		"avatar":    c.Avatar,
	}
}

// UserFetcher loads a non-deleted user row by id.
type UserFetcher func(ctx context.Context, id int64) (*UserData, error)

// User is the user entity together with its resolved permission.
type User struct {
	data       UserData
	permission Permission
}

// NewUser builds a transient user. Its permission is the zero value.
func NewUser(data UserData) *User {
	return &User{data: data}
}

// NewUserWithPermission builds a user carrying an explicit permission set.
func NewUserWithPermission(data UserData, permission Permission) *User {
	return &User{data: data, permission: permission}
}

// UserFromIdentity builds a user whose permission is resolved from its role.
func UserFromIdentity(identity UserData) *User {
	return NewUserWithPermission(identity, PermissionForRole(identity.Role))
}

// UserFromDB loads a user by id and resolves its permission.
func UserFromDB(ctx context.Context, id int64, fetch UserFetcher) (*User, error) {
	data, err := fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrUserNotFound
	}
	return UserFromIdentity(*data), nil
}

func (u *User) ID() int64              { return u.data.UserID }
func (u *User) Username() string       { return u.data.Username }
func (u *User) Role() Role             { return u.data.Role }
func (u *User) Permission() Permission { return u.permission }

// EditorHasPermission checks identity first, then the editor's user capabilities.
func (u *User) EditorHasPermission(editor *User, action Action) bool {
	if editor == nil {
		return false
	}
	switch action {
	case ActionUpdate:
		return editor.ID() == u.ID() || editor.permission.EditUser
	case ActionDelete:
		return editor.ID() == u.ID() || editor.permission.DeleteUser
	}
	return false
}

// Update merges patch into the user after the authorization check and
// returns the mutable columns to persist. On error the user is unchanged.
func (u *User) Update(patch UserPatch, editor *User) (UserChanges, error) {
	if !u.EditorHasPermission(editor, ActionUpdate) {
		return UserChanges{}, ErrForbidden
	}
	u.data.Signature = patch.Signature.Apply(u.data.Signature)
	u.data.Avatar = patch.Avatar.Apply(u.data.Avatar)
	return UserChanges{Signature: u.data.Signature, Avatar: u.data.Avatar}, nil
}

// ToData returns the serializable view. The permission is not part of it.
func (u *User) ToData() UserData {
	return u.data
}
