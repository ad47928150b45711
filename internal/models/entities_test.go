package models

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

var (
	authorA = UserData{UserID: 1, Username: "anna", Role: RoleAuthor}
	authorB = UserData{UserID: 2, Username: "boris", Role: RoleAuthor}
	modC    = UserData{UserID: 3, Username: "chris", Role: RoleModerator}
	adminD  = UserData{UserID: 4, Username: "dora", Role: RoleAdmin}
)

func newTestTopic(owner UserData) *Topic {
	return NewTopic(TopicData{
		TopicID:   10,
		Title:     "Original",
		Category:  1,
		Created:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		CreatedBy: owner,
	}, UserFromIdentity(owner))
}

func newTestPost(author UserData) *Post {
	return NewPost(PostData{
		PostID:  20,
		TopicID: 10,
		Title:   strPtr("Hello"),
		Body:    "First body",
		Author:  author,
	}, UserFromIdentity(author))
}

func TestTopicEditorHasPermission(t *testing.T) {
	topic := newTestTopic(authorA)

	for _, action := range []Action{ActionUpdate, ActionDelete} {
		assert.True(t, topic.EditorHasPermission(UserFromIdentity(authorA), action), "owner %s", action)
		assert.False(t, topic.EditorHasPermission(UserFromIdentity(authorB), action), "stranger %s", action)
		assert.True(t, topic.EditorHasPermission(UserFromIdentity(modC), action), "moderator %s", action)
		assert.True(t, topic.EditorHasPermission(UserFromIdentity(adminD), action), "admin %s", action)
	}
	assert.False(t, topic.EditorHasPermission(nil, ActionUpdate))

	// The owner keeps access even with an unknown role.
	owner := authorA
	owner.Role = Role("banned")
	assert.True(t, topic.EditorHasPermission(UserFromIdentity(owner), ActionDelete))
}

func TestUserEditorHasPermission(t *testing.T) {
	target := UserFromIdentity(authorA)

	assert.True(t, target.EditorHasPermission(UserFromIdentity(authorA), ActionUpdate))
	assert.False(t, target.EditorHasPermission(UserFromIdentity(modC), ActionUpdate))
	assert.False(t, target.EditorHasPermission(UserFromIdentity(modC), ActionDelete))
	assert.True(t, target.EditorHasPermission(UserFromIdentity(adminD), ActionDelete))
	assert.False(t, target.EditorHasPermission(NewUser(adminD), ActionDelete), "transient admin has no capabilities")
}

func TestPostAuthorizationIsIdentityOnly(t *testing.T) {
	post := newTestPost(authorB)

	for _, action := range []Action{ActionUpdate, ActionDelete} {
		assert.True(t, post.EditorHasPermission(UserFromIdentity(authorB), action))
		assert.False(t, post.EditorHasPermission(UserFromIdentity(modC), action))
		assert.False(t, post.EditorHasPermission(UserFromIdentity(adminD), action))
	}

	_, err := post.Update(PostPatch{Body: strPtr("hijack")}, UserFromIdentity(adminD))
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "First body", post.ToData().Body)
}

func TestTopicUpdateScenario(t *testing.T) {
	topic := newTestTopic(authorA)

	changes, err := topic.Update(TopicPatch{Title: strPtr("By owner")}, UserFromIdentity(authorA))
	require.NoError(t, err)
	assert.Equal(t, TopicChanges{Title: "By owner"}, changes)
	assert.Equal(t, "By owner", topic.Title())

	_, err = topic.Update(TopicPatch{Title: strPtr("By stranger")}, UserFromIdentity(authorB))
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "By owner", topic.Title())

	editor := NewUserWithPermission(UserData{UserID: 5}, Permission{EditTopic: true})
	_, err = topic.Update(TopicPatch{Title: strPtr("By editor")}, editor)
	require.NoError(t, err)
	assert.Equal(t, "By editor", topic.Title())
}

func TestTopicUpdateValidation(t *testing.T) {
	topic := newTestTopic(authorA)
	editor := UserFromIdentity(authorA)

	_, err := topic.Update(TopicPatch{Title: strPtr("   ")}, editor)
	assert.ErrorIs(t, err, ErrInvalidInput)

	long := make([]byte, maxTitleLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = topic.Update(TopicPatch{Title: strPtr(string(long))}, editor)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "Original", topic.Title())
}

func TestEmptyPatchKeepsMutableFields(t *testing.T) {
	topic := newTestTopic(authorA)
	before := topic.ToData()
	topicChanges, err := topic.Update(TopicPatch{}, UserFromIdentity(authorA))
	require.NoError(t, err)
	assert.Equal(t, TopicChanges{Title: before.Title}, topicChanges)
	assert.Equal(t, before, topic.ToData())

	post := newTestPost(authorB)
	postChanges, err := post.Update(PostPatch{}, UserFromIdentity(authorB))
	require.NoError(t, err)
	assert.Equal(t, PostChanges{Title: strPtr("Hello"), Body: "First body"}, postChanges)

	user := UserFromIdentity(UserData{UserID: 1, Signature: strPtr("sig")})
	userChanges, err := user.Update(UserPatch{}, UserFromIdentity(authorA))
	require.NoError(t, err)
	assert.Equal(t, UserChanges{Signature: strPtr("sig")}, userChanges)
}

func TestImmutableKeysAreIgnored(t *testing.T) {
	topic := newTestTopic(authorA)
	payload := []byte(`{"topic_id": 999, "created_by": {"user_id": 2}, "created": "2000-01-01T00:00:00Z", "title": "Changed"}`)

	var patch TopicPatch
	require.NoError(t, json.Unmarshal(payload, &patch))

	_, err := topic.Update(patch, UserFromIdentity(authorA))
	require.NoError(t, err)

	data := topic.ToData()
	assert.Equal(t, int64(10), data.TopicID)
	assert.Equal(t, authorA, data.CreatedBy)
	assert.Equal(t, 2024, data.Created.Year())
	assert.Equal(t, "Changed", data.Title)

	post := newTestPost(authorB)
	var postPatch PostPatch
	require.NoError(t, json.Unmarshal([]byte(`{"topic_id": 1, "author": {"user_id": 1}, "body": "edited"}`), &postPatch))
	_, err = post.Update(postPatch, UserFromIdentity(authorB))
	require.NoError(t, err)
	assert.Equal(t, int64(10), post.TopicID())
	assert.Equal(t, authorB.UserID, post.Author().ID())
	assert.Equal(t, "edited", post.ToData().Body)
}

func TestPostUpdateRejectsEmptyBody(t *testing.T) {
	post := newTestPost(authorB)
	_, err := post.Update(PostPatch{Title: Some("New"), Body: strPtr("")}, UserFromIdentity(authorB))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "Hello", *post.ToData().Title)
}

func TestToDataExcludesPermission(t *testing.T) {
	topic := newTestTopic(adminD)
	raw, err := json.Marshal(topic.ToData())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.NotContains(t, decoded, "permission")
	owner, ok := decoded["created_by"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, owner, "permission")
	assert.Equal(t, "dora", owner["username"])
}

func TestFromDB(t *testing.T) {
	ctx := context.Background()

	topic, err := TopicFromDB(ctx, 10, func(ctx context.Context, id int64) (*TopicData, error) {
		return &TopicData{TopicID: id, CreatedBy: modC}, nil
	})
	require.NoError(t, err)
	assert.True(t, topic.CreatedBy().Permission().DeleteTopic)

	_, err = TopicFromDB(ctx, 10, func(ctx context.Context, id int64) (*TopicData, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = PostFromDB(ctx, 20, func(ctx context.Context, id int64) (*PostData, error) { return nil, ErrPostNotFound })
	assert.ErrorIs(t, err, ErrPostNotFound)

	boom := errors.New("boom")
	_, err = UserFromDB(ctx, 1, func(ctx context.Context, id int64) (*UserData, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	user, err := UserFromDB(ctx, 4, func(ctx context.Context, id int64) (*UserData, error) { return &adminD, nil })
	require.NoError(t, err)
	assert.True(t, user.Permission().EditUser)
}

func TestValidateUsername(t *testing.T) {
	name, err := ValidateUsername("  valid_name-1 ")
	require.NoError(t, err)
	assert.Equal(t, "valid_name-1", name)

	for _, bad := range []string{"", "ab", "has space", "way_too_long_username_for_the_forum"} {
		_, err := ValidateUsername(bad)
		assert.ErrorIs(t, err, ErrInvalidInput, bad)
	}
}

func TestUserUpdateExplicitNullClears(t *testing.T) {
	user := UserFromIdentity(UserData{UserID: 1, Signature: strPtr("old sig"), Avatar: strPtr("a.png")})

	var patch UserPatch
	require.NoError(t, json.Unmarshal([]byte(`{"signature": null}`), &patch))
	assert.True(t, patch.Signature.Set)
	assert.False(t, patch.Avatar.Set)

	changes, err := user.Update(patch, UserFromIdentity(authorA))
	require.NoError(t, err)
	assert.Nil(t, changes.Signature)
	require.NotNil(t, changes.Avatar)
	assert.Equal(t, "a.png", *changes.Avatar)
	assert.Nil(t, user.ToData().Signature)
}

func TestUserUpdateAbsentKeyKeeps(t *testing.T) {
	user := UserFromIdentity(UserData{UserID: 1, Signature: strPtr("old sig")})

	var patch UserPatch
	require.NoError(t, json.Unmarshal([]byte(`{"avatar": "b.png"}`), &patch))

	changes, err := user.Update(patch, UserFromIdentity(authorA))
	require.NoError(t, err)
	require.NotNil(t, changes.Signature)
	assert.Equal(t, "old sig", *changes.Signature)
	require.NotNil(t, changes.Avatar)
	assert.Equal(t, "b.png", *changes.Avatar)
}

func TestPostUpdateTitleNullability(t *testing.T) {
	post := newTestPost(authorB)

	var keep PostPatch
	require.NoError(t, json.Unmarshal([]byte(`{"body": "edited"}`), &keep))
	changes, err := post.Update(keep, UserFromIdentity(authorB))
	require.NoError(t, err)
	require.NotNil(t, changes.Title)
	assert.Equal(t, "Hello", *changes.Title)

	var clear PostPatch
	require.NoError(t, json.Unmarshal([]byte(`{"title": null}`), &clear))
	changes, err = post.Update(clear, UserFromIdentity(authorB))
	require.NoError(t, err)
	assert.Nil(t, changes.Title)
	assert.Equal(t, "edited", changes.Body)
	assert.Nil(t, post.ToData().Title)
}

func TestOptionalJSON(t *testing.T) {
	raw, err := json.Marshal(UserPatch{Signature: Some("x"), Avatar: Null[string]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"signature": "x", "avatar": null}`, string(raw))

	var patch UserPatch
	require.NoError(t, json.Unmarshal(raw, &patch))
	assert.Equal(t, UserPatch{Signature: Some("x"), Avatar: Null[string]()}, patch)

	assert.Error(t, json.Unmarshal([]byte(`{"signature": 5}`), &patch))
}
