package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"social-system/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Forbidden(c, "you cannot perform this action")

	require.Equal(t, http.StatusOK, w.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 403, resp.Code)
	assert.Equal(t, "you cannot perform this action", resp.Message)
	assert.Nil(t, resp.Data)
}

func TestSuccessWithMessage(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SuccessWithMessage(c, "ok", gin.H{"id": 1})

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "ok", resp.Message)
	assert.Equal(t, map[string]interface{}{"id": float64(1)}, resp.Data)
}

func TestFilterUserInfoHidesPassword(t *testing.T) {
	u := &model.User{ID: 3, Username: "bob", Email: "bob@example.com", PasswordHash: "secret", CreatedAt: time.Now()}

	b, err := json.Marshal(FilterUserInfo(u))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
	assert.Contains(t, string(b), `"username":"bob"`)
	assert.Nil(t, FilterUserInfo(nil))
}

func TestFilterPostKeepsComments(t *testing.T) {
	p := &model.Post{
		ID:       1,
		AuthorID: 2,
		Entry:    "hello",
		Comments: []model.Comment{{ID: 5, PostID: 1, AuthorID: 3, Entry: "hi"}},
	}

	info := FilterPost(p, 2, 1)
	assert.Equal(t, int64(2), info.Likes)
	assert.Equal(t, int64(1), info.Dislikes)
	require.Len(t, info.Comments, 1)
	assert.Equal(t, "hi", info.Comments[0].Entry)
	assert.Nil(t, info.Author)
}
