package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

// fakeServer is a minimal GraphQL endpoint: it records the last request
// and answers with a canned response per operation name.
type fakeServer struct {
	lastAuth  string
	lastQuery string
	lastVars  map[string]any
	respond   func(c *gin.Context)
}

func newFakeServer(t *testing.T) (*fakeServer, *Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fs := &fakeServer{}
	router := gin.New()
	router.POST("/graphql", func(c *gin.Context) {
		fs.lastAuth = c.GetHeader("Authorization")
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fs.lastQuery = req.Query
		fs.lastVars = req.Variables
		fs.respond(c)
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL+"/graphql", staticToken("tok-123"), zap.NewNop())
	return fs, client
}

func TestCurrentUserSendsBearerToken(t *testing.T) {
	fs, client := newFakeServer(t)
	fs.respond = func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{"findUser": gin.H{"id": "u1", "username": "alice"}},
		})
	}

	u, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "Bearer tok-123", fs.lastAuth)
}

func TestCurrentUserNilForUnrecognizedCredential(t *testing.T) {
	fs, client := newFakeServer(t)
	fs.respond = func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"findUser": nil}})
	}

	u, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestNotLoggedInMapsToErrNotAuthenticated(t *testing.T) {
	fs, client := newFakeServer(t)
	fs.respond = func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"errors": []gin.H{{"message": "Not logged in"}},
		})
	}

	_, err := client.Chats(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestChatExistsMapsToErrChatExists(t *testing.T) {
	fs, client := newFakeServer(t)
	fs.respond = func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"errors": []gin.H{{"message": "Chat already exists"}},
		})
	}

	_, err := client.CreateChat(context.Background(), []string{"u2"})
	assert.ErrorIs(t, err, ErrChatExists)
}

func TestOtherServerErrorSurfacesMessage(t *testing.T) {
	fs, client := newFakeServer(t)
	fs.respond = func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"errors": []gin.H{{"message": "User does not exist"}},
		})
	}

	_, err := client.Login(context.Background(), "ghost", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotAuthenticated)
	assert.Contains(t, err.Error(), "User does not exist")
}

func TestChatsDecodesWireTimes(t *testing.T) {
	fs, client := newFakeServer(t)
	instant := time.Date(2024, 5, 1, 15, 4, 0, 0, time.UTC)
	fs.respond = func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{"findChats": []gin.H{{
				"id":    "c1",
				"admin": gin.H{"id": "u1", "username": "alice"},
				"users": []gin.H{{"id": "u2", "username": "bob"}},
				"messages": []gin.H{{
					"id":     "m1",
					"text":   "hi",
					"time":   instant.Format(time.RFC3339),
					"chatId": "c1",
					"user":   gin.H{"id": "u2", "username": "bob"},
				}},
			}}},
		})
	}

	chats, err := client.Chats(context.Background())
	require.NoError(t, err)
	require.Len(t, chats, 1)
	require.Len(t, chats[0].Messages, 1)
	assert.True(t, chats[0].Messages[0].Time.Equal(instant))
}

func TestCreateMessageVariables(t *testing.T) {
	fs, client := newFakeServer(t)
	fs.respond = func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"data": gin.H{"createMessage": gin.H{
				"id": "m1", "text": "hi", "time": time.Now().Format(time.RFC3339), "chatId": "c1",
			}},
		})
	}

	_, err := client.CreateMessage(context.Background(), CreateMessageInput{
		Text:         "hi",
		ChatID:       "c1",
		Notification: true,
		SocketID:     "sock-1",
		ReplyToID:    "m0",
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", fs.lastVars["text"])
	assert.Equal(t, "c1", fs.lastVars["chatId"])
	assert.Equal(t, true, fs.lastVars["notification"])
	assert.Equal(t, "sock-1", fs.lastVars["socketId"])
	assert.Equal(t, "m0", fs.lastVars["messageId"])
	_, hasForwarded := fs.lastVars["forwarded"]
	assert.False(t, hasForwarded)
}

func TestLoginReturnsToken(t *testing.T) {
	fs, client := newFakeServer(t)
	fs.respond = func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"login": "jwt-abc"}})
	}

	token, err := client.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", token)
	assert.Equal(t, "alice", fs.lastVars["username"])
}

func TestEmptyTokenSendsNoAuthorizationHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fs := &fakeServer{}
	router := gin.New()
	router.POST("/graphql", func(c *gin.Context) {
		fs.lastAuth = c.GetHeader("Authorization")
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"login": "jwt-abc"}})
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL+"/graphql", staticToken(""), zap.NewNop())
	_, err := client.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Empty(t, fs.lastAuth)
}
