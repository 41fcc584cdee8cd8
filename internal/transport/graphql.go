package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Shri333/webtext-frontend/internal/model"
	"go.uber.org/zap"
)

// Server error messages with a local meaning. Anything else is surfaced to
// the caller verbatim.
const (
	msgNotLoggedIn = "Not logged in"
	msgChatExists  = "Chat already exists"
)

// TokenSource yields the current credential. It is read per request so a
// re-login mid-session takes effect without rebuilding the client.
type TokenSource interface {
	Token() string
}

// Client speaks GraphQL over HTTP. It implements both Queries and
// Mutations against a single endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	tokens   TokenSource
	logger   *zap.Logger
}

var (
	_ Queries   = (*Client)(nil)
	_ Mutations = (*Client)(nil)
)

func NewClient(endpoint string, tokens TokenSource, logger *zap.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
		tokens:   tokens,
		logger:   logger,
	}
}

type gqlRequest struct {
	Query     string `json:"query"`
	Variables any    `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// do posts one operation and decodes the data payload into out.
func (c *Client) do(ctx context.Context, op string, query string, variables any, out any) error {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode %s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var decoded gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	if len(decoded.Errors) > 0 {
		return c.mapError(op, decoded.Errors[0].Message)
	}
	if out != nil {
		if err := json.Unmarshal(decoded.Data, out); err != nil {
			return fmt.Errorf("decode %s data: %w", op, err)
		}
	}
	return nil
}

func (c *Client) mapError(op, message string) error {
	switch message {
	case msgNotLoggedIn:
		return ErrNotAuthenticated
	case msgChatExists:
		return ErrChatExists
	default:
		c.logger.Debug("server error", zap.String("op", op), zap.String("message", message))
		return fmt.Errorf("%s: %s", op, message)
	}
}

func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var data struct {
		FindUser *model.User `json:"findUser"`
	}
	if err := c.do(ctx, "findUser", findUserQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.FindUser, nil
}

func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var data struct {
		FindUsers []model.User `json:"findUsers"`
	}
	if err := c.do(ctx, "findUsers", findUsersQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.FindUsers, nil
}

func (c *Client) Chats(ctx context.Context) ([]model.WireFullChat, error) {
	var data struct {
		FindChats []model.WireFullChat `json:"findChats"`
	}
	if err := c.do(ctx, "findChats", findChatsQuery, nil, &data); err != nil {
		return nil, err
	}
	return data.FindChats, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var data struct {
		Login string `json:"login"`
	}
	vars := map[string]any{"username": username, "password": password}
	if err := c.do(ctx, "login", loginMutation, vars, &data); err != nil {
		return "", err
	}
	return data.Login, nil
}

func (c *Client) Register(ctx context.Context, username, password string) (model.User, error) {
	var data struct {
		CreateUser model.User `json:"createUser"`
	}
	vars := map[string]any{"username": username, "password": password}
	if err := c.do(ctx, "createUser", createUserMutation, vars, &data); err != nil {
		return model.User{}, err
	}
	return data.CreateUser, nil
}

func (c *Client) UpdateProfile(ctx context.Context, username, password string) (model.User, error) {
	var data struct {
		UpdateUser model.User `json:"updateUser"`
	}
	vars := map[string]any{"username": username, "password": password}
	if err := c.do(ctx, "updateUser", updateUserMutation, vars, &data); err != nil {
		return model.User{}, err
	}
	return data.UpdateUser, nil
}

func (c *Client) DeleteAccount(ctx context.Context) (model.User, error) {
	var data struct {
		DeleteUser model.User `json:"deleteUser"`
	}
	if err := c.do(ctx, "deleteUser", deleteUserMutation, nil, &data); err != nil {
		return model.User{}, err
	}
	return data.DeleteUser, nil
}

func (c *Client) CreateChat(ctx context.Context, userIDs []string) (model.WireFullChat, error) {
	var data struct {
		CreateChat model.WireFullChat `json:"createChat"`
	}
	vars := map[string]any{"userIds": userIDs}
	if err := c.do(ctx, "createChat", createChatMutation, vars, &data); err != nil {
		return model.WireFullChat{}, err
	}
	return data.CreateChat, nil
}

func (c *Client) LeaveChat(ctx context.Context, chatID string) (model.WireChat, error) {
	var data struct {
		LeaveChat model.WireChat `json:"leaveChat"`
	}
	vars := map[string]any{"chatId": chatID}
	if err := c.do(ctx, "leaveChat", leaveChatMutation, vars, &data); err != nil {
		return model.WireChat{}, err
	}
	return data.LeaveChat, nil
}

func (c *Client) RenameChat(ctx context.Context, chatID, name string) (model.WireChat, error) {
	var data struct {
		RenameChat model.WireChat `json:"renameChat"`
	}
	vars := map[string]any{"chatId": chatID, "name": name}
	if err := c.do(ctx, "renameChat", renameChatMutation, vars, &data); err != nil {
		return model.WireChat{}, err
	}
	return data.RenameChat, nil
}

func (c *Client) ChangeAdmin(ctx context.Context, chatID, userID string) (model.WireChat, error) {
	var data struct {
		ChangeAdmin model.WireChat `json:"changeAdmin"`
	}
	vars := map[string]any{"chatId": chatID, "userId": userID}
	if err := c.do(ctx, "changeAdmin", changeAdminMutation, vars, &data); err != nil {
		return model.WireChat{}, err
	}
	return data.ChangeAdmin, nil
}

func (c *Client) AddUsers(ctx context.Context, chatID string, userIDs []string) (model.WireChat, error) {
	var data struct {
		AddUsers model.WireChat `json:"addUsers"`
	}
	vars := map[string]any{"chatId": chatID, "userIds": userIDs}
	if err := c.do(ctx, "addUsers", addUsersMutation, vars, &data); err != nil {
		return model.WireChat{}, err
	}
	return data.AddUsers, nil
}

func (c *Client) RemoveUsers(ctx context.Context, chatID string, userIDs []string) (model.WireChat, error) {
	var data struct {
		RemoveUsers model.WireChat `json:"removeUsers"`
	}
	vars := map[string]any{"chatId": chatID, "userIds": userIDs}
	if err := c.do(ctx, "removeUsers", removeUsersMutation, vars, &data); err != nil {
		return model.WireChat{}, err
	}
	return data.RemoveUsers, nil
}

func (c *Client) DeleteChat(ctx context.Context, chatID string) (model.WireChat, error) {
	var data struct {
		DeleteChat model.WireChat `json:"deleteChat"`
	}
	vars := map[string]any{"chatId": chatID}
	if err := c.do(ctx, "deleteChat", deleteChatMutation, vars, &data); err != nil {
		return model.WireChat{}, err
	}
	return data.DeleteChat, nil
}

func (c *Client) CreateMessage(ctx context.Context, in CreateMessageInput) (model.WireMessage, error) {
	var data struct {
		CreateMessage model.WireMessage `json:"createMessage"`
	}
	vars := map[string]any{"text": in.Text, "chatId": in.ChatID}
	if in.Forwarded {
		vars["forwarded"] = true
	}
	if in.Notification {
		vars["notification"] = true
	}
	if in.SocketID != "" {
		vars["socketId"] = in.SocketID
	}
	if in.ReplyToID != "" {
		vars["messageId"] = in.ReplyToID
	}
	if err := c.do(ctx, "createMessage", createMessageMutation, vars, &data); err != nil {
		return model.WireMessage{}, err
	}
	return data.CreateMessage, nil
}

func (c *Client) UpdateMessage(ctx context.Context, messageID, text string) (model.WireMessage, error) {
	var data struct {
		UpdateMessage model.WireMessage `json:"updateMessage"`
	}
	vars := map[string]any{"messageId": messageID, "text": text}
	if err := c.do(ctx, "updateMessage", updateMessageMutation, vars, &data); err != nil {
		return model.WireMessage{}, err
	}
	return data.UpdateMessage, nil
}

func (c *Client) DeleteMessage(ctx context.Context, messageID string) (model.WireMessage, error) {
	var data struct {
		DeleteMessage model.WireMessage `json:"deleteMessage"`
	}
	vars := map[string]any{"messageId": messageID}
	if err := c.do(ctx, "deleteMessage", deleteMessageMutation, vars, &data); err != nil {
		return model.WireMessage{}, err
	}
	return data.DeleteMessage, nil
}
