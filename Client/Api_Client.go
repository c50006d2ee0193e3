package Client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"panote/database"
)

// ApiInterface 客户端访问资源接口的抽象
// 状态仓库只依赖这个接口，测试时可以替换为假实现
type ApiInterface interface {
	FetchNotes() ([]database.Note, error)
	FetchTrash() ([]database.Note, error)
	FetchTags() ([]database.Tag, error)
	FetchMessages() ([]database.ChatMessage, error)

	CreateNote(title, content string) (*database.Note, error)
	UpdateNote(id string, updates map[string]interface{}) error
	TrashNote(id string) error
	RestoreNote(id string) error
	PurgeNote(id string) error

	CreateTag(name string) (*database.Tag, error)
	DeleteTag(id string) error

	PostMessage(role, content string, attachments []string) error
	RequestChatReply(turns []database.ChatTurn) (string, error)
}

// ApiClient HTTP实现
type ApiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewApiClient(baseURL, token string) *ApiClient {
	return &ApiClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{},
	}
}

// doJSON 发送JSON请求，out 为 nil 时忽略响应体
func (c *ApiClient) doJSON(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return errors.New(apiErr.Error)
		}
		return fmt.Errorf("请求失败: %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *ApiClient) FetchNotes() ([]database.Note, error) {
	var notes []database.Note
	err := c.doJSON(http.MethodGet, "/api/notes", nil, &notes)
	return notes, err
}

func (c *ApiClient) FetchTrash() ([]database.Note, error) {
	var notes []database.Note
	err := c.doJSON(http.MethodGet, "/api/trash", nil, &notes)
	return notes, err
}

func (c *ApiClient) FetchTags() ([]database.Tag, error) {
	var tags []database.Tag
	err := c.doJSON(http.MethodGet, "/api/tags", nil, &tags)
	return tags, err
}

func (c *ApiClient) FetchMessages() ([]database.ChatMessage, error) {
	var messages []database.ChatMessage
	err := c.doJSON(http.MethodGet, "/api/chat-messages", nil, &messages)
	return messages, err
}

func (c *ApiClient) CreateNote(title, content string) (*database.Note, error) {
	var note database.Note
	err := c.doJSON(http.MethodPost, "/api/notes", map[string]interface{}{
		"title":   title,
		"content": content,
	}, &note)
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *ApiClient) UpdateNote(id string, updates map[string]interface{}) error {
	return c.doJSON(http.MethodPatch, "/api/notes/"+id, updates, nil)
}

func (c *ApiClient) TrashNote(id string) error {
	return c.doJSON(http.MethodDelete, "/api/notes/"+id, nil, nil)
}

func (c *ApiClient) RestoreNote(id string) error {
	return c.doJSON(http.MethodPost, "/api/trash/"+id+"/restore", nil, nil)
}

func (c *ApiClient) PurgeNote(id string) error {
	return c.doJSON(http.MethodDelete, "/api/trash/"+id, nil, nil)
}

func (c *ApiClient) CreateTag(name string) (*database.Tag, error) {
	var tag database.Tag
	err := c.doJSON(http.MethodPost, "/api/tags", map[string]interface{}{"name": name}, &tag)
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (c *ApiClient) DeleteTag(id string) error {
	return c.doJSON(http.MethodDelete, "/api/tags/"+id, nil, nil)
}

func (c *ApiClient) PostMessage(role, content string, attachments []string) error {
	return c.doJSON(http.MethodPost, "/api/chat-messages", map[string]interface{}{
		"role":        role,
		"content":     content,
		"attachments": attachments,
	}, nil)
}

func (c *ApiClient) RequestChatReply(turns []database.ChatTurn) (string, error) {
	var resp database.AITextResponse
	err := c.doJSON(http.MethodPost, "/api/ai/chat", database.AIChatRequest{Messages: turns}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
