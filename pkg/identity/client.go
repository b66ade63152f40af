package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ==================== 身份提供商客户端 ====================

// Identity 提供商侧的用户身份
type Identity struct {
	Subject  string                 `json:"id"`
	Email    string                 `json:"email"`
	Phone    string                 `json:"phone"`
	Metadata map[string]interface{} `json:"user_metadata"`
}

// Tokens 提供商签发的令牌
type Tokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	User         *Identity `json:"user"`
}

type providerError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e *providerError) text() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	case e.Message != "":
		return e.Message
	}
	return e.Error
}

// Client 身份提供商 HTTP 客户端，统一的对外认证入口
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient 创建身份提供商客户端
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("apikey", apiKey).
		SetHeader("User-Agent", "batika-api/1.0")
	return &Client{http: http, baseURL: baseURL}
}

// SignUp 注册用户，返回提供商侧身份
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*Tokens, error) {
	var tokens Tokens
	var perr providerError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"email":    email,
			"password": password,
			"data":     metadata,
		}).
		SetResult(&tokens).
		SetError(&perr).
		Post("/signup")
	if err != nil {
		return nil, fmt.Errorf("身份服务注册请求失败: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("身份服务注册失败 (%d): %s", resp.StatusCode(), perr.text())
	}
	// 某些配置下 /signup 直接返回用户对象而非会话
	if tokens.User == nil && tokens.AccessToken == "" {
		var id Identity
		if err := json.Unmarshal(resp.Body(), &id); err == nil && id.Subject != "" {
			tokens.User = &id
		}
	}
	return &tokens, nil
}

// PasswordGrant 密码登录，换取会话令牌
func (c *Client) PasswordGrant(ctx context.Context, email, password string) (*Tokens, error) {
	var tokens Tokens
	var perr providerError
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{
			"email":    email,
			"password": password,
		}).
		SetResult(&tokens).
		SetError(&perr).
		Post("/token")
	if err != nil {
		return nil, fmt.Errorf("身份服务登录请求失败: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("身份服务登录失败 (%d): %s", resp.StatusCode(), perr.text())
	}
	return &tokens, nil
}

// RefreshGrant 用刷新令牌换取新会话
func (c *Client) RefreshGrant(ctx context.Context, refreshToken string) (*Tokens, error) {
	var tokens Tokens
	var perr providerError
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "refresh_token").
		SetBody(map[string]string{"refresh_token": refreshToken}).
		SetResult(&tokens).
		SetError(&perr).
		Post("/token")
	if err != nil {
		return nil, fmt.Errorf("身份服务刷新请求失败: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("身份服务刷新失败 (%d): %s", resp.StatusCode(), perr.text())
	}
	return &tokens, nil
}

// VerifyToken 校验访问令牌并取回提供商侧身份
func (c *Client) VerifyToken(ctx context.Context, accessToken string) (*Identity, error) {
	var id Identity
	var perr providerError
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&id).
		SetError(&perr).
		Get("/user")
	if err != nil {
		return nil, fmt.Errorf("身份服务校验请求失败: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("令牌无效 (%d): %s", resp.StatusCode(), perr.text())
	}
	return &id, nil
}

// Logout 注销会话，吊销刷新令牌
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	var perr providerError
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetError(&perr).
		Post("/logout")
	if err != nil {
		return fmt.Errorf("身份服务注销请求失败: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("身份服务注销失败 (%d): %s", resp.StatusCode(), perr.text())
	}
	return nil
}
