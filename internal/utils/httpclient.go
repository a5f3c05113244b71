package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/watchbase/internal/model"
)

// HTTPClient 远端 JSON 接口的共享客户端
// 目录服务和两家追踪服务都是 Bearer Token 认证的 JSON API，统一走这里
type HTTPClient struct {
	httpClient *http.Client
}

// NewHTTPClient 创建新的HTTP客户端
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetJSON 发送 GET 请求并解析 JSON 响应，返回响应头（分页信息在响应头里的服务需要）
func (c *HTTPClient) GetJSON(ctx context.Context, url string, headers map[string]string, target interface{}) (http.Header, error) {
	return c.doJSON(ctx, http.MethodGet, url, headers, nil, target)
}

// PostJSON 发送 JSON 请求体的 POST 请求，target 可以为 nil（不关心响应体）
func (c *HTTPClient) PostJSON(ctx context.Context, url string, headers map[string]string, body interface{}, target interface{}) (http.Header, error) {
	return c.doJSON(ctx, http.MethodPost, url, headers, body, target)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, url string, headers map[string]string, body interface{}, target interface{}) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: 编码请求体失败: %v", model.ErrParse, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: 创建请求失败: %v", model.ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json;charset=utf-8")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// 读掉响应体以便连接复用
		io.Copy(io.Discard, resp.Body)
		return resp.Header, fmt.Errorf("%w: 请求 %s 返回状态码 %d", model.ErrNetwork, url, resp.StatusCode)
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return resp.Header, fmt.Errorf("%w: 解析 JSON 失败: %v", model.ErrParse, err)
		}
	}
	return resp.Header, nil
}

// BearerHeaders 组装 Bearer Token 认证头
func BearerHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + token,
	}
}
