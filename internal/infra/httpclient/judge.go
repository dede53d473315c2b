package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ZIXNRIXZ/Collabhub/internal/config"
	"github.com/bytedance/sonic"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// ErrJudgeNotConfigured is returned when no judge base URL is configured.
var ErrJudgeNotConfigured = errors.New("judge service not configured")

// JudgeClient is the HTTP client for the external code judge that runs compileCode.
type JudgeClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewJudgeClient(cfg *config.Config, log *zap.Logger) *JudgeClient {
	return &JudgeClient{
		BaseURL: cfg.Judge.BaseURL,
		HTTPClient: &http.Client{
			Timeout:   cfg.Judge.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: log,
	}
}

// CompileRequest is the body sent to the judge
type CompileRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// CompileResult is what the judge reports back for one run
type CompileResult struct {
	Output          string `json:"output"`
	Error           string `json:"error,omitempty"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
}

// Compile submits code to the judge and returns its result verbatim.
func (c *JudgeClient) Compile(ctx context.Context, code, language string) (*CompileResult, error) {
	if c.BaseURL == "" {
		return nil, ErrJudgeNotConfigured
	}
	endpoint := fmt.Sprintf("%s/compile", c.BaseURL)

	body, err := sonic.Marshal(CompileRequest{Code: code, Language: language})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.Logger.Error("compile request failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("language", language),
			zap.String("body", string(respBody)))
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result CompileResult
	if err := sonic.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &result, nil
}
