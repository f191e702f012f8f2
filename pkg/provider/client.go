package provider

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"resty.dev/v3"
)

// Config 配置参数
type Config struct {
	URL        string        // provider 根地址，如 http://localhost:8030
	Timeout    time.Duration // 请求超时时间
	RateLimit  int           // 每分钟请求次数
	MaxRetries int           // 最大重试次数
	UserAgent  string
}

// Client Ocean Provider 的 HTTP 客户端
type Client struct {
	baseURL string
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 600
	}
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.RateLimit)/60), 1)

	restyClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		AddRequestMiddleware(func(c *resty.Client, r *resty.Request) error {
			limiterCtx, cancel := context.WithTimeout(r.Context(), cfg.Timeout)
			defer cancel()

			if err := limiter.Wait(limiterCtx); err != nil {
				logger.Warn("Rate limiter wait failed", zap.Error(err))
				return err
			}
			if cfg.UserAgent != "" {
				r.SetHeader("User-Agent", cfg.UserAgent)
			}
			logger.Debug("Outgoing provider request", zap.String("url", r.URL))
			return nil
		}).
		AddResponseMiddleware(func(c *resty.Client, resp *resty.Response) error {
			if resp.StatusCode() >= 400 {
				logger.Warn("Provider request failed",
					zap.Int("status", resp.StatusCode()),
					zap.String("url", resp.Request.URL),
				)
			}
			return nil
		})

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		client:  restyClient,
		logger:  logger,
		limiter: limiter,
	}
}

func (c *Client) URL() string { return c.baseURL }

// Root 查询 provider 在指定链上的签名地址（DDO 解密者）
func (c *Client) Root(ctx context.Context, chainID uint64) (common.Address, error) {
	resp, err := c.client.R().SetContext(ctx).Get(c.baseURL + "/")
	if err != nil {
		return common.Address{}, fmt.Errorf("provider root: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return common.Address{}, &HTTPError{Code: resp.StatusCode(), Message: resp.String()}
	}

	var info RootInfo
	if err := sonic.UnmarshalString(resp.String(), &info); err != nil {
		return common.Address{}, fmt.Errorf("decode provider root: %w", err)
	}
	if addr, ok := info.ProviderAddresses[strconv.FormatUint(chainID, 10)]; ok && common.IsHexAddress(addr) {
		return common.HexToAddress(addr), nil
	}
	if common.IsHexAddress(info.ProviderAddress) {
		return common.HexToAddress(info.ProviderAddress), nil
	}
	return common.Address{}, fmt.Errorf("provider has no address for chain %d", chainID)
}

// Encrypt 由 provider 加密任意数据（文件列表、DDO），返回密文字节
func (c *Client) Encrypt(ctx context.Context, chainID uint64, payload []byte) ([]byte, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("chainId", strconv.FormatUint(chainID, 10)).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(payload).
		Post(c.baseURL + "/api/services/encrypt")
	if err != nil {
		return nil, fmt.Errorf("provider encrypt: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, &HTTPError{Code: resp.StatusCode(), Message: resp.String()}
	}

	body := strings.TrimSpace(resp.String())
	if body == "" {
		return nil, fmt.Errorf("provider encrypt: empty response")
	}
	return common.FromHex(body), nil
}

// Initialize 获取消费某个服务所需的 provider fee
func (c *Client) Initialize(ctx context.Context, did, serviceID string, consumer common.Address) (*InitializeResult, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"documentId":      did,
			"serviceId":       serviceID,
			"consumerAddress": consumer.Hex(),
		}).
		Get(c.baseURL + "/api/services/initialize")
	if err != nil {
		return nil, fmt.Errorf("provider initialize: %w", err)
	}
	if resp.StatusCode() >= 400 {
		return nil, &HTTPError{Code: resp.StatusCode(), Message: resp.String()}
	}

	var out InitializeResult
	if err := sonic.UnmarshalString(resp.String(), &out); err != nil {
		return nil, fmt.Errorf("decode initialize response: %w", err)
	}
	return &out, nil
}

// RootInfo provider 根路径返回
type RootInfo struct {
	ProviderAddress   string            `json:"providerAddress"`
	ProviderAddresses map[string]string `json:"providerAddresses"`
	ChainIDs          []uint64          `json:"chainIds"`
	Version           string            `json:"version"`
}

// InitializeResult initialize 接口返回
type InitializeResult struct {
	Datatoken   string      `json:"datatoken"`
	Nonce       FlexInt     `json:"nonce"`
	ProviderFee ProviderFee `json:"providerFee"`
}

type ProviderFee struct {
	ProviderFeeAddress string  `json:"providerFeeAddress"`
	ProviderFeeToken   string  `json:"providerFeeToken"`
	ProviderFeeAmount  FlexInt `json:"providerFeeAmount"`
	ProviderData       string  `json:"providerData"`
	V                  uint8   `json:"v"`
	R                  string  `json:"r"`
	S                  string  `json:"s"`
	ValidUntil         FlexInt `json:"validUntil"`
}

// FlexInt 兼容 JSON 数字与字符串形式的大整数
type FlexInt struct {
	*big.Int
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		f.Int = new(big.Int)
		return nil
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return fmt.Errorf("invalid integer %q", s)
	}
	f.Int = v
	return nil
}

// Value 空值按 0 处理
func (f FlexInt) Value() *big.Int {
	if f.Int == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(f.Int)
}

// HTTPError 自定义错误结构体
type HTTPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.Code, e.Message)
}
