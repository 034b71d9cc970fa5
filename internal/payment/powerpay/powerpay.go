package powerpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// 支付通道
const (
	ChannelWechat   = "WECHAT"
	ChannelAlipay   = "ALIPAY"
	ChannelUnionpay = "UNIONPAY"
)

// 网关服务名
const (
	ServiceScanPay   = "trade.scanPay"
	ServiceJSPay     = "trade.jsPay"
	ServiceSecurePay = "secure.pay"
)

// 前端交互方式
const (
	InteractionQR       = "qr"
	InteractionRedirect = "redirect"
	InteractionForm     = "form"
)

// CodeSuccess 网关受理成功码
const CodeSuccess = "00"

const (
	defaultSubject   = "HK Shop Order"
	maxSubjectLen    = 32
	defaultMCC       = "5921"
	defaultVersion   = "1.0.0"
	defaultExpireMin = "30"
	defaultClientIP  = "127.0.0.1"
	defaultTimeout   = 10 * time.Second
)

var (
	ErrConfigInvalid    = errors.New("powerpay: config invalid")
	ErrChannelInvalid   = errors.New("powerpay: unsupported channel")
	ErrOrderNoInvalid   = errors.New("powerpay: order no invalid")
	ErrAmountInvalid    = errors.New("powerpay: amount invalid")
	ErrCardNoInvalid    = errors.New("powerpay: card no invalid")
	ErrFrontURLRequired = errors.New("powerpay: front url required for card payment")
	ErrRequestFailed    = errors.New("powerpay: gateway request failed")
	ErrResponseInvalid  = errors.New("powerpay: gateway response invalid")
	ErrSignatureInvalid = errors.New("powerpay: signature mismatch")
)

// DeclineError 网关明确拒绝（code != 00），携带原始错误码与描述
type DeclineError struct {
	Code string
	Msg  string
}

func (e *DeclineError) Error() string {
	return fmt.Sprintf("powerpay: gateway declined, code=%s msg=%s", e.Code, e.Msg)
}

// MalformedError 网关应答无法解析或缺少关键字段，保留原始报文便于排障
type MalformedError struct {
	Reason  string
	RawBody string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("powerpay: gateway response invalid: %s", e.Reason)
}

func (e *MalformedError) Is(target error) bool { return target == ErrResponseInvalid }

var (
	orderNoPattern = regexp.MustCompile(`^ORD[0-9]{13,19}$`)
	cardNoPattern  = regexp.MustCompile(`^[0-9]{16,19}$`)
)

// Config 网关接入配置
type Config struct {
	GatewayURL       string
	MD5Key           string
	CompanyNo        string
	CustomerNoOnline string // 线上扫码/跳转通道商户号
	CustomerNoCard   string // 银联卡通道商户号
	MCC              string
	NotifyURL        string
	FrontURL         string
	TimeExpire       string
	Version          string
	Services         map[string]string // 通道 -> 网关服务名，缺省按内置映射
	BankCustomerJSON string            // secure.pay 持卡人信息 JSON
	DefaultSubject   string            // 空描述兜底文案
	MaxAmount        int64             // 单笔上限（分），0 表示不限
	Timeout          time.Duration
}

func (c *Config) validate() error {
	if c.GatewayURL == "" || c.MD5Key == "" || c.CompanyNo == "" || c.NotifyURL == "" {
		return ErrConfigInvalid
	}
	return nil
}

// CreateInput 下单入参，Amount 为最小货币单位（分）
type CreateInput struct {
	OrderNo  string
	Amount   int64
	Subject  string
	Channel  string
	CardNo   string // 仅银联卡通道
	ClientIP string
}

// CreateResult 下单结果，按交互方式只有对应字段有值
type CreateResult struct {
	Service     string
	Interaction string
	QRCode      string
	PayURL      string
	FormHTML    string
	PlaOrderNo  string
}

// ServiceFor 返回通道对应的网关服务名，通道不受支持时返回空串
func (c *Config) ServiceFor(channel string) string {
	if c.Services != nil {
		if svc, ok := c.Services[channel]; ok && svc != "" {
			return svc
		}
	}
	switch channel {
	case ChannelWechat:
		return ServiceScanPay
	case ChannelAlipay:
		return ServiceJSPay
	case ChannelUnionpay:
		return ServiceSecurePay
	}
	return ""
}

// InteractionFor 返回服务名对应的前端交互方式
func InteractionFor(service string) string {
	switch service {
	case ServiceScanPay:
		return InteractionQR
	case ServiceJSPay:
		return InteractionRedirect
	case ServiceSecurePay:
		return InteractionForm
	}
	return ""
}

// NormalizeSubject 清理商品摘要：去首尾空白，空值用缺省摘要，超长截断
func NormalizeSubject(subject string) string {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return defaultSubject
	}
	runes := []rune(subject)
	if len(runes) > maxSubjectLen {
		return string(runes[:maxSubjectLen])
	}
	return subject
}

// BuildRequest 构造签名后的完整请求字段集
func (c *Config) BuildRequest(in CreateInput) (map[string]string, string, error) {
	if err := c.validate(); err != nil {
		return nil, "", err
	}
	if !orderNoPattern.MatchString(in.OrderNo) {
		return nil, "", ErrOrderNoInvalid
	}
	if in.Amount <= 0 {
		return nil, "", ErrAmountInvalid
	}
	if c.MaxAmount > 0 && in.Amount > c.MaxAmount {
		return nil, "", ErrAmountInvalid
	}
	service := c.ServiceFor(in.Channel)
	if service == "" {
		return nil, "", ErrChannelInvalid
	}

	customerNo := c.CustomerNoOnline
	if service == ServiceSecurePay {
		customerNo = c.CustomerNoCard
	}
	if customerNo == "" {
		return nil, "", ErrConfigInvalid
	}

	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		subject = c.DefaultSubject
	}
	subject = NormalizeSubject(subject)
	clientIP := in.ClientIP
	if clientIP == "" {
		clientIP = defaultClientIP
	}

	fields := map[string]string{
		"amount":     strconv.FormatInt(in.Amount, 10),
		"companyNo":  c.CompanyNo,
		"customerNo": customerNo,
		"desc":       subject,
		"mcc":        stringOr(c.MCC, defaultMCC),
		"merOrderNo": in.OrderNo,
		"notifyUrl":  c.NotifyURL,
		"payType":    in.Channel,
		"realIp":     clientIP,
		"service":    service,
		"subject":    subject,
		"timeExpire": stringOr(c.TimeExpire, defaultExpireMin),
		"version":    stringOr(c.Version, defaultVersion),
	}

	if service == ServiceSecurePay {
		if !cardNoPattern.MatchString(in.CardNo) {
			return nil, "", ErrCardNoInvalid
		}
		if c.FrontURL == "" {
			return nil, "", ErrFrontURLRequired
		}
		fields["cardNo"] = in.CardNo
		fields["frontUrl"] = c.FrontURL
		if c.BankCustomerJSON != "" {
			fields["BankCustomer"] = c.BankCustomerJSON
		}
	}

	fields[SignField] = Sign(fields, c.MD5Key)
	return fields, service, nil
}

type gatewayResponse struct {
	Code       string `json:"code"`
	Msg        string `json:"msg"`
	QRCode     string `json:"qrCode"`
	PayURL     string `json:"payUrl"`
	PayInfo    string `json:"payInfo"`
	HTML       string `json:"html"`
	PlaOrderNo string `json:"plaOrderNo"`
}

// CreatePayment 向网关下单并按服务类型整形出前端可用的支付载荷
func (c *Config) CreatePayment(ctx context.Context, in CreateInput) (*CreateResult, error) {
	fields, service, err := c.BuildRequest(in)
	if err != nil {
		return nil, err
	}

	body, err := c.postJSON(ctx, fields)
	if err != nil {
		return nil, err
	}

	var resp gatewayResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &MalformedError{Reason: "unparseable body", RawBody: string(body)}
	}
	if resp.Code == "" {
		return nil, &MalformedError{Reason: "missing code", RawBody: string(body)}
	}
	if resp.Code != CodeSuccess {
		return nil, &DeclineError{Code: resp.Code, Msg: resp.Msg}
	}

	result := &CreateResult{
		Service:     service,
		Interaction: InteractionFor(service),
		PlaOrderNo:  resp.PlaOrderNo,
	}
	switch service {
	case ServiceScanPay:
		if resp.QRCode == "" {
			return nil, &MalformedError{Reason: "missing qrCode", RawBody: string(body)}
		}
		result.QRCode = resp.QRCode
	case ServiceJSPay:
		result.PayURL = extractJSPayURL(resp)
		if result.PayURL == "" {
			return nil, &MalformedError{Reason: "missing pay url", RawBody: string(body)}
		}
	case ServiceSecurePay:
		if resp.HTML == "" {
			return nil, &MalformedError{Reason: "missing form html", RawBody: string(body)}
		}
		result.FormHTML = resp.HTML
	}
	return result, nil
}

// extractJSPayURL jsPay 优先从 payInfo JSON 的 aliPayUrl 取值，退回 payUrl
func extractJSPayURL(resp gatewayResponse) string {
	if resp.PayInfo != "" {
		var info struct {
			AliPayURL string `json:"aliPayUrl"`
		}
		if err := json.Unmarshal([]byte(resp.PayInfo), &info); err == nil && info.AliPayURL != "" {
			return info.AliPayURL
		}
	}
	return resp.PayURL
}

func (c *Config) postJSON(ctx context.Context, fields map[string]string) ([]byte, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.GatewayURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http status %d", ErrRequestFailed, resp.StatusCode)
	}
	return body, nil
}

// VerifyNotify 校验异步通知签名
func (c *Config) VerifyNotify(fields map[string]string) error {
	provided := fields[SignField]
	if provided == "" {
		return ErrSignatureInvalid
	}
	if !Verify(fields, provided, c.MD5Key) {
		return ErrSignatureInvalid
	}
	return nil
}

func stringOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
