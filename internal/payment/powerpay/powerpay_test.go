package powerpay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testConfig(url string) *Config {
	return &Config{
		GatewayURL:       url,
		MD5Key:           "test-key",
		CompanyNo:        "C100",
		CustomerNoOnline: "M200",
		CustomerNoCard:   "M300",
		NotifyURL:        "https://shop.example/cb",
		FrontURL:         "https://shop.example/return",
		BankCustomerJSON: `{"name":"Test User"}`,
		Timeout:          2 * time.Second,
	}
}

func TestBuildRequestWechatFields(t *testing.T) {
	cfg := testConfig("https://gateway.example/pay")
	fields, service, err := cfg.BuildRequest(CreateInput{
		OrderNo:  "ORD1700000000000",
		Amount:   19900,
		Subject:  "Lightweight Wheelchair",
		Channel:  ChannelWechat,
		ClientIP: "203.0.113.9",
	})
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	if service != ServiceScanPay {
		t.Fatalf("service mismatch: got %s", service)
	}
	if fields["amount"] != "19900" {
		t.Fatalf("amount should be minor units string, got %q", fields["amount"])
	}
	if fields["customerNo"] != "M200" {
		t.Fatalf("online channel should use online customer no, got %q", fields["customerNo"])
	}
	if fields["mcc"] != "5921" || fields["timeExpire"] != "30" || fields["version"] != "1.0.0" {
		t.Fatalf("protocol defaults missing: mcc=%q timeExpire=%q version=%q",
			fields["mcc"], fields["timeExpire"], fields["version"])
	}
	if _, ok := fields["cardNo"]; ok {
		t.Fatalf("online channel must not carry card no")
	}
	if !Verify(fields, fields[SignField], cfg.MD5Key) {
		t.Fatalf("request signature must verify over the final field set")
	}
}

func TestBuildRequestUnionpayFields(t *testing.T) {
	cfg := testConfig("https://gateway.example/pay")
	fields, service, err := cfg.BuildRequest(CreateInput{
		OrderNo: "ORD1700000000000",
		Amount:  19900,
		Channel: ChannelUnionpay,
		CardNo:  "6222020200112233445",
	})
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	if service != ServiceSecurePay {
		t.Fatalf("service mismatch: got %s", service)
	}
	if fields["customerNo"] != "M300" {
		t.Fatalf("card channel should use card customer no, got %q", fields["customerNo"])
	}
	if fields["frontUrl"] != cfg.FrontURL {
		t.Fatalf("card channel must carry front url")
	}
	if fields["BankCustomer"] != cfg.BankCustomerJSON {
		t.Fatalf("card channel must carry bank customer json")
	}
	if fields["cardNo"] != "6222020200112233445" {
		t.Fatalf("validated card no must be forwarded")
	}
	if fields["subject"] != "HK Shop Order" || fields["desc"] != "HK Shop Order" {
		t.Fatalf("empty subject should fall back to default")
	}
	if !Verify(fields, fields[SignField], cfg.MD5Key) {
		t.Fatalf("request signature must verify over the final field set")
	}
}

func TestBuildRequestValidation(t *testing.T) {
	cfg := testConfig("https://gateway.example/pay")
	cases := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"bad order no", CreateInput{OrderNo: "ORDER-1", Amount: 100, Channel: ChannelWechat}, ErrOrderNoInvalid},
		{"short order no digits", CreateInput{OrderNo: "ORD123", Amount: 100, Channel: ChannelWechat}, ErrOrderNoInvalid},
		{"zero amount", CreateInput{OrderNo: "ORD1700000000000", Amount: 0, Channel: ChannelWechat}, ErrAmountInvalid},
		{"negative amount", CreateInput{OrderNo: "ORD1700000000000", Amount: -5, Channel: ChannelWechat}, ErrAmountInvalid},
		{"unknown channel", CreateInput{OrderNo: "ORD1700000000000", Amount: 100, Channel: "PAYPAL"}, ErrChannelInvalid},
		{"card no short", CreateInput{OrderNo: "ORD1700000000000", Amount: 100, Channel: ChannelUnionpay, CardNo: "123456789012345"}, ErrCardNoInvalid},
		{"card no alpha", CreateInput{OrderNo: "ORD1700000000000", Amount: 100, Channel: ChannelUnionpay, CardNo: "62220202001122ab445"}, ErrCardNoInvalid},
	}
	for _, tc := range cases {
		if _, _, err := cfg.BuildRequest(tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}
}

func TestBuildRequestAmountCeiling(t *testing.T) {
	cfg := testConfig("https://gateway.example/pay")
	cfg.MaxAmount = 10000
	if _, _, err := cfg.BuildRequest(CreateInput{
		OrderNo: "ORD1700000000000",
		Amount:  10001,
		Channel: ChannelWechat,
	}); !errors.Is(err, ErrAmountInvalid) {
		t.Fatalf("amount over ceiling should be rejected, got %v", err)
	}
}

func TestBuildRequestSubjectTruncation(t *testing.T) {
	cfg := testConfig("https://gateway.example/pay")
	long := strings.Repeat("x", 40)
	fields, _, err := cfg.BuildRequest(CreateInput{
		OrderNo: "ORD1700000000000",
		Amount:  100,
		Subject: long,
		Channel: ChannelWechat,
	})
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	if len(fields["subject"]) != 32 {
		t.Fatalf("subject should be truncated to 32, got %d", len(fields["subject"]))
	}
}

func TestCreatePaymentScanPay(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request failed: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":       "00",
			"qrCode":     "weixin://wxpay/bizpayurl?pr=abc",
			"plaOrderNo": "PLA-9001",
		})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	result, err := cfg.CreatePayment(context.Background(), CreateInput{
		OrderNo: "ORD1700000000000",
		Amount:  19900,
		Channel: ChannelWechat,
	})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	if result.Interaction != InteractionQR || result.QRCode == "" {
		t.Fatalf("scan pay should yield qr interaction, got %+v", result)
	}
	if result.PlaOrderNo != "PLA-9001" {
		t.Fatalf("gateway reference not captured: %+v", result)
	}
	if received["service"] != ServiceScanPay {
		t.Fatalf("gateway should receive service %s, got %q", ServiceScanPay, received["service"])
	}
	if !Verify(received, received[SignField], cfg.MD5Key) {
		t.Fatalf("wire request signature must verify")
	}
}

func TestCreatePaymentJSPayPrefersPayInfoURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":    "00",
			"payInfo": `{"aliPayUrl":"https://openapi.alipay.example/gateway"}`,
			"payUrl":  "https://fallback.example/pay",
		})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	result, err := cfg.CreatePayment(context.Background(), CreateInput{
		OrderNo: "ORD1700000000000",
		Amount:  19900,
		Channel: ChannelAlipay,
	})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	if result.Interaction != InteractionRedirect {
		t.Fatalf("js pay should yield redirect interaction, got %s", result.Interaction)
	}
	if result.PayURL != "https://openapi.alipay.example/gateway" {
		t.Fatalf("payInfo url should win over payUrl, got %q", result.PayURL)
	}
}

func TestCreatePaymentSecurePayForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code": "00",
			"html": "<form action=\"https://acs.example\"></form>",
		})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	result, err := cfg.CreatePayment(context.Background(), CreateInput{
		OrderNo: "ORD1700000000000",
		Amount:  19900,
		Channel: ChannelUnionpay,
		CardNo:  "6222020200112233445",
	})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	if result.Interaction != InteractionForm || result.FormHTML == "" {
		t.Fatalf("secure pay should yield form interaction, got %+v", result)
	}
}

func TestCreatePaymentDecline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code": "03",
			"msg":  "insufficient balance",
		})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	_, err := cfg.CreatePayment(context.Background(), CreateInput{
		OrderNo: "ORD1700000000000",
		Amount:  19900,
		Channel: ChannelWechat,
	})
	var decline *DeclineError
	if !errors.As(err, &decline) {
		t.Fatalf("non-00 code should surface as decline, got %v", err)
	}
	if decline.Code != "03" || decline.Msg != "insufficient balance" {
		t.Fatalf("decline should carry gateway code and msg, got %+v", decline)
	}
}

func TestCreatePaymentMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	_, err := cfg.CreatePayment(context.Background(), CreateInput{
		OrderNo: "ORD1700000000000",
		Amount:  19900,
		Channel: ChannelWechat,
	})
	if !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("unparseable body should map to response invalid, got %v", err)
	}
	var malformed *MalformedError
	if !errors.As(err, &malformed) || malformed.RawBody == "" {
		t.Fatalf("malformed error should retain raw body, got %v", err)
	}
}

func TestCreatePaymentMissingArtifact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "00"})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	_, err := cfg.CreatePayment(context.Background(), CreateInput{
		OrderNo: "ORD1700000000000",
		Amount:  19900,
		Channel: ChannelWechat,
	})
	if !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("success without qr code should be response invalid, got %v", err)
	}
}

func TestVerifyNotify(t *testing.T) {
	cfg := testConfig("https://gateway.example/pay")
	fields := map[string]string{
		"merOrderNo": "ORD1700000000000",
		"amount":     "19900",
		"code":       "00",
	}
	fields[SignField] = Sign(fields, cfg.MD5Key)
	if err := cfg.VerifyNotify(fields); err != nil {
		t.Fatalf("valid notify should verify: %v", err)
	}

	fields["amount"] = "1"
	if err := cfg.VerifyNotify(fields); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("tampered notify should fail, got %v", err)
	}

	delete(fields, SignField)
	if err := cfg.VerifyNotify(fields); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("missing signature should fail, got %v", err)
	}
}
