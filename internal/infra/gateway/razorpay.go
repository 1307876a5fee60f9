package gateway

import (
	"context"
	"fmt"
	"strings"

	"printshop/internal/config"
	"printshop/internal/domain/model"
	"printshop/internal/metrics"
	"printshop/internal/pricing"
	"printshop/internal/usecase"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"
)

// SDKのうち使う部分だけ（テストで差し替える）
type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type paymentAPI interface {
	Fetch(paymentID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Transfer(paymentID string, data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type accountAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type Razorpay struct {
	keyID         string
	keySecret     string
	webhookSecret string

	orders   orderAPI
	payments paymentAPI
	accounts accountAPI
	metrics  *metrics.Metrics
}

var _ usecase.PaymentGateway = (*Razorpay)(nil)

func NewRazorpay(cfg config.Config, m *metrics.Metrics) *Razorpay {
	client := razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	return &Razorpay{
		keyID:         cfg.RazorpayKeyID,
		keySecret:     cfg.RazorpayKeySecret,
		webhookSecret: cfg.RazorpayWebhookSecret,
		orders:        client.Order,
		payments:      client.Payment,
		accounts:      client.Account,
		metrics:       m,
	}
}

func (g *Razorpay) KeyID() string { return g.keyID }

// 金額は最小単位（paise）で送る
func (g *Razorpay) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string, notes map[string]string) (usecase.GatewayOrder, error) {
	const op = "create_order"
	if err := ctx.Err(); err != nil {
		return usecase.GatewayOrder{}, err
	}

	data := map[string]interface{}{
		"amount":   pricing.ToSubunits(amount),
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		n := make(map[string]interface{}, len(notes))
		for k, v := range notes {
			n[k] = v
		}
		data["notes"] = n
	}

	res, err := g.orders.Create(data, nil)
	g.metrics.ObserveGateway(op, err)
	if err != nil {
		return usecase.GatewayOrder{}, wrapError(op, err)
	}

	out := usecase.GatewayOrder{
		ID:       stringField(res, "id"),
		Amount:   int64Field(res, "amount"),
		Currency: stringField(res, "currency"),
		Receipt:  stringField(res, "receipt"),
		Status:   stringField(res, "status"),
	}
	if out.ID == "" {
		return usecase.GatewayOrder{}, &usecase.GatewayError{Op: op, Code: "INVALID_RESPONSE", Message: "order id missing in response"}
	}
	return out, nil
}

func (g *Razorpay) FetchPayment(ctx context.Context, paymentID string) (map[string]interface{}, error) {
	const op = "fetch_payment"
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := g.payments.Fetch(paymentID, nil, nil)
	g.metrics.ObserveGateway(op, err)
	if err != nil {
		return nil, wrapError(op, err)
	}
	return res, nil
}

func (g *Razorpay) CreateTransfers(ctx context.Context, paymentID string, transfers []usecase.Transfer) (map[string]interface{}, error) {
	const op = "create_transfers"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]interface{}, 0, len(transfers))
	for _, t := range transfers {
		items = append(items, map[string]interface{}{
			"account":  t.Account,
			"amount":   pricing.ToSubunits(t.Amount),
			"currency": t.Currency,
		})
	}

	res, err := g.payments.Transfer(paymentID, map[string]interface{}{"transfers": items}, nil)
	g.metrics.ObserveGateway(op, err)
	if err != nil {
		return nil, wrapError(op, err)
	}
	return res, nil
}

// Routeの連携アカウント作成
func (g *Razorpay) CreateSubAccount(ctx context.Context, req usecase.SubAccountRequest) (usecase.SubAccount, error) {
	const op = "create_account"
	if err := ctx.Err(); err != nil {
		return usecase.SubAccount{}, err
	}

	businessType := req.BusinessType
	if businessType == "" {
		businessType = string(model.BusinessTypeIndividual)
	}
	data := map[string]interface{}{
		"name":                          req.Name,
		"email":                         req.Email,
		"contact":                       req.Phone,
		"type":                          businessType,
		"reference_id":                  req.ReferenceID,
		"legal_business_name":           req.LegalBusinessName,
		"business_type":                 businessType,
		"customer_facing_business_name": req.CustomerFacingName,
		"pan":                           req.PANNumber,
		"notes": map[string]interface{}{
			"kycAddress":  req.KYCAddress,
			"shopAddress": req.ShopAddress,
		},
		"bank_account": map[string]interface{}{
			"name":           req.BankAccountName,
			"ifsc":           req.IFSCCode,
			"account_number": req.AccountNumber,
		},
	}
	if req.GSTNumber != "" {
		data["gst"] = req.GSTNumber
	}

	res, err := g.accounts.Create(data, nil)
	g.metrics.ObserveGateway(op, err)
	if err != nil {
		return usecase.SubAccount{}, wrapError(op, err)
	}

	id := stringField(res, "id")
	if id == "" {
		return usecase.SubAccount{}, &usecase.GatewayError{Op: op, Code: "INVALID_RESPONSE", Message: "account id missing in response"}
	}

	kyc := ""
	if k, ok := res["kyc"].(map[string]interface{}); ok {
		kyc = stringField(k, "status")
	}
	return usecase.SubAccount{AccountID: id, KYCStatus: mapKYCStatus(kyc)}, nil
}

func (g *Razorpay) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return verifyHMAC(g.keySecret, []byte(orderID+"|"+paymentID), signature)
}

func (g *Razorpay) VerifyWebhookSignature(body []byte, signature string) bool {
	return verifyHMAC(g.webhookSecret, body, signature)
}

// ゲートウェイ側のKYC状態を内部の状態に寄せる
func mapKYCStatus(s string) model.KYCStatus {
	switch strings.ToLower(s) {
	case "verified", "activated", "approved":
		return model.KYCStatusApproved
	case "rejected", "failed", "suspended":
		return model.KYCStatusRejected
	default:
		return model.KYCStatusPending
	}
}

func wrapError(op string, err error) error {
	msg := err.Error()
	code := "GATEWAY_ERROR"
	//SDKのエラーは "<CODE>: message" のことがある
	if i := strings.Index(msg, ":"); i > 0 && strings.ToUpper(msg[:i]) == msg[:i] && !strings.Contains(msg[:i], " ") {
		code = msg[:i]
		msg = strings.TrimSpace(msg[i+1:])
	}
	return &usecase.GatewayError{
		Op:      op,
		Code:    code,
		Message: msg,
		Details: map[string]interface{}{"operation": op},
	}
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
	return ""
}

// JSONの数値はfloat64で来る
func int64Field(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
