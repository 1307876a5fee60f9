package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"printshop/internal/domain/model"
	"printshop/internal/metrics"
	repo "printshop/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// 扱うイベント
const (
	EventPaymentCaptured = "payment.captured"
	EventOrderPaid       = "order.paid"
	EventPaymentFailed   = "payment.failed"
	EventKYCCompleted    = "account.kyc.verification.completed"
	EventKYCFailed       = "account.kyc.verification.failed"
)

var errMissingReference = errors.New("webhook payload missing entity reference")

type WebhookUsecase struct {
	gateway PaymentGateway
	orders  repo.OrderRepository
	stores  repo.StoreRepository
	events  repo.WebhookEventRepository
	dedupe  EventDeduper
	metrics *metrics.Metrics
}

func NewWebhookUsecase(
	gateway PaymentGateway,
	orders repo.OrderRepository,
	stores repo.StoreRepository,
	events repo.WebhookEventRepository,
	dedupe EventDeduper,
	m *metrics.Metrics,
) *WebhookUsecase {
	return &WebhookUsecase{
		gateway: gateway,
		orders:  orders,
		stores:  stores,
		events:  events,
		dedupe:  dedupe,
		metrics: m,
	}
}

type WebhookInput struct {
	Body      []byte
	Signature string
	//X-Razorpay-Event-Id（任意）
	EventID string
}

type WebhookResult struct {
	Event     string `json:"event"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity struct {
				ID               string `json:"id"`
				OrderID          string `json:"order_id"`
				ErrorCode        string `json:"error_code"`
				ErrorDescription string `json:"error_description"`
				ErrorReason      string `json:"error_reason"`
			} `json:"entity"`
		} `json:"payment"`
		Order *struct {
			Entity struct {
				ID string `json:"id"`
			} `json:"entity"`
		} `json:"order"`
		Account *struct {
			Entity struct {
				ID  string `json:"id"`
				KYC *struct {
					Reason string `json:"reason"`
				} `json:"kyc"`
			} `json:"entity"`
		} `json:"account"`
	} `json:"payload"`
}

// Handle は署名検証 → 記録 → 振り分け。
// 署名が正しければ各処理の失敗はログに残して受領扱いにする。
func (u *WebhookUsecase) Handle(ctx context.Context, in WebhookInput) (WebhookResult, error) {
	if in.Signature == "" || !u.gateway.VerifyWebhookSignature(in.Body, in.Signature) {
		u.metrics.ObserveWebhook("unknown", "rejected")
		log.Warn().Msg("webhook signature mismatch")
		return WebhookResult{}, Validation("Invalid signature")
	}

	var env webhookEnvelope
	if err := json.Unmarshal(in.Body, &env); err != nil || env.Event == "" {
		u.metrics.ObserveWebhook("unknown", "rejected")
		return WebhookResult{}, Validation("Malformed webhook payload")
	}

	dedupe := in.EventID != "" && u.dedupe != nil
	if dedupe {
		seen, err := u.dedupe.Seen(ctx, in.EventID)
		if err != nil {
			//重複排除できなくても処理は続ける（更新は冪等）
			log.Warn().Err(err).Str("event_id", in.EventID).Msg("webhook dedupe unavailable")
		} else if seen {
			u.metrics.ObserveWebhook(env.Event, "duplicate")
			log.Info().Str("event", env.Event).Str("event_id", in.EventID).Msg("duplicate webhook delivery skipped")
			return WebhookResult{Event: env.Event, Duplicate: true}, nil
		}
	}

	record := &model.WebhookEvent{Event: env.Event, Payload: datatypes.JSON(in.Body)}
	if in.EventID != "" {
		eventID := in.EventID
		record.GatewayEventID = &eventID
	}
	if err := u.events.Create(ctx, record); err != nil {
		log.Error().Err(err).Str("event", env.Event).Msg("failed to record webhook event")
	}

	handled, err := u.dispatch(ctx, env)
	switch {
	case !handled:
		u.metrics.ObserveWebhook(env.Event, "ignored")
		log.Info().Str("event", env.Event).Msg("unhandled webhook event")
	case err != nil:
		u.metrics.ObserveWebhook(env.Event, "failed")
		log.Error().Err(err).Str("event", env.Event).Msg("webhook handler failed")
	default:
		u.metrics.ObserveWebhook(env.Event, "applied")
	}

	//失敗したものは覚えない（再配送で反映し直せるように）
	if dedupe && err == nil {
		if merr := u.dedupe.Mark(ctx, in.EventID); merr != nil {
			log.Warn().Err(merr).Str("event_id", in.EventID).Msg("failed to mark webhook delivery")
		}
	}

	return WebhookResult{Event: env.Event}, nil
}

// 各イベントは値の代入だけ（再送されても同じ結果）
func (u *WebhookUsecase) dispatch(ctx context.Context, env webhookEnvelope) (bool, error) {
	p := env.Payload

	switch env.Event {
	case EventPaymentCaptured:
		if p.Payment == nil || p.Payment.Entity.OrderID == "" {
			return true, errMissingReference
		}
		paymentID := p.Payment.Entity.ID
		return true, u.orders.UpdatePaymentByGatewayOrderID(ctx, p.Payment.Entity.OrderID, repo.PaymentUpdate{
			Status:           model.PaymentStatusPaid,
			GatewayPaymentID: &paymentID,
		})

	case EventOrderPaid:
		if p.Order == nil || p.Order.Entity.ID == "" {
			return true, errMissingReference
		}
		return true, u.orders.UpdatePaymentByGatewayOrderID(ctx, p.Order.Entity.ID, repo.PaymentUpdate{
			Status: model.PaymentStatusPaid,
		})

	case EventPaymentFailed:
		if p.Payment == nil || p.Payment.Entity.OrderID == "" {
			return true, errMissingReference
		}
		e := p.Payment.Entity
		paymentID := e.ID
		update := repo.PaymentUpdate{Status: model.PaymentStatusFailed, GatewayPaymentID: &paymentID}
		if reason := firstNonEmpty(e.ErrorDescription, e.ErrorReason, e.ErrorCode); reason != "" {
			update.FailureReason = &reason
		}
		return true, u.orders.UpdatePaymentByGatewayOrderID(ctx, e.OrderID, update)

	case EventKYCCompleted:
		if p.Account == nil || p.Account.Entity.ID == "" {
			return true, errMissingReference
		}
		return true, u.stores.UpdateKYCByGatewayAccount(ctx, p.Account.Entity.ID, repo.KYCUpdate{Status: model.KYCStatusApproved})

	case EventKYCFailed:
		if p.Account == nil || p.Account.Entity.ID == "" {
			return true, errMissingReference
		}
		update := repo.KYCUpdate{Status: model.KYCStatusRejected}
		if kyc := p.Account.Entity.KYC; kyc != nil && kyc.Reason != "" {
			reason := kyc.Reason
			update.FailureReason = &reason
		}
		return true, u.stores.UpdateKYCByGatewayAccount(ctx, p.Account.Entity.ID, update)
	}

	return false, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
