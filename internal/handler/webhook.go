package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"time"

	"finledger/internal/apperr"
	"finledger/internal/logging"
	"finledger/internal/models"
	"finledger/internal/notify"
	"finledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// WebhookHandler ingests payment-provider events. It only reads event
// payloads to mirror subscription state onto the user; it never calls
// the provider.
type WebhookHandler struct {
	DB       *gorm.DB
	Secret   string
	Notifier *notify.Emitter
	Log      *logging.Logger
}

func NewWebhookHandler(db *gorm.DB, secret string, notifier *notify.Emitter, log *logging.Logger) *WebhookHandler {
	return &WebhookHandler{
		DB:       db,
		Secret:   secret,
		Notifier: notifier,
		Log:      log.WithComponent("webhook"),
	}
}

type paymentEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		UserID   uint   `json:"user_id"`
		Status   string `json:"status"`
		Plan     string `json:"plan"`
		TrialEnd *int64 `json:"trial_end"` // unix seconds
	} `json:"data"`
}

var subscriptionStatuses = map[string]bool{
	models.SubTrialing: true,
	models.SubActive:   true,
	models.SubPastDue:  true,
	models.SubCanceled: true,
}

// HandlePaymentEvent verifies the HMAC signature, dedupes by event id
// and applies the subscription change.
func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		util.Fail(c, apperr.Validation("unreadable body"))
		return
	}

	if !h.verifySignature(body, c.GetHeader("X-Webhook-Signature")) {
		util.Fail(c, apperr.Unauthorized("bad signature"))
		return
	}

	var event paymentEvent
	if err := json.Unmarshal(body, &event); err != nil || event.ID == "" || event.Type == "" {
		util.Fail(c, apperr.Validation("malformed event"))
		return
	}
	if !subscriptionStatuses[event.Data.Status] {
		util.Fail(c, apperr.Validation("unknown subscription status"))
		return
	}

	// redeliveries of a processed event are acknowledged, not reapplied
	var seen models.PaymentEvent
	err = h.DB.First(&seen, "id = ?", event.ID).Error
	if err == nil {
		util.Message(c, "event already processed")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		util.Fail(c, apperr.Internal(err))
		return
	}

	var user models.User
	err = h.DB.First(&user, event.Data.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Fail(c, apperr.NotFound("user not found"))
		return
	}
	if err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	updates := map[string]any{
		"subscription_status": event.Data.Status,
		"subscription_plan":   event.Data.Plan,
	}
	if event.Data.TrialEnd != nil {
		updates["trial_ends_at"] = time.Unix(*event.Data.TrialEnd, 0)
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Create(&models.PaymentEvent{
			ID:          event.ID,
			Type:        event.Type,
			UserID:      user.ID,
			ProcessedAt: time.Now(),
		}).Error
	})
	if err != nil {
		util.Fail(c, apperr.Internal(err))
		return
	}

	h.Notifier.SubscriptionEvent(user.ID, event.Type, event.Data.Status)
	h.Log.Info("payment event applied",
		"event_id", event.ID, "type", event.Type,
		"user_id", user.ID, "status", event.Data.Status)

	util.Message(c, "event processed")
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if h.Secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.Secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
