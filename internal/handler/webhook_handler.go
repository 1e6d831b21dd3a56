package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_sync/internal/models"
	"github.com/GTDGit/catalog_sync/internal/utils"
)

// maxWebhookBody caps the size of a webhook payload we are willing to read.
const maxWebhookBody = 5 << 20

// DetailInvalidator drops cached product details.
type DetailInvalidator interface {
	Invalidate(ctx context.Context, ids ...int64) error
}

// WebhookHandler handles incoming Shopify product webhooks.
type WebhookHandler struct {
	trigger       SyncStarter
	details       DetailInvalidator
	webhookSecret string
}

// NewWebhookHandler constructs a WebhookHandler. details may be nil.
func NewWebhookHandler(trigger SyncStarter, details DetailInvalidator, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{trigger: trigger, details: details, webhookSecret: webhookSecret}
}

// HandleProductsWebhook handles POST /webhook/shopify/products.
// Any product change triggers a full catalog sync.
func (h *WebhookHandler) HandleProductsWebhook(c *gin.Context) {
	// 1. Read body
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid body")
		return
	}

	// 2. Verify signature
	signature := c.GetHeader("X-Shopify-Hmac-Sha256")
	if !utils.VerifySignature(body, signature, h.webhookSecret) {
		log.Warn().Str("topic", c.GetHeader("X-Shopify-Topic")).Msg("Rejected webhook with invalid signature")
		utils.Error(c, 401, "INVALID_SIGNATURE", "Invalid webhook signature")
		return
	}

	// 3. Parse payload
	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid JSON")
		return
	}

	log.Info().
		Str("topic", c.GetHeader("X-Shopify-Topic")).
		Str("shop", c.GetHeader("X-Shopify-Shop-Domain")).
		Int64("product_id", payload.ID).
		Msg("Shopify product webhook received")

	if h.details != nil && payload.ID > 0 {
		if err := h.details.Invalidate(c.Request.Context(), payload.ID); err != nil {
			log.Warn().Err(err).Int64("product_id", payload.ID).Msg("Failed to invalidate product detail cache")
		}
	}

	// 4. Trigger full sync. Shopify retries non-2xx responses, so a busy
	// sync is acknowledged rather than rejected.
	job, err := h.trigger.Start(c.Request.Context(), models.SyncTriggerWebhook)
	if err != nil {
		if errors.Is(err, utils.ErrSyncInProgress) {
			utils.Success(c, 200, "Sync already in progress", gin.H{
				"status": "in_progress",
				"jobId":  h.trigger.CurrentJobID(),
			})
			return
		}
		log.Error().Err(err).Msg("Failed to start sync from webhook")
		utils.Error(c, 500, "INTERNAL_ERROR", "Processing failed")
		return
	}

	utils.Success(c, 202, "Sync started", gin.H{
		"status": "started",
		"jobId":  job.ID,
	})
}
