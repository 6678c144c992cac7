// internal/handler/handler.go
package handler

import (
	"card-advisor/internal/catalog"
	"card-advisor/internal/comparison"
	"card-advisor/internal/domain"
	"card-advisor/internal/health"
	"card-advisor/internal/notify"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type Recommender interface {
	Recommend(ctx context.Context, p domain.UserProfile) ([]domain.ScoredCard, error)
}

type CardLookup interface {
	Get(ctx context.Context, id int) (domain.CardRecord, catalog.Source, error)
	ByIDs(ctx context.Context, ids []int) ([]domain.CardRecord, error)
}

type Comparer interface {
	Compare(ctx context.Context, ids []int, live bool) ([]domain.ComparisonRow, error)
}

type HealthReporter interface {
	Available() bool
	Status(now time.Time) health.Status
}

type Deps struct {
	Recommender Recommender
	Cards       CardLookup
	Comparer    Comparer
	Health      HealthReporter
	Sender      notify.Sender
	Logger      *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type Handler struct {
	deps Deps
	log  *slog.Logger
}

func New(deps Deps) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Sender == nil {
		deps.Sender = notify.Disabled{}
	}
	return &Handler{deps: deps, log: deps.Logger}
}

// Register mounts the /api routes.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.POST("/recommendations", h.Recommendations)
	api.GET("/cards/:id", h.GetCard)
	api.POST("/compare-cards", h.CompareCards)
	api.POST("/whatsapp/send", h.SendWhatsApp)
	api.POST("/whatsapp/send-recommendations", h.SendRecommendations)
}

// Health godoc
// @Summary Service status and data-source mode
// @Success 200 {object} health.Status
// @Router /api/health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Health.Status(h.deps.Now()))
}

// Recommendations godoc
// @Summary Ranked card recommendations for a user profile
// @Accept json
// @Produce json
// @Param request body RecommendationRequest true "User profile"
// @Success 200 {array} domain.ScoredCard
// @Failure 400 {object} map[string]string
// @Router /api/recommendations [post]
func (h *Handler) Recommendations(c *gin.Context) {
	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required user data", "details": err.Error()})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required user data", "details": err.Error()})
		return
	}

	cards, err := h.deps.Recommender.Recommend(c.Request.Context(), req.Profile())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required user data", "details": err.Error()})
			return
		}
		h.log.Error("recommendations failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate recommendations", "details": err.Error()})
		return
	}
	if cards == nil {
		cards = []domain.ScoredCard{}
	}
	c.JSON(http.StatusOK, cards)
}

// GetCard godoc
// @Summary One card by id
// @Param id path int true "Card id"
// @Success 200 {object} domain.CardRecord
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/cards/{id} [get]
func (h *Handler) GetCard(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Card id must be an integer"})
		return
	}

	card, _, err := h.deps.Cards.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Card not found"})
	case err != nil:
		h.log.Error("card lookup failed", "card_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch card", "details": err.Error()})
	default:
		c.JSON(http.StatusOK, card)
	}
}

// CompareCards godoc
// @Summary Side-by-side comparison rows
// @Param request body CompareRequest true "Card ids"
// @Success 200 {array} domain.ComparisonRow
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/compare-cards [post]
func (h *Handler) CompareCards(c *gin.Context) {
	const invalid = "Invalid card IDs. Please provide an array of card IDs."

	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid})
		return
	}

	rows, err := h.deps.Comparer.Compare(c.Request.Context(), toInts(req.CardIDs), h.deps.Health.Available())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid})
			return
		}
		h.log.Error("comparison failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compare cards", "details": err.Error()})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No cards found for comparison"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// SendWhatsApp godoc
// @Summary Send a WhatsApp template message
// @Param request body WhatsAppSendRequest true "Recipient and template"
// @Success 200 {object} SendResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/whatsapp/send [post]
func (h *Handler) SendWhatsApp(c *gin.Context) {
	var req WhatsAppSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number is required"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number is required", "details": err.Error()})
		return
	}

	rec, err := h.deps.Sender.Send(c.Request.Context(), notify.Message{
		To:          req.PhoneNumber,
		TemplateSID: req.TemplateSID,
		Variables:   req.Variables,
	})
	if err != nil {
		h.log.Error("whatsapp send failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send WhatsApp message", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, SendResponse{Success: true, MessageSID: rec.SID, Status: rec.Status})
}

// SendRecommendations godoc
// @Summary Send a recommendation summary over WhatsApp
// @Param request body SendRecommendationsRequest true "Recipient and cards"
// @Success 200 {object} SendResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/whatsapp/send-recommendations [post]
func (h *Handler) SendRecommendations(c *gin.Context) {
	const failed = "Failed to send recommendations via WhatsApp"

	var req SendRecommendationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number and card IDs are required"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone number and card IDs are required", "details": err.Error()})
		return
	}

	cards := req.Cards
	if cards == nil {
		var err error
		cards, err = h.lookupSummaries(c.Request.Context(), toInts(req.CardIDs))
		if err != nil {
			h.log.Error("card lookup for whatsapp failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": failed, "details": err.Error()})
			return
		}
	}

	body, err := notify.FormatRecommendations(cards)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": failed, "details": err.Error()})
		return
	}

	rec, err := h.deps.Sender.Send(c.Request.Context(), notify.Message{To: req.PhoneNumber, Body: body})
	if err != nil {
		h.log.Error("whatsapp recommendations failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": failed, "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, SendResponse{Success: true, MessageSID: rec.SID, Status: rec.Status})
}

// lookupSummaries resolves ids from the store, or synthetic cards in mock mode.
func (h *Handler) lookupSummaries(ctx context.Context, ids []int) ([]notify.Summary, error) {
	var cards []domain.CardRecord
	if h.deps.Health.Available() {
		var err error
		if cards, err = h.deps.Cards.ByIDs(ctx, ids); err != nil {
			return nil, err
		}
	} else {
		cards = comparison.Synthetic(ids)
	}

	out := make([]notify.Summary, len(cards))
	for i, c := range cards {
		out[i] = notify.SummaryOf(c)
	}
	return out, nil
}
