package classroom

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/Yulian302/classroom-tokens/apperror"
	"github.com/Yulian302/classroom-tokens/logging"
	"github.com/Yulian302/classroom-tokens/responses"
	"github.com/Yulian302/classroom-tokens/services"
	"github.com/gin-gonic/gin"
)

const (
	msgMissingCodeOrState = "Missing code or state parameter"
	msgInvalidState       = "Invalid state parameter"
	msgMissingStateClient = "user_id not found in state"
	msgMissingClientID    = "Missing clientid parameter"
	msgUserNotFound       = "User not found"
	msgUnsubscribed       = "User unsubscribed successfully"

	alivePage = "<html><body><h1>Alive</h1></body></html>"
)

type ClassroomHandler struct {
	subscriptions services.SubscriptionService
}

func NewClassroomHandler(subscriptions services.SubscriptionService) *ClassroomHandler {
	return &ClassroomHandler{
		subscriptions: subscriptions,
	}
}

type TokenResponse struct {
	Token string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HTTPError struct {
	Error string `json:"error"`
}

// Root godoc
// @Summary      Liveness page
// @Tags         health
// @Produce      html
// @Success      200  {string}  string  "Alive"
// @Router       / [get]
func (h *ClassroomHandler) Root(c *gin.Context) {
	logging.FromContext(c.Request.Context()).Info("root endpoint accessed")
	responses.HTML(c, http.StatusOK, alivePage)
}

// Subscribe godoc
// @Summary      OAuth callback
// @Description  Exchanges the authorization code and stores the credential for the client id carried in state
// @Tags         classroom
// @Produce      html
// @Param        code   query     string  true  "Authorization code"
// @Param        state  query     string  true  "URL-safe base64 of {\"clientid\": \"...\"}"
// @Success      200  {string}  string  "Subscription page"
// @Failure      400  {object}  HTTPError
// @Failure      500  {object}  HTTPError
// @Router       /classroom/subscribe/ [get]
func (h *ClassroomHandler) Subscribe(c *gin.Context) {
	code := c.Query("code")
	rawState := c.Query("state")
	if code == "" || rawState == "" {
		apperror.BadRequestResponse(c, msgMissingCodeOrState)
		return
	}

	clientID, err := h.subscriptions.Subscribe(c.Request.Context(), code, rawState)
	if errors.Is(err, apperror.ErrMissingClientID) {
		logging.FromContext(c.Request.Context()).Warn("state carries no client id")
		apperror.BadRequestResponse(c, msgMissingStateClient)
		return
	}
	if err != nil {
		h.writeError(c, err, "failed to subscribe client", clientID)
		return
	}

	responses.HTML(c, http.StatusOK, subscribedPage(clientID))
}

// Check godoc
// @Summary      Get stored credential
// @Tags         classroom
// @Produce      json
// @Param        clientid  query     string  true  "Client id"
// @Success      200  {object}  TokenResponse
// @Failure      400  {object}  HTTPError
// @Failure      404  {object}  HTTPError
// @Failure      500  {object}  HTTPError
// @Router       /classroom/check/ [get]
func (h *ClassroomHandler) Check(c *gin.Context) {
	clientID := c.Query("clientid")

	token, err := h.subscriptions.Check(c.Request.Context(), clientID)
	if err != nil {
		h.writeError(c, err, "failed to retrieve token", clientID)
		return
	}

	responses.JSONData(c, http.StatusOK, TokenResponse{Token: token})
}

// Unsubscribe godoc
// @Summary      Delete stored credential
// @Tags         classroom
// @Produce      json
// @Param        clientid  query     string  true  "Client id"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  HTTPError
// @Failure      404  {object}  HTTPError
// @Failure      500  {object}  HTTPError
// @Router       /classroom/unsubscribe [delete]
func (h *ClassroomHandler) Unsubscribe(c *gin.Context) {
	clientID := c.Query("clientid")

	if err := h.subscriptions.Unsubscribe(c.Request.Context(), clientID); err != nil {
		h.writeError(c, err, "failed to delete user", clientID)
		return
	}

	responses.JSONData(c, http.StatusOK, MessageResponse{Message: msgUnsubscribed})
}

// writeError is the only place service errors become status codes.
func (h *ClassroomHandler) writeError(c *gin.Context, err error, msg, clientID string) {
	log := logging.FromContext(c.Request.Context())

	switch {
	case errors.Is(err, apperror.ErrInvalidState):
		log.Warn(msg, slog.Any("error", err))
		apperror.BadRequestResponse(c, msgInvalidState)
	case errors.Is(err, apperror.ErrMissingClientID):
		log.Warn(msg, slog.Any("error", err))
		apperror.BadRequestResponse(c, msgMissingClientID)
	case errors.Is(err, apperror.ErrCredentialNotFound):
		log.Info(msg, slog.String("client_id", clientID), slog.Any("error", err))
		apperror.NotFoundResponse(c, msgUserNotFound)
	default:
		log.Error(msg, slog.String("client_id", clientID), slog.Any("error", err))
		apperror.InternalServerErrorResponse(c)
	}
}

func subscribedPage(clientID string) string {
	return fmt.Sprintf(
		"<html><body><h1>Subscription Successful</h1><p>User %s has been successfully subscribed.</p></body></html>",
		html.EscapeString(clientID),
	)
}
