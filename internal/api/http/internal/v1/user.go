package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/firetrack/backend/internal/domain"
	"github.com/firetrack/backend/internal/service"
	"github.com/firetrack/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (h *Handler) initUsersRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")

	users.POST("", h.userRegister)

	user := users.Group("/:id")
	user.POST("/activation-code", h.userResendActivationCode)
	user.POST("/activate", h.userActivate)
}

type userRegisterInput struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type userActivateInput struct {
	Code int `json:"code" binding:"required,activationcode"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Activated bool      `json:"activated"`
	CreatedAt time.Time `json:"created_at"`
}

type activationCodeResponse struct {
	ExpirationTime    time.Time `json:"expiration_time"`
	RemainingAttempts int       `json:"remaining_attempts"`
}

func newUserResponse(user *domain.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Activated: user.Activated,
		CreatedAt: user.CreatedAt,
	}
}

func (h *Handler) userRegister(c *gin.Context) {
	var input userRegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	user, err := h.services.Users.Register(c.Request.Context(), input.Email, input.Password)
	if user != nil && errors.Is(err, service.ErrActivationCodeNotSent) {
		// The account exists; the client recovers through the resend route.
		logger.Warn("activation code not sent after registration",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
	} else if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

// userResendActivationCode sends the live code again, or a new one when it expired.
// The code itself only travels by email.
func (h *Handler) userResendActivationCode(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	code, err := h.services.Users.ResendActivationCode(c.Request.Context(), id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, activationCodeResponse{
		ExpirationTime:    code.ExpirationTime,
		RemainingAttempts: h.services.ActivationCodes.RemainingAttempts(code),
	})
}

func (h *Handler) userActivate(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	var input userActivateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationErrorResponse(c, err)
		return
	}

	user, err := h.services.Users.Activate(c.Request.Context(), id, input.Code)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorResponse(c, http.StatusBadRequest, InvalidRequestCode)
		return uuid.Nil, false
	}

	return id, true
}
