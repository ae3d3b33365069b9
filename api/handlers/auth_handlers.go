package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketpulse/auth"
	"marketpulse/config"
	"marketpulse/dto"
	"marketpulse/logger"
)

const adminUsername = "admin"

// LoginHandler godoc
// @Summary      Admin login
// @Description  Validates the admin credentials and sets the session cookie. The token is also returned for non-browser clients.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200  {object}  object{token=string}
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Router       /auth/login [post]
func LoginHandler(cfg config.AppConfig, jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
			return
		}

		userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(adminUsername)) == 1
		passOK := cfg.AdminPassword != "" &&
			subtle.ConstantTimeCompare([]byte(req.Password), []byte(cfg.AdminPassword)) == 1
		if !userOK || !passOK {
			logger.Log.Warnf("failed login attempt for user %q", req.Username)
			c.JSON(http.StatusUnauthorized, dto.ErrorResponseDTO{Error: "invalid_credentials"})
			return
		}

		token, err := jwtManager.Sign(adminUsername, auth.RoleAdmin)
		if err != nil {
			c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: "failed_to_issue_token"})
			return
		}

		maxAge := int(jwtManager.TTL().Seconds())
		c.SetCookie(auth.CookieName, token, maxAge, "/", "", false, true)
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// LogoutHandler godoc
// @Summary      Admin logout
// @Description  Expires the session cookie
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.MessageResponseDTO
// @Router       /auth/logout [post]
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "logged out"})
	}
}
