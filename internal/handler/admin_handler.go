package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sitebrand/internal/db"
	"gorm.io/gorm"
)

const (
	sessionUserIDKey   = "user_id"
	sessionUsernameKey = "username"
)

type loginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login checks operator credentials and opens a cookie session.
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "username and password are required") {
		return
	}

	var user db.User
	err := a.db.WithContext(c.Request.Context()).
		Where("username = ?", strings.TrimSpace(payload.Username)).
		First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.Error(err)
			respondError(c, http.StatusInternalServerError, "login failed")
			return
		}
		respondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if !user.CheckPassword(strings.TrimSpace(payload.Password)) {
		respondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUsernameKey, user.Username)
	if err := session.Save(); err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	a.requestLogger(c).Info("operator logged in", slog.String("username", user.Username))
	c.JSON(http.StatusOK, gin.H{"username": user.Username})
}

// Logout clears the session.
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		c.Error(err)
	}
	c.Status(http.StatusNoContent)
}

// Whoami reports the logged-in operator.
func (a *API) Whoami(c *gin.Context) {
	session := sessions.Default(c)
	c.JSON(http.StatusOK, gin.H{
		"id":       session.Get(sessionUserIDKey),
		"username": session.Get(sessionUsernameKey),
	})
}

// AuthRequired rejects requests without an operator session.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(sessionUserIDKey) == nil {
			respondError(c, http.StatusUnauthorized, "login required")
			c.Abort()
			return
		}
		c.Next()
	}
}
