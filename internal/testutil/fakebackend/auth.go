package fakebackend

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const contextUserKey = "user"

// TokenTTL is the lifetime of minted access tokens.
const TokenTTL = 30 * time.Minute

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	s.mu.Lock()
	u, ok := s.users[username]
	static := s.loginToken
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		detail(c, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token := static
	if token == "" {
		var err error
		token, err = s.MintToken(username, TokenTTL)
		if err != nil {
			detail(c, http.StatusInternalServerError, "token generation failed")
			return
		}
	} else {
		s.AddToken(token, username)
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{
			{"loc": []string{"body"}, "msg": "field required", "type": "value_error.missing"},
		}})
		return
	}

	s.mu.Lock()
	_, exists := s.users[req.Username]
	s.mu.Unlock()
	if exists {
		detail(c, http.StatusBadRequest, "Username already registered")
		return
	}
	id := s.AddUser(req.Username, req.Password)
	c.JSON(http.StatusOK, gin.H{"id": id, "username": req.Username})
}

// MintToken signs an HS256 token whose subject is username.
func (s *Server) MintToken(username string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	secret := s.secret
	s.mu.Unlock()

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *Server) authJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			detail(c, http.StatusUnauthorized, "Not authenticated")
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))

		username, ok := s.resolveToken(raw)
		if !ok {
			detail(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		s.mu.Lock()
		u, exists := s.users[username]
		s.mu.Unlock()
		if !exists {
			detail(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		c.Set(contextUserKey, u)
		c.Next()
	}
}

func (s *Server) resolveToken(raw string) (string, bool) {
	s.mu.Lock()
	username, static := s.staticTokens[raw]
	secret := s.secret
	s.mu.Unlock()
	if static {
		return username, true
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

// RevokeAll makes every outstanding token invalid.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secret = append([]byte("rotated-"), s.secret...)
	s.staticTokens = make(map[string]string)
}

func currentUser(c *gin.Context) *user {
	return c.MustGet(contextUserKey).(*user)
}
