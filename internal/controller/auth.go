package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mpower/youthopia/internal/api"
	"github.com/mpower/youthopia/internal/model"
	"github.com/mpower/youthopia/internal/normalize"
)

// ErrInvalidCredentials is returned when neither a staff account nor the
// festival API accepts the credentials.
var ErrInvalidCredentials = errors.New("invalid email/phone or password")

// StaffAccount is a locally configured admin or executive login.
type StaffAccount struct {
	Email         string
	Name          string
	Role          string
	EventAssigned string
	PasswordHash  string
}

type AuthController struct {
	api    Transport
	staff  []StaffAccount
	logger *slog.Logger
}

func NewAuthController(t Transport, staff []StaffAccount, logger *slog.Logger) *AuthController {
	return &AuthController{api: t, staff: staff, logger: logger}
}

// Login authenticates by email or mobile number. Staff accounts are checked
// locally; everyone else is authenticated by the festival API.
func (c *AuthController) Login(ctx context.Context, identifier, password string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	for _, s := range c.staff {
		if !strings.EqualFold(s.Email, identifier) {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(password)); err != nil {
			return nil, ErrInvalidCredentials
		}
		return &model.User{
			ID:            s.Email,
			Name:          s.Name,
			Email:         s.Email,
			Role:          s.Role,
			EventAssigned: s.EventAssigned,
		}, nil
	}

	req := api.LoginRequest{Password: password}
	if mobile, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		req.Mobile = mobile
	} else {
		req.Email = identifier
	}

	var resp map[string]any
	if err := c.api.Post(ctx, api.PathLogin, req, &resp); err != nil {
		if status := api.StatusOf(err); status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusNotFound {
			c.logger.Info("login rejected", "status", status)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	u, ok := normalize.User(unwrapRecord(resp))
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// Register creates a student account on the festival API.
func (c *AuthController) Register(ctx context.Context, req api.RegisterRequest) error {
	if err := c.api.Post(ctx, api.PathRegister, req, nil); err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	return nil
}
