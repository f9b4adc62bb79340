package storefrontserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	accountsmapper "github.com/Apurer/freshcart-api/internal/domains/accounts/adapters/http/mapper"
	accountsapp "github.com/Apurer/freshcart-api/internal/domains/accounts/application"
	accountsports "github.com/Apurer/freshcart-api/internal/domains/accounts/ports"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthAPI wires HTTP transport with the accounts service.
type AuthAPI struct {
	accounts accountsports.Service
}

func NewAuthAPI(accounts accountsports.Service) AuthAPI {
	return AuthAPI{accounts: accounts}
}

// Post /v1/auth/register
func (api *AuthAPI) Register(c *gin.Context) {
	var payload registerRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	result, err := api.accounts.Register(c.Request.Context(), accountsports.Registration{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, accountsmapper.FromAuthResult(result))
}

// Post /v1/auth/login
func (api *AuthAPI) Login(c *gin.Context) {
	var payload loginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	result, err := api.accounts.Login(c.Request.Context(), accountsports.Credentials{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountsmapper.FromAuthResult(result))
}

// Post /v1/auth/logout
// Ends the bearer session. Logging out without a session is not an error.
func (api *AuthAPI) Logout(c *gin.Context) {
	token := sessionToken(c)
	if token == "" {
		c.Status(http.StatusNoContent)
		return
	}
	if err := api.accounts.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/auth/me
func (api *AuthAPI) Me(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, accountsmapper.FromDomainUser(user))
}

// AccountAPI serves the signed-in user's profile.
type AccountAPI struct {
	accounts accountsports.Service
}

func NewAccountAPI(accounts accountsports.Service) AccountAPI {
	return AccountAPI{accounts: accounts}
}

// Get /v1/account/profile
// A user without a stored profile gets an empty one
func (api *AccountAPI) GetProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	profile, err := api.accounts.GetProfile(c.Request.Context(), user.ID)
	if errors.Is(err, accountsapp.ErrNotFound) {
		c.JSON(http.StatusOK, accountsmapper.Profile{})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountsmapper.FromDomainProfile(profile))
}

// Put /v1/account/profile
func (api *AccountAPI) UpdateProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var payload accountsmapper.Profile
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.BadRequest(c, err.Error())
		return
	}
	saved, err := api.accounts.UpdateProfile(c.Request.Context(), accountsmapper.ToDomainProfile(user.ID, payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountsmapper.FromDomainProfile(saved))
}
