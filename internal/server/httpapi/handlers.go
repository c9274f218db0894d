// Package httpapi exposes the server's use cases over HTTP/JSON.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aguerraochoa/Speakance-sub000/internal/logging"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/models"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/services"
)

// API bundles the service layer behind the HTTP handlers.
type API struct {
	users    *services.UserService
	parse    *services.ParseService
	expenses *services.ExpenseService
	metadata *services.MetadataService
	storage  *services.StorageService
	log      logging.Logger
}

func NewAPI(users *services.UserService, parse *services.ParseService, expenses *services.ExpenseService,
	metadata *services.MetadataService, storage *services.StorageService, log logging.Logger) *API {
	return &API{
		users:    users,
		parse:    parse,
		expenses: expenses,
		metadata: metadata,
		storage:  storage,
		log:      log,
	}
}

type registerRequest struct {
	Username        string `json:"username" binding:"required"`
	Password        string `json:"password" binding:"required"`
	DefaultCurrency string `json:"default_currency"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

func (a *API) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	user, err := a.users.Register(c.Request.Context(), req.Username, req.Password, req.DefaultCurrency)
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := a.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token, UserID: user.ID})
}

func (a *API) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	token, err := a.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token})
}

func (a *API) parseCapture(c *gin.Context) {
	var req services.ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	resp, err := a.parse.Parse(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (a *API) updateExpense(c *gin.Context) {
	var req services.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	dto, err := a.expenses.Update(c.Request.Context(), currentUserID(c), c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto)
}

func (a *API) deleteExpense(c *gin.Context) {
	if err := a.expenses.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) listExpenses(c *gin.Context) {
	rows, err := a.expenses.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": rows})
}

func (a *API) replaceMetadata(c *gin.Context) {
	var snap models.MetadataSnapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	if err := a.metadata.Replace(c.Request.Context(), currentUserID(c), &snap); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) getMetadata(c *gin.Context) {
	snap, err := a.metadata.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type presignResponse struct {
	URL       string `json:"url"`
	ObjectKey string `json:"object_key"`
}

// presignAudio hands the client a short-lived PUT URL so audio uploads never
// pass through the API server.
func (a *API) presignAudio(c *gin.Context) {
	if a.storage == nil {
		c.JSON(http.StatusNotImplemented, errorBody{Error: "audio storage is not configured"})
		return
	}

	key, url, err := a.storage.PresignedPutURL(c.Request.Context(), currentUserID(c))
	if err != nil {
		a.log.Error(c.Request.Context(), "presigning upload failed", "error", err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, presignResponse{URL: url, ObjectKey: key})
}
