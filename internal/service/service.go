// Package service exposes the contact operations as a REST API.
package service

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gitlab.com/dirk.krummacker/contact-details/internal/config"
	"gitlab.com/dirk.krummacker/contact-details/internal/contact"
	"gitlab.com/dirk.krummacker/contact-details/internal/metrics"
	"gitlab.com/dirk.krummacker/contact-details/pkg/model"
)

// ApiError is the body of every failed request.
type ApiError struct {
	// Code is the HTTP status code
	Code int `json:"code"`
	// Message is the error message
	Message string `json:"message"`
}

// handler serves the contact endpoints.
type handler struct {
	contacts *contact.Service
	logger   log.Logger
	metrics  *metrics.Metrics
}

// SetupHttpRouter initializes the REST API router and registers all endpoints. The metrics
// argument may be nil, in which case no metrics are collected and /metrics is not served.
func SetupHttpRouter(cfg config.HTTPConfig, contacts *contact.Service, logger log.Logger, m *metrics.Metrics) *gin.Engine {
	h := &handler{contacts: contacts, logger: logger, metrics: m}

	router := gin.New()
	router.Use(gin.Recovery(), requestId())
	if cfg.RequestLogging {
		router.Use(requestLogger(logger))
	} else {
		level.Info(logger).Log("msg", "turning off HTTP request logging")
	}
	if m != nil {
		router.Use(m.Middleware())
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", h.health)
	router.GET("/contact", h.findContacts)
	router.POST("/contact", h.createContact)
	router.GET("/contact/:id", h.findContactByID)
	router.PUT("/contact/:id", h.updateContactByID)
	router.DELETE("/contact/:id", h.deleteContactByID)
	return router
}

// findContacts responds with the list of all contacts as JSON. If there are no contacts at all,
// the response is NOT FOUND instead of an empty list.
//
// The URL parameter 'page' is accepted for the sake of paging clients but has no effect: the
// response always contains all contacts.
//
// REST API calls:
//
//	> curl "http://localhost:8080/contact"
//	> curl "http://localhost:8080/contact?page=2"
func (h *handler) findContacts(c *gin.Context) {
	contacts, err := h.contacts.ListContacts(c.Request.Context())
	if err != nil {
		h.abort(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, contacts)
}

// createContact validates the contact specified in the request's JSON and inserts it into the
// store. It responds with the full contact data including the key assigned by the store. The
// fields FirstName, LastName, Email and Phone are required; id and PictureUrl are optional.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contact --request "POST" --include --header "Content-Type: application/json" --data '{"id": 29, "FirstName": "Erika", "LastName": "Mustermann", "Email": "erika@example.com", "Phone": "0123456789"}'
func (h *handler) createContact(c *gin.Context) {
	var candidate model.Contact
	if err := c.ShouldBindJSON(&candidate); err != nil {
		abortWithMessage(c, http.StatusBadRequest, "invalid JSON")
		return
	}
	created, err := h.contacts.CreateContact(c.Request.Context(), candidate)
	if err != nil {
		h.abort(c, err)
		return
	}
	h.changed("create")
	c.IndentedJSON(http.StatusCreated, created)
}

// findContactByID locates the first contact whose id matches the id parameter of the request
// URL, then returns that contact as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contact/29
func (h *handler) findContactByID(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	found, err := h.contacts.GetContactById(c.Request.Context(), id)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, found)
}

// updateContactByID loads the first contact whose id matches the id parameter of the request URL,
// overwrites the values specified in the JSON (and only those), and finally responds with the new
// version of the contact.
//
// Example REST API calls:
//
//	> curl http://localhost:8080/contact/29 --request "PUT" --include --header "Content-Type: application/json" --data '{"Phone": "0987654321"}'
//	> curl http://localhost:8080/contact/29 --request "PUT" --include --header "Content-Type: application/json" --data '{"FirstName": "Rudi", "LastName": "Voeller"}'
func (h *handler) updateContactByID(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	var patch model.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		abortWithMessage(c, http.StatusBadRequest, "invalid JSON")
		return
	}
	updated, err := h.contacts.UpdateContact(c.Request.Context(), id, patch)
	if err != nil {
		h.abort(c, err)
		return
	}
	h.changed("update")
	c.IndentedJSON(http.StatusOK, updated)
}

// deleteContactByID deletes the first contact whose id matches the id parameter of the request
// URL and responds with the deletion result.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contact/29 --request "DELETE"
func (h *handler) deleteContactByID(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	result, err := h.contacts.DeleteContactById(c.Request.Context(), id)
	if err != nil {
		h.abort(c, err)
		return
	}
	h.changed("delete")
	c.IndentedJSON(http.StatusOK, result)
}

// health reports whether the contact store can be reached.
//
// Example REST API call:
//
//	> curl http://localhost:8080/healthz
func (h *handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.contacts.Ping(ctx); err != nil {
		level.Error(h.logger).Log("msg", "health probe failed", "err", err)
		c.IndentedJSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseId converts the id parameter of the request URL. If that is not possible, the request is
// answered with BAD REQUEST and false is returned.
func parseId(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithMessage(c, http.StatusBadRequest, "invalid id parameter")
		return 0, false
	}
	return id, true
}

// abort answers the request with the status code belonging to err.
func (h *handler) abort(c *gin.Context, err error) {
	status := contact.StatusCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		level.Error(h.logger).Log("msg", "request failed", "path", c.Request.URL.Path, "err", err)
		message = http.StatusText(status)
	}
	abortWithMessage(c, status, message)
}

func abortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ApiError{Code: status, Message: message})
}

func (h *handler) changed(operation string) {
	if h.metrics != nil {
		h.metrics.ContactChanged(operation)
	}
}
