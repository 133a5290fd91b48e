package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorResponse is the body of every API error. Details carries per-field
// validation messages.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

type DeletedResponse struct {
	Success bool `json:"success"`
}

// idRequest is the body of every DELETE endpoint.
type idRequest struct {
	ID uint `json:"id" form:"id" binding:"required"`
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, message)
}

func respondNotFound(c *gin.Context, resource string) {
	respondError(c, http.StatusNotFound, resource+" not found")
}

// respondInternalError logs err with the request id; the client only sees a
// generic message.
func respondInternalError(c *gin.Context, err error, op string) {
	log.Printf("[REQ %s] %s failed: %v", requestID(c), op, err)
	respondError(c, http.StatusInternalServerError, "internal server error")
}

// requestError is a failure the caller caused; its status and message are
// returned to the client unchanged.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequestError(message string) error {
	return &requestError{status: http.StatusBadRequest, message: message}
}

func notFoundError(resource string) error {
	return &requestError{status: http.StatusNotFound, message: resource + " not found"}
}

// lookupError turns a missing row into a 404 for resource.
func lookupError(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundError(resource)
	}
	return err
}

// respondOpError answers a requestError with its own status and anything
// else with a logged 500.
func respondOpError(c *gin.Context, err error, op string) {
	var re *requestError
	if errors.As(err, &re) {
		respondError(c, re.status, re.message)
		return
	}
	respondInternalError(c, err, op)
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func respondDeleted(c *gin.Context) {
	c.JSON(http.StatusOK, DeletedResponse{Success: true})
}

// parseID reads a 32-bit id. An empty raw value is answered with missing, or
// yields 0 when missing is empty.
func parseID(c *gin.Context, raw, name, missing string) (uint, bool) {
	if raw == "" {
		if missing == "" {
			return 0, true
		}
		respondBadRequest(c, missing)
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	return parseID(c, c.Param(name), name, "invalid "+name)
}

func parseQueryID(c *gin.Context, name string) (uint, bool) {
	return parseID(c, c.Query(name), name, name+" is required")
}

func parseOptionalQueryID(c *gin.Context, name string) (uint, bool) {
	return parseID(c, c.Query(name), name, "")
}

// parseOptionalQueryInt reads an integer filter; a missing parameter is 0.
func parseOptionalQueryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return 0, false
	}
	return n, true
}
