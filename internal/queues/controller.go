package queues

import (
	"errors"
	"net/http"

	"queueflow/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Controller handles HTTP requests for queue operations
type Controller struct {
	service  Service
	validate *validator.Validate
}

// NewController creates a new queue controller
func NewController(service Service) *Controller {
	return &Controller{
		service:  service,
		validate: validator.New(),
	}
}

// CreateQueue handles POST /shops/:shop_id/queues
func (ctrl *Controller) CreateQueue(c *gin.Context) {
	shopID, ok := ctrl.shopID(c)
	if !ok {
		return
	}

	var req CreateQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	queue, err := ctrl.service.CreateQueue(c.Request.Context(), shopID, &req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Queue entry created", queue, nil)
}

// GetQueue handles GET /shops/:shop_id/queues/:queue_id
func (ctrl *Controller) GetQueue(c *gin.Context) {
	shopID, ok := ctrl.shopID(c)
	if !ok {
		return
	}
	queueID, ok := ctrl.queueID(c)
	if !ok {
		return
	}

	queue, err := ctrl.service.GetQueueByID(c.Request.Context(), shopID, queueID)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Queue entry retrieved", queue, nil)
}

// ListQueues handles GET /shops/:shop_id/queues
func (ctrl *Controller) ListQueues(c *gin.Context) {
	shopID, ok := ctrl.shopID(c)
	if !ok {
		return
	}

	var req ListQueuesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	page, err := ctrl.service.GetQueuesPaginated(c.Request.Context(), shopID, &req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Queue entries retrieved", page, nil)
}

// UpdateQueue handles PATCH /shops/:shop_id/queues/:queue_id
func (ctrl *Controller) UpdateQueue(c *gin.Context) {
	shopID, ok := ctrl.shopID(c)
	if !ok {
		return
	}
	queueID, ok := ctrl.queueID(c)
	if !ok {
		return
	}

	var req UpdateQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	queue, err := ctrl.service.UpdateQueue(c.Request.Context(), shopID, queueID, &req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Queue entry updated", queue, nil)
}

// DeleteQueue handles DELETE /shops/:shop_id/queues/:queue_id
func (ctrl *Controller) DeleteQueue(c *gin.Context) {
	shopID, ok := ctrl.shopID(c)
	if !ok {
		return
	}
	queueID, ok := ctrl.queueID(c)
	if !ok {
		return
	}

	if err := ctrl.service.DeleteQueue(c.Request.Context(), shopID, queueID); err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Queue entry deleted", nil, nil)
}

// GetQueueStats handles GET /shops/:shop_id/queues/stats
func (ctrl *Controller) GetQueueStats(c *gin.Context) {
	shopID, ok := ctrl.shopID(c)
	if !ok {
		return
	}

	stats, err := ctrl.service.GetQueueStats(c.Request.Context(), shopID)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Queue statistics retrieved", stats, nil)
}

// BulkUpdateQueues handles POST /shops/:shop_id/queues/bulk/update
func (ctrl *Controller) BulkUpdateQueues(c *gin.Context) {
	shopID, ok := ctrl.shopID(c)
	if !ok {
		return
	}

	var req BulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	result, err := ctrl.service.BulkUpdateQueues(c.Request.Context(), shopID, &req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Bulk update processed", result, nil)
}

// BulkDeleteQueues handles POST /shops/:shop_id/queues/bulk/delete
func (ctrl *Controller) BulkDeleteQueues(c *gin.Context) {
	shopID, ok := ctrl.shopID(c)
	if !ok {
		return
	}

	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	result, err := ctrl.service.BulkDeleteQueues(c.Request.Context(), shopID, &req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Bulk delete processed", result, nil)
}

// BulkReassignQueues handles POST /shops/:shop_id/queues/bulk/reassign
func (ctrl *Controller) BulkReassignQueues(c *gin.Context) {
	shopID, ok := ctrl.shopID(c)
	if !ok {
		return
	}

	var req BulkReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := ctrl.validate.Struct(req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	result, err := ctrl.service.BulkReassignQueues(c.Request.Context(), shopID, &req)
	if err != nil {
		ctrl.respondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Bulk reassignment processed", result, nil)
}

// shopID parses the :shop_id route parameter
func (ctrl *Controller) shopID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("shop_id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid shop ID", nil, nil)
		return uuid.Nil, false
	}
	return id, true
}

// queueID parses the :queue_id route parameter
func (ctrl *Controller) queueID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("queue_id"))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid queue ID", nil, nil)
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service errors to HTTP status codes
func (ctrl *Controller) respondError(c *gin.Context, err error) {
	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	var transitionErr *InvalidTransitionError
	var unauthorizedErr *UnauthorizedError

	switch {
	case errors.As(err, &validationErr):
		response.RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, nil)
	case errors.As(err, &notFoundErr):
		response.RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
	case errors.As(err, &transitionErr):
		response.RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
	case errors.As(err, &unauthorizedErr):
		response.RespondJSON(c, "error", http.StatusForbidden, err.Error(), nil, nil)
	default:
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Internal server error", nil, nil)
	}
}
