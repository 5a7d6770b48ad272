package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/natar10/uva-ong-block/internal/errs"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// FailFrom 按错误类别映射HTTP状态码
func FailFrom(c *gin.Context, err error) {
	var typed *errs.Error
	if !errors.As(err, &typed) {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(statusFor(typed), Response{
		Success: false,
		Message: typed.Message,
		Code:    string(typed.Kind),
		Data:    nil,
	})
}

// statusFor 错误类别到HTTP状态码
func statusFor(err *errs.Error) int {
	switch err.Kind {
	case errs.KindWalletUnavailable:
		return http.StatusServiceUnavailable
	case errs.KindUserRejected:
		return http.StatusForbidden
	case errs.KindPreconditionFailed:
		switch err.Precondition {
		case errs.PreconditionNotFound:
			return http.StatusNotFound
		case errs.PreconditionDuplicateId:
			return http.StatusConflict
		case errs.PreconditionInvalidInput:
			return http.StatusBadRequest
		default:
			return http.StatusUnprocessableEntity
		}
	case errs.KindTransactionReverted:
		return http.StatusConflict
	case errs.KindTransactionTimeout:
		return http.StatusGatewayTimeout
	case errs.KindLedgerUnreachable:
		return http.StatusBadGateway
	case errs.KindAlreadyInProgress:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
