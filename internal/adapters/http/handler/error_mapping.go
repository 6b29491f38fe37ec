package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/employee"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/punch"
)

const (
	msgEmployeeNotFound = "Funcionário não encontrado."
	msgPINMismatch      = "PIN inválido."
	msgNameExists       = "Já existe um funcionário com este nome."
	msgInvalidBody      = "Requisição inválida."
)

func toHTTPStatus(err error) int {
	switch {
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, employee.ErrPINMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, employee.ErrNameAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidName),
		errors.Is(err, employee.ErrInvalidPIN),
		errors.Is(err, punch.ErrInvalidKind),
		errors.Is(err, punch.ErrInvalidEmployeeName),
		errors.Is(err, punch.ErrInvalidDateRange),
		errors.Is(err, punch.ErrInvalidPageSize),
		errors.Is(err, punch.ErrInvalidPageToken):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError はドメインエラーを HTTP ステータスと {message} 形式のボディに変換します。
// 内部エラーの詳細はログにのみ出力し、クライアントには fallback を返します。
func writeError(c *gin.Context, err error, fallback string) {
	code := toHTTPStatus(err)

	var message string
	switch code {
	case http.StatusNotFound:
		message = msgEmployeeNotFound
	case http.StatusUnauthorized:
		message = msgPINMismatch
	case http.StatusConflict:
		message = msgNameExists
	case http.StatusBadRequest:
		message = err.Error()
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		message = fallback
	}

	c.AbortWithStatusJSON(code, gin.H{"message": message})
}

func writeBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Corpo da requisição muito grande."})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": msgInvalidBody, "detail": err.Error()})
}
