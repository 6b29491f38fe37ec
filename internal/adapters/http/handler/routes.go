package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health は GET /healthz を処理します。
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Register は打刻 API と管理 API のルートを登録します。
func Register(r gin.IRouter, punches *PunchHandler, employees *EmployeeHandler) error {
	if err := RegisterValidators(); err != nil {
		return err
	}

	r.GET("/healthz", Health)
	r.POST("/bater-ponto", punches.RecordPunch)

	admin := r.Group("/admin")
	admin.GET("/pontos", punches.ListPunches)
	admin.GET("/equipe", employees.ListEmployees)
	admin.GET("/equipe/:id", employees.GetEmployee)
	admin.POST("/cadastrar-funcionario", employees.SaveEmployee)
	admin.DELETE("/excluir-funcionario/:nome", employees.DeleteEmployee)

	return nil
}
