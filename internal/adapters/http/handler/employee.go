package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/employee"
)

// EmployeeHandler は社員管理の HTTP ハンドラです。
type EmployeeHandler struct {
	svc employee.UseCase
}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler(svc employee.UseCase) *EmployeeHandler {
	return &EmployeeHandler{svc: svc}
}

type saveEmployeeRequest struct {
	ID           int64   `json:"id" binding:"gte=0"`
	Nome         string  `json:"nome" binding:"required"`
	PIN          *string `json:"pin" binding:"omitempty,pin"`
	TurnoAlmoco  string  `json:"turnoAlmoco"`
	DiasTrabalho string  `json:"diasTrabalho"`
	FotoPerfil   *string `json:"foto_perfil"`
	IDBiometria  *string `json:"id_biometria"`
}

type employeeResponse struct {
	ID            int64   `json:"id"`
	Nome          string  `json:"nome"`
	HorarioAlmoco string  `json:"horario_almoco"`
	DiasTrabalho  string  `json:"dias_trabalho"`
	FotoPerfil    *string `json:"foto_perfil"`
	IDBiometria   *string `json:"id_biometria"`
}

type saveEmployeeResponse struct {
	Message     string           `json:"message"`
	Funcionario employeeResponse `json:"funcionario"`
}

// SaveEmployee は POST /admin/cadastrar-funcionario を処理します。id の有無で登録と更新を切り替えます。
func (h *EmployeeHandler) SaveEmployee(c *gin.Context) {
	var req saveEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	saved, err := h.svc.SaveEmployee(c.Request.Context(), employee.SaveEmployeeInput{
		ID:           req.ID,
		Name:         req.Nome,
		PIN:          req.PIN,
		LunchBreak:   req.TurnoAlmoco,
		Workdays:     req.DiasTrabalho,
		ProfilePhoto: req.FotoPerfil,
		BiometricID:  req.IDBiometria,
	})
	if err != nil {
		writeError(c, err, "Erro ao salvar funcionário.")
		return
	}

	message := "Funcionário cadastrado com sucesso!"
	if req.ID != 0 {
		message = "Dados atualizados com sucesso!"
	}

	c.JSON(http.StatusOK, saveEmployeeResponse{Message: message, Funcionario: toEmployeeResponse(saved)})
}

// ListEmployees は GET /admin/equipe を処理します。
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	employees, err := h.svc.ListEmployees(c.Request.Context())
	if err != nil {
		writeError(c, err, "Erro ao listar equipe.")
		return
	}

	out := make([]employeeResponse, 0, len(employees))
	for _, emp := range employees {
		out = append(out, toEmployeeResponse(emp))
	}

	c.JSON(http.StatusOK, out)
}

// GetEmployee は GET /admin/equipe/:id を処理します。
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, employee.ErrInvalidID, "")
		return
	}

	found, err := h.svc.GetEmployee(c.Request.Context(), employee.GetEmployeeInput{ID: id})
	if err != nil {
		writeError(c, err, "Erro ao buscar funcionário.")
		return
	}

	c.JSON(http.StatusOK, toEmployeeResponse(found))
}

// DeleteEmployee は DELETE /admin/excluir-funcionario/:nome を処理します。
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	if err := h.svc.DeleteEmployee(c.Request.Context(), employee.DeleteEmployeeInput{Name: c.Param("nome")}); err != nil {
		writeError(c, err, "Erro ao excluir.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Funcionário excluído com sucesso!"})
}

func toEmployeeResponse(emp *employee.Employee) employeeResponse {
	if emp == nil {
		return employeeResponse{}
	}
	return employeeResponse{
		ID:            emp.ID,
		Nome:          emp.Name,
		HorarioAlmoco: emp.LunchBreak,
		DiasTrabalho:  emp.Workdays,
		FotoPerfil:    emp.ProfilePhoto,
		IDBiometria:   emp.BiometricID,
	}
}
