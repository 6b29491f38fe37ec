package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/punch"
)

// PunchHandler は打刻関連の HTTP ハンドラです。
type PunchHandler struct {
	svc punch.UseCase
}

// NewPunchHandler は PunchHandler を生成します。
func NewPunchHandler(svc punch.UseCase) *PunchHandler {
	return &PunchHandler{svc: svc}
}

type recordPunchRequest struct {
	Funcionario string  `json:"funcionario" binding:"required"`
	Tipo        string  `json:"tipo" binding:"required"`
	Foto        *string `json:"foto"`
	PIN         string  `json:"pin" binding:"omitempty,pin"`
}

type recordPunchResponse struct {
	Message string `json:"message"`
	Tipo    string `json:"tipo"`
	Data    string `json:"data"`
	Hora    string `json:"hora"`
}

type listPunchesQuery struct {
	Funcionario string `form:"funcionario"`
	De          string `form:"de"`
	Ate         string `form:"ate"`
	PageSize    int    `form:"page_size"`
	PageToken   string `form:"page_token"`
}

type punchResponse struct {
	ID          int64  `json:"id"`
	Funcionario string `json:"funcionario"`
	Data        string `json:"data"`
	Hora        string `json:"hora"`
	Tipo        string `json:"tipo"`
}

type listPunchesResponse struct {
	Pontos        []punchResponse `json:"pontos"`
	NextPageToken string          `json:"next_page_token,omitempty"`
}

// RecordPunch は POST /bater-ponto を処理します。
func (h *PunchHandler) RecordPunch(c *gin.Context) {
	var req recordPunchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	rec, err := h.svc.RecordPunch(c.Request.Context(), punch.RecordPunchInput{
		EmployeeName: req.Funcionario,
		Kind:         req.Tipo,
		Photo:        req.Foto,
		PIN:          req.PIN,
	})
	if err != nil {
		writeError(c, err, "Erro ao salvar ponto.")
		return
	}

	c.JSON(http.StatusOK, recordPunchResponse{
		Message: "Ponto registrado com sucesso!",
		Tipo:    rec.Kind,
		Data:    rec.Date,
		Hora:    rec.Time,
	})
}

// ListPunches は GET /admin/pontos を処理します。
func (h *PunchHandler) ListPunches(c *gin.Context) {
	var q listPunchesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}

	res, err := h.svc.ListPunches(c.Request.Context(), punch.ListPunchesInput{
		EmployeeName: q.Funcionario,
		From:         q.De,
		To:           q.Ate,
		PageSize:     q.PageSize,
		PageToken:    q.PageToken,
	})
	if err != nil {
		writeError(c, err, "Erro ao listar pontos.")
		return
	}

	pontos := make([]punchResponse, 0, len(res.Records))
	for _, rec := range res.Records {
		pontos = append(pontos, punchResponse{
			ID:          rec.ID,
			Funcionario: rec.EmployeeName,
			Data:        rec.Date,
			Hora:        rec.Time,
			Tipo:        rec.Kind,
		})
	}

	c.JSON(http.StatusOK, listPunchesResponse{Pontos: pontos, NextPageToken: res.NextPageToken})
}
