package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/employee"
	"github.com/ogurasousui/ponto-clean-arch/internal/core/punch"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubPunchUseCase struct {
	recordCalled bool
	recordInput  punch.RecordPunchInput
	recordOut    *punch.Record
	recordErr    error

	listInput punch.ListPunchesInput
	listOut   *punch.ListPunchesResult
	listErr   error
}

func (s *stubPunchUseCase) RecordPunch(ctx context.Context, in punch.RecordPunchInput) (*punch.Record, error) {
	s.recordCalled = true
	s.recordInput = in
	return s.recordOut, s.recordErr
}

func (s *stubPunchUseCase) ListPunches(ctx context.Context, in punch.ListPunchesInput) (*punch.ListPunchesResult, error) {
	s.listInput = in
	return s.listOut, s.listErr
}

type stubEmployeeUseCase struct {
	saveInput employee.SaveEmployeeInput
	saveOut   *employee.Employee
	saveErr   error

	getInput employee.GetEmployeeInput
	getOut   *employee.Employee
	getErr   error

	listOut []*employee.Employee
	listErr error

	deleteInput employee.DeleteEmployeeInput
	deleteErr   error
}

func (s *stubEmployeeUseCase) SaveEmployee(ctx context.Context, in employee.SaveEmployeeInput) (*employee.Employee, error) {
	s.saveInput = in
	return s.saveOut, s.saveErr
}

func (s *stubEmployeeUseCase) GetEmployee(ctx context.Context, in employee.GetEmployeeInput) (*employee.Employee, error) {
	s.getInput = in
	return s.getOut, s.getErr
}

func (s *stubEmployeeUseCase) ListEmployees(ctx context.Context) ([]*employee.Employee, error) {
	return s.listOut, s.listErr
}

func (s *stubEmployeeUseCase) DeleteEmployee(ctx context.Context, in employee.DeleteEmployeeInput) error {
	s.deleteInput = in
	return s.deleteErr
}

func newRouter(t *testing.T, punches punch.UseCase, employees employee.UseCase) *gin.Engine {
	t.Helper()

	r := gin.New()
	if err := Register(r, NewPunchHandler(punches), NewEmployeeHandler(employees)); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return r
}

func doRequest(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestPunchHandler_RecordPunch_Success(t *testing.T) {
	t.Parallel()

	stub := &stubPunchUseCase{recordOut: &punch.Record{
		ID:           10,
		EmployeeName: "Maria",
		Date:         "2025-05-06",
		Time:         "06:01:00",
		Kind:         "Entrada (⚠️ ATRASO)",
	}}
	r := newRouter(t, stub, &stubEmployeeUseCase{})

	rec := doRequest(t, r, http.MethodPost, "/bater-ponto", map[string]string{
		"funcionario": "Maria",
		"tipo":        "Entrada",
		"foto":        "data:image/jpeg;base64,AAAA",
		"pin":         "4321",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body recordPunchResponse
	decode(t, rec, &body)
	if body.Message != "Ponto registrado com sucesso!" {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if body.Tipo != "Entrada (⚠️ ATRASO)" || body.Data != "2025-05-06" || body.Hora != "06:01:00" {
		t.Fatalf("unexpected body %+v", body)
	}

	if stub.recordInput.EmployeeName != "Maria" || stub.recordInput.Kind != "Entrada" || stub.recordInput.PIN != "4321" {
		t.Fatalf("unexpected input %+v", stub.recordInput)
	}
	if stub.recordInput.Photo == nil || *stub.recordInput.Photo != "data:image/jpeg;base64,AAAA" {
		t.Fatalf("expected photo to be forwarded, got %+v", stub.recordInput.Photo)
	}
}

func TestPunchHandler_RecordPunch_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{name: "employee not found", err: employee.ErrEmployeeNotFound, wantCode: http.StatusNotFound, wantMessage: "Funcionário não encontrado."},
		{name: "pin mismatch", err: employee.ErrPINMismatch, wantCode: http.StatusUnauthorized, wantMessage: "PIN inválido."},
		{name: "invalid kind", err: punch.ErrInvalidKind, wantCode: http.StatusBadRequest, wantMessage: punch.ErrInvalidKind.Error()},
		{name: "storage failure", err: errors.New("connection reset"), wantCode: http.StatusInternalServerError, wantMessage: "Erro ao salvar ponto."},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := newRouter(t, &stubPunchUseCase{recordErr: tc.err}, &stubEmployeeUseCase{})
			rec := doRequest(t, r, http.MethodPost, "/bater-ponto", map[string]string{"funcionario": "Maria", "tipo": "Entrada"})
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}

			var body map[string]string
			decode(t, rec, &body)
			if body["message"] != tc.wantMessage {
				t.Fatalf("expected message %q, got %q", tc.wantMessage, body["message"])
			}
		})
	}
}

func TestPunchHandler_RecordPunch_InvalidBody(t *testing.T) {
	t.Parallel()

	cases := map[string]map[string]string{
		"missing tipo":        {"funcionario": "Maria"},
		"missing funcionario": {"tipo": "Entrada"},
		"malformed pin":       {"funcionario": "Maria", "tipo": "Entrada", "pin": "12ab"},
	}

	for name, payload := range cases {
		payload := payload
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			stub := &stubPunchUseCase{}
			r := newRouter(t, stub, &stubEmployeeUseCase{})
			rec := doRequest(t, r, http.MethodPost, "/bater-ponto", payload)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			if stub.recordCalled {
				t.Fatalf("use case must not be called for invalid body")
			}
		})
	}
}

func TestPunchHandler_ListPunches(t *testing.T) {
	t.Parallel()

	stub := &stubPunchUseCase{listOut: &punch.ListPunchesResult{
		Records: []*punch.Record{
			{ID: 2, EmployeeName: "Maria", Date: "2025-05-06", Time: "17:00:00", Kind: "Saída"},
			{ID: 1, EmployeeName: "Maria", Date: "2025-05-06", Time: "05:50:00", Kind: "Entrada"},
		},
		NextPageToken: "2",
	}}
	r := newRouter(t, stub, &stubEmployeeUseCase{})

	rec := doRequest(t, r, http.MethodGet, "/admin/pontos?funcionario=Maria&de=2025-05-01&ate=2025-05-31&page_size=2&page_token=0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body listPunchesResponse
	decode(t, rec, &body)
	if len(body.Pontos) != 2 || body.Pontos[0].Tipo != "Saída" || body.Pontos[1].Funcionario != "Maria" {
		t.Fatalf("unexpected pontos %+v", body.Pontos)
	}
	if body.NextPageToken != "2" {
		t.Fatalf("expected next token 2, got %q", body.NextPageToken)
	}

	want := punch.ListPunchesInput{EmployeeName: "Maria", From: "2025-05-01", To: "2025-05-31", PageSize: 2, PageToken: "0"}
	if stub.listInput != want {
		t.Fatalf("unexpected input %+v", stub.listInput)
	}
}

func TestPunchHandler_ListPunches_Empty(t *testing.T) {
	t.Parallel()

	r := newRouter(t, &stubPunchUseCase{listOut: &punch.ListPunchesResult{}}, &stubEmployeeUseCase{})

	rec := doRequest(t, r, http.MethodGet, "/admin/pontos", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != `{"pontos":[]}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestPunchHandler_ListPunches_InvalidQuery(t *testing.T) {
	t.Parallel()

	r := newRouter(t, &stubPunchUseCase{}, &stubEmployeeUseCase{})
	rec := doRequest(t, r, http.MethodGet, "/admin/pontos?page_size=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	r = newRouter(t, &stubPunchUseCase{listErr: punch.ErrInvalidPageToken}, &stubEmployeeUseCase{})
	rec = doRequest(t, r, http.MethodGet, "/admin/pontos?page_token=-1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEmployeeHandler_SaveEmployee_Create(t *testing.T) {
	t.Parallel()

	stub := &stubEmployeeUseCase{saveOut: &employee.Employee{ID: 3, Name: "Maria", LunchBreak: "12:00-13:00", Workdays: "Seg-Sex"}}
	r := newRouter(t, &stubPunchUseCase{}, stub)

	rec := doRequest(t, r, http.MethodPost, "/admin/cadastrar-funcionario", map[string]any{
		"nome":         "Maria",
		"pin":          "2468",
		"turnoAlmoco":  "12:00-13:00",
		"diasTrabalho": "Seg-Sex",
		"id_biometria": "bio-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body saveEmployeeResponse
	decode(t, rec, &body)
	if body.Message != "Funcionário cadastrado com sucesso!" {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if body.Funcionario.ID != 3 || body.Funcionario.Nome != "Maria" {
		t.Fatalf("unexpected funcionario %+v", body.Funcionario)
	}

	in := stub.saveInput
	if in.ID != 0 || in.Name != "Maria" || in.LunchBreak != "12:00-13:00" || in.Workdays != "Seg-Sex" {
		t.Fatalf("unexpected input %+v", in)
	}
	if in.PIN == nil || *in.PIN != "2468" {
		t.Fatalf("expected pin to be forwarded, got %+v", in.PIN)
	}
	if in.BiometricID == nil || *in.BiometricID != "bio-1" {
		t.Fatalf("expected biometric id to be forwarded, got %+v", in.BiometricID)
	}
	if in.ProfilePhoto != nil {
		t.Fatalf("expected nil profile photo, got %q", *in.ProfilePhoto)
	}
}

func TestEmployeeHandler_SaveEmployee_Update(t *testing.T) {
	t.Parallel()

	stub := &stubEmployeeUseCase{saveOut: &employee.Employee{ID: 3, Name: "Maria Silva"}}
	r := newRouter(t, &stubPunchUseCase{}, stub)

	rec := doRequest(t, r, http.MethodPost, "/admin/cadastrar-funcionario", map[string]any{"id": 3, "nome": "Maria Silva"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body saveEmployeeResponse
	decode(t, rec, &body)
	if body.Message != "Dados atualizados com sucesso!" {
		t.Fatalf("unexpected message %q", body.Message)
	}
	if stub.saveInput.ID != 3 || stub.saveInput.PIN != nil {
		t.Fatalf("unexpected input %+v", stub.saveInput)
	}
}

func TestEmployeeHandler_SaveEmployee_Errors(t *testing.T) {
	t.Parallel()

	r := newRouter(t, &stubPunchUseCase{}, &stubEmployeeUseCase{saveErr: employee.ErrNameAlreadyExists})
	rec := doRequest(t, r, http.MethodPost, "/admin/cadastrar-funcionario", map[string]any{"nome": "Maria"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	rec = doRequest(t, r, http.MethodPost, "/admin/cadastrar-funcionario", map[string]any{"nome": "Maria", "pin": "1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short pin, got %d", rec.Code)
	}

	rec = doRequest(t, r, http.MethodPost, "/admin/cadastrar-funcionario", map[string]any{"id": -1, "nome": "Maria"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative id, got %d", rec.Code)
	}
}

func TestEmployeeHandler_ListEmployees(t *testing.T) {
	t.Parallel()

	photo := "data:image/png;base64,BBBB"
	stub := &stubEmployeeUseCase{listOut: []*employee.Employee{
		{ID: 1, Name: "Ana", LunchBreak: "11:00-12:00", Workdays: "Seg-Sab", ProfilePhoto: &photo},
		{ID: 2, Name: "Bruno"},
	}}
	r := newRouter(t, &stubPunchUseCase{}, stub)

	rec := doRequest(t, r, http.MethodGet, "/admin/equipe", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body []map[string]any
	decode(t, rec, &body)
	if len(body) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(body))
	}
	if body[0]["nome"] != "Ana" || body[0]["horario_almoco"] != "11:00-12:00" || body[0]["foto_perfil"] != photo {
		t.Fatalf("unexpected first employee %+v", body[0])
	}
	if v, ok := body[1]["id_biometria"]; !ok || v != nil {
		t.Fatalf("expected explicit null id_biometria, got %+v", body[1])
	}
}

func TestEmployeeHandler_GetEmployee(t *testing.T) {
	t.Parallel()

	bio := "bio-7"
	stub := &stubEmployeeUseCase{getOut: &employee.Employee{ID: 7, Name: "Maria", LunchBreak: "12:00-13:00", Workdays: "Seg-Sex", BiometricID: &bio}}
	r := newRouter(t, &stubPunchUseCase{}, stub)

	rec := doRequest(t, r, http.MethodGet, "/admin/equipe/7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.getInput.ID != 7 {
		t.Fatalf("expected id 7, got %d", stub.getInput.ID)
	}

	var body employeeResponse
	decode(t, rec, &body)
	if body.ID != 7 || body.Nome != "Maria" || body.HorarioAlmoco != "12:00-13:00" || body.DiasTrabalho != "Seg-Sex" {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.IDBiometria == nil || *body.IDBiometria != "bio-7" {
		t.Fatalf("unexpected biometric id %+v", body.IDBiometria)
	}
}

func TestEmployeeHandler_GetEmployee_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		path     string
		err      error
		wantCode int
	}{
		{name: "not found", path: "/admin/equipe/99", err: employee.ErrEmployeeNotFound, wantCode: http.StatusNotFound},
		{name: "non numeric id", path: "/admin/equipe/abc", wantCode: http.StatusBadRequest},
		{name: "invalid id", path: "/admin/equipe/0", err: employee.ErrInvalidID, wantCode: http.StatusBadRequest},
		{name: "internal", path: "/admin/equipe/1", err: errors.New("db down"), wantCode: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := newRouter(t, &stubPunchUseCase{}, &stubEmployeeUseCase{getErr: tc.err})
			rec := doRequest(t, r, http.MethodGet, tc.path, nil)
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
		})
	}
}

func TestEmployeeHandler_DeleteEmployee(t *testing.T) {
	t.Parallel()

	stub := &stubEmployeeUseCase{}
	r := newRouter(t, &stubPunchUseCase{}, stub)

	rec := doRequest(t, r, http.MethodDelete, "/admin/excluir-funcionario/Maria%20Silva", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.deleteInput.Name != "Maria Silva" {
		t.Fatalf("expected decoded name, got %q", stub.deleteInput.Name)
	}

	var body map[string]string
	decode(t, rec, &body)
	if body["message"] != "Funcionário excluído com sucesso!" {
		t.Fatalf("unexpected message %q", body["message"])
	}

	stub.deleteErr = employee.ErrEmployeeNotFound
	rec = doRequest(t, r, http.MethodDelete, "/admin/excluir-funcionario/Ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	r := newRouter(t, &stubPunchUseCase{}, &stubEmployeeUseCase{})
	rec := doRequest(t, r, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"status":"ok"}` {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}
