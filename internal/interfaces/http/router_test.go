package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gestion-compras/internal/application/dto"
	"github.com/jhoicas/gestion-compras/internal/application/inventory"
	"github.com/jhoicas/gestion-compras/internal/application/procurement"
	"github.com/jhoicas/gestion-compras/internal/application/report"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/infrastructure/xmldoc"
	apphttp "github.com/jhoicas/gestion-compras/internal/interfaces/http"
	"github.com/jhoicas/gestion-compras/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Servidor de prueba: router completo sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

const (
	empleadoID = int64(1)
	jefeID     = int64(2)
	auxiliarID = int64(3)
	gerenteID  = int64(4)
	productoID = int64(10)
	prov1      = int64(101)
	prov2      = int64(102)
	prov3      = int64(103)
)

type server struct {
	app   *fiber.App
	store *testutil.Store
	pub   *testutil.RecordingPublisher
}

func newServer(t *testing.T) *server {
	t.Helper()
	st := testutil.NewStore()
	st.AddEmployee(empleadoID, "Ana Empleada", entity.RoleEmpleado)
	st.AddEmployee(jefeID, "Bruno Jefe", entity.RoleJefe)
	st.AddEmployee(auxiliarID, "Carla Auxiliar", entity.RoleAuxiliar)
	st.AddEmployee(gerenteID, "Diego Gerente", entity.RoleGerencia)
	st.AddProduct(productoID, "Resma carta")
	st.AddSupplier(prov1, "Papelería Uno")
	st.AddSupplier(prov2, "Distribuidora Dos")
	st.AddSupplier(prov3, "Suministros Tres")

	pub := &testutil.RecordingPublisher{}
	repos := st.Repositories()
	policy := procurement.DefaultPolicy()
	poster := inventory.NewPostReceiptUseCase(st, repos.Inventory, repos.Movements, nil)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		RequestUC:     procurement.NewRequestUseCase(st, repos.Requests, repos.Links, st.Catalog(), policy, nil),
		SourcingUC:    procurement.NewSourcingUseCase(st, repos, st.Catalog(), pub, nil),
		AwardUC:       procurement.NewAwardUseCase(st, pub, policy, nil),
		FulfillmentUC: procurement.NewFulfillmentUseCase(st, repos, st.Catalog(), poster, pub, nil),
		WorkflowUC:    procurement.NewWorkflowUseCase(st, pub, policy, nil),
		InventoryUC:   poster,
		ReorderUC:     inventory.NewReorderUseCase(st, repos.Inventory, st.Catalog(), nil),
		// Sin generador PDF ni XLSX: esas exportaciones responden INVALID_STATE.
		ExportUC:  report.NewExportUseCase(repos, st.Catalog(), nil, xmldoc.NewOrderXMLBuilder("Compras S.A.S."), nil, nil),
		JWTSecret: testJWTSecret,
	})
	return &server{app: app, store: st, pub: pub}
}

var roleOf = map[int64]string{
	empleadoID: entity.RoleEmpleado,
	jefeID:     entity.RoleJefe,
	auxiliarID: entity.RoleAuxiliar,
	gerenteID:  entity.RoleGerencia,
}

// do envía la petición autenticada como el empleado indicado y devuelve estado y cuerpo.
func (s *server) do(t *testing.T, actor int64, method, path string, body any) (int, []byte, http.Header) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", tokenForRole(t, actor, roleOf[actor]))
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out, resp.Header
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func (s *server) createRequest(t *testing.T, qty int) int64 {
	t.Helper()
	code, raw, _ := s.do(t, empleadoID, http.MethodPost, "/api/procesos/solicitudes",
		dto.CreatePurchaseRequest{ProductID: productoID, Quantity: qty})
	require.Equal(t, http.StatusCreated, code, string(raw))
	return decode[dto.PurchaseRequestResponse](t, raw).ID
}

// sentRequest solicitud aprobada y enviada a los tres proveedores.
func (s *server) sentRequest(t *testing.T, qty int) int64 {
	t.Helper()
	id := s.createRequest(t, qty)
	code, raw, _ := s.do(t, jefeID, http.MethodPost, fmt.Sprintf("/api/procesos/solicitudes/%d/aprobar", id), nil)
	require.Equal(t, http.StatusOK, code, string(raw))
	code, raw, _ = s.do(t, auxiliarID, http.MethodPost, fmt.Sprintf("/api/procesos/solicitudes/%d/enviar-a-proveedores", id),
		dto.SendToSuppliersRequest{SupplierIDs: []int64{prov1, prov2, prov3}})
	require.Equal(t, http.StatusOK, code, string(raw))
	return id
}

func (s *server) quote(t *testing.T, requestID, supplierID int64, price string) int64 {
	t.Helper()
	code, raw, _ := s.do(t, auxiliarID, http.MethodPost, "/api/procesos/cotizaciones",
		map[string]any{"request_id": requestID, "supplier_id": supplierID, "price": price})
	require.Equal(t, http.StatusCreated, code, string(raw))
	return decode[dto.QuotationResponse](t, raw).ID
}

// issuedOrder adjudica la cotización más barata y emite la orden vía workflow.
func (s *server) issuedOrder(t *testing.T) int64 {
	t.Helper()
	reqID := s.sentRequest(t, 5)
	s.quote(t, reqID, prov1, "200")
	q2 := s.quote(t, reqID, prov2, "150")
	code, raw, _ := s.do(t, gerenteID, http.MethodPost, fmt.Sprintf("/api/workflow/cotizaciones/%d/aprobar", q2), nil)
	require.Equal(t, http.StatusCreated, code, string(raw))
	return decode[dto.AwardAndIssueResponse](t, raw).OrderID
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_FlujoCompletoHastaInventario(t *testing.T) {
	s := newServer(t)
	orderID := s.issuedOrder(t)

	code, raw, _ := s.do(t, auxiliarID, http.MethodPost, fmt.Sprintf("/api/procesos/ordenes/%d/estado", orderID),
		dto.DispatchRequest{Status: "EnRuta"})
	require.Equal(t, http.StatusCreated, code, string(raw))
	code, raw, _ = s.do(t, auxiliarID, http.MethodPost, fmt.Sprintf("/api/procesos/ordenes/%d/estado", orderID),
		dto.DispatchRequest{Status: "Entregado"})
	require.Equal(t, http.StatusCreated, code, string(raw))

	code, raw, _ = s.do(t, jefeID, http.MethodPost, fmt.Sprintf("/api/procesos/ordenes/%d/conformidad-jefe", orderID),
		map[string]any{"conforme": true})
	require.Equal(t, http.StatusOK, code, string(raw))

	code, raw, _ = s.do(t, empleadoID, http.MethodPost, fmt.Sprintf("/api/procesos/ordenes/%d/notificar-producto", orderID),
		map[string]any{"conforme": true, "comment": "todo en orden"})
	require.Equal(t, http.StatusOK, code, string(raw))
	acc := decode[dto.AcceptanceResponse](t, raw)
	require.NotNil(t, acc.ReceiptID)
	require.NotNil(t, acc.QuantityOnHand)
	assert.Equal(t, 5, *acc.QuantityOnHand)

	code, raw, _ = s.do(t, gerenteID, http.MethodGet, fmt.Sprintf("/api/procesos/ordenes/%d", orderID), nil)
	require.Equal(t, http.StatusOK, code)
	order := decode[dto.OrderResponse](t, raw)
	assert.Equal(t, "Entregado", order.State)
	assert.Equal(t, "Distribuidora Dos", order.SupplierName)
	require.Len(t, order.Tracking, 3)
	assert.Equal(t, "NoDespachado", order.Tracking[0].Status)
	assert.Equal(t, "Entregado", order.Tracking[2].Status)

	code, raw, _ = s.do(t, empleadoID, http.MethodGet, fmt.Sprintf("/api/inventario/%d", productoID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 5, decode[dto.InventoryItemResponse](t, raw).QuantityOnHand)

	code, raw, _ = s.do(t, empleadoID, http.MethodGet, fmt.Sprintf("/api/inventario/%d/movimientos?limit=10", productoID), nil)
	require.Equal(t, http.StatusOK, code)
	movs := decode[dto.MovementListResponse](t, raw)
	require.Len(t, movs.Items, 1)
	assert.Equal(t, 5, movs.Items[0].Quantity)
	assert.Equal(t, 10, movs.Page.Limit)

	assert.Equal(t, []string{
		entity.EventRequestSent,
		entity.EventQuotationAwarded,
		entity.EventOrderIssued,
		entity.EventOrderDelivered,
		entity.EventInventoryReceived,
	}, s.pub.Types())

	code, raw, _ = s.do(t, jefeID, http.MethodPost, fmt.Sprintf("/api/procesos/notificaciones-proveedor/%d", orderID),
		map[string]any{"result": "Bien", "message": "entrega puntual"})
	require.Equal(t, http.StatusCreated, code, string(raw))
	fb := decode[dto.SupplierFeedbackResponse](t, raw)
	assert.Equal(t, orderID, fb.OrderID)
	assert.Equal(t, prov2, fb.SupplierID)

	code, raw, _ = s.do(t, empleadoID, http.MethodGet, fmt.Sprintf("/api/procesos/notificaciones-proveedor/%d", fb.ID), nil)
	require.Equal(t, http.StatusOK, code, string(raw))
	got := decode[dto.SupplierFeedbackResponse](t, raw)
	assert.Equal(t, fb.ID, got.ID)
	assert.Equal(t, "Bien", got.Result)
	assert.Equal(t, "Distribuidora Dos", got.SupplierName)
}

func TestRouter_AdjudicacionYOrdenPorSeparado(t *testing.T) {
	s := newServer(t)
	reqID := s.sentRequest(t, 2)
	q1 := s.quote(t, reqID, prov1, "90.5")
	s.quote(t, reqID, prov2, "120")

	code, raw, _ := s.do(t, gerenteID, http.MethodGet, "/api/procesos/cotizaciones/pendientes", nil)
	require.Equal(t, http.StatusOK, code)
	pending := decode[[]dto.QuotationResponse](t, raw)
	require.Len(t, pending, 2)
	assert.Equal(t, q1, pending[0].ID, "la más barata primero")

	code, raw, _ = s.do(t, gerenteID, http.MethodPost, fmt.Sprintf("/api/procesos/cotizaciones/%d/aprobar-final", q1),
		dto.AwardRequest{})
	require.Equal(t, http.StatusOK, code, string(raw))
	aw := decode[dto.AwardResponse](t, raw)
	assert.Equal(t, int64(1), aw.RejectedCount)

	code, raw, _ = s.do(t, auxiliarID, http.MethodPost, fmt.Sprintf("/api/procesos/ordenes/desde-cotizacion/%d", q1), nil)
	require.Equal(t, http.StatusCreated, code, string(raw))
	orderID := decode[dto.OrderCreatedResponse](t, raw).OrderID

	// Segundo intento: 409 con el id existente
	code, raw, _ = s.do(t, auxiliarID, http.MethodPost, "/api/procesos/ordenes", dto.CreateOrderRequest{QuotationID: q1})
	require.Equal(t, http.StatusConflict, code)
	conflict := decode[dto.OrderConflictResponse](t, raw)
	assert.Equal(t, "CONFLICT", conflict.Code)
	assert.Equal(t, orderID, conflict.OrderID)
	assert.Equal(t, 1, s.store.OrderCount())
}

// ──────────────────────────────────────────────────────────────────────────────
// Cotizaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_CotizacionSinPrecioSeRechazaYNoGastaElCupo(t *testing.T) {
	s := newServer(t)
	reqID := s.sentRequest(t, 2)

	code, raw, _ := s.do(t, auxiliarID, http.MethodPost, "/api/procesos/cotizaciones",
		map[string]any{"request_id": reqID, "supplier_id": prov1})
	require.Equal(t, http.StatusBadRequest, code, string(raw))
	e := decode[dto.ErrorResponse](t, raw)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Message, "el precio es obligatorio")
	assert.Zero(t, s.store.QuotationCount(reqID, prov1))

	// el mismo proveedor puede cotizar después con precio, incluso 0
	qID := s.quote(t, reqID, prov1, "0")

	code, raw, _ = s.do(t, gerenteID, http.MethodGet, fmt.Sprintf("/api/procesos/cotizaciones/%d", qID), nil)
	require.Equal(t, http.StatusOK, code, string(raw))
	q := decode[dto.QuotationResponse](t, raw)
	assert.Equal(t, reqID, q.RequestID)
	assert.Equal(t, "Papelería Uno", q.SupplierName)
	assert.True(t, q.Price.IsZero())
	assert.Equal(t, "Resma carta", q.ProductName)
}

func TestRouter_SolicitudMuestraProveedoresInvitados(t *testing.T) {
	s := newServer(t)
	reqID := s.sentRequest(t, 2)

	code, raw, _ := s.do(t, empleadoID, http.MethodGet, fmt.Sprintf("/api/procesos/solicitudes/%d", reqID), nil)
	require.Equal(t, http.StatusOK, code, string(raw))
	pr := decode[dto.PurchaseRequestResponse](t, raw)
	require.Len(t, pr.Suppliers, 3)
	ids := []int64{pr.Suppliers[0].SupplierID, pr.Suppliers[1].SupplierID, pr.Suppliers[2].SupplierID}
	assert.ElementsMatch(t, []int64{prov1, prov2, prov3}, ids)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reorden
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_MinimoYRevisionDeReorden(t *testing.T) {
	s := newServer(t)
	path := fmt.Sprintf("/api/inventario/%d/minimo", productoID)

	code, raw, _ := s.do(t, jefeID, http.MethodPut, path, map[string]any{"min_quantity": 4})
	require.Equal(t, http.StatusOK, code, string(raw))
	item := decode[dto.InventoryItemResponse](t, raw)
	require.NotNil(t, item.MinQuantity)
	assert.Equal(t, 4, *item.MinQuantity)
	assert.True(t, item.BelowMinimum)

	code, raw, _ = s.do(t, gerenteID, http.MethodPost, "/api/workflow/inventario/revisar-reorden", nil)
	require.Equal(t, http.StatusOK, code, string(raw))
	out := decode[dto.ReorderReviewResponse](t, raw)
	assert.Equal(t, 1, out.Created)
	require.Len(t, out.Items, 1)
	assert.Equal(t, dto.ReorderCreated, out.Items[0].Status)
	assert.Equal(t, 8, out.Items[0].SuggestedQuantity)
	require.NotNil(t, out.Items[0].RequestID)

	pr := s.store.Request(*out.Items[0].RequestID)
	assert.Equal(t, entity.RequestCreada, pr.State)
	assert.Equal(t, gerenteID, pr.RequesterID)

	// la segunda revisión no duplica
	code, raw, _ = s.do(t, jefeID, http.MethodPost, "/api/workflow/inventario/revisar-reorden", nil)
	require.Equal(t, http.StatusOK, code, string(raw))
	out = decode[dto.ReorderReviewResponse](t, raw)
	assert.Zero(t, out.Created)
	require.Len(t, out.Items, 1)
	assert.Equal(t, dto.ReorderPending, out.Items[0].Status)
	assert.Len(t, s.store.RequestsForProduct(productoID), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Roles por operación
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_TablaDeRoles(t *testing.T) {
	s := newServer(t)
	reqID := s.createRequest(t, 1)

	cases := []struct {
		name   string
		actor  int64
		method string
		path   string
		body   any
	}{
		{"jefe no crea solicitudes", jefeID, http.MethodPost, "/api/procesos/solicitudes", dto.CreatePurchaseRequest{ProductID: productoID, Quantity: 1}},
		{"empleado no aprueba", empleadoID, http.MethodPost, fmt.Sprintf("/api/procesos/solicitudes/%d/aprobar", reqID), nil},
		{"gerencia no revisa", gerenteID, http.MethodPut, fmt.Sprintf("/api/procesos/solicitudes/%d", reqID), dto.RevisePurchaseRequest{}},
		{"jefe no envía a proveedores", jefeID, http.MethodPost, fmt.Sprintf("/api/procesos/solicitudes/%d/enviar-a-proveedores", reqID), dto.SendToSuppliersRequest{}},
		{"gerencia no registra cotizaciones", gerenteID, http.MethodPost, "/api/procesos/cotizaciones", map[string]any{"request_id": reqID, "supplier_id": prov1, "price": "10"}},
		{"auxiliar no ve pendientes", auxiliarID, http.MethodGet, "/api/procesos/cotizaciones/pendientes", nil},
		{"jefe no adjudica", jefeID, http.MethodPost, "/api/procesos/cotizaciones/1/aprobar-final", nil},
		{"auxiliar no usa workflow", auxiliarID, http.MethodPost, "/api/workflow/cotizaciones/1/aprobar", nil},
		{"empleado no despacha", empleadoID, http.MethodPost, "/api/procesos/ordenes/1/estado", dto.DispatchRequest{Status: "Entregado"}},
		{"auxiliar no da conformidad", auxiliarID, http.MethodPost, "/api/procesos/ordenes/1/conformidad-jefe", map[string]any{"conforme": true}},
		{"jefe no acepta por el empleado", jefeID, http.MethodPost, "/api/procesos/ordenes/1/notificar-producto", map[string]any{"conforme": true}},
		{"empleado no notifica proveedor", empleadoID, http.MethodPost, "/api/procesos/notificaciones-proveedor", dto.SupplierFeedbackRequest{}},
		{"auxiliar no notifica proveedor por orden", auxiliarID, http.MethodPost, "/api/procesos/notificaciones-proveedor/1", dto.SupplierFeedbackRequest{Result: "Bien"}},
		{"empleado no fija mínimos", empleadoID, http.MethodPut, fmt.Sprintf("/api/inventario/%d/minimo", productoID), map[string]any{"min_quantity": 3}},
		{"auxiliar no revisa reorden", auxiliarID, http.MethodPost, "/api/workflow/inventario/revisar-reorden", nil},
		{"empleado no revisa reorden", empleadoID, http.MethodPost, "/api/workflow/inventario/revisar-reorden", nil},
		{"auxiliar no exporta comparativo", auxiliarID, http.MethodGet, "/api/procesos/cotizaciones/comparativo?solicitudId=1", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, raw, _ := s.do(t, tc.actor, tc.method, tc.path, tc.body)
			assert.Equal(t, http.StatusForbidden, code, string(raw))
		})
	}
	assert.Equal(t, entity.RequestCreada, s.store.Request(reqID).State)
}

func TestRouter_LecturasAbiertasALosCuatroRoles(t *testing.T) {
	s := newServer(t)
	s.createRequest(t, 1)
	for _, actor := range []int64{empleadoID, jefeID, auxiliarID, gerenteID} {
		for _, path := range []string{
			"/api/procesos/solicitudes",
			"/api/procesos/cotizaciones",
			"/api/procesos/ordenes",
			"/api/procesos/notificaciones-proveedor",
			"/api/inventario",
		} {
			code, raw, _ := s.do(t, actor, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusOK, code, "%s %s: %s", roleOf[actor], path, raw)
		}
	}
}

func TestRouter_SinToken_Retorna401(t *testing.T) {
	s := newServer(t)
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/procesos/solicitudes", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Traducción de errores
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_MapeoDeErrores(t *testing.T) {
	s := newServer(t)
	reqID := s.createRequest(t, 3)
	code, _, _ := s.do(t, jefeID, http.MethodPost, fmt.Sprintf("/api/procesos/solicitudes/%d/aprobar", reqID), nil)
	require.Equal(t, http.StatusOK, code)

	cases := []struct {
		name     string
		actor    int64
		method   string
		path     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"cantidad cero", empleadoID, http.MethodPost, "/api/procesos/solicitudes", dto.CreatePurchaseRequest{ProductID: productoID, Quantity: 0}, http.StatusBadRequest, "VALIDATION"},
		{"producto inexistente", empleadoID, http.MethodPost, "/api/procesos/solicitudes", dto.CreatePurchaseRequest{ProductID: 999, Quantity: 1}, http.StatusNotFound, "NOT_FOUND"},
		{"solicitud inexistente", jefeID, http.MethodGet, "/api/procesos/solicitudes/999", nil, http.StatusNotFound, "NOT_FOUND"},
		{"id no numérico", jefeID, http.MethodGet, "/api/procesos/solicitudes/abc", nil, http.StatusBadRequest, "VALIDATION"},
		{"revisar aprobada", jefeID, http.MethodPut, fmt.Sprintf("/api/procesos/solicitudes/%d", reqID), map[string]any{"quantity": 4}, http.StatusConflict, "INVALID_STATE"},
		{"dos proveedores", auxiliarID, http.MethodPost, fmt.Sprintf("/api/procesos/solicitudes/%d/enviar-a-proveedores", reqID), dto.SendToSuppliersRequest{SupplierIDs: []int64{prov1, prov2}}, http.StatusBadRequest, "VALIDATION"},
		{"cotización sin envío", auxiliarID, http.MethodPost, "/api/procesos/cotizaciones", map[string]any{"request_id": reqID, "supplier_id": prov1, "price": "10"}, http.StatusConflict, "CONFLICT"},
		{"cotización sin solicitud", auxiliarID, http.MethodPost, "/api/procesos/cotizaciones", map[string]any{"supplier_id": prov1, "price": "10"}, http.StatusBadRequest, "VALIDATION"},
		{"cotización inexistente", gerenteID, http.MethodGet, "/api/procesos/cotizaciones/999", nil, http.StatusNotFound, "NOT_FOUND"},
		{"notificación inexistente", gerenteID, http.MethodGet, "/api/procesos/notificaciones-proveedor/999", nil, http.StatusNotFound, "NOT_FOUND"},
		{"mínimo negativo", jefeID, http.MethodPut, fmt.Sprintf("/api/inventario/%d/minimo", productoID), map[string]any{"min_quantity": -1}, http.StatusBadRequest, "VALIDATION"},
		{"mínimo de producto inexistente", jefeID, http.MethodPut, "/api/inventario/999/minimo", map[string]any{"min_quantity": 1}, http.StatusNotFound, "NOT_FOUND"},
		{"estado de despacho desconocido", auxiliarID, http.MethodPost, "/api/procesos/ordenes/1/estado", dto.DispatchRequest{Status: "Perdido"}, http.StatusBadRequest, "VALIDATION"},
		{"filtro con id inválido", gerenteID, http.MethodGet, "/api/procesos/cotizaciones?solicitudId=x", nil, http.StatusBadRequest, "VALIDATION"},
		{"comparativo sin solicitud", gerenteID, http.MethodGet, "/api/procesos/cotizaciones/comparativo", nil, http.StatusBadRequest, "VALIDATION"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, raw, _ := s.do(t, tc.actor, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.wantCode, code, string(raw))
			assert.Equal(t, tc.wantErr, decode[dto.ErrorResponse](t, raw).Code)
		})
	}
}

func TestRouter_CuerpoInvalido_Retorna400(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/procesos/solicitudes", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, empleadoID, entity.RoleEmpleado))
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INVALID_BODY", body.Code)
}

func TestRouter_FalloDeAlmacen_Retorna500Generico(t *testing.T) {
	s := newServer(t)
	s.store.FailOn("Requests.Create", 0, testutil.ErrInjected)

	code, raw, _ := s.do(t, empleadoID, http.MethodPost, "/api/procesos/solicitudes",
		dto.CreatePurchaseRequest{ProductID: productoID, Quantity: 1})

	assert.Equal(t, http.StatusInternalServerError, code)
	body := decode[dto.ErrorResponse](t, raw)
	assert.Equal(t, "STORAGE", body.Code)
	assert.NotContains(t, body.Message, testutil.ErrInjected.Error(), "el detalle del almacén no se expone")
}

func TestRouter_AceptacionSinConformidadDelJefe_Retorna409(t *testing.T) {
	s := newServer(t)
	orderID := s.issuedOrder(t)
	code, _, _ := s.do(t, auxiliarID, http.MethodPost, fmt.Sprintf("/api/procesos/ordenes/%d/estado", orderID),
		dto.DispatchRequest{Status: "Entregado"})
	require.Equal(t, http.StatusCreated, code)

	code, raw, _ := s.do(t, empleadoID, http.MethodPost, fmt.Sprintf("/api/procesos/ordenes/%d/notificar-producto", orderID),
		map[string]any{"conforme": true})

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", decode[dto.ErrorResponse](t, raw).Code)
	assert.Equal(t, 0, s.store.OnHand(productoID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Notificaciones y exportaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_NotificacionProveedor(t *testing.T) {
	s := newServer(t)
	orderID := s.issuedOrder(t)

	code, raw, _ := s.do(t, jefeID, http.MethodPost, "/api/procesos/notificaciones-proveedor",
		dto.SupplierFeedbackRequest{OrderID: orderID, Result: "Bien"})
	assert.Equal(t, http.StatusConflict, code, "la orden aún no está entregada: %s", raw)

	code, _, _ = s.do(t, auxiliarID, http.MethodPost, fmt.Sprintf("/api/procesos/ordenes/%d/estado", orderID),
		dto.DispatchRequest{Status: "Entregado"})
	require.Equal(t, http.StatusCreated, code)

	code, raw, _ = s.do(t, jefeID, http.MethodPost, "/api/procesos/notificaciones-proveedor",
		dto.SupplierFeedbackRequest{OrderID: orderID, Result: "Bien"})
	require.Equal(t, http.StatusCreated, code, string(raw))
	fb := decode[dto.SupplierFeedbackResponse](t, raw)
	assert.Equal(t, prov2, fb.SupplierID)
	assert.Equal(t, jefeID, fb.SupervisorID)

	code, raw, _ = s.do(t, empleadoID, http.MethodGet, fmt.Sprintf("/api/procesos/notificaciones-proveedor?ordenId=%d", orderID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]dto.SupplierFeedbackResponse](t, raw), 1)
}

func TestRouter_ExportacionesDeOrden(t *testing.T) {
	s := newServer(t)
	orderID := s.issuedOrder(t)

	code, raw, hdr := s.do(t, empleadoID, http.MethodGet, fmt.Sprintf("/api/procesos/ordenes/%d/xml", orderID), nil)
	require.Equal(t, http.StatusOK, code, string(raw))
	assert.Equal(t, report.ContentTypeXML, hdr.Get("Content-Type"))
	assert.Contains(t, hdr.Get("Content-Disposition"), fmt.Sprintf("OC-%06d.xml", orderID))
	assert.Regexp(t, `^[0-9a-f]{64}$`, hdr.Get("X-Document-Digest"), "SHA-256 en hex")
	assert.Contains(t, string(raw), "Distribuidora Dos")

	// Sin generador PDF configurado
	code, raw, _ = s.do(t, empleadoID, http.MethodGet, fmt.Sprintf("/api/procesos/ordenes/%d/pdf", orderID), nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_STATE", decode[dto.ErrorResponse](t, raw).Code)

	code, _, _ = s.do(t, empleadoID, http.MethodGet, "/api/procesos/ordenes/999/xml", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
