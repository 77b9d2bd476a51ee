// Package testutil almacén en memoria que implementa los puertos de repositorio y un TxRunner con
// rollback por instantánea. Reproduce las constraints del esquema (únicos, FK de cotización, índice
// de un solo ganador) para que los casos de uso se prueben sin PostgreSQL.
package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/gestion-compras/internal/domain"
	"github.com/jhoicas/gestion-compras/internal/domain/entity"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
)

type pair struct{ a, b int64 }

type state struct {
	seq        int64
	suppliers  map[int64]entity.Supplier
	employees  map[int64]entity.Employee
	products   map[int64]entity.Product
	requests   map[int64]entity.PurchaseRequest
	links      map[pair]entity.SupplierLink
	quotations map[int64]entity.Quotation
	orders     map[int64]entity.PurchaseOrder
	dispatch   []entity.DispatchEvent
	receipts   map[int64]entity.Receipt
	lines      []entity.ReceiptLine
	inventory  map[int64]entity.InventoryRecord
	movements  []entity.InventoryMovement
	feedback   []entity.SupplierFeedback
}

func newState() *state {
	return &state{
		suppliers:  map[int64]entity.Supplier{},
		employees:  map[int64]entity.Employee{},
		products:   map[int64]entity.Product{},
		requests:   map[int64]entity.PurchaseRequest{},
		links:      map[pair]entity.SupplierLink{},
		quotations: map[int64]entity.Quotation{},
		orders:     map[int64]entity.PurchaseOrder{},
		receipts:   map[int64]entity.Receipt{},
		inventory:  map[int64]entity.InventoryRecord{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone copia superficial: las entidades se guardan por valor y los punteros internos nunca se mutan in situ.
func (s *state) clone() *state {
	return &state{
		seq:        s.seq,
		suppliers:  cloneMap(s.suppliers),
		employees:  cloneMap(s.employees),
		products:   cloneMap(s.products),
		requests:   cloneMap(s.requests),
		links:      cloneMap(s.links),
		quotations: cloneMap(s.quotations),
		orders:     cloneMap(s.orders),
		dispatch:   append([]entity.DispatchEvent(nil), s.dispatch...),
		receipts:   cloneMap(s.receipts),
		lines:      append([]entity.ReceiptLine(nil), s.lines...),
		inventory:  cloneMap(s.inventory),
		movements:  append([]entity.InventoryMovement(nil), s.movements...),
		feedback:   append([]entity.SupplierFeedback(nil), s.feedback...),
	}
}

type fault struct {
	after int
	err   error
}

// Store almacén en memoria. Las transacciones se serializan (equivale a bloquear toda fila tocada).
type Store struct {
	txMu  sync.Mutex
	mu    sync.Mutex
	data  *state
	calls map[string]int
	fails map[string]fault
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState(), calls: map[string]int{}, fails: map[string]fault{}}
}

// FailOn hace que la operación op ("Links.Ensure", "Movements.Create", ...) falle con err
// cuando se haya invocado after veces con éxito.
func (s *Store) FailOn(op string, after int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op] = 0
	s.fails[op] = fault{after: after, err: err}
}

// ClearFaults elimina las fallas programadas.
func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fails = map[string]fault{}
}

// hit registra la llamada y devuelve el error programado, si toca. Se llama con mu tomado.
func (s *Store) hit(op string) error {
	n := s.calls[op]
	s.calls[op] = n + 1
	if f, ok := s.fails[op]; ok && n >= f.after {
		delete(s.fails, op)
		return f.err
	}
	return nil
}

func (s *Store) nextID() int64 {
	s.data.seq++
	return s.data.seq
}

// ── Siembra del catálogo ────────────────────────────────────────────────────

func (s *Store) AddSupplier(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.suppliers[id] = entity.Supplier{ID: id, Name: name}
	s.bumpSeq(id)
}

func (s *Store) AddEmployee(id int64, name, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.employees[id] = entity.Employee{ID: id, Name: name, Role: role}
	s.bumpSeq(id)
}

func (s *Store) AddProduct(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.products[id] = entity.Product{ID: id, Name: name}
	s.bumpSeq(id)
}

// bumpSeq evita que los ids generados choquen con los sembrados a mano.
func (s *Store) bumpSeq(id int64) {
	if id >= s.data.seq {
		s.data.seq = id + 1000
	}
}

// ── TxRunner ────────────────────────────────────────────────────────────────

// Repositories devuelve el juego de repositorios "de pool" (fuera de transacción).
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Requests:   requestRepo{s},
		Links:      linkRepo{s},
		Quotations: quotationRepo{s},
		Orders:     orderRepo{s},
		Dispatch:   dispatchRepo{s},
		Inventory:  inventoryRepo{s},
		Movements:  movementRepo{s},
		Receipts:   receiptRepo{s},
		Feedback:   feedbackRepo{s},
	}
}

// Catalog devuelve el repositorio de catálogo.
func (s *Store) Catalog() repository.CatalogRepository { return catalogRepo{s} }

// Run ejecuta fn en exclusión mutua; si fn falla restaura la instantánea tomada al inicio.
// Los errores no tipados salen como StorageError, igual que en el runner de PostgreSQL.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.Storage(err)
	}
	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	err := fn(s.Repositories())
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return domain.Storage(err)
	}
	return nil
}

// ── Inspección para aserciones ──────────────────────────────────────────────

func (s *Store) Request(id int64) entity.PurchaseRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.requests[id]
}

func (s *Store) LinkCount(requestID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.data.links {
		if k.a == requestID {
			n++
		}
	}
	return n
}

func (s *Store) Quotation(id int64) entity.Quotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.quotations[id]
}

func (s *Store) QuotationCount(requestID, supplierID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, q := range s.data.quotations {
		if q.RequestID == requestID && q.SupplierID == supplierID {
			n++
		}
	}
	return n
}

func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.orders)
}

func (s *Store) Order(id int64) entity.PurchaseOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.orders[id]
}

func (s *Store) OnHand(productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.inventory[productID].QuantityOnHand
}

// SetOnHand siembra la existencia de un producto sin registrar movimiento.
func (s *Store) SetOnHand(productID int64, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.data.inventory[productID]
	rec.ProductID, rec.ProductName = productID, s.data.products[productID].Name
	rec.QuantityOnHand = qty
	s.data.inventory[productID] = rec
}

// RequestsForProduct solicitudes del producto, en orden de creación.
func (s *Store) RequestsForProduct(productID int64) []entity.PurchaseRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.PurchaseRequest
	for _, pr := range s.data.requests {
		if pr.ProductID == productID {
			out = append(out, pr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Movements() []entity.InventoryMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.InventoryMovement(nil), s.data.movements...)
}

func (s *Store) ReceiptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.receipts)
}

// ── Solicitudes ─────────────────────────────────────────────────────────────

type requestRepo struct{ s *Store }

func (r requestRepo) Create(_ context.Context, req *entity.PurchaseRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Requests.Create"); err != nil {
		return err
	}
	if _, ok := r.s.data.employees[req.RequesterID]; !ok {
		return domain.NotFound("solicitante o producto inexistente")
	}
	if _, ok := r.s.data.products[req.ProductID]; !ok {
		return domain.NotFound("solicitante o producto inexistente")
	}
	req.ID = r.s.nextID()
	req.CreatedAt = time.Now().UTC()
	r.s.data.requests[req.ID] = *req
	return nil
}

func (r requestRepo) GetByID(_ context.Context, id int64) (*entity.PurchaseRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Requests.GetByID"); err != nil {
		return nil, err
	}
	pr, ok := r.s.data.requests[id]
	if !ok {
		return nil, nil
	}
	return &pr, nil
}

func (r requestRepo) GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseRequest, error) {
	return r.GetByID(ctx, id)
}

func (r requestRepo) Revise(_ context.Context, req *entity.PurchaseRequest, expected entity.RequestState) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Requests.Revise"); err != nil {
		return false, err
	}
	cur, ok := r.s.data.requests[req.ID]
	if !ok || cur.State != expected {
		return false, nil
	}
	cur.Quantity, cur.Reason, cur.State = req.Quantity, req.Reason, req.State
	r.s.data.requests[req.ID] = cur
	return true, nil
}

func (r requestRepo) SetDecision(_ context.Context, id int64, st entity.RequestState, reviewerID int64, comment *string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Requests.SetDecision"); err != nil {
		return false, err
	}
	cur, ok := r.s.data.requests[id]
	if !ok {
		return false, nil
	}
	cur.State, cur.ReviewerID, cur.ReviewerComment, cur.ReviewedAt = st, &reviewerID, comment, &at
	r.s.data.requests[id] = cur
	return true, nil
}

func (r requestRepo) UpdateState(_ context.Context, id int64, st entity.RequestState) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Requests.UpdateState"); err != nil {
		return err
	}
	cur, ok := r.s.data.requests[id]
	if ok {
		cur.State = st
		r.s.data.requests[id] = cur
	}
	return nil
}

func (r requestRepo) HasOpenForProduct(_ context.Context, productID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Requests.HasOpenForProduct"); err != nil {
		return false, err
	}
	received := map[int64]bool{}
	for _, rc := range r.s.data.receipts {
		o := r.s.data.orders[rc.OrderID]
		received[r.s.data.quotations[o.QuotationID].RequestID] = true
	}
	for _, pr := range r.s.data.requests {
		if pr.ProductID == productID && pr.State != entity.RequestRechazada && !received[pr.ID] {
			return true, nil
		}
	}
	return false, nil
}

func (r requestRepo) view(pr entity.PurchaseRequest) *entity.RequestView {
	return &entity.RequestView{
		PurchaseRequest: pr,
		RequesterName:   r.s.data.employees[pr.RequesterID].Name,
		ProductName:     r.s.data.products[pr.ProductID].Name,
	}
}

func (r requestRepo) GetView(_ context.Context, id int64) (*entity.RequestView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pr, ok := r.s.data.requests[id]
	if !ok {
		return nil, nil
	}
	return r.view(pr), nil
}

func (r requestRepo) List(_ context.Context, f entity.RequestFilter) ([]*entity.RequestView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.RequestView
	for _, pr := range r.s.data.requests {
		if f.State != nil && pr.State != *f.State {
			continue
		}
		if f.RequesterID != nil && pr.RequesterID != *f.RequesterID {
			continue
		}
		out = append(out, r.view(pr))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// ── Vínculos ────────────────────────────────────────────────────────────────

type linkRepo struct{ s *Store }

func (r linkRepo) Ensure(_ context.Context, requestID, supplierID int64, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Links.Ensure"); err != nil {
		return false, err
	}
	k := pair{requestID, supplierID}
	if _, ok := r.s.data.links[k]; ok {
		return false, nil
	}
	r.s.data.links[k] = entity.SupplierLink{RequestID: requestID, SupplierID: supplierID, SentAt: at}
	return true, nil
}

func (r linkRepo) Exists(_ context.Context, requestID, supplierID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.data.links[pair{requestID, supplierID}]
	return ok, nil
}

func (r linkRepo) ListByRequest(_ context.Context, requestID int64) ([]*entity.SupplierLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.SupplierLink
	for k, l := range r.s.data.links {
		if k.a == requestID {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SupplierID < out[j].SupplierID })
	return out, nil
}

// ── Cotizaciones ────────────────────────────────────────────────────────────

type quotationRepo struct{ s *Store }

func (r quotationRepo) Create(_ context.Context, q *entity.Quotation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Quotations.Create"); err != nil {
		return err
	}
	if _, ok := r.s.data.links[pair{q.RequestID, q.SupplierID}]; !ok {
		return domain.Conflict(domain.MsgNotSentToSupplier)
	}
	for _, e := range r.s.data.quotations {
		if e.RequestID == q.RequestID && e.SupplierID == q.SupplierID {
			return domain.Conflict(domain.MsgAlreadyQuoted)
		}
	}
	q.ID = r.s.nextID()
	q.CreatedAt = time.Now().UTC()
	r.s.data.quotations[q.ID] = *q
	return nil
}

func (r quotationRepo) GetByID(_ context.Context, id int64) (*entity.Quotation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Quotations.GetByID"); err != nil {
		return nil, err
	}
	q, ok := r.s.data.quotations[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r quotationRepo) ExistsForPair(_ context.Context, requestID, supplierID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range r.s.data.quotations {
		if q.RequestID == requestID && q.SupplierID == supplierID {
			return true, nil
		}
	}
	return false, nil
}

func (r quotationRepo) byRequest(requestID int64) []*entity.Quotation {
	var out []*entity.Quotation
	for _, q := range r.s.data.quotations {
		if q.RequestID == requestID {
			q := q
			out = append(out, &q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r quotationRepo) LockByRequest(_ context.Context, requestID int64) ([]*entity.Quotation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Quotations.LockByRequest"); err != nil {
		return nil, err
	}
	return r.byRequest(requestID), nil
}

func (r quotationRepo) MarkAwarded(_ context.Context, id, awarderID int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Quotations.MarkAwarded"); err != nil {
		return err
	}
	q, ok := r.s.data.quotations[id]
	if !ok {
		return nil
	}
	for _, o := range r.s.data.quotations {
		if o.RequestID == q.RequestID && o.ID != id && o.State == entity.QuotationAprobada {
			return domain.Conflict(domain.MsgSiblingAwarded)
		}
	}
	q.State, q.RejectionReason, q.AwardedBy, q.AwardedAt = entity.QuotationAprobada, nil, &awarderID, &at
	r.s.data.quotations[id] = q
	return nil
}

func (r quotationRepo) RejectSiblings(_ context.Context, requestID, winnerID int64, reason string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Quotations.RejectSiblings"); err != nil {
		return 0, err
	}
	var n int64
	for id, q := range r.s.data.quotations {
		if q.RequestID != requestID || id == winnerID || q.State == entity.QuotationRechazada {
			continue
		}
		reason := reason
		q.State, q.RejectionReason = entity.QuotationRechazada, &reason
		r.s.data.quotations[id] = q
		n++
	}
	return n, nil
}

func (r quotationRepo) view(q entity.Quotation) *entity.QuotationView {
	pr := r.s.data.requests[q.RequestID]
	return &entity.QuotationView{
		Quotation:     q,
		SupplierName:  r.s.data.suppliers[q.SupplierID].Name,
		ProductID:     pr.ProductID,
		ProductName:   r.s.data.products[pr.ProductID].Name,
		RequesterID:   pr.RequesterID,
		RequesterName: r.s.data.employees[pr.RequesterID].Name,
		Quantity:      pr.Quantity,
	}
}

func sortForAward(out []*entity.QuotationView) {
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.RequestID != b.RequestID {
			return a.RequestID > b.RequestID
		}
		if !a.Price.Equal(b.Price) {
			return a.Price.LessThan(b.Price)
		}
		return a.ID < b.ID
	})
}

func (r quotationRepo) GetView(_ context.Context, id int64) (*entity.QuotationView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.data.quotations[id]
	if !ok {
		return nil, nil
	}
	return r.view(q), nil
}

func (r quotationRepo) List(_ context.Context, f entity.QuotationFilter) ([]*entity.QuotationView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.QuotationView
	for _, q := range r.s.data.quotations {
		if f.RequestID != nil && q.RequestID != *f.RequestID {
			continue
		}
		if f.SupplierID != nil && q.SupplierID != *f.SupplierID {
			continue
		}
		if f.State != nil && q.State != *f.State {
			continue
		}
		out = append(out, r.view(q))
	}
	sortForAward(out)
	return out, nil
}

func (r quotationRepo) ListPendingAward(_ context.Context) ([]*entity.QuotationView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	awarded := map[int64]bool{}
	for _, q := range r.s.data.quotations {
		if q.State == entity.QuotationAprobada {
			awarded[q.RequestID] = true
		}
	}
	var out []*entity.QuotationView
	for _, q := range r.s.data.quotations {
		if q.State == entity.QuotationRecibida && !awarded[q.RequestID] {
			out = append(out, r.view(q))
		}
	}
	sortForAward(out)
	return out, nil
}

// ── Órdenes y despacho ──────────────────────────────────────────────────────

type orderRepo struct{ s *Store }

func (r orderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Orders.Create"); err != nil {
		return err
	}
	for _, e := range r.s.data.orders {
		if e.QuotationID == o.QuotationID {
			return domain.Conflict(domain.MsgOrderExists)
		}
	}
	o.ID = r.s.nextID()
	o.CreatedAt = time.Now().UTC()
	r.s.data.orders[o.ID] = *o
	return nil
}

func (r orderRepo) GetByID(_ context.Context, id int64) (*entity.PurchaseOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Orders.GetByID"); err != nil {
		return nil, err
	}
	o, ok := r.s.data.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r orderRepo) GetForUpdate(ctx context.Context, id int64) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r orderRepo) GetByQuotation(_ context.Context, quotationID int64) (*entity.PurchaseOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.data.orders {
		if o.QuotationID == quotationID {
			o := o
			return &o, nil
		}
	}
	return nil, nil
}

func (r orderRepo) GetOrigin(_ context.Context, id int64) (*entity.OrderOrigin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.data.orders[id]
	if !ok {
		return nil, nil
	}
	q := r.s.data.quotations[o.QuotationID]
	pr := r.s.data.requests[q.RequestID]
	return &entity.OrderOrigin{
		OrderID:     o.ID,
		QuotationID: q.ID,
		RequestID:   pr.ID,
		RequesterID: pr.RequesterID,
		ProductID:   pr.ProductID,
		Quantity:    pr.Quantity,
	}, nil
}

func (r orderRepo) update(op string, id int64, fn func(o *entity.PurchaseOrder)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit(op); err != nil {
		return err
	}
	o, ok := r.s.data.orders[id]
	if !ok {
		return nil
	}
	fn(&o)
	r.s.data.orders[id] = o
	return nil
}

func (r orderRepo) MarkDelivered(_ context.Context, id int64) error {
	return r.update("Orders.MarkDelivered", id, func(o *entity.PurchaseOrder) { o.State = entity.OrderEntregado })
}

func (r orderRepo) SetSupervisorConformity(_ context.Context, id, supervisorID int64, c entity.Conformity, comment *string) error {
	return r.update("Orders.SetSupervisorConformity", id, func(o *entity.PurchaseOrder) {
		o.SupervisorConformity, o.SupervisorID, o.SupervisorComment = c, &supervisorID, comment
	})
}

func (r orderRepo) SetEmployeeAcceptance(_ context.Context, id, employeeID int64, c entity.Conformity, comment *string) error {
	return r.update("Orders.SetEmployeeAcceptance", id, func(o *entity.PurchaseOrder) {
		o.EmployeeAcceptance, o.EmployeeID, o.EmployeeComment = c, &employeeID, comment
	})
}

func (r orderRepo) view(o entity.PurchaseOrder) *entity.OrderView {
	q := r.s.data.quotations[o.QuotationID]
	pr := r.s.data.requests[q.RequestID]
	return &entity.OrderView{
		PurchaseOrder: o,
		RequestID:     pr.ID,
		Price:         q.Price,
		SupplierName:  r.s.data.suppliers[o.SupplierID].Name,
		RequesterID:   pr.RequesterID,
		RequesterName: r.s.data.employees[pr.RequesterID].Name,
		ProductID:     pr.ProductID,
		ProductName:   r.s.data.products[pr.ProductID].Name,
		Quantity:      pr.Quantity,
	}
}

func (r orderRepo) GetView(_ context.Context, id int64) (*entity.OrderView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.data.orders[id]
	if !ok {
		return nil, nil
	}
	return r.view(o), nil
}

func (r orderRepo) List(_ context.Context, f entity.OrderFilter) ([]*entity.OrderView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.OrderView
	for _, o := range r.s.data.orders {
		if f.State != nil && o.State != *f.State {
			continue
		}
		if f.SupplierID != nil && o.SupplierID != *f.SupplierID {
			continue
		}
		out = append(out, r.view(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type dispatchRepo struct{ s *Store }

func (r dispatchRepo) Append(_ context.Context, ev *entity.DispatchEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Dispatch.Append"); err != nil {
		return err
	}
	// Igual que el default de la columna: la hora la pone el almacén.
	ev.ID = r.s.nextID()
	ev.OccurredAt = time.Now().UTC()
	r.s.data.dispatch = append(r.s.data.dispatch, *ev)
	return nil
}

func (r dispatchRepo) ListByOrder(_ context.Context, orderID int64) ([]entity.DispatchEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.DispatchEvent
	for _, ev := range r.s.data.dispatch {
		if ev.OrderID == orderID {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ── Recepción, inventario y notificaciones ──────────────────────────────────

type receiptRepo struct{ s *Store }

func (r receiptRepo) Create(_ context.Context, rc *entity.Receipt) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Receipts.Create"); err != nil {
		return err
	}
	for _, e := range r.s.data.receipts {
		if e.OrderID == rc.OrderID {
			return domain.Conflict(domain.MsgReceiptExists)
		}
	}
	rc.ID = r.s.nextID()
	r.s.data.receipts[rc.ID] = *rc
	return nil
}

func (r receiptRepo) AddLine(_ context.Context, line *entity.ReceiptLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Receipts.AddLine"); err != nil {
		return err
	}
	line.ID = r.s.nextID()
	r.s.data.lines = append(r.s.data.lines, *line)
	return nil
}

func (r receiptRepo) GetByOrder(_ context.Context, orderID int64) (*entity.Receipt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rc := range r.s.data.receipts {
		if rc.OrderID == orderID {
			rc := rc
			return &rc, nil
		}
	}
	return nil, nil
}

type inventoryRepo struct{ s *Store }

func (r inventoryRepo) Increment(_ context.Context, productID int64, quantity int) (*entity.InventoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Inventory.Increment"); err != nil {
		return nil, err
	}
	rec := r.s.data.inventory[productID]
	rec.ProductID = productID
	rec.ProductName = r.s.data.products[productID].Name
	rec.QuantityOnHand += quantity
	rec.UpdatedAt = time.Now().UTC()
	r.s.data.inventory[productID] = rec
	return &rec, nil
}

func (r inventoryRepo) Get(_ context.Context, productID int64) (*entity.InventoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.data.inventory[productID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r inventoryRepo) GetForUpdate(ctx context.Context, productID int64) (*entity.InventoryRecord, error) {
	return r.Get(ctx, productID)
}

func (r inventoryRepo) SetMinimum(_ context.Context, productID int64, minQuantity int) (*entity.InventoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Inventory.SetMinimum"); err != nil {
		return nil, err
	}
	p, ok := r.s.data.products[productID]
	if !ok {
		return nil, nil
	}
	rec := r.s.data.inventory[productID]
	rec.ProductID, rec.ProductName = productID, p.Name
	m := minQuantity
	rec.MinQuantity = &m
	rec.UpdatedAt = time.Now().UTC()
	r.s.data.inventory[productID] = rec
	return &rec, nil
}

func (r inventoryRepo) ListBelowMinimum(_ context.Context) ([]*entity.InventoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryRecord
	for _, rec := range r.s.data.inventory {
		if rec.BelowMinimum() {
			rec := rec
			out = append(out, &rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di := *out[i].MinQuantity - out[i].QuantityOnHand
		dj := *out[j].MinQuantity - out[j].QuantityOnHand
		if di != dj {
			return di > dj
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}

func (r inventoryRepo) List(_ context.Context) ([]*entity.InventoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryRecord
	for _, rec := range r.s.data.inventory {
		rec := rec
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

type movementRepo struct{ s *Store }

func (r movementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Movements.Create"); err != nil {
		return err
	}
	if m.TransactionID == "" {
		m.TransactionID = uuid.New().String()
	}
	m.ID = r.s.nextID()
	r.s.data.movements = append(r.s.data.movements, *m)
	return nil
}

func (r movementRepo) ListByProduct(_ context.Context, productID int64, limit, offset int) ([]*entity.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*entity.InventoryMovement
	for i := len(r.s.data.movements) - 1; i >= 0; i-- {
		m := r.s.data.movements[i]
		if m.ProductID == productID {
			all = append(all, &m)
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r movementRepo) CountByOrder(_ context.Context, orderID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, m := range r.s.data.movements {
		if m.OrderID != nil && *m.OrderID == orderID {
			n++
		}
	}
	return n, nil
}

type feedbackRepo struct{ s *Store }

func (r feedbackRepo) Create(_ context.Context, fb *entity.SupplierFeedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Feedback.Create"); err != nil {
		return err
	}
	fb.ID = r.s.nextID()
	r.s.data.feedback = append(r.s.data.feedback, *fb)
	return nil
}

func (r feedbackRepo) GetByID(_ context.Context, id int64) (*entity.SupplierFeedback, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, fb := range r.s.data.feedback {
		if fb.ID == id {
			fb.SupplierName = r.s.data.suppliers[fb.SupplierID].Name
			return &fb, nil
		}
	}
	return nil, nil
}

func (r feedbackRepo) List(_ context.Context, orderID *int64) ([]*entity.SupplierFeedback, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.SupplierFeedback
	for i := len(r.s.data.feedback) - 1; i >= 0; i-- {
		fb := r.s.data.feedback[i]
		if orderID != nil && fb.OrderID != *orderID {
			continue
		}
		fb.SupplierName = r.s.data.suppliers[fb.SupplierID].Name
		out = append(out, &fb)
	}
	return out, nil
}

// ── Catálogo ────────────────────────────────────────────────────────────────

type catalogRepo struct{ s *Store }

func (r catalogRepo) GetSupplier(_ context.Context, id int64) (*entity.Supplier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.hit("Catalog.GetSupplier"); err != nil {
		return nil, err
	}
	v, ok := r.s.data.suppliers[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r catalogRepo) GetEmployee(_ context.Context, id int64) (*entity.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.data.employees[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r catalogRepo) GetProduct(_ context.Context, id int64) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.data.products[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// ErrInjected error de almacenamiento simulado para pruebas de atomicidad.
var ErrInjected = errors.New("fallo simulado del almacén")
