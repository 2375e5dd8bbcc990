// Package apptest provee implementaciones en memoria de los puertos de
// persistencia para probar los casos de uso sin base de datos.
package apptest

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// World agrupa los fakes y el TxRunner que los comparte.
type World struct {
	Items     *FakeItemRepo
	Movements *FakeMovementRepo
	Orders    *FakeOrderRepo
	Sequences *FakeSequenceRepo
	Locations *FakeLocationRepo
	Tx        *FakeTxRunner
}

// NewWorld construye un juego completo de fakes.
func NewWorld() *World {
	w := &World{
		Items:     &FakeItemRepo{store: map[string]*entity.Item{}},
		Movements: &FakeMovementRepo{},
		Orders:    &FakeOrderRepo{store: map[string]*entity.Order{}},
		Sequences: &FakeSequenceRepo{counters: map[string]int64{}},
		Locations: &FakeLocationRepo{store: map[string]*entity.Location{}},
	}
	w.Tx = &FakeTxRunner{w: w}
	return w
}

// SeedLocation registra una bodega.
func (w *World) SeedLocation(id, name string) {
	w.Locations.store[id] = &entity.Location{ID: id, Name: name}
}

// SeedItem registra un ítem con stock inicial por bodega.
func (w *World) SeedItem(item *entity.Item) {
	w.Items.store[item.ID] = cloneItem(item)
}

// FakeTxRunner ejecuta el callback directamente sobre los fakes compartidos.
// No simula rollback: los tests verifican que los casos de uso validen antes
// de escribir, igual que exige la transacción real.
type FakeTxRunner struct {
	w    *World
	Runs int
}

var _ ports.TxRunner = (*FakeTxRunner)(nil)

func (t *FakeTxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	orderRepo repository.OrderRepository,
	seqRepo repository.SequenceRepository,
) error) error {
	t.Runs++
	return fn(t.w.Items, t.w.Movements, t.w.Orders, t.w.Sequences)
}

// ── Items ────────────────────────────────────────────────────────────────────

// FakeItemRepo almacena ítems en memoria. GetByID devuelve copias para que las
// mutaciones del caso de uso solo persistan vía UpsertStock/UpdateTotal.
type FakeItemRepo struct {
	store       map[string]*entity.Item
	UpsertCalls int
}

var _ repository.ItemRepository = (*FakeItemRepo)(nil)

func (r *FakeItemRepo) Create(item *entity.Item) error {
	r.store[item.ID] = cloneItem(item)
	return nil
}

func (r *FakeItemRepo) GetByID(id string) (*entity.Item, error) {
	item, ok := r.store[id]
	if !ok {
		return nil, nil
	}
	return cloneItem(item), nil
}

func (r *FakeItemRepo) List(limit, offset int) ([]*entity.Item, error) {
	ids := make([]string, 0, len(r.store))
	for id := range r.store {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []*entity.Item
	for _, id := range ids {
		out = append(out, cloneItem(r.store[id]))
	}
	return out, nil
}

func (r *FakeItemRepo) UpsertStock(itemID, locationID string, quantity int64) error {
	item, ok := r.store[itemID]
	if !ok {
		return fmt.Errorf("ítem %s no existe", itemID)
	}
	if item.StockByLocation == nil {
		item.StockByLocation = map[string]int64{}
	}
	item.StockByLocation[locationID] = quantity
	r.UpsertCalls++
	return nil
}

func (r *FakeItemRepo) UpdateTotal(itemID string, total int64) error {
	item, ok := r.store[itemID]
	if !ok {
		return fmt.Errorf("ítem %s no existe", itemID)
	}
	item.TotalQuantity = total
	return nil
}

// StockAt lee el stock persistido de un ítem en una bodega (para asserts).
func (r *FakeItemRepo) StockAt(itemID, locationID string) int64 {
	item, ok := r.store[itemID]
	if !ok {
		return 0
	}
	return item.StockByLocation[locationID]
}

// TotalOf lee el agregado persistido de un ítem (para asserts).
func (r *FakeItemRepo) TotalOf(itemID string) int64 {
	item, ok := r.store[itemID]
	if !ok {
		return 0
	}
	return item.TotalQuantity
}

// ── Movimientos ──────────────────────────────────────────────────────────────

// FakeMovementRepo log en memoria, solo INSERT.
type FakeMovementRepo struct {
	Log []*entity.Movement
}

var _ repository.MovementRepository = (*FakeMovementRepo)(nil)

func (r *FakeMovementRepo) Create(m *entity.Movement) error {
	if err := m.Validate(); err != nil {
		return err
	}
	r.Log = append(r.Log, m)
	return nil
}

func (r *FakeMovementRepo) CreateBatch(movements []*entity.Movement) error {
	for _, m := range movements {
		if err := r.Create(m); err != nil {
			return err
		}
	}
	return nil
}

func (r *FakeMovementRepo) ListByItem(itemID, locationID string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.Log {
		if m.ItemID != itemID {
			continue
		}
		if locationID != "" && m.LocationID != locationID {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (r *FakeMovementRepo) ListByOrderCode(code string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for _, m := range r.Log {
		if m.OrderCode == code {
			out = append(out, m)
		}
	}
	return out, nil
}

// OfType filtra el log por tipo (para asserts).
func (r *FakeMovementRepo) OfType(t entity.MovementType) []*entity.Movement {
	var out []*entity.Movement
	for _, m := range r.Log {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// ── Órdenes ──────────────────────────────────────────────────────────────────

// FakeOrderRepo almacena órdenes en memoria; Get devuelve copias con líneas.
type FakeOrderRepo struct {
	store map[string]*entity.Order
}

var _ repository.OrderRepository = (*FakeOrderRepo)(nil)

func (r *FakeOrderRepo) Create(order *entity.Order) error {
	r.store[order.ID] = cloneOrder(order)
	return nil
}

func (r *FakeOrderRepo) GetByID(id string) (*entity.Order, error) {
	order, ok := r.store[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(order), nil
}

func (r *FakeOrderRepo) GetByCode(code string) (*entity.Order, error) {
	for _, order := range r.store {
		if order.Code == code {
			return cloneOrder(order), nil
		}
	}
	return nil, nil
}

func (r *FakeOrderRepo) Update(order *entity.Order) error {
	if _, ok := r.store[order.ID]; !ok {
		return fmt.Errorf("orden %s no existe", order.ID)
	}
	r.store[order.ID] = cloneOrder(order)
	return nil
}

func (r *FakeOrderRepo) ListByKindAndStatus(kind entity.OrderKind, statuses []entity.OrderStatus) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, order := range r.store {
		if order.Kind != kind {
			continue
		}
		for _, s := range statuses {
			if order.Status == s {
				out = append(out, cloneOrder(order))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// Count cantidad de órdenes almacenadas (para asserts).
func (r *FakeOrderRepo) Count() int {
	return len(r.store)
}

// ── Secuencias ───────────────────────────────────────────────────────────────

// FakeSequenceRepo contador en memoria por alcance.
type FakeSequenceRepo struct {
	counters map[string]int64
}

var _ repository.SequenceRepository = (*FakeSequenceRepo)(nil)

func (r *FakeSequenceRepo) ReserveNext(kind string, year, month int) (int64, error) {
	key := fmt.Sprintf("%s-%d-%d", kind, year, month)
	r.counters[key]++
	return r.counters[key], nil
}

// ── Bodegas ──────────────────────────────────────────────────────────────────

// FakeLocationRepo bodegas en memoria.
type FakeLocationRepo struct {
	store map[string]*entity.Location
}

var _ repository.LocationRepository = (*FakeLocationRepo)(nil)

func (r *FakeLocationRepo) Create(location *entity.Location) error {
	r.store[location.ID] = location
	return nil
}

func (r *FakeLocationRepo) GetByID(id string) (*entity.Location, error) {
	loc, ok := r.store[id]
	if !ok {
		return nil, nil
	}
	return loc, nil
}

func (r *FakeLocationRepo) List(limit, offset int) ([]*entity.Location, error) {
	var out []*entity.Location
	for _, loc := range r.store {
		out = append(out, loc)
	}
	return out, nil
}

// ── Publicador ───────────────────────────────────────────────────────────────

// RecordingPublisher acumula los eventos publicados (para asserts).
type RecordingPublisher struct {
	Events []ports.DomainEvent
}

var _ ports.EventPublisher = (*RecordingPublisher)(nil)

func (p *RecordingPublisher) Publish(_ context.Context, event ports.DomainEvent) error {
	p.Events = append(p.Events, event)
	return nil
}

func cloneItem(item *entity.Item) *entity.Item {
	cp := *item
	cp.StockByLocation = make(map[string]int64, len(item.StockByLocation))
	for k, v := range item.StockByLocation {
		cp.StockByLocation[k] = v
	}
	return &cp
}

func cloneOrder(order *entity.Order) *entity.Order {
	cp := *order
	cp.Lines = append([]entity.OrderLine(nil), order.Lines...)
	return &cp
}
